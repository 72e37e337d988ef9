package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/folio/app/github"
)

type TaskType string

const (
	TaskTypeRefreshPanel TaskType = "refresh_panel"
	TaskTypeReloadPanel  TaskType = "reload_panel"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

// TaskInterface is a unit of background work. Info exposes the shared bookkeeping the
// scheduler needs for logging and retries.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Info() *Task
}

// Task is embedded by every concrete task.
type Task struct {
	ID         string
	Type       TaskType
	PanelName  string
	Attempts   int
	MaxRetries int
	StartedAt  time.Time
}

var taskSeq atomic.Uint64

func NewTask(taskType TaskType, panelName string) Task {
	return Task{
		ID:         fmt.Sprintf("%s/%s/%d", taskType, panelName, taskSeq.Add(1)),
		Type:       taskType,
		PanelName:  panelName,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) Info() *Task {
	return t
}

func (t *Task) Start() {
	t.StartedAt = time.Now()
}

func (t *Task) Duration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}

// ShouldRetry reports whether err is worth another attempt. Rejected input and
// scheduler shutdown never are; everything else is retried until MaxRetries.
func (t *Task) ShouldRetry(err error) bool {
	if err == nil || t.Attempts >= t.MaxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return github.IsRetryable(err)
}

// NextRetry records one more attempt and returns how long to wait before it. The delay
// doubles from one second and is capped at 30 seconds.
func (t *Task) NextRetry() time.Duration {
	t.Attempts++
	return backoff(t.Attempts)
}

func backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return min(time.Second<<min(attempt-1, 5), maxRetryDelay)
}
