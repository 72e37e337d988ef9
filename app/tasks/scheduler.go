package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/folio/app/cfg"
	"github.com/lysyi3m/folio/app/github"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configSource ConfigSource
	registry     PanelRegistry
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface

	mu          sync.Mutex
	lastRefresh map[string]time.Time
	now         func() time.Time
}

func NewScheduler(configSource ConfigSource, registry PanelRegistry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configSource: configSource,
		registry:     registry,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 100),
		lastRefresh:  make(map[string]time.Time),
		now:          time.Now,
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels in-flight tasks and waits for workers to exit. Queued tasks are dropped.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	panelConfigs := s.configSource.GetEnabledConfigs()
	if len(panelConfigs) == 0 {
		slog.Debug("No enabled panel configurations found")
		return
	}

	slog.Debug("Scheduling initial panel refresh", "count", len(panelConfigs))

	for name := range panelConfigs {
		s.enqueueRefresh(name)
	}
}

func (s *Scheduler) enqueueTasks() {
	panelConfigs := s.configSource.GetEnabledConfigs()
	if len(panelConfigs) == 0 {
		slog.Debug("No enabled panel configurations found")
		return
	}

	now := s.now()
	for name, panelConfig := range panelConfigs {
		s.mu.Lock()
		last, seen := s.lastRefresh[name]
		s.mu.Unlock()

		if seen && now.Sub(last) < panelConfig.Settings.GetRefreshInterval() {
			slog.Debug("Panel not due for refresh yet", "panel", name, "last_refresh", last)
			continue
		}
		s.enqueueRefresh(name)
	}
}

func (s *Scheduler) enqueueRefresh(name string) {
	if err := s.EnqueueTask(NewRefreshPanelTask(name, s.registry)); err != nil {
		slog.Warn("Failed to enqueue RefreshPanelTask", "panel", name, "error", err)
		return
	}

	s.mu.Lock()
	s.lastRefresh[name] = s.now()
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	info := task.Info()
	info.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	if !info.ShouldRetry(err) {
		slog.Error("Task failed, not retrying", "worker_id", workerID, "type", string(info.Type), "id", info.ID, "panel", info.PanelName, "attempts", info.Attempts, "kind", github.KindOf(err), "error", err)
		return
	}

	delay := info.NextRetry()
	slog.Warn("Task failed, retry scheduled", "worker_id", workerID, "type", string(info.Type), "id", info.ID, "panel", info.PanelName, "attempt", info.Attempts, "max_retries", info.MaxRetries, "delay", delay.String(), "error", err)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(info.Type), "id", info.ID)
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(info.Type), "id", info.ID, "attempt", info.Attempts, "error", retryErr)
			}
		}
	}()
}
