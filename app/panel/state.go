package panel

import "time"

type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

func (s Status) String() string {
	return string(s)
}

// IsSettled reports whether a fetch cycle has finished.
func (s Status) IsSettled() bool {
	return s == StatusError || s == StatusReady
}

const (
	TimeoutMessage        = "Request timeout"
	DefaultFailureMessage = "Failed to load data"
)

// Snapshot is a copy of a panel's observable state. Message is only set in StatusError
// and never carries raw error text. Data is only meaningful in StatusReady.
type Snapshot[T any] struct {
	Status     Status    `json:"status"`
	Message    string    `json:"message,omitempty"`
	Data       T         `json:"data"`
	Empty      bool      `json:"empty"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}
