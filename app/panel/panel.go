package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// LoadFunc runs one fetch cycle. It must honour ctx cancellation.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type Options[T any] struct {
	// FailureMessage is shown for every non-timeout failure.
	FailureMessage string
	// IsEmpty marks a ready result as the empty sub-state.
	IsEmpty func(T) bool
	// Now is used for Snapshot.UpdatedAt.
	Now func() time.Time
}

// Panel tracks one remote resource through Loading, Error and Ready. Every Refresh
// starts a new cycle and cancels the previous one; only the newest cycle may publish.
type Panel[T any] struct {
	name    string
	load    LoadFunc[T]
	options Options[T]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	gen         uint64
	cancelCycle context.CancelFunc
	state       Snapshot[T]
	lastErr     error
	closed      bool
	changed     chan struct{}
}

func New[T any](name string, load LoadFunc[T], options Options[T]) *Panel[T] {
	if options.FailureMessage == "" {
		options.FailureMessage = DefaultFailureMessage
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Panel[T]{
		name:    name,
		load:    load,
		options: options,
		ctx:     ctx,
		cancel:  cancel,
		state:   Snapshot[T]{Status: StatusLoading, UpdatedAt: options.Now()},
		changed: make(chan struct{}),
	}
}

func (p *Panel[T]) Name() string {
	return p.name
}

// Refresh resets the panel to Loading and starts a new fetch cycle, returning its
// generation. The cycle it supersedes is cancelled, so at most one fetch is live per
// panel. After Close it does nothing and returns the last generation.
func (p *Panel[T]) Refresh() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.refreshLocked()
}

// Retry is the action behind the error view. It only starts a new cycle from
// StatusError; in any other state it returns the current generation and false.
func (p *Panel[T]) Retry() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.state.Status != StatusError {
		slog.Debug("Ignoring retry outside error state", "panel", p.name, "status", p.state.Status.String(), "generation", p.gen)
		return p.gen, false
	}

	gen := p.refreshLocked()
	slog.Debug("Panel retry requested", "panel", p.name, "generation", gen)
	return gen, true
}

func (p *Panel[T]) refreshLocked() uint64 {
	if p.closed {
		return p.gen
	}

	if p.cancelCycle != nil {
		p.cancelCycle()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelCycle = cancel

	p.gen++
	gen := p.gen

	var zero T
	p.lastErr = nil
	p.publish(Snapshot[T]{
		Status:     StatusLoading,
		Data:       zero,
		Generation: gen,
		UpdatedAt:  p.options.Now(),
	})

	p.wg.Add(1)
	go p.run(ctx, cancel, gen)

	return gen
}

func (p *Panel[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer p.wg.Done()
	defer cancel()

	data, err := p.load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		slog.Debug("Discarding fetch result after close", "panel", p.name, "generation", gen)
		return
	}
	if gen != p.gen {
		slog.Debug("Discarding stale fetch result", "panel", p.name, "generation", gen, "current", p.gen)
		return
	}

	now := p.options.Now()

	if err != nil {
		slog.Error("Panel fetch failed",
			"panel", p.name,
			"generation", gen,
			"kind", errorKind(err),
			"error", err)

		var zero T
		p.lastErr = err
		p.publish(Snapshot[T]{
			Status:     StatusError,
			Message:    p.userMessage(err),
			Data:       zero,
			Generation: gen,
			UpdatedAt:  now,
		})
		return
	}

	empty := p.options.IsEmpty != nil && p.options.IsEmpty(data)
	p.publish(Snapshot[T]{
		Status:     StatusReady,
		Data:       data,
		Empty:      empty,
		Generation: gen,
		UpdatedAt:  now,
	})

	slog.Debug("Panel ready", "panel", p.name, "generation", gen, "empty", empty)
}

// publish must be called with mu held.
func (p *Panel[T]) publish(state Snapshot[T]) {
	p.state = state
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *Panel[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the error behind the current Error state, for logging and retry decisions.
// It is never shown to end users.
func (p *Panel[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Wait blocks until the panel settles on generation gen or a later one.
func (p *Panel[T]) Wait(ctx context.Context, gen uint64) (Snapshot[T], error) {
	for {
		p.mu.Lock()
		state := p.state
		changed := p.changed
		closed := p.closed
		p.mu.Unlock()

		if state.Status.IsSettled() && state.Generation >= gen {
			return state, nil
		}
		if closed {
			return state, ErrClosed
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

var ErrClosed = errors.New("panel closed")

// Close cancels every in-flight cycle and waits for them to return. Their outcomes are
// discarded.
func (p *Panel[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Panel[T]) userMessage(err error) string {
	if isTimeout(err) {
		return TimeoutMessage
	}
	return p.options.FailureMessage
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func errorKind(err error) string {
	var ke interface{ ErrorKind() string }
	if errors.As(err, &ke) {
		return ke.ErrorKind()
	}
	if isTimeout(err) {
		return "timeout"
	}
	return "unknown"
}
