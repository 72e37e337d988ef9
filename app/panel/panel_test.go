package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor[T any](t *testing.T, p *Panel[T], gen uint64) Snapshot[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := p.Wait(ctx, gen)
	if err != nil {
		t.Fatalf("Wait(%d) failed: %v", gen, err)
	}
	return snap
}

func TestPanel_StartsLoading(t *testing.T) {
	p := New("test", func(ctx context.Context) (int, error) { return 1, nil }, Options[int]{})
	defer p.Close()

	snap := p.Snapshot()
	if snap.Status != StatusLoading {
		t.Errorf("Expected initial status loading, got %s", snap.Status)
	}
	if snap.Generation != 0 {
		t.Errorf("Expected generation 0, got %d", snap.Generation)
	}
}

func TestPanel_Ready(t *testing.T) {
	p := New("repos", func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	}, Options[[]string]{IsEmpty: func(v []string) bool { return len(v) == 0 }})
	defer p.Close()

	gen := p.Refresh()
	snap := waitFor(t, p, gen)

	if snap.Status != StatusReady {
		t.Fatalf("Expected ready, got %s", snap.Status)
	}
	if snap.Empty {
		t.Error("Expected non-empty ready state")
	}
	if len(snap.Data) != 2 {
		t.Errorf("Expected 2 items, got %d", len(snap.Data))
	}
	if snap.Message != "" {
		t.Errorf("Expected no message, got %q", snap.Message)
	}
	if p.Err() != nil {
		t.Errorf("Expected no error, got %v", p.Err())
	}
}

func TestPanel_ReadyEmptyIsNotError(t *testing.T) {
	p := New("repos", func(ctx context.Context) ([]string, error) {
		return []string{}, nil
	}, Options[[]string]{IsEmpty: func(v []string) bool { return len(v) == 0 }})
	defer p.Close()

	snap := waitFor(t, p, p.Refresh())

	if snap.Status != StatusReady {
		t.Fatalf("Expected ready, got %s", snap.Status)
	}
	if !snap.Empty {
		t.Error("Expected empty sub-state")
	}
}

type kindError struct {
	kind    string
	timeout bool
}

func (e *kindError) Error() string     { return "GitHub API error: 503 at https://api.github.com/users/x" }
func (e *kindError) ErrorKind() string { return e.kind }
func (e *kindError) Timeout() bool     { return e.timeout }

func TestPanel_ErrorMessagesAreGeneric(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"http", &kindError{kind: "http"}, "Failed to load repositories"},
		{"timeout", &kindError{kind: "timeout", timeout: true}, TimeoutMessage},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), TimeoutMessage},
		{"plain", errors.New("boom"), "Failed to load repositories"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := New("repos", func(ctx context.Context) (int, error) {
				return 0, test.err
			}, Options[int]{FailureMessage: "Failed to load repositories"})
			defer p.Close()

			snap := waitFor(t, p, p.Refresh())

			if snap.Status != StatusError {
				t.Fatalf("Expected error status, got %s", snap.Status)
			}
			if snap.Message != test.expected {
				t.Errorf("Expected message %q, got %q", test.expected, snap.Message)
			}
			if strings.Contains(snap.Message, "api.github.com") || strings.Contains(snap.Message, "503") {
				t.Errorf("Message leaks internal detail: %q", snap.Message)
			}
			if !errors.Is(p.Err(), test.err) {
				t.Errorf("Expected Err() to return the load error, got %v", p.Err())
			}
		})
	}
}

func TestPanel_TimeoutNeverHangsInLoading(t *testing.T) {
	p := New("stats", func(ctx context.Context) (int, error) {
		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	}, Options[int]{})
	defer p.Close()

	snap := waitFor(t, p, p.Refresh())

	if snap.Status != StatusError {
		t.Fatalf("Expected error status, got %s", snap.Status)
	}
	if snap.Message != TimeoutMessage {
		t.Errorf("Expected %q, got %q", TimeoutMessage, snap.Message)
	}
}

func TestPanel_RefreshPassesThroughLoading(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32

	p := New("repos", func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 2 {
			<-release
		}
		return int(n), nil
	}, Options[int]{})
	defer p.Close()

	first := waitFor(t, p, p.Refresh())
	if first.Status != StatusReady || first.Data != 1 {
		t.Fatalf("Expected ready with 1, got %+v", first)
	}

	gen := p.Refresh()
	during := p.Snapshot()
	if during.Status != StatusLoading {
		t.Errorf("Expected loading during refetch, got %s", during.Status)
	}
	if during.Data != 0 {
		t.Errorf("Expected stale data to be cleared during refetch, got %d", during.Data)
	}

	close(release)
	second := waitFor(t, p, gen)
	if second.Data != 2 {
		t.Errorf("Expected data 2 after refetch, got %d", second.Data)
	}
}

// blockFirstCycle returns a loader whose first call signals started and then blocks
// until release, ignoring cancellation, before returning first. Later calls return next.
func blockFirstCycle[T any](first, next T, firstErr error) (load LoadFunc[T], started <-chan struct{}, release func(), done <-chan struct{}) {
	startedCh := make(chan struct{})
	releaseCh := make(chan struct{})
	doneCh := make(chan struct{})
	var calls atomic.Int32

	load = func(ctx context.Context) (T, error) {
		if calls.Add(1) == 1 {
			defer close(doneCh)
			close(startedCh)
			<-releaseCh
			return first, firstErr
		}
		return next, nil
	}
	return load, startedCh, sync.OnceFunc(func() { close(releaseCh) }), doneCh
}

func TestPanel_LastRequestWins(t *testing.T) {
	load, started, release, firstDone := blockFirstCycle("stale", "fresh", nil)

	p := New("repos", load, Options[string]{})
	t.Cleanup(p.Close)
	t.Cleanup(release)

	p.Refresh()
	<-started
	second := p.Refresh()

	snap := waitFor(t, p, second)
	if snap.Data != "fresh" {
		t.Fatalf("Expected fresh result, got %q", snap.Data)
	}

	release()
	<-firstDone

	// The stale cycle takes the lock after returning; a later Snapshot must still hold
	// the second cycle's outcome.
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if got := p.Snapshot(); got.Data != "fresh" || got.Generation != second {
			t.Fatalf("Stale result overwrote newer state: %+v", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPanel_StaleErrorDoesNotOverrideReady(t *testing.T) {
	load, started, release, firstDone := blockFirstCycle(0, 7, errors.New("late failure"))

	p := New("stats", load, Options[int]{})
	t.Cleanup(p.Close)
	t.Cleanup(release)

	p.Refresh()
	<-started
	second := p.Refresh()
	waitFor(t, p, second)

	release()
	<-firstDone
	time.Sleep(10 * time.Millisecond)

	snap := p.Snapshot()
	if snap.Status != StatusReady || snap.Data != 7 {
		t.Errorf("Expected ready with 7, got %+v", snap)
	}
	if p.Err() != nil {
		t.Errorf("Expected no error from stale cycle, got %v", p.Err())
	}
}

func TestPanel_RefreshCancelsSupersededCycle(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	var calls atomic.Int32

	p := New("repos", func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		}
		return 2, nil
	}, Options[int]{})
	defer p.Close()

	p.Refresh()
	<-started
	second := p.Refresh()

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected superseded cycle to be cancelled")
	}

	snap := waitFor(t, p, second)
	if snap.Status != StatusReady || snap.Data != 2 {
		t.Errorf("Expected ready with 2, got %+v", snap)
	}
}

func TestPanel_RetryOnlyFromError(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	fail.Store(true)

	p := New("repos", func(ctx context.Context) (int, error) {
		calls.Add(1)
		if fail.Load() {
			return 0, errors.New("boom")
		}
		return 1, nil
	}, Options[int]{})
	defer p.Close()

	if gen, ok := p.Retry(); ok || gen != 0 {
		t.Errorf("Expected retry from initial loading to be ignored, got %d, %v", gen, ok)
	}

	errored := waitFor(t, p, p.Refresh())
	if errored.Status != StatusError {
		t.Fatalf("Expected error, got %s", errored.Status)
	}

	fail.Store(false)
	gen, ok := p.Retry()
	if !ok || gen != 2 {
		t.Fatalf("Expected retry from error to start generation 2, got %d, %v", gen, ok)
	}
	if ready := waitFor(t, p, gen); ready.Status != StatusReady {
		t.Fatalf("Expected ready after retry, got %s", ready.Status)
	}

	for i := 0; i < 50; i++ {
		if again, ok := p.Retry(); ok || again != gen {
			t.Fatalf("Expected retry from ready to be ignored, got %d, %v", again, ok)
		}
	}
	if p.Snapshot().Status != StatusReady {
		t.Errorf("Expected ready panel to stay ready, got %s", p.Snapshot().Status)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 fetches, got %d", calls.Load())
	}
}

func TestPanel_ConcurrentRetryStartsOneCycle(t *testing.T) {
	var calls atomic.Int32
	p := New("repos", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("boom")
	}, Options[int]{})
	defer p.Close()

	waitFor(t, p, p.Refresh())

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := p.Retry(); ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted retry, got %d", accepted.Load())
	}
	if snap := waitFor(t, p, 2); snap.Generation != 2 {
		t.Errorf("Expected generation 2, got %d", snap.Generation)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 fetches, got %d", calls.Load())
	}
}

func TestPanel_CloseDiscardsInFlight(t *testing.T) {
	started := make(chan struct{})

	p := New("repos", func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 42, nil
	}, Options[int]{})

	gen := p.Refresh()
	<-started
	p.Close()

	snap := p.Snapshot()
	if snap.Status != StatusLoading {
		t.Errorf("Expected result to be discarded after close, got %+v", snap)
	}

	if again := p.Refresh(); again != gen {
		t.Errorf("Expected Refresh after Close to be a no-op, got generation %d", again)
	}

	if _, err := p.Wait(context.Background(), gen); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	p.Close()
}

func TestPanel_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	p := New("repos", func(ctx context.Context) (int, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return 0, nil
	}, Options[int]{})
	defer p.Close()
	defer close(block)

	gen := p.Refresh()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snap, err := p.Wait(ctx, gen)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if snap.Status != StatusLoading {
		t.Errorf("Expected loading snapshot, got %s", snap.Status)
	}
}

func TestPanel_UpdatedAtUsesClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	p := New("repos", func(ctx context.Context) (int, error) { return 1, nil },
		Options[int]{Now: func() time.Time { return fixed }})
	defer p.Close()

	snap := waitFor(t, p, p.Refresh())
	if !snap.UpdatedAt.Equal(fixed) {
		t.Errorf("Expected UpdatedAt %v, got %v", fixed, snap.UpdatedAt)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status  Status
		settled bool
	}{
		{StatusLoading, false},
		{StatusError, true},
		{StatusReady, true},
	}

	for _, test := range tests {
		if got := test.status.IsSettled(); got != test.settled {
			t.Errorf("Status(%s).IsSettled() = %v, expected %v", test.status, got, test.settled)
		}
	}

	if StatusReady.String() != "ready" {
		t.Errorf("Expected 'ready', got %s", StatusReady.String())
	}
}
