package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/folio/app/panel"
)

type RefreshPanelTask struct {
	Task
	registry PanelRegistry
}

func NewRefreshPanelTask(panelName string, registry PanelRegistry) *RefreshPanelTask {
	return &RefreshPanelTask{
		Task:     NewTask(TaskTypeRefreshPanel, panelName),
		registry: registry,
	}
}

// Execute starts a fetch cycle and waits for it to settle. A cycle that settles in the
// error state is returned as an error wrapping the fetch failure; ShouldRetry decides
// whether it is attempted again.
func (t *RefreshPanelTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	w, ok := t.registry.Get(t.PanelName)
	if !ok {
		slog.Warn("Panel not registered, skipping refresh", "panel", t.PanelName)
		return nil
	}

	status, err := w.Wait(ctx, w.Refresh())
	if err != nil {
		if errors.Is(err, panel.ErrClosed) {
			slog.Debug("Panel closed during refresh", "panel", t.PanelName)
			return nil
		}
		return fmt.Errorf("failed to wait for panel: %w", err)
	}

	if status == panel.StatusError {
		return fmt.Errorf("panel refresh failed: %w", w.Err())
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"panel", t.PanelName,
		"status", status.String(),
		"duration", t.Duration())

	return nil
}
