package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/folio/app/widget"
)

// ReloadPanelTask re-reads a panel's YAML and swaps in a fresh panel that starts
// fetching at once. A panel whose config is now disabled is unregistered instead.
type ReloadPanelTask struct {
	Task
	configSource ConfigSource
	registry     PanelRegistry
	Config       *widget.Config
	Removed      bool
}

func NewReloadPanelTask(panelName string, configSource ConfigSource, registry PanelRegistry) *ReloadPanelTask {
	return &ReloadPanelTask{
		Task:         NewTask(TaskTypeReloadPanel, panelName),
		configSource: configSource,
		registry:     registry,
	}
}

func (t *ReloadPanelTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	config, err := t.configSource.LoadConfig(t.PanelName)
	if err != nil {
		slog.Error("Task failed", "type", string(t.Type), "panel", t.PanelName, "error", err)
		return fmt.Errorf("failed to load panel config: %w", err)
	}
	t.Config = config

	if !config.Settings.Enabled {
		t.Removed = t.registry.Remove(t.PanelName)
		slog.Info("Panel disabled, unregistered", "panel", t.PanelName, "was_registered", t.Removed)
		return nil
	}

	if _, err := t.registry.Replace(config); err != nil {
		return fmt.Errorf("failed to rebuild panel: %w", err)
	}
	gen, _ := t.registry.Refresh(t.PanelName)

	slog.Info("Task completed",
		"type", string(t.Type),
		"panel", t.PanelName,
		"kind", string(config.Kind),
		"generation", gen,
		"duration", t.Duration())

	return nil
}
