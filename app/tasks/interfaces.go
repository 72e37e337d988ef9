package tasks

import "github.com/lysyi3m/folio/app/widget"

// TaskSchedulerInterface is what main and the API use to drive background work.
//
//	scheduler := NewScheduler(configCache, registry)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshPanelTask(name, registry))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// PanelRegistry is satisfied by *widget.Registry.
type PanelRegistry interface {
	Get(name string) (*widget.Widget, bool)
	Refresh(name string) (uint64, bool)
	Replace(config *widget.Config) (*widget.Widget, error)
	Remove(name string) bool
}

// ConfigSource is satisfied by *widget.ConfigCache.
type ConfigSource interface {
	GetConfig(panelName string) (*widget.Config, error)
	GetEnabledConfigs() map[string]*widget.Config
	LoadConfig(panelName string) (*widget.Config, error)
}

var (
	_ PanelRegistry = (*widget.Registry)(nil)
	_ ConfigSource  = (*widget.ConfigCache)(nil)
)
