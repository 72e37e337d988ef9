package api

import (
	"github.com/lysyi3m/folio/app/content"
	"github.com/lysyi3m/folio/app/tasks"
	"github.com/lysyi3m/folio/app/widget"
)

type GeneratorInterface interface {
	Run(store *content.Store, baseURL string) (string, error)
}

var _ GeneratorInterface = (*content.Generator)(nil)

type Handler struct {
	registry    *widget.Registry
	configCache tasks.ConfigSource
	store       *content.Store
	generator   GeneratorInterface
	scheduler   tasks.TaskSchedulerInterface
}

type PanelInfo struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Username        string `json:"username"`
	Enabled         bool   `json:"enabled"`
	RefreshInterval string `json:"refresh_interval"`
	Status          string `json:"status"`
}
