package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/folio/app/cfg"
	"github.com/lysyi3m/folio/app/content"
	"github.com/lysyi3m/folio/app/tasks"
	"github.com/lysyi3m/folio/app/view"
	"github.com/lysyi3m/folio/app/widget"
)

func NewHandler(registry *widget.Registry, configCache tasks.ConfigSource, store *content.Store,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		registry:    registry,
		configCache: configCache,
		store:       store,
		generator:   content.NewGenerator(),
		scheduler:   scheduler,
	}
}

// lookupPanel finds a registered panel whose cached config is enabled. Disabled panels
// are never fetched, so serving them would poll a skeleton forever.
func (h *Handler) lookupPanel(c *gin.Context) (*widget.Widget, bool) {
	name := c.Param("name")

	config, err := h.configCache.GetConfig(name)
	if err != nil || !config.Settings.Enabled {
		slog.Debug("Panel not found or disabled", "panel", name)
		return nil, false
	}

	w, ok := h.registry.Get(name)
	if !ok {
		slog.Debug("Panel not registered", "panel", name)
	}
	return w, ok
}

func (h *Handler) renderPanel(c *gin.Context, w *widget.Widget) {
	var buf bytes.Buffer
	if err := view.Widget(w, time.Now()).Render(c.Request.Context(), &buf); err != nil {
		slog.Error("Panel render error", "panel", w.Name(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Panel-Status", w.Status().String())
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GetPanel renders the panel's current state as an HTML fragment.
func (h *Handler) GetPanel(c *gin.Context) {
	w, ok := h.lookupPanel(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	h.renderPanel(c, w)
}

// RetryPanel restarts a panel in the error state and responds with the loading
// fragment. In any other state it only re-renders the current fragment.
func (h *Handler) RetryPanel(c *gin.Context) {
	w, ok := h.lookupPanel(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	if _, started := w.Retry(); !started {
		c.Header("X-Panel-Retry", "ignored")
	}
	h.renderPanel(c, w)
}

func (h *Handler) GetBlogFeed(c *gin.Context) {
	rss, err := h.generator.Run(h.store, h.baseURL())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}

func (h *Handler) baseURL() string {
	if cfg.Get().BaseUrl != "" {
		return strings.TrimRight(cfg.Get().BaseUrl, "/")
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"panels":    h.registry.Count(),
		"posts":     len(h.store.Posts(content.PostQuery{})),
	}

	statuses := make(map[string]string)
	for _, name := range h.registry.Names() {
		if w, ok := h.registry.Get(name); ok {
			statuses[name] = w.Status().String()
		}
	}
	health["panel_status"] = statuses

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListPanels(c *gin.Context) {
	panels := make([]PanelInfo, 0, h.registry.Count())

	for _, name := range h.registry.Names() {
		w, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		panels = append(panels, PanelInfo{
			Name:            name,
			Kind:            string(w.Kind()),
			Username:        w.Config.Username,
			Enabled:         w.Config.Settings.Enabled,
			RefreshInterval: w.Config.Settings.GetRefreshInterval().String(),
			Status:          w.Status().String(),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"panels": panels,
		"total":  len(panels),
	})
}

// APIGetPanel returns the panel snapshot. Raw error text is never included.
func (h *Handler) APIGetPanel(c *gin.Context) {
	w, ok := h.lookupPanel(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Panel not found"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"name":     w.Name(),
		"kind":     w.Kind(),
		"snapshot": w.Snapshot(),
	})
}

func (h *Handler) APIRefreshPanel(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.registry.Get(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Panel not found"})
		return
	}

	if err := h.scheduler.EnqueueTask(tasks.NewRefreshPanelTask(name, h.registry)); err != nil {
		slog.Error("Failed to enqueue refresh", "panel", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to schedule refresh"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "panel": name})
}

// APIReloadPanel re-reads the panel's YAML file and rebuilds the panel in place.
func (h *Handler) APIReloadPanel(c *gin.Context) {
	name := c.Param("name")

	task := tasks.NewReloadPanelTask(name, h.configCache, h.registry)
	task.Start()
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Panel reload failed", "panel", name, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to reload panel configuration"})
		return
	}

	if task.Removed || !task.Config.Settings.Enabled {
		c.JSON(http.StatusOK, gin.H{
			"status": "disabled",
			"panel":  name,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "reloaded",
		"panel":  name,
		"kind":   task.Config.Kind,
	})
}

func (h *Handler) APIListPosts(c *gin.Context) {
	posts := h.store.Posts(content.PostQuery{
		Search: c.Query("q"),
		Tag:    c.Query("tag"),
	})

	c.Header("X-Total-Posts", strconv.Itoa(len(posts)))
	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": posts,
		"tags":  append([]string{content.FilterAll}, h.store.Tags()...),
		"total": len(posts),
	})
}

// APIListProjects filters projects by category and status ("all" or empty matches any)
// and lists the available options for both filters.
func (h *Handler) APIListProjects(c *gin.Context) {
	var projects []content.Project
	if c.Query("featured") == "true" {
		projects = h.store.FeaturedProjects()
	} else {
		projects = h.store.FilterProjects(content.ProjectQuery{
			Category: c.Query("category"),
			Status:   c.Query("status"),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"projects":   projects,
		"categories": append([]string{content.FilterAll}, h.store.Categories()...),
		"statuses":   append([]string{content.FilterAll}, h.store.Statuses()...),
		"total":      len(projects),
	})
}
