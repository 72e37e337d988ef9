package widget

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lysyi3m/folio/app/github"
	"github.com/lysyi3m/folio/app/panel"
)

// Widget is one configured panel. Exactly one of Repos and Stats is set, matching
// Config.Kind.
type Widget struct {
	Config *Config
	Repos  *panel.Panel[[]github.Repo]
	Stats  *panel.Panel[github.Stats]
}

func (w *Widget) Name() string {
	return w.Config.Name
}

func (w *Widget) Kind() Kind {
	return w.Config.Kind
}

func (w *Widget) Refresh() uint64 {
	if w.Repos != nil {
		return w.Repos.Refresh()
	}
	return w.Stats.Refresh()
}

// Retry restarts a panel that is in the error state. It reports false, leaving the panel
// alone, in any other state.
func (w *Widget) Retry() (uint64, bool) {
	if w.Repos != nil {
		return w.Repos.Retry()
	}
	return w.Stats.Retry()
}

// Wait blocks until generation gen (or a newer one) settles and returns its status.
func (w *Widget) Wait(ctx context.Context, gen uint64) (panel.Status, error) {
	if w.Repos != nil {
		snap, err := w.Repos.Wait(ctx, gen)
		return snap.Status, err
	}
	snap, err := w.Stats.Wait(ctx, gen)
	return snap.Status, err
}

func (w *Widget) Status() panel.Status {
	if w.Repos != nil {
		return w.Repos.Snapshot().Status
	}
	return w.Stats.Snapshot().Status
}

func (w *Widget) Err() error {
	if w.Repos != nil {
		return w.Repos.Err()
	}
	return w.Stats.Err()
}

// Snapshot returns the current state of whichever panel the widget wraps.
func (w *Widget) Snapshot() any {
	if w.Repos != nil {
		return w.Repos.Snapshot()
	}
	return w.Stats.Snapshot()
}

func (w *Widget) Close() {
	if w.Repos != nil {
		w.Repos.Close()
	}
	if w.Stats != nil {
		w.Stats.Close()
	}
}

type Registry struct {
	fetcher Fetcher
	mu      sync.RWMutex
	widgets map[string]*Widget
}

func NewRegistry(fetcher Fetcher, configs map[string]*Config) (*Registry, error) {
	r := &Registry{
		fetcher: fetcher,
		widgets: make(map[string]*Widget, len(configs)),
	}

	for name, config := range configs {
		w, err := newPanels(fetcher, config)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to build panel %s: %w", name, err)
		}
		r.widgets[name] = w
	}

	return r, nil
}

func (r *Registry) Get(name string) (*Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[name]
	return w, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// Refresh starts a fetch cycle on the named panel and returns its generation.
func (r *Registry) Refresh(name string) (uint64, bool) {
	w, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return w.Refresh(), true
}

// Remove unregisters and closes the named panel. It reports whether one was registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	w, ok := r.widgets[name]
	delete(r.widgets, name)
	r.mu.Unlock()

	if ok {
		w.Close()
		slog.Debug("Panel removed", "panel", name)
	}
	return ok
}

// Replace swaps in a widget built from config and closes the one it supersedes. The new
// widget starts in Loading; callers refresh it.
func (r *Registry) Replace(config *Config) (*Widget, error) {
	w, err := newPanels(r.fetcher, config)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	old := r.widgets[config.Name]
	r.widgets[config.Name] = w
	r.mu.Unlock()

	if old != nil {
		old.Close()
		slog.Debug("Panel replaced", "panel", config.Name)
	}

	return w, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	widgets := make([]*Widget, 0, len(r.widgets))
	for _, w := range r.widgets {
		widgets = append(widgets, w)
	}
	r.mu.Unlock()

	for _, w := range widgets {
		w.Close()
	}
}
