package widget

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lysyi3m/folio/app/panel"
)

func TestRegistry(t *testing.T) {
	fetcher := &fakeFetcher{user: `{}`, repos: `[]`}
	configs := map[string]*Config{
		"featured": {Name: "featured", Kind: KindRepos, Username: "u"},
		"stats":    {Name: "stats", Kind: KindStats, Username: "u"},
	}

	registry, err := NewRegistry(fetcher, configs)
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	if diff := cmp.Diff([]string{"featured", "stats"}, registry.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	featured, ok := registry.Get("featured")
	if !ok {
		t.Fatal("Expected 'featured' panel")
	}
	if featured.Kind() != KindRepos || featured.Repos == nil || featured.Stats != nil {
		t.Errorf("Unexpected widget wiring: %+v", featured)
	}
	if featured.Status() != panel.StatusLoading {
		t.Errorf("Expected new panel to be loading, got %s", featured.Status())
	}

	stats, _ := registry.Get("stats")
	if stats.Kind() != KindStats || stats.Stats == nil {
		t.Errorf("Unexpected widget wiring: %+v", stats)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Expected missing panel lookup to fail")
	}
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	_, err := NewRegistry(&fakeFetcher{}, map[string]*Config{
		"odd": {Name: "odd", Kind: "gists"},
	})
	if err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestRegistryReplace(t *testing.T) {
	fetcher := &fakeFetcher{repos: `[]`}
	registry, err := NewRegistry(fetcher, map[string]*Config{
		"featured": {Name: "featured", Kind: KindRepos, Username: "u"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	old, _ := registry.Get("featured")

	replacement, err := registry.Replace(&Config{Name: "featured", Kind: KindStats, Username: "u"})
	if err != nil {
		t.Fatal(err)
	}

	current, _ := registry.Get("featured")
	if current != replacement || current.Kind() != KindStats {
		t.Error("Expected replacement to be registered")
	}

	if gen := old.Refresh(); gen != 0 {
		t.Errorf("Expected replaced widget to be closed, Refresh returned %d", gen)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := current.Wait(ctx, current.Refresh()); err != nil {
		t.Errorf("Expected replacement to refresh, got %v", err)
	}
}

func TestRegistryRefreshAndRemove(t *testing.T) {
	registry, err := NewRegistry(&fakeFetcher{repos: `[]`}, map[string]*Config{
		"featured": {Name: "featured", Kind: KindRepos, Username: "u"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	if _, ok := registry.Refresh("missing"); ok {
		t.Error("Expected refresh of an unknown panel to fail")
	}

	gen, ok := registry.Refresh("featured")
	if !ok || gen != 1 {
		t.Fatalf("Expected generation 1, got %d, %v", gen, ok)
	}

	w, _ := registry.Get("featured")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := w.Wait(ctx, gen); err != nil {
		t.Fatal(err)
	}

	if !registry.Remove("featured") {
		t.Fatal("Expected Remove to report a registered panel")
	}
	if _, ok := registry.Get("featured"); ok {
		t.Error("Expected removed panel to be gone")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected 0 panels, got %d", registry.Count())
	}
	if again := w.Refresh(); again != gen {
		t.Errorf("Expected removed panel to be closed, Refresh returned %d", again)
	}
	if registry.Remove("featured") {
		t.Error("Expected second Remove to report false")
	}
}
