package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lysyi3m/folio/app/api"
	"github.com/lysyi3m/folio/app/cfg"
	"github.com/lysyi3m/folio/app/content"
	"github.com/lysyi3m/folio/app/github"
	"github.com/lysyi3m/folio/app/tasks"
	"github.com/lysyi3m/folio/app/widget"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appConfig.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Folio server", "version", appConfig.Version, "timezone", appConfig.Timezone)

	store, err := content.Load(appConfig.ContentFile)
	if err != nil {
		slog.Error("Failed to load content", "file", appConfig.ContentFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Content loaded", "file", appConfig.ContentFile, "posts", len(store.Posts(content.PostQuery{})), "projects", len(store.Projects()))

	configCache := widget.NewConfigCache(appConfig.PanelsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load panel configurations", "dir", appConfig.PanelsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Panel configurations loaded", "dir", appConfig.PanelsDir, "count", configCache.GetConfigCount())

	client := github.NewClient(appConfig.GitHubAPIURL, appConfig.UserAgent, nil)

	registry, err := widget.NewRegistry(client, configCache.GetEnabledConfigs())
	if err != nil {
		slog.Error("Failed to build panels", "error", err)
		os.Exit(1)
	}
	defer registry.Close()

	slog.Info("Starting background scheduler", "workers", appConfig.WorkerCount, "interval", appConfig.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, registry)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(registry, configCache, store, scheduler)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Deferred: scheduler stops first, then every panel is closed and in-flight
	// results are discarded.
	slog.Info("Folio server shutdown complete")
}
