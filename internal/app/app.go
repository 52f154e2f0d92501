package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renderdash/rdash/internal/config"
	"github.com/renderdash/rdash/internal/dashboard"
	"github.com/renderdash/rdash/internal/index"
	"github.com/renderdash/rdash/internal/logger"
	"github.com/renderdash/rdash/internal/render"
	"github.com/renderdash/rdash/internal/scheduler"
	"github.com/renderdash/rdash/internal/store/filecache"
	"github.com/renderdash/rdash/internal/version"
)

// Options configures a dashboard session.
type Options struct {
	ConfigPath string
	NoCache    bool
}

// Run wires config, API client, cache, refresher, and TUI together
// and blocks until the session ends. Config errors surface before any
// screen is drawn.
func Run(opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Stdout belongs to the TUI, so session logs go to a file.
	log := sessionLogger()
	defer func() { _ = log.Sync() }()
	log.Info("starting dashboard",
		logger.String("version", version.Version),
		logger.Int("services", len(cfg.Services)))

	var cache *filecache.Cache
	if !opts.NoCache {
		cache, err = filecache.New(filecache.DefaultDir(), filecache.DefaultTTL)
		if err != nil {
			log.Warn("cache unavailable, continuing without it", logger.Error(err))
			cache = nil
		}
	}

	clientOpts := []render.Option{render.WithLogger(log)}
	if cache != nil {
		clientOpts = append(clientOpts, render.WithCache(cache))
	}
	client := render.NewClient(cfg.Render.APIKey, clientOpts...)
	defer client.Close()

	display := index.NewDisplaySet()
	notify := make(chan struct{}, 1)
	refresher := scheduler.NewRefresher(
		client,
		cfg.Services,
		display,
		log,
		time.Duration(cfg.Render.RefreshInterval)*time.Second,
		notify,
	)

	model := dashboard.NewModel(display, refresher, client, log, notify)
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := refresher.Start(ctx); err != nil {
			program.Send(dashboard.StartupError(err))
		}
	}()
	defer refresher.Stop()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("dashboard session failed: %w", err)
	}
	if m, ok := final.(dashboard.Model); ok {
		if fatal := m.FatalErr(); fatal != nil {
			return fatal
		}
	}

	log.Info("dashboard stopped")
	return nil
}

func sessionLogger() logger.Logger {
	return logger.NewFile(
		os.Getenv("RDASH_LOG_LEVEL"),
		filepath.Join(filecache.DefaultDir(), "rdash.log"),
	)
}
