// Package main runs the terminal board client over the configured data
// source, in-process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	"github.com/apper-canvas/holodevboard/internal/board/store/provider"
	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	"github.com/apper-canvas/holodevboard/internal/notify"
	"github.com/apper-canvas/holodevboard/internal/tui"
)

// defaultLogFile receives the logs while the terminal is in use.
const defaultLogFile = "devboard-tui.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "devboard-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	output := cfg.Logging.OutputPath
	if output == "" || output == "stdout" || output == "stderr" {
		output = defaultLogFile
	}
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     "json",
		OutputPath: output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eventBus, err := bus.Provide(cfg.NATS, log)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer eventBus.Close()

	repo, closeRepo, err := provider.Provide(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}
	defer func() { err = multierr.Append(err, closeRepo()) }()

	recorder := notify.NewRecorder()
	notifier := notify.Multi{recorder, notify.NewLogNotifier(log), notify.NewBusNotifier(eventBus, log)}
	services := service.New(service.Deps{
		Repo:     repo,
		EventBus: eventBus,
		Notifier: notifier,
		Logger:   log,
	})

	sessions := session.NewManager(services, notifier, cfg.Drag.PersistTimeout, log)
	if err := sessions.Watch(eventBus); err != nil {
		return fmt.Errorf("failed to watch board events: %w", err)
	}
	defer sessions.Close()

	log.Info("Starting terminal client", zap.String("driver", cfg.Source.Driver))
	return tui.Run(ctx, tui.Deps{
		Services: services,
		Sessions: sessions,
		Recorder: recorder,
		Logger:   log,
	})
}
