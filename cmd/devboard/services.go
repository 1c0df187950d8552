package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/session"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	"github.com/apper-canvas/holodevboard/internal/board/store/provider"
	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// app holds the long-lived collaborators built from configuration.
type app struct {
	bus      bus.EventBus
	repo     store.Repository
	services *service.Services
	sessions *session.Manager
	log      *logger.Logger
	cleanups []func() error
}

func provideApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{log: log}

	eventBus, err := bus.Provide(cfg.NATS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	a.bus = eventBus
	a.cleanups = append(a.cleanups, func() error {
		eventBus.Close()
		return nil
	})

	repo, cleanup, err := provider.Provide(ctx, cfg, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}
	a.repo = repo
	a.cleanups = append(a.cleanups, cleanup)

	notifier := notify.Multi{notify.NewLogNotifier(log), notify.NewBusNotifier(eventBus, log)}
	a.services = service.New(service.Deps{
		Repo:     repo,
		EventBus: eventBus,
		Notifier: notifier,
		Logger:   log,
	})

	a.sessions = session.NewManager(a.services, notifier, cfg.Drag.PersistTimeout, log)
	if err := a.sessions.Watch(eventBus); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to watch board events: %w", err)
	}
	a.cleanups = append(a.cleanups, func() error {
		a.sessions.Close()
		return nil
	})
	return a, nil
}

// close runs the cleanups in reverse order.
func (a *app) close() {
	var errs error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, a.cleanups[i]())
	}
	a.cleanups = nil
	if errs != nil {
		a.log.Warn("Cleanup failed", zap.Error(errs))
	}
}
