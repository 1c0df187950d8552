// Package service implements the board entity services. Each service wraps a
// data source, validates requests, publishes domain events and reports every
// mutation outcome to the notification sink.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Repo     store.Repository
	EventBus bus.EventBus
	Notifier notify.Notifier
	Logger   *logger.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// Services bundles the four entity services.
type Services struct {
	Boards  *BoardService
	Columns *ColumnService
	Labels  *LabelService
	Tasks   *TaskService
}

// New builds all entity services over deps.
func New(deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Services{
		Boards:  &BoardService{base: newBase(deps, "Board", "board-service")},
		Columns: &ColumnService{base: newBase(deps, "Column", "column-service")},
		Labels:  &LabelService{base: newBase(deps, "Label", "label-service")},
		Tasks:   &TaskService{base: newBase(deps, "Task", "task-service")},
	}
}

// base carries the shared failure, notification and event plumbing.
type base struct {
	repo     store.Repository
	eventBus bus.EventBus
	notifier notify.Notifier
	logger   *logger.Logger
	now      func() time.Time
	entity   string
	source   string
}

func newBase(deps Deps, entity, source string) base {
	return base{
		repo:     deps.Repo,
		eventBus: deps.EventBus,
		notifier: deps.Notifier,
		logger:   deps.Logger.WithFields(zap.String("component", source)),
		now:      deps.Now,
		entity:   entity,
		source:   source,
	}
}

// classify keeps typed errors and turns anything else into a
// PersistenceFailure for op.
func classify(op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.PersistenceFailure(op, err)
}

// readFailed handles a failed read. NotFound goes back to the caller
// untouched; everything else is logged and notified.
func (b *base) readFailed(ctx context.Context, op string, err error) error {
	err = classify(op, err)
	if apperrors.IsNotFound(err) {
		return err
	}
	b.logger.WithContext(ctx).Error("failed to "+op, zap.Error(err))
	b.notifyError(ctx, "Failed to "+op)
	return err
}

// writeFailed handles a failed mutation: log, notify, return typed.
func (b *base) writeFailed(ctx context.Context, op string, err error) error {
	err = classify(op, err)
	log := b.logger.WithContext(ctx)
	if apperrors.IsNotFound(err) || apperrors.IsBadRequest(err) {
		log.Warn("failed to "+op, zap.Error(err))
		b.notifyError(ctx, apperrors.MessageOf(err))
		return err
	}
	log.Error("failed to "+op, zap.Error(err))
	b.notifyError(ctx, "Failed to "+op)
	return err
}

// invalid reports a validation failure before any data source call.
func (b *base) invalid(ctx context.Context, err *apperrors.AppError) error {
	b.logger.WithContext(ctx).Debug("validation failed", zap.String("reason", err.Message))
	b.notifyError(ctx, err.Message)
	return err
}

func (b *base) notifyError(ctx context.Context, message string) {
	if notify.IsQuiet(ctx) {
		return
	}
	notify.Error(ctx, b.notifier, message)
}

func (b *base) succeeded(ctx context.Context, verb string) {
	if notify.IsQuiet(ctx) {
		return
	}
	notify.Success(ctx, b.notifier, b.entity+" "+verb+" successfully")
}

// publish sends a domain event; failures are logged and never returned.
func (b *base) publish(ctx context.Context, subject string, data map[string]interface{}) {
	if b.eventBus == nil {
		return
	}
	event := bus.NewEvent(subject, b.source, data)
	if err := b.eventBus.Publish(context.WithoutCancel(ctx), subject, event); err != nil {
		b.logger.Error("failed to publish event",
			zap.String("event_type", subject),
			zap.Error(err))
	}
}
