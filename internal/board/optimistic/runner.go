// Package optimistic applies a local change before it is persisted and then
// either keeps it, reconciles it with the data source, or undoes it.
package optimistic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// Strategy selects what happens to the local change when persisting fails.
type Strategy int

const (
	// Revert undoes the local change.
	Revert Strategy = iota
	// Reconcile replaces local state with the data source's state. Revert
	// is still used when reconciling fails.
	Reconcile
)

func (s Strategy) String() string {
	if s == Reconcile {
		return "reconcile"
	}
	return "revert"
}

// Change is one optimistic mutation.
type Change struct {
	Entity   string // "task", "column", ...
	Key      int64
	Strategy Strategy

	Apply     func()
	Revert    func()
	Persist   func(ctx context.Context) error
	Reconcile func(ctx context.Context) error
}

// Runner serializes changes per entity key. Safe for concurrent use.
type Runner struct {
	timeout time.Duration
	logger  *logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewRunner creates a runner. A zero timeout leaves persistence unbounded.
func NewRunner(timeout time.Duration, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		timeout:  timeout,
		logger:   log.WithFields(zap.String("component", "optimistic")),
		inFlight: make(map[string]bool),
	}
}

// Run applies c, persists it and handles failure according to c.Strategy.
// It returns the persistence error, or a CONFLICT error without applying
// anything when another change for the same key is still running.
func (r *Runner) Run(ctx context.Context, c Change) error {
	key := fmt.Sprintf("%s:%d", c.Entity, c.Key)
	if !r.acquire(key) {
		return apperrors.Conflict(fmt.Sprintf("%s %d is already being changed", c.Entity, c.Key))
	}
	defer r.release(key)

	if c.Apply != nil {
		c.Apply()
	}

	persistCtx, cancel := r.persistContext(ctx)
	err := c.Persist(persistCtx)
	cancel()
	if err == nil {
		return nil
	}

	log := r.logger.WithContext(ctx).WithFields(
		zap.String("entity", c.Entity),
		zap.Int64("key", c.Key),
		zap.String("strategy", c.Strategy.String()))
	log.Warn("optimistic change failed", zap.Error(err))

	if c.Strategy == Reconcile && c.Reconcile != nil {
		rerr := c.Reconcile(context.WithoutCancel(ctx))
		if rerr == nil {
			return err
		}
		log.Error("reconcile failed, reverting", zap.Error(rerr))
	}
	if c.Revert != nil {
		c.Revert()
	}
	return err
}

// Busy reports whether a change for entity/key is in flight.
func (r *Runner) Busy(entity string, key int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[fmt.Sprintf("%s:%d", entity, key)]
}

func (r *Runner) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Runner) acquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[key] {
		return false
	}
	r.inFlight[key] = true
	return true
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
}
