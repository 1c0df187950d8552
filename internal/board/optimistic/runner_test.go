package optimistic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

var errPersist = errors.New("persist failed")

// trace records which hooks ran, in order.
type trace []string

func (tr *trace) change(strategy Strategy, persistErr, reconcileErr error) Change {
	return Change{
		Entity:   "task",
		Key:      1,
		Strategy: strategy,
		Apply:    func() { *tr = append(*tr, "apply") },
		Revert:   func() { *tr = append(*tr, "revert") },
		Persist: func(context.Context) error {
			*tr = append(*tr, "persist")
			return persistErr
		},
		Reconcile: func(context.Context) error {
			*tr = append(*tr, "reconcile")
			return reconcileErr
		},
	}
}

func TestRunOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		strategy     Strategy
		persistErr   error
		reconcileErr error
		want         []string
	}{
		{"success", Revert, nil, nil, []string{"apply", "persist"}},
		{"revert", Revert, errPersist, nil, []string{"apply", "persist", "revert"}},
		{"reconcile", Reconcile, errPersist, nil, []string{"apply", "persist", "reconcile"}},
		{"reconcile fails", Reconcile, errPersist, errors.New("reload failed"), []string{"apply", "persist", "reconcile", "revert"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr trace
			r := NewRunner(time.Second, logger.NewNop())
			err := r.Run(context.Background(), tr.change(tt.strategy, tt.persistErr, tt.reconcileErr))
			if tt.persistErr != nil {
				assert.ErrorIs(t, err, tt.persistErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, []string(tr))
			assert.False(t, r.Busy("task", 1))
		})
	}
}

func TestRunRejectsConcurrentChangeForSameKey(t *testing.T) {
	r := NewRunner(0, logger.NewNop())
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- r.Run(context.Background(), Change{
			Entity: "task",
			Key:    7,
			Persist: func(context.Context) error {
				close(entered)
				<-release
				return nil
			},
		})
	}()
	<-entered
	assert.True(t, r.Busy("task", 7))

	applied := false
	err := r.Run(context.Background(), Change{
		Entity:  "task",
		Key:     7,
		Apply:   func() { applied = true },
		Persist: func(context.Context) error { return nil },
	})
	assert.True(t, apperrors.IsConflict(err))
	assert.False(t, applied)

	// Other keys are independent.
	require.NoError(t, r.Run(context.Background(), Change{
		Entity:  "task",
		Key:     8,
		Persist: func(context.Context) error { return nil },
	}))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, r.Busy("task", 7))
}

func TestRunBoundsPersistence(t *testing.T) {
	r := NewRunner(20*time.Millisecond, logger.NewNop())
	reverted := false
	err := r.Run(context.Background(), Change{
		Entity: "column",
		Key:    1,
		Persist: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		Revert: func() { reverted = true },
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, reverted)
}
