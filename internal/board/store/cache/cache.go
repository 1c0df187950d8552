// Package cache decorates a data source with a Redis read-through cache for
// list reads. Every write bumps a generation counter so stale lists are never
// served after a mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

const (
	keyPrefix     = "devboard:cache:"
	generationKey = keyPrefix + "gen"
)

// Repository wraps a store.Repository. Single-record reads and writes pass
// straight through.
type Repository struct {
	store.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// Open parses url and connects to Redis.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New wraps inner with a cache stored in rdb.
func New(inner store.Repository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Repository {
	return &Repository{
		Repository: inner,
		rdb:        rdb,
		ttl:        ttl,
		logger:     log.WithFields(zap.String("component", "store-cache")),
	}
}

// Close closes the Redis client and the wrapped repository.
func (r *Repository) Close() error {
	rErr := r.rdb.Close()
	if err := r.Repository.Close(); err != nil {
		return err
	}
	return rErr
}

func (r *Repository) key(ctx context.Context, name string) (string, bool) {
	gen, err := r.rdb.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Debug("cache generation unavailable", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, name), true
}

// cached returns the value under name, loading and storing it on a miss.
// Redis errors degrade to an uncached read.
func cached[T any](ctx context.Context, r *Repository, name string, load func() (T, error)) (T, error) {
	key, ok := r.key(ctx, name)
	if ok {
		data, err := r.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var out T
			if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
				return out, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			r.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := load()
	if err != nil || !ok {
		return value, err
	}
	if data, jsonErr := json.Marshal(value); jsonErr == nil {
		if setErr := r.rdb.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Debug("cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}
	return value, nil
}

// invalidate drops every cached list by moving to a new generation.
func (r *Repository) invalidate(ctx context.Context) {
	if err := r.rdb.Incr(context.WithoutCancel(ctx), generationKey).Err(); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

// write runs fn and invalidates the cache whatever the outcome.
func (r *Repository) write(ctx context.Context, fn func() error) error {
	defer r.invalidate(ctx)
	return fn()
}

func (r *Repository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return cached(ctx, r, "boards", func() ([]*models.Board, error) {
		return r.Repository.ListBoards(ctx)
	})
}

func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	return cached(ctx, r, fmt.Sprintf("columns:%d", boardID), func() ([]*models.Column, error) {
		return r.Repository.ListColumns(ctx, boardID)
	})
}

func (r *Repository) ListLabels(ctx context.Context) ([]*models.Label, error) {
	return cached(ctx, r, "labels", func() ([]*models.Label, error) {
		return r.Repository.ListLabels(ctx)
	})
}

func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	return cached(ctx, r, fmt.Sprintf("tasks:%d", boardID), func() ([]*models.Task, error) {
		return r.Repository.ListTasks(ctx, boardID)
	})
}

func (r *Repository) ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	return cached(ctx, r, fmt.Sprintf("tasks:column:%d", columnID), func() ([]*models.Task, error) {
		return r.Repository.ListTasksByColumn(ctx, columnID)
	})
}

func (r *Repository) CreateBoard(ctx context.Context, b *models.Board) error {
	return r.write(ctx, func() error { return r.Repository.CreateBoard(ctx, b) })
}

func (r *Repository) UpdateBoard(ctx context.Context, b *models.Board) error {
	return r.write(ctx, func() error { return r.Repository.UpdateBoard(ctx, b) })
}

func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	return r.write(ctx, func() error { return r.Repository.DeleteBoard(ctx, id) })
}

func (r *Repository) CreateColumn(ctx context.Context, c *models.Column) error {
	return r.write(ctx, func() error { return r.Repository.CreateColumn(ctx, c) })
}

func (r *Repository) UpdateColumn(ctx context.Context, c *models.Column) error {
	return r.write(ctx, func() error { return r.Repository.UpdateColumn(ctx, c) })
}

func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	return r.write(ctx, func() error { return r.Repository.DeleteColumn(ctx, id) })
}

func (r *Repository) CreateLabel(ctx context.Context, l *models.Label) error {
	return r.write(ctx, func() error { return r.Repository.CreateLabel(ctx, l) })
}

func (r *Repository) UpdateLabel(ctx context.Context, l *models.Label) error {
	return r.write(ctx, func() error { return r.Repository.UpdateLabel(ctx, l) })
}

func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	return r.write(ctx, func() error { return r.Repository.DeleteLabel(ctx, id) })
}

func (r *Repository) CreateTask(ctx context.Context, t *models.Task) error {
	return r.write(ctx, func() error { return r.Repository.CreateTask(ctx, t) })
}

func (r *Repository) UpdateTask(ctx context.Context, t *models.Task) error {
	return r.write(ctx, func() error { return r.Repository.UpdateTask(ctx, t) })
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return r.write(ctx, func() error { return r.Repository.DeleteTask(ctx, id) })
}

// IsEmpty delegates to the wrapped repository when it can seed.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	seeder, ok := r.Repository.(store.Seeder)
	if !ok {
		return false, nil
	}
	return seeder.IsEmpty(ctx)
}

// Import delegates to the wrapped repository and drops cached lists.
func (r *Repository) Import(ctx context.Context, seed *store.Seed) error {
	seeder, ok := r.Repository.(store.Seeder)
	if !ok {
		return errors.New("wrapped data source does not support seeding")
	}
	return r.write(ctx, func() error { return seeder.Import(ctx, seed) })
}

var (
	_ store.Repository = (*Repository)(nil)
	_ store.Seeder     = (*Repository)(nil)
)
