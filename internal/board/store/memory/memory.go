// Package memory provides the fixture-backed in-memory data source.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

// Repository keeps every collection in memory behind one RWMutex.
type Repository struct {
	mu      sync.RWMutex
	boards  *collection[models.Board]
	columns *collection[models.Column]
	labels  *collection[models.Label]
	tasks   *collection[models.Task]
	latency time.Duration
	now     func() time.Time
}

var (
	_ store.Repository = (*Repository)(nil)
	_ store.Seeder     = (*Repository)(nil)
)

// Option configures a Repository.
type Option func(*Repository)

// WithLatency delays every call by d, imitating a remote data source.
func WithLatency(d time.Duration) Option {
	return func(r *Repository) { r.latency = d }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates an empty in-memory repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		boards:  newCollection("board", (*models.Board).Clone),
		columns: newCollection("column", (*models.Column).Clone),
		labels:  newCollection("label", (*models.Label).Clone),
		tasks:   newCollection("task", (*models.Task).Clone),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close is a no-op for the in-memory repository.
func (r *Repository) Close() error {
	return nil
}

// wait simulates latency and honours cancellation.
func (r *Repository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsEmpty reports whether no board has been stored yet.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards.items) == 0, nil
}

// Import loads seed records keeping their ids.
func (r *Repository) Import(ctx context.Context, seed *store.Seed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range seed.Boards {
		r.boards.put(b.ID, b)
	}
	for _, c := range seed.Columns {
		r.columns.put(c.ID, c)
	}
	for _, l := range seed.Labels {
		r.labels.put(l.ID, l)
	}
	for _, t := range seed.Tasks {
		r.tasks.put(t.ID, t)
	}
	return nil
}

// Board operations

func (r *Repository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.boards.list(nil), nil
}

func (r *Repository) GetBoard(ctx context.Context, id int64) (*models.Board, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.boards.get(id)
}

func (r *Repository) CreateBoard(ctx context.Context, board *models.Board) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	board.ID = r.boards.nextID()
	board.CreatedAt = r.now()
	board.UpdatedAt = board.CreatedAt
	r.boards.put(board.ID, board)
	return nil
}

func (r *Repository) UpdateBoard(ctx context.Context, board *models.Board) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	board.UpdatedAt = r.now()
	return r.boards.replace(board.ID, board)
}

func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boards.remove(id)
}

// Column operations

func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cols := r.columns.list(func(c *models.Column) bool {
		return boardID == 0 || c.BoardID == boardID
	})
	models.SortColumns(cols)
	return cols, nil
}

func (r *Repository) GetColumn(ctx context.Context, id int64) (*models.Column, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.columns.get(id)
}

func (r *Repository) CreateColumn(ctx context.Context, column *models.Column) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards.items[column.BoardID]; !ok {
		return apperrors.NotFound("board", column.BoardID)
	}
	column.ID = r.columns.nextID()
	column.CreatedAt = r.now()
	column.UpdatedAt = column.CreatedAt
	r.columns.put(column.ID, column)
	return nil
}

func (r *Repository) UpdateColumn(ctx context.Context, column *models.Column) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	column.UpdatedAt = r.now()
	return r.columns.replace(column.ID, column)
}

func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.columns.remove(id)
}

// Label operations

func (r *Repository) ListLabels(ctx context.Context) ([]*models.Label, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.labels.list(nil), nil
}

func (r *Repository) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.labels.get(id)
}

func (r *Repository) CreateLabel(ctx context.Context, label *models.Label) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	label.ID = r.labels.nextID()
	label.CreatedAt = r.now()
	label.UpdatedAt = label.CreatedAt
	r.labels.put(label.ID, label)
	return nil
}

func (r *Repository) UpdateLabel(ctx context.Context, label *models.Label) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	label.UpdatedAt = r.now()
	return r.labels.replace(label.ID, label)
}

func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.labels.remove(id)
}

// Task operations

func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks.list(func(t *models.Task) bool {
		return boardID == 0 || t.BoardID == boardID
	}), nil
}

func (r *Repository) ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks.list(func(t *models.Task) bool {
		return t.ColumnID == columnID
	}), nil
}

func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks.get(id)
}

func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.columns.items[task.ColumnID]; !ok {
		return apperrors.NotFound("column", task.ColumnID)
	}
	task.ID = r.tasks.nextID()
	task.CreatedAt = r.now()
	task.UpdatedAt = task.CreatedAt
	r.tasks.put(task.ID, task)
	return nil
}

func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task.UpdatedAt = r.now()
	return r.tasks.replace(task.ID, task)
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.remove(id)
}

// collection is one id-keyed table. Callers hold the repository lock.
type collection[T any] struct {
	resource  string
	items     map[int64]*T
	highWater int64
	clone     func(*T) *T
}

func newCollection[T any](resource string, clone func(*T) *T) *collection[T] {
	return &collection[T]{resource: resource, items: make(map[int64]*T), clone: clone}
}

// nextID is one past both the largest live id and the largest id ever issued.
func (c *collection[T]) nextID() int64 {
	maxID := c.highWater
	for id := range c.items {
		maxID = max(maxID, id)
	}
	c.highWater = maxID + 1
	return c.highWater
}

func (c *collection[T]) put(id int64, item *T) {
	c.items[id] = c.clone(item)
	c.highWater = max(c.highWater, id)
}

func (c *collection[T]) get(id int64) (*T, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, apperrors.NotFound(c.resource, id)
	}
	return c.clone(item), nil
}

func (c *collection[T]) replace(id int64, item *T) error {
	if _, ok := c.items[id]; !ok {
		return apperrors.NotFound(c.resource, id)
	}
	c.items[id] = c.clone(item)
	return nil
}

func (c *collection[T]) remove(id int64) error {
	if _, ok := c.items[id]; !ok {
		return apperrors.NotFound(c.resource, id)
	}
	delete(c.items, id)
	return nil
}

// list returns copies in id (insertion) order.
func (c *collection[T]) list(keep func(*T) bool) []*T {
	ids := make([]int64, 0, len(c.items))
	for id, item := range c.items {
		if keep == nil || keep(item) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.clone(c.items[id]))
	}
	return out
}
