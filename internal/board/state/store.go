// Package state holds the in-memory view of one open board: its columns in
// position order and its tasks. Reads return copies; Load replaces the whole
// view at once or not at all.
package state

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// Status of a board load.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// ColumnSource lists the columns of a board.
type ColumnSource interface {
	GetAll(ctx context.Context, boardID int64) ([]*models.Column, error)
}

// TaskSource lists the tasks of a board.
type TaskSource interface {
	GetAll(ctx context.Context, boardID int64) ([]*models.Task, error)
}

// Snapshot is a copy of the store contents.
type Snapshot struct {
	BoardID int64
	Status  Status
	Err     error
	Columns []*models.Column
	Tasks   []*models.Task
}

// Store is safe for concurrent use.
type Store struct {
	columnSource ColumnSource
	taskSource   TaskSource
	logger       *logger.Logger

	mu      sync.RWMutex
	boardID int64
	status  Status
	err     error
	columns []*models.Column
	tasks   []*models.Task
}

// New creates an idle store reading from the given services.
func New(columns ColumnSource, tasks TaskSource, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		columnSource: columns,
		taskSource:   tasks,
		logger:       log.WithFields(zap.String("component", "board-state")),
		status:       StatusIdle,
		columns:      []*models.Column{},
		tasks:        []*models.Task{},
	}
}

// Load fetches the tasks and columns of boardID concurrently. The current
// state is replaced only when both reads succeed; otherwise it is kept and
// the status becomes StatusError.
func (s *Store) Load(ctx context.Context, boardID int64) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.err = nil
	s.mu.Unlock()

	var (
		columns []*models.Column
		tasks   []*models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columns, err = s.columnSource.GetAll(gctx, boardID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.taskSource.GetAll(gctx, boardID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		s.logger.WithContext(ctx).Error("failed to load board data",
			zap.Int64("board_id", boardID),
			zap.Error(err))
		return err
	}

	models.SortColumns(columns)
	s.mu.Lock()
	s.boardID = boardID
	s.columns = columns
	s.tasks = tasks
	s.status = StatusReady
	s.mu.Unlock()

	s.logger.Debug("board loaded",
		zap.Int64("board_id", boardID),
		zap.Int("columns", len(columns)),
		zap.Int("tasks", len(tasks)))
	return nil
}

// Reload loads the current board again.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx, s.BoardID())
}

// BoardID is the id of the last successfully loaded board.
func (s *Store) BoardID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boardID
}

// Status returns the load status and the error of the last failed load.
func (s *Store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Columns returns the columns in position order.
func (s *Store) Columns() []*models.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneColumns(s.columns)
}

// Tasks returns all tasks of the board.
func (s *Store) Tasks() []*models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Task returns the task with id, or false.
func (s *Store) Task(id int64) (*models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return nil, false
}

// Column returns the column with id, or false.
func (s *Store) Column(id int64) (*models.Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.columnIndex(id); i >= 0 {
		return s.columns[i].Clone(), true
	}
	return nil, false
}

// TasksInColumn returns the tasks whose column is columnID.
func (s *Store) TasksInColumn(columnID int64) []*models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// ApplyTaskMove points the task at targetColumnID and returns the column it
// was in. It reports false when the task is unknown.
func (s *Store) ApplyTaskMove(taskID, targetColumnID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(taskID)
	if i < 0 {
		return 0, false
	}
	from := s.tasks[i].ColumnID
	moved := s.tasks[i].Clone()
	moved.ColumnID = targetColumnID
	s.tasks[i] = moved
	return from, true
}

// ApplyColumnReorder moves sourceID to the index of targetID and renumbers.
// It returns the previous order and false when nothing changed.
func (s *Store) ApplyColumnReorder(sourceID, targetID int64) ([]*models.Column, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := MoveColumn(s.columns, sourceID, targetID)
	if !ok {
		return nil, false
	}
	prev := s.columns
	s.columns = next
	return cloneColumns(prev), true
}

// SetColumns replaces the columns.
func (s *Store) SetColumns(cols []*models.Column) {
	next := cloneColumns(cols)
	models.SortColumns(next)
	s.mu.Lock()
	s.columns = next
	s.mu.Unlock()
}

// PutTask inserts or replaces a task. Tasks of other boards are ignored.
func (s *Store) PutTask(t *models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardID != 0 && t.BoardID != 0 && t.BoardID != s.boardID {
		return
	}
	if i := s.taskIndex(t.ID); i >= 0 {
		s.tasks[i] = t.Clone()
		return
	}
	s.tasks = append(s.tasks, t.Clone())
}

// RemoveTask drops a task.
func (s *Store) RemoveTask(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = slices.DeleteFunc(s.tasks, func(t *models.Task) bool { return t.ID == id })
}

// PutColumn inserts or replaces a column and keeps position order.
func (s *Store) PutColumn(c *models.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardID != 0 && c.BoardID != s.boardID {
		return
	}
	if i := s.columnIndex(c.ID); i >= 0 {
		s.columns[i] = c.Clone()
	} else {
		s.columns = append(s.columns, c.Clone())
	}
	models.SortColumns(s.columns)
}

// RemoveColumn drops a column and its tasks.
func (s *Store) RemoveColumn(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = slices.DeleteFunc(s.columns, func(c *models.Column) bool { return c.ID == id })
	s.tasks = slices.DeleteFunc(s.tasks, func(t *models.Task) bool { return t.ColumnID == id })
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		BoardID: s.boardID,
		Status:  s.status,
		Err:     s.err,
		Columns: cloneColumns(s.columns),
		Tasks:   cloneTasks(s.tasks),
	}
}

func (s *Store) taskIndex(id int64) int {
	return slices.IndexFunc(s.tasks, func(t *models.Task) bool { return t.ID == id })
}

func (s *Store) columnIndex(id int64) int {
	return slices.IndexFunc(s.columns, func(c *models.Column) bool { return c.ID == id })
}

// MoveColumn removes sourceID from its index, inserts it at the index of
// targetID and renumbers positions 1..N. The input is not modified. It
// reports false when the ids are equal or either is missing.
func MoveColumn(cols []*models.Column, sourceID, targetID int64) ([]*models.Column, bool) {
	if sourceID == targetID {
		return nil, false
	}
	ordered := cloneColumns(cols)
	models.SortColumns(ordered)
	target := slices.IndexFunc(ordered, func(c *models.Column) bool { return c.ID == targetID })
	if target < 0 {
		return nil, false
	}
	return models.ReorderColumns(ordered, sourceID, target)
}

func cloneColumns(cols []*models.Column) []*models.Column {
	out := make([]*models.Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Clone())
	}
	return out
}

func cloneTasks(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
