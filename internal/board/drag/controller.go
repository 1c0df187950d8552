// Package drag turns grab/drop gestures into board mutations. A task drop
// is applied locally and undone when persisting fails; a column drop is
// applied locally and reconciled with the data source when it fails.
package drag

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/optimistic"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/state"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

// TaskUpdater persists task changes.
type TaskUpdater interface {
	Update(ctx context.Context, id int64, req *service.UpdateTaskRequest) (*models.Task, error)
}

// PositionUpdater persists column positions.
type PositionUpdater interface {
	UpdatePositions(ctx context.Context, updates []models.PositionUpdate) ([]*models.Column, error)
}

// Kind of the grabbed item.
type Kind int

const (
	KindNone Kind = iota
	KindTask
	KindColumn
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindColumn:
		return "column"
	default:
		return "none"
	}
}

// Grab is the item currently being dragged.
type Grab struct {
	Kind Kind
	ID   int64
}

// Controller drives drags over one board state store. It is safe for
// concurrent use; the grab itself is per controller.
type Controller struct {
	board    *state.Store
	runner   *optimistic.Runner
	tasks    TaskUpdater
	columns  PositionUpdater
	notifier notify.Notifier
	logger   *logger.Logger

	mu      sync.Mutex
	grabbed Grab
}

// Config wires a Controller.
type Config struct {
	Board    *state.Store
	Runner   *optimistic.Runner
	Tasks    TaskUpdater
	Columns  PositionUpdater
	Notifier notify.Notifier
	Logger   *logger.Logger
}

// NewController creates an idle controller.
func NewController(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = optimistic.NewRunner(0, log)
	}
	return &Controller{
		board:    cfg.Board,
		runner:   runner,
		tasks:    cfg.Tasks,
		columns:  cfg.Columns,
		notifier: cfg.Notifier,
		logger:   log.WithFields(zap.String("component", "drag-controller")),
	}
}

// Grabbed returns the current grab.
func (c *Controller) Grabbed() Grab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grabbed
}

// GrabTask starts dragging a task of the board.
func (c *Controller) GrabTask(taskID int64) error {
	if _, ok := c.board.Task(taskID); !ok {
		return apperrors.NotFound("task", taskID)
	}
	c.set(Grab{Kind: KindTask, ID: taskID})
	return nil
}

// GrabColumn starts dragging a column of the board.
func (c *Controller) GrabColumn(columnID int64) error {
	if _, ok := c.board.Column(columnID); !ok {
		return apperrors.NotFound("column", columnID)
	}
	c.set(Grab{Kind: KindColumn, ID: columnID})
	return nil
}

// Cancel drops the grab without changing anything.
func (c *Controller) Cancel() {
	c.set(Grab{})
}

func (c *Controller) set(g Grab) {
	c.mu.Lock()
	c.grabbed = g
	c.mu.Unlock()
}

// take returns the grab if it is of kind k and clears it either way.
func (c *Controller) take(k Kind) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.grabbed
	c.grabbed = Grab{}
	return g.ID, g.Kind == k
}

// DropTask moves the grabbed task into targetColumnID. Dropping onto the
// task's own column does nothing. On failure the task stays in its original
// column and the error is returned.
func (c *Controller) DropTask(ctx context.Context, targetColumnID int64) (*models.Task, error) {
	taskID, ok := c.take(KindTask)
	if !ok {
		return nil, nil
	}
	task, ok := c.board.Task(taskID)
	if !ok {
		return nil, apperrors.NotFound("task", taskID)
	}
	if task.ColumnID == targetColumnID {
		return task, nil
	}
	if _, ok := c.board.Column(targetColumnID); !ok {
		return nil, apperrors.NotFound("column", targetColumnID)
	}

	ctx = notify.WithBoard(ctx, c.board.BoardID())
	from := task.ColumnID
	var persisted *models.Task

	err := c.runner.Run(notify.Quiet(ctx), optimistic.Change{
		Entity:   "task",
		Key:      taskID,
		Strategy: optimistic.Revert,
		Apply:    func() { c.board.ApplyTaskMove(taskID, targetColumnID) },
		Revert:   func() { c.board.ApplyTaskMove(taskID, from) },
		Persist: func(ctx context.Context) error {
			var err error
			persisted, err = c.tasks.Update(ctx, taskID, &service.UpdateTaskRequest{ColumnID: &targetColumnID})
			return err
		},
	})
	if err != nil {
		c.logger.WithContext(ctx).Error("failed to move task",
			zap.Int64("task_id", taskID),
			zap.Int64("from_column_id", from),
			zap.Int64("to_column_id", targetColumnID),
			zap.Error(err))
		notify.Error(ctx, c.notifier, "Failed to move task")
		return nil, err
	}

	c.board.PutTask(persisted)
	title := "column"
	if col, ok := c.board.Column(targetColumnID); ok && col.Title != "" {
		title = col.Title
	}
	c.logger.Info("task moved",
		zap.Int64("task_id", taskID),
		zap.Int64("to_column_id", targetColumnID))
	notify.Success(ctx, c.notifier, "Task moved to "+title)
	return persisted, nil
}

// DropColumn moves the grabbed column to the index of targetColumnID and
// persists the new positions. On failure the board is reloaded from the
// data source and renumbered; if that fails too the previous order is
// restored. The resulting columns are returned in both cases.
func (c *Controller) DropColumn(ctx context.Context, targetColumnID int64) ([]*models.Column, error) {
	sourceID, ok := c.take(KindColumn)
	if !ok {
		return c.board.Columns(), nil
	}
	if _, moved := state.MoveColumn(c.board.Columns(), sourceID, targetColumnID); !moved {
		return c.board.Columns(), nil
	}

	boardID := c.board.BoardID()
	ctx = notify.WithBoard(ctx, boardID)
	var (
		previous []*models.Column
		updates  []models.PositionUpdate
	)

	err := c.runner.Run(notify.Quiet(ctx), optimistic.Change{
		Entity:   "columns",
		Key:      boardID,
		Strategy: optimistic.Reconcile,
		Apply: func() {
			previous, _ = c.board.ApplyColumnReorder(sourceID, targetColumnID)
			updates = positions(c.board.Columns())
		},
		Revert: func() {
			if previous != nil {
				c.board.SetColumns(previous)
			}
		},
		Persist: func(ctx context.Context) error {
			_, err := c.columns.UpdatePositions(ctx, updates)
			return err
		},
		Reconcile: c.reconcileColumns,
	})
	if err != nil {
		c.logger.WithContext(ctx).Error("failed to reorder columns",
			zap.Int64("board_id", boardID),
			zap.Int64("column_id", sourceID),
			zap.Int64("target_column_id", targetColumnID),
			zap.Error(err))
		notify.Error(ctx, c.notifier, "Failed to reorder columns")
		return c.board.Columns(), err
	}

	c.logger.Info("columns reordered",
		zap.Int64("board_id", boardID),
		zap.String("order", fmt.Sprint(columnIDs(c.board.Columns()))))
	notify.Success(ctx, c.notifier, "Columns reordered")
	return c.board.Columns(), nil
}

// reconcileColumns reloads the board and renumbers its columns to 1..N in
// display order. A partially applied reorder can leave the data source with
// duplicate positions; only the columns whose position changed are written
// back. The local order stays renumbered even when that write fails.
func (c *Controller) reconcileColumns(ctx context.Context) error {
	if err := c.board.Reload(ctx); err != nil {
		return err
	}
	cols := c.board.Columns()
	var fixes []models.PositionUpdate
	for i, col := range cols {
		if col.Position != i+1 {
			col.Position = i + 1
			fixes = append(fixes, models.PositionUpdate{ID: col.ID, Position: col.Position})
		}
	}
	if len(fixes) == 0 {
		return nil
	}
	c.board.SetColumns(cols)
	if _, err := c.columns.UpdatePositions(ctx, fixes); err != nil {
		c.logger.WithContext(ctx).Warn("failed to renumber columns after reload",
			zap.Int64("board_id", c.board.BoardID()),
			zap.Int("columns", len(fixes)),
			zap.Error(err))
	}
	return nil
}

// MoveTask grabs and drops a task in one step.
func (c *Controller) MoveTask(ctx context.Context, taskID, targetColumnID int64) (*models.Task, error) {
	if err := c.GrabTask(taskID); err != nil {
		return nil, err
	}
	return c.DropTask(ctx, targetColumnID)
}

// ReorderColumns grabs and drops a column in one step. An unknown column
// leaves the board unchanged.
func (c *Controller) ReorderColumns(ctx context.Context, sourceID, targetID int64) ([]*models.Column, error) {
	if err := c.GrabColumn(sourceID); err != nil {
		return c.board.Columns(), nil
	}
	return c.DropColumn(ctx, targetID)
}

func positions(cols []*models.Column) []models.PositionUpdate {
	out := make([]models.PositionUpdate, 0, len(cols))
	for _, col := range cols {
		out = append(out, models.PositionUpdate{ID: col.ID, Position: col.Position})
	}
	return out
}

func columnIDs(cols []*models.Column) []int64 {
	out := make([]int64, 0, len(cols))
	for _, col := range cols {
		out = append(out, col.ID)
	}
	return out
}
