package drag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/optimistic"
	"github.com/apper-canvas/holodevboard/internal/board/service"
	"github.com/apper-canvas/holodevboard/internal/board/state"
	"github.com/apper-canvas/holodevboard/internal/board/store/memory"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

var errDown = errors.New("data source down")

type countingTasks struct {
	inner TaskUpdater
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingTasks) Update(ctx context.Context, id int64, req *service.UpdateTaskRequest) (*models.Task, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.inner.Update(ctx, id, req)
}

type countingColumns struct {
	inner PositionUpdater
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingColumns) UpdatePositions(ctx context.Context, updates []models.PositionUpdate) ([]*models.Column, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.inner.UpdatePositions(ctx, updates)
}

// flakyRepo rejects writes to one column.
type flakyRepo struct {
	*memory.Repository
	mu         sync.Mutex
	failColumn int64
}

func (r *flakyRepo) UpdateColumn(ctx context.Context, column *models.Column) error {
	r.mu.Lock()
	fail := column.ID == r.failColumn
	r.mu.Unlock()
	if fail {
		return errDown
	}
	return r.Repository.UpdateColumn(ctx, column)
}

func (r *flakyRepo) failWritesTo(id int64) {
	r.mu.Lock()
	r.failColumn = id
	r.mu.Unlock()
}

// switchableSource fails column listing on demand.
type switchableSource struct {
	inner state.ColumnSource
	fail  bool
}

func (s *switchableSource) GetAll(ctx context.Context, boardID int64) ([]*models.Column, error) {
	if s.fail {
		return []*models.Column{}, errDown
	}
	return s.inner.GetAll(ctx, boardID)
}

type harness struct {
	repo    *flakyRepo
	svc     *service.Services
	notes   *notify.Recorder
	board   *state.Store
	source  *switchableSource
	tasks   *countingTasks
	columns *countingColumns
	ctrl    *Controller

	boardID    int64
	c1, c2, c3 *models.Column
	x          *models.Task
}

// newHarness builds board B1 with columns Backlog, Doing, Done and task X
// in Backlog, loaded into a state store.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{notes: notify.NewRecorder(), repo: &flakyRepo{Repository: memory.New()}}
	h.svc = service.New(service.Deps{
		Repo:     h.repo,
		Notifier: h.notes,
		Logger:   logger.NewNop(),
	})

	b, err := h.svc.Boards.Create(ctx, &service.CreateBoardRequest{Name: "B1"})
	require.NoError(t, err)
	h.boardID = b.ID
	for i, title := range []string{"Backlog", "Doing", "Done"} {
		col, err := h.svc.Columns.Create(ctx, &service.CreateColumnRequest{BoardID: b.ID, Title: title})
		require.NoError(t, err)
		require.Equal(t, i+1, col.Position)
		switch i {
		case 0:
			h.c1 = col
		case 1:
			h.c2 = col
		default:
			h.c3 = col
		}
	}
	h.x, err = h.svc.Tasks.Create(ctx, &service.CreateTaskRequest{ColumnID: h.c1.ID, Title: "X"})
	require.NoError(t, err)

	h.source = &switchableSource{inner: h.svc.Columns}
	h.board = state.New(h.source, h.svc.Tasks, logger.NewNop())
	require.NoError(t, h.board.Load(ctx, b.ID))

	h.tasks = &countingTasks{inner: h.svc.Tasks}
	h.columns = &countingColumns{inner: h.svc.Columns}
	h.ctrl = NewController(Config{
		Board:    h.board,
		Runner:   optimistic.NewRunner(time.Second, logger.NewNop()),
		Tasks:    h.tasks,
		Columns:  h.columns,
		Notifier: h.notes,
		Logger:   logger.NewNop(),
	})
	h.notes.Reset()
	return h
}

func assertContiguous(t *testing.T, cols []*models.Column) {
	t.Helper()
	for i, c := range cols {
		assert.Equal(t, i+1, c.Position)
	}
}

func TestScenarioMoveTaskToDoing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	moved, err := h.ctrl.MoveTask(ctx, h.x.ID, h.c2.ID)
	require.NoError(t, err)
	assert.Equal(t, h.c2.ID, moved.ColumnID)

	local, ok := h.board.Task(h.x.ID)
	require.True(t, ok)
	assert.Equal(t, h.c2.ID, local.ColumnID)
	assert.Empty(t, h.board.TasksInColumn(h.c1.ID))

	stored, err := h.svc.Tasks.GetByID(ctx, h.x.ID)
	require.NoError(t, err)
	assert.Equal(t, h.c2.ID, stored.ColumnID)

	assert.Equal(t, []string{"Task moved to Doing"}, h.notes.Messages())
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)
}

func TestScenarioReorderLastColumnToFront(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cols, err := h.ctrl.ReorderColumns(ctx, h.c3.ID, h.c1.ID)
	require.NoError(t, err)
	want := []int64{h.c3.ID, h.c1.ID, h.c2.ID}
	assert.Equal(t, want, columnIDs(cols))
	assertContiguous(t, cols)

	stored, err := h.svc.Columns.GetAll(ctx, h.boardID)
	require.NoError(t, err)
	assert.Equal(t, want, columnIDs(stored))
	assertContiguous(t, stored)

	assert.Equal(t, []string{"Columns reordered"}, h.notes.Messages())
}

func TestDropTaskOnOwnColumnIsNoOp(t *testing.T) {
	h := newHarness(t)
	before := h.board.Snapshot()

	require.NoError(t, h.ctrl.GrabTask(h.x.ID))
	task, err := h.ctrl.DropTask(context.Background(), h.c1.ID)
	require.NoError(t, err)
	assert.Equal(t, h.c1.ID, task.ColumnID)

	assert.Zero(t, h.tasks.calls)
	assert.Equal(t, before, h.board.Snapshot())
	assert.Empty(t, h.notes.Messages())
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)
}

func TestDropColumnOnItselfIsNoOp(t *testing.T) {
	h := newHarness(t)
	before := h.board.Snapshot()

	require.NoError(t, h.ctrl.GrabColumn(h.c2.ID))
	cols, err := h.ctrl.DropColumn(context.Background(), h.c2.ID)
	require.NoError(t, err)
	assert.Equal(t, columnIDs(before.Columns), columnIDs(cols))

	_, err = h.ctrl.ReorderColumns(context.Background(), 404, h.c1.ID)
	require.NoError(t, err)

	assert.Zero(t, h.columns.calls)
	assert.Equal(t, before, h.board.Snapshot())
	assert.Empty(t, h.notes.Messages())
}

func TestFailedTaskMoveKeepsOriginalColumn(t *testing.T) {
	h := newHarness(t)
	h.tasks.err = errDown

	_, err := h.ctrl.MoveTask(context.Background(), h.x.ID, h.c3.ID)
	require.ErrorIs(t, err, errDown)

	local, ok := h.board.Task(h.x.ID)
	require.True(t, ok)
	assert.Equal(t, h.c1.ID, local.ColumnID)
	assert.Len(t, h.board.TasksInColumn(h.c1.ID), 1)
	assert.Equal(t, []string{"Failed to move task"}, h.notes.Messages())
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)
}

func TestFailedReorderReloadsFromDataSource(t *testing.T) {
	h := newHarness(t)
	h.columns.err = errDown

	cols, err := h.ctrl.ReorderColumns(context.Background(), h.c3.ID, h.c1.ID)
	require.ErrorIs(t, err, errDown)

	stored, serr := h.svc.Columns.GetAll(context.Background(), h.boardID)
	require.NoError(t, serr)
	assert.Equal(t, columnIDs(stored), columnIDs(cols))
	assertContiguous(t, cols)
	status, _ := h.board.Status()
	assert.Equal(t, state.StatusReady, status)
	assert.Equal(t, []string{"Failed to reorder columns"}, h.notes.Messages())
}

func TestFailedReorderRestoresOrderWhenReloadFails(t *testing.T) {
	h := newHarness(t)
	h.columns.err = errDown
	h.source.fail = true

	cols, err := h.ctrl.ReorderColumns(context.Background(), h.c3.ID, h.c1.ID)
	require.ErrorIs(t, err, errDown)
	assert.Equal(t, []int64{h.c1.ID, h.c2.ID, h.c3.ID}, columnIDs(cols))
	assertContiguous(t, cols)
	assert.Equal(t, []string{"Failed to reorder columns"}, h.notes.Messages())
}

func TestGrabAndCancel(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.ctrl.GrabTask(999))
	assert.Error(t, h.ctrl.GrabColumn(999))

	require.NoError(t, h.ctrl.GrabTask(h.x.ID))
	assert.Equal(t, Grab{Kind: KindTask, ID: h.x.ID}, h.ctrl.Grabbed())
	h.ctrl.Cancel()
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)

	task, err := h.ctrl.DropTask(context.Background(), h.c2.ID)
	assert.NoError(t, err)
	assert.Nil(t, task)
	assert.Zero(t, h.tasks.calls)

	// A column drop does not consume a grabbed task as a column.
	require.NoError(t, h.ctrl.GrabTask(h.x.ID))
	_, err = h.ctrl.DropColumn(context.Background(), h.c1.ID)
	assert.NoError(t, err)
	assert.Zero(t, h.columns.calls)
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)
}

func TestMoveTaskToUnknownColumn(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.MoveTask(context.Background(), h.x.ID, 999)
	assert.Error(t, err)
	assert.Zero(t, h.tasks.calls)
}

func TestPartiallyFailedReorderLeavesContiguousPositions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.repo.failWritesTo(h.c1.ID)

	// c3 and c1 both land on position 1 in the data source.
	cols, err := h.ctrl.ReorderColumns(ctx, h.c3.ID, h.c1.ID)
	require.Error(t, err)

	want := []int64{h.c1.ID, h.c3.ID, h.c2.ID}
	assert.Equal(t, want, columnIDs(cols))
	assertContiguous(t, cols)
	assertContiguous(t, h.board.Columns())

	stored, serr := h.svc.Columns.GetAll(ctx, h.boardID)
	require.NoError(t, serr)
	assert.Equal(t, want, columnIDs(stored))
	assertContiguous(t, stored)
	assert.Contains(t, h.notes.Messages(), "Failed to reorder columns")
}

func TestDropTaskDeletedAfterGrab(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.GrabTask(h.x.ID))
	_, err := h.svc.Tasks.Delete(ctx, h.x.ID)
	require.NoError(t, err)
	require.NoError(t, h.board.Reload(ctx))

	task, err := h.ctrl.DropTask(ctx, h.c2.ID)
	assert.Nil(t, task)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, h.tasks.calls)
	assert.Equal(t, KindNone, h.ctrl.Grabbed().Kind)
}
