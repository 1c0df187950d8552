package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := New()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		b := &models.Board{Name: "B"}
		require.NoError(t, repo.CreateBoard(ctx, b))
		assert.Equal(t, want, b.ID)
		assert.False(t, b.CreatedAt.IsZero())
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.CreateLabel(ctx, &models.Label{Name: "a"}))
	second := &models.Label{Name: "b"}
	require.NoError(t, repo.CreateLabel(ctx, second))
	require.NoError(t, repo.DeleteLabel(ctx, second.ID))

	third := &models.Label{Name: "c"}
	require.NoError(t, repo.CreateLabel(ctx, third))
	assert.Equal(t, int64(3), third.ID)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	repo := New()
	ctx := context.Background()
	board := &models.Board{Name: "Main"}
	require.NoError(t, repo.CreateBoard(ctx, board))
	col := &models.Column{BoardID: board.ID, Title: "Todo", Position: 1}
	require.NoError(t, repo.CreateColumn(ctx, col))
	task := &models.Task{BoardID: board.ID, ColumnID: col.ID, Title: "t", LabelIDs: []int64{1}}
	require.NoError(t, repo.CreateTask(ctx, task))

	// Mutating the caller's value after create does not leak into the store.
	task.Title = "changed"
	task.LabelIDs[0] = 42

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, []int64{1}, got.LabelIDs)

	got.Title = "also changed"
	again, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", again.Title)
}

func TestNotFound(t *testing.T) {
	repo := New()
	ctx := context.Background()

	_, err := repo.GetBoard(ctx, 9)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(repo.UpdateTask(ctx, &models.Task{ID: 9})))
	assert.True(t, apperrors.IsNotFound(repo.DeleteColumn(ctx, 9)))
	assert.True(t, apperrors.IsNotFound(repo.CreateColumn(ctx, &models.Column{BoardID: 9, Title: "x"})))
	assert.True(t, apperrors.IsNotFound(repo.CreateTask(ctx, &models.Task{ColumnID: 9, Title: "x"})))
}

func TestListScopingAndOrder(t *testing.T) {
	repo := New()
	ctx := context.Background()
	require.NoError(t, repo.Import(ctx, &store.Seed{
		Boards: []*models.Board{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Columns: []*models.Column{
			{ID: 1, BoardID: 1, Title: "Done", Position: 3},
			{ID: 2, BoardID: 1, Title: "Todo", Position: 1},
			{ID: 3, BoardID: 1, Title: "Doing", Position: 2},
			{ID: 4, BoardID: 2, Title: "Other", Position: 1},
		},
		Tasks: []*models.Task{
			{ID: 5, BoardID: 1, ColumnID: 2, Title: "first"},
			{ID: 7, BoardID: 2, ColumnID: 4, Title: "elsewhere"},
			{ID: 6, BoardID: 1, ColumnID: 3, Title: "second"},
		},
	}))

	cols, err := repo.ListColumns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"Todo", "Doing", "Done"}, []string{cols[0].Title, cols[1].Title, cols[2].Title})

	tasks, err := repo.ListTasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(5), tasks[0].ID)
	assert.Equal(t, int64(6), tasks[1].ID)

	all, err := repo.ListTasks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCol, err := repo.ListTasksByColumn(ctx, 3)
	require.NoError(t, err)
	require.Len(t, byCol, 1)
	assert.Equal(t, "second", byCol[0].Title)

	// Imported ids count towards the next id.
	next := &models.Task{BoardID: 1, ColumnID: 2, Title: "new"}
	require.NoError(t, repo.CreateTask(ctx, next))
	assert.Equal(t, int64(8), next.ID)

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestLatencyHonoursCancellation(t *testing.T) {
	repo := New(WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.ListBoards(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpdateRefreshesTimestamp(t *testing.T) {
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := New(WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
	ctx := context.Background()
	b := &models.Board{Name: "A"}
	require.NoError(t, repo.CreateBoard(ctx, b))
	created := b.UpdatedAt

	b.Name = "B"
	require.NoError(t, repo.UpdateBoard(ctx, b))
	got, err := repo.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.True(t, got.UpdatedAt.After(created))
	assert.Equal(t, created, got.CreatedAt)
}
