package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

func intPtr(v int) *int { return &v }

func TestColumnCreateAppendsAndClamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, []string{"Backlog", "Doing", "Done"}, f.titles(t))

	col, err := f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: f.board.ID, Title: "Ideas", Position: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, col.Position)
	assert.Equal(t, []string{"Ideas", "Backlog", "Doing", "Done"}, f.titles(t))

	_, err = f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: f.board.ID, Title: "Archive", Position: intPtr(50)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ideas", "Backlog", "Doing", "Done", "Archive"}, f.titles(t))

	_, err = f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: 404, Title: "Nowhere"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestColumnUpdatePositionRenumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	col, err := f.svc.Columns.Update(ctx, f.done.ID, &UpdateColumnRequest{Position: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, col.Position)
	assert.Equal(t, []string{"Done", "Backlog", "Doing"}, f.titles(t))

	title := "Shipped"
	col, err = f.svc.Columns.Update(ctx, f.done.ID, &UpdateColumnRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Shipped", col.Title)
	assert.Equal(t, f.done.ID, col.ID)
}

func TestColumnDeleteCascadesAndRenumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, f.backlog, "stays")
	f.task(t, f.doing, "goes")

	removed, err := f.svc.Columns.Delete(ctx, f.doing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doing", removed.Title)
	assert.Equal(t, []string{"Backlog", "Done"}, f.titles(t))

	tasks, err := f.svc.Tasks.GetAll(ctx, f.board.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "stays", tasks[0].Title)
	assert.Contains(t, f.notes.Messages(), "Column deleted successfully")
}

func TestUpdatePositionsPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.failIDs[f.doing.ID] = true

	updated, err := f.svc.Columns.UpdatePositions(ctx, []models.PositionUpdate{
		{ID: f.backlog.ID, Position: 3},
		{ID: f.doing.ID, Position: 2},
		{ID: 999, Position: 1},
		{ID: f.done.ID, Position: 1},
	})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	require.Len(t, updated, 2)
	assert.Equal(t, f.backlog.ID, updated[0].ID)
	assert.Equal(t, f.done.ID, updated[1].ID)

	// Successes are kept.
	got, err := f.svc.Columns.GetByID(ctx, f.done.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Position)

	msgs := f.notes.Messages()
	assert.Contains(t, msgs, fmt.Sprintf("Failed to update position of column %d", f.doing.ID))
	assert.Contains(t, msgs, "Failed to update position of column 999")
}

func TestUpdatePositionsQuiet(t *testing.T) {
	f := newFixture(t)
	ctx := notify.Quiet(context.Background())

	_, err := f.svc.Columns.UpdatePositions(ctx, []models.PositionUpdate{
		{ID: f.backlog.ID, Position: 2},
		{ID: f.doing.ID, Position: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, f.notes.Messages())
}

func TestColumnGetAllFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failOn("ListColumns")

	cols, err := f.svc.Columns.GetAll(context.Background(), f.board.ID)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
	assert.True(t, apperrors.IsPersistenceFailure(err))
	assert.Equal(t, []string{"Failed to load columns"}, f.notes.Messages())
}
