package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/events"
)

func TestBoardCreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	board, err := f.svc.Boards.Create(ctx, &CreateBoardRequest{Name: "  Roadmap  "})
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", board.Name)
	assert.Equal(t, models.DefaultBoardColor, board.Color)
	assert.Equal(t, []string{"Board created successfully"}, f.notes.Messages())
	assert.Contains(t, f.bus.published(), events.BoardCreated)
}

func TestBoardCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.repo.callCount()

	_, err := f.svc.Boards.Create(ctx, &CreateBoardRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Boards.Create(ctx, &CreateBoardRequest{Name: "x", Color: "blue"})
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, before, f.repo.callCount(), "validation must happen before any data source call")
	last, ok := f.notes.Last()
	require.True(t, ok)
	assert.Equal(t, "error", string(last.Severity))
}

func TestBoardCreatePersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failOn("CreateBoard")

	board, err := f.svc.Boards.Create(context.Background(), &CreateBoardRequest{Name: "Lost"})
	assert.Nil(t, board)
	assert.True(t, apperrors.IsPersistenceFailure(err))
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, []string{"Failed to create board"}, f.notes.Messages())
}

func TestBoardUpdateKeepsID(t *testing.T) {
	f := newFixture(t)
	name := "Renamed"
	board, err := f.svc.Boards.Update(context.Background(), f.board.ID, &UpdateBoardRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, f.board.ID, board.ID)
	assert.Equal(t, "Renamed", board.Name)
	assert.Equal(t, f.board.Color, board.Color)

	_, err = f.svc.Boards.Update(context.Background(), 999, &UpdateBoardRequest{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBoardDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, f.backlog, "one")
	f.task(t, f.done, "two")

	removed, err := f.svc.Boards.Delete(ctx, f.board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint", removed.Name)

	tasks, err := f.svc.Tasks.GetAll(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	cols, err := f.svc.Columns.GetAll(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, cols)

	_, err = f.svc.Boards.GetByID(ctx, f.board.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
