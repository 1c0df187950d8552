package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	uri := os.Getenv("DEVBOARD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DEVBOARD_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := Connect(ctx, uri, fmt.Sprintf("devboard_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Drop(context.Background())
		_ = repo.Close()
	})
	return repo
}

func TestMongoLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	board := &models.Board{Name: "Mongo"}
	require.NoError(t, repo.CreateBoard(ctx, board))
	col := &models.Column{BoardID: board.ID, Title: "Todo", Position: 1}
	require.NoError(t, repo.CreateColumn(ctx, col))

	task := &models.Task{BoardID: board.ID, ColumnID: col.ID, Title: "Index", Priority: models.PriorityLow}
	require.NoError(t, repo.CreateTask(ctx, task))

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Index", got.Title)
	assert.Equal(t, []int64{}, got.LabelIDs)

	require.NoError(t, repo.DeleteTask(ctx, task.ID))
	_, err = repo.GetTask(ctx, task.ID)
	assert.True(t, apperrors.IsNotFound(err))

	next := &models.Task{BoardID: board.ID, ColumnID: col.ID, Title: "Again", Priority: models.PriorityLow}
	require.NoError(t, repo.CreateTask(ctx, next))
	assert.Greater(t, next.ID, task.ID)
}

func TestMongoImportAdvancesCounters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := &store.Seed{
		Boards: []*models.Board{{ID: 5, Name: "Seeded"}},
	}
	require.NoError(t, repo.Import(ctx, seed))

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)

	board := &models.Board{Name: "Next"}
	require.NoError(t, repo.CreateBoard(ctx, board))
	assert.Equal(t, int64(6), board.ID)
}
