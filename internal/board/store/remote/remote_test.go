package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

// fakeBackend is a minimal record server keyed by table.
type fakeBackend struct {
	mu     sync.Mutex
	tables map[string]map[int64]map[string]interface{}
	nextID int64
	auth   string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tables: map[string]map[int64]map[string]interface{}{}}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "tables" || parts[2] != "records" {
		http.NotFound(w, r)
		return
	}
	table := parts[1]
	if f.tables[table] == nil {
		f.tables[table] = map[int64]map[string]interface{}{}
	}
	rows := f.tables[table]

	write := func(status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			out := []map[string]interface{}{}
			for id := int64(1); id <= f.nextID; id++ {
				if row, ok := rows[id]; ok {
					out = append(out, row)
				}
			}
			write(http.StatusOK, out)
		case http.MethodPost:
			var row map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&row)
			f.nextID++
			row["Id"] = f.nextID
			row["CreatedOn"] = "2026-01-01T00:00:00Z"
			rows[f.nextID] = row
			write(http.StatusCreated, row)
		}
		return
	}

	id, _ := strconv.ParseInt(parts[3], 10, 64)
	row, ok := rows[id]
	if !ok {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		write(http.StatusOK, row)
	case http.MethodPut:
		var next map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&next)
		next["Id"] = id
		rows[id] = next
		write(http.StatusOK, next)
	case http.MethodDelete:
		delete(rows, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func newTestRepo(t *testing.T, handler http.Handler) *Repository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	repo := New(Config{BaseURL: srv.URL, APIKey: "secret", BreakerFailures: 2, BreakerTimeout: time.Minute}, logger.NewNop())
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRemoteRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	repo := newTestRepo(t, backend)
	ctx := context.Background()

	board := &models.Board{Name: "Remote", Color: "#000000"}
	require.NoError(t, repo.CreateBoard(ctx, board))
	assert.Equal(t, int64(1), board.ID)
	assert.Equal(t, "Bearer secret", backend.auth)

	col := &models.Column{BoardID: board.ID, Title: "Todo", Position: 1}
	require.NoError(t, repo.CreateColumn(ctx, col))

	due := time.Date(2031, 3, 4, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		BoardID: board.ID, ColumnID: col.ID, Title: "Call API",
		Priority: models.PriorityHigh, LabelIDs: []int64{4}, DueDate: &due,
	}
	require.NoError(t, repo.CreateTask(ctx, task))

	backend.mu.Lock()
	stored := backend.tables[tasksTable][task.ID]
	backend.mu.Unlock()
	assert.Equal(t, "Call API", stored["title_c"])
	assert.Equal(t, "2031-03-04", stored["due_date_c"])

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got.LabelIDs)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	byColumn, err := repo.ListTasksByColumn(ctx, col.ID)
	require.NoError(t, err)
	assert.Len(t, byColumn, 1)

	cols, err := repo.ListColumns(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "Todo", cols[0].Title)
}

func TestRemoteNotFound(t *testing.T) {
	repo := newTestRepo(t, newFakeBackend())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.GetLabel(ctx, 99)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	}
	// Missing records do not trip the breaker.
	assert.Equal(t, gobreaker.StateClosed, repo.c.state())

	err := repo.CreateTask(ctx, &models.Task{ColumnID: 8, Title: "orphan"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRemoteBreakerOpens(t *testing.T) {
	var calls int
	var mu sync.Mutex
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	ctx := context.Background()

	_, err := repo.ListBoards(ctx)
	require.Error(t, err)
	_, err = repo.ListBoards(ctx)
	require.Error(t, err)

	_, err = repo.ListBoards(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServiceUnavailable, apperrors.CodeOf(err))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}
