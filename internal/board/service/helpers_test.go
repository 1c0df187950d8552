package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	"github.com/apper-canvas/holodevboard/internal/board/store/memory"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/events/bus"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

var errBackend = errors.New("backend unavailable")

// flakyRepo wraps a real repository and fails selected calls.
type flakyRepo struct {
	store.Repository
	mu        sync.Mutex
	failNames map[string]bool
	failIDs   map[int64]bool
	calls     int
}

func (f *flakyRepo) failOn(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.failNames[n] = true
	}
}

func (f *flakyRepo) check(name string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNames[name] || f.failIDs[id] {
		return errBackend
	}
	return nil
}

func (f *flakyRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *flakyRepo) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	if err := f.check("ListTasks", 0); err != nil {
		return nil, err
	}
	return f.Repository.ListTasks(ctx, boardID)
}

func (f *flakyRepo) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	if err := f.check("ListColumns", 0); err != nil {
		return nil, err
	}
	return f.Repository.ListColumns(ctx, boardID)
}

func (f *flakyRepo) GetColumn(ctx context.Context, id int64) (*models.Column, error) {
	if err := f.check("GetColumn", 0); err != nil {
		return nil, err
	}
	return f.Repository.GetColumn(ctx, id)
}

func (f *flakyRepo) UpdateColumn(ctx context.Context, c *models.Column) error {
	if err := f.check("UpdateColumn", c.ID); err != nil {
		return err
	}
	return f.Repository.UpdateColumn(ctx, c)
}

func (f *flakyRepo) CreateBoard(ctx context.Context, b *models.Board) error {
	if err := f.check("CreateBoard", 0); err != nil {
		return err
	}
	return f.Repository.CreateBoard(ctx, b)
}

func (f *flakyRepo) UpdateTask(ctx context.Context, t *models.Task) error {
	if err := f.check("UpdateTask", 0); err != nil {
		return err
	}
	return f.Repository.UpdateTask(ctx, t)
}

// recordingBus keeps published subjects in order.
type recordingBus struct {
	mu       sync.Mutex
	subjects []string
	events   []*bus.Event
}

func (b *recordingBus) Publish(_ context.Context, subject string, event *bus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects = append(b.subjects, subject)
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Subscribe(string, bus.EventHandler) (bus.Subscription, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBus) QueueSubscribe(string, string, bus.EventHandler) (bus.Subscription, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBus) Close()            {}
func (b *recordingBus) IsConnected() bool { return true }

func (b *recordingBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.subjects...)
}

type fixture struct {
	svc     *Services
	repo    *flakyRepo
	notes   *notify.Recorder
	bus     *recordingBus
	now     time.Time
	board   *models.Board
	backlog *models.Column
	doing   *models.Column
	done    *models.Column
	bug     *models.Label
	feature *models.Label
}

// newFixture builds services over a memory store holding one board with
// three columns and two labels.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: &flakyRepo{
			Repository: memory.New(),
			failNames:  map[string]bool{},
			failIDs:    map[int64]bool{},
		},
		notes: notify.NewRecorder(),
		bus:   &recordingBus{},
		now:   time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	f.svc = New(Deps{
		Repo:     f.repo,
		EventBus: f.bus,
		Notifier: f.notes,
		Logger:   logger.NewNop(),
		Now:      func() time.Time { return f.now },
	})

	ctx := context.Background()
	var err error
	f.board, err = f.svc.Boards.Create(ctx, &CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	f.backlog, err = f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: f.board.ID, Title: "Backlog"})
	require.NoError(t, err)
	f.doing, err = f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: f.board.ID, Title: "Doing"})
	require.NoError(t, err)
	f.done, err = f.svc.Columns.Create(ctx, &CreateColumnRequest{BoardID: f.board.ID, Title: "Done"})
	require.NoError(t, err)
	f.bug, err = f.svc.Labels.Create(ctx, &CreateLabelRequest{Name: "Bug", Color: models.LabelRed})
	require.NoError(t, err)
	f.feature, err = f.svc.Labels.Create(ctx, &CreateLabelRequest{Name: "Feature", Color: models.LabelBlue})
	require.NoError(t, err)
	f.notes.Reset()
	return f
}

func (f *fixture) task(t *testing.T, col *models.Column, title string, labels ...int64) *models.Task {
	t.Helper()
	task, err := f.svc.Tasks.Create(context.Background(), &CreateTaskRequest{
		ColumnID: col.ID, Title: title, LabelIDs: labels,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) titles(t *testing.T) []string {
	t.Helper()
	cols, err := f.svc.Columns.GetAll(context.Background(), f.board.ID)
	require.NoError(t, err)
	out := make([]string, 0, len(cols))
	for i, c := range cols {
		require.Equal(t, i+1, c.Position)
		out = append(out, c.Title)
	}
	return out
}
