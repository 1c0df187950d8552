package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/common/tracing"
)

const (
	boardsTable  = "boards"
	columnsTable = "columns"
	labelsTable  = "labels"
	tasksTable   = "tasks"
)

// Repository implements store.Repository over the REST backend. The backend
// assigns ids; list filters are applied client side.
type Repository struct {
	c   *client
	now func() time.Time
}

var _ store.Repository = (*Repository)(nil)

// New creates a remote repository.
func New(cfg Config, log *logger.Logger) *Repository {
	return &Repository{
		c:   newClient(cfg, log),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Close releases idle connections.
func (r *Repository) Close() error {
	r.c.http.CloseIdleConnections()
	return nil
}

func recordsPath(table string) string {
	return "/tables/" + table + "/records"
}

func recordPath(table string, id int64) string {
	return fmt.Sprintf("/tables/%s/records/%d", table, id)
}

// notFound maps a 404 on a single record to a NotFound error.
func notFound(err error, resource string, id int64) error {
	var he *httpError
	if errors.As(err, &he) && he.status == http.StatusNotFound {
		return apperrors.NotFound(resource, id)
	}
	return err
}

func list[R any, M any](ctx context.Context, r *Repository, table string, conv func(R, time.Time) *M) ([]*M, error) {
	var records []R
	if err := r.c.do(ctx, http.MethodGet, recordsPath(table), nil, &records); err != nil {
		return nil, err
	}
	now := r.now()
	out := make([]*M, 0, len(records))
	for _, rec := range records {
		out = append(out, conv(rec, now))
	}
	return out, nil
}

func get[R any, M any](ctx context.Context, r *Repository, table, resource string, id int64, conv func(R, time.Time) *M) (*M, error) {
	var rec R
	if err := r.c.do(ctx, http.MethodGet, recordPath(table, id), nil, &rec); err != nil {
		return nil, notFound(err, resource, id)
	}
	return conv(rec, r.now()), nil
}

func (r *Repository) remove(ctx context.Context, table, resource string, id int64) error {
	return notFound(r.c.do(ctx, http.MethodDelete, recordPath(table, id), nil, nil), resource, id)
}

// Board operations

func (r *Repository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return list(ctx, r, boardsTable, boardRecord.toModel)
}

func (r *Repository) GetBoard(ctx context.Context, id int64) (*models.Board, error) {
	return get(ctx, r, boardsTable, "board", id, boardRecord.toModel)
}

func (r *Repository) CreateBoard(ctx context.Context, board *models.Board) error {
	rec := boardToRecord(board)
	rec.ID = 0
	var out boardRecord
	if err := r.c.do(ctx, http.MethodPost, recordsPath(boardsTable), rec, &out); err != nil {
		return err
	}
	*board = *out.toModel(r.now())
	return nil
}

func (r *Repository) UpdateBoard(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = r.now()
	var out boardRecord
	if err := r.c.do(ctx, http.MethodPut, recordPath(boardsTable, board.ID), boardToRecord(board), &out); err != nil {
		return notFound(err, "board", board.ID)
	}
	return nil
}

func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	return r.remove(ctx, boardsTable, "board", id)
}

// Column operations

func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	ctx, span := r.c.tracer.Start(ctx, "remote list "+columnsTable, trace.WithAttributes(tracing.BoardAttributes(boardID)...))
	defer span.End()
	cols, err := list(ctx, r, columnsTable, columnRecord.toModel)
	if err != nil {
		return nil, err
	}
	if boardID != 0 {
		cols = slices.DeleteFunc(cols, func(c *models.Column) bool { return c.BoardID != boardID })
	}
	models.SortColumns(cols)
	return cols, nil
}

func (r *Repository) GetColumn(ctx context.Context, id int64) (*models.Column, error) {
	return get(ctx, r, columnsTable, "column", id, columnRecord.toModel)
}

func (r *Repository) CreateColumn(ctx context.Context, column *models.Column) error {
	if _, err := r.GetBoard(ctx, column.BoardID); err != nil {
		return err
	}
	rec := columnToRecord(column)
	rec.ID = 0
	var out columnRecord
	if err := r.c.do(ctx, http.MethodPost, recordsPath(columnsTable), rec, &out); err != nil {
		return err
	}
	*column = *out.toModel(r.now())
	return nil
}

func (r *Repository) UpdateColumn(ctx context.Context, column *models.Column) error {
	column.UpdatedAt = r.now()
	var out columnRecord
	if err := r.c.do(ctx, http.MethodPut, recordPath(columnsTable, column.ID), columnToRecord(column), &out); err != nil {
		return notFound(err, "column", column.ID)
	}
	return nil
}

func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	return r.remove(ctx, columnsTable, "column", id)
}

// Label operations

func (r *Repository) ListLabels(ctx context.Context) ([]*models.Label, error) {
	return list(ctx, r, labelsTable, labelRecord.toModel)
}

func (r *Repository) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	return get(ctx, r, labelsTable, "label", id, labelRecord.toModel)
}

func (r *Repository) CreateLabel(ctx context.Context, label *models.Label) error {
	rec := labelToRecord(label)
	rec.ID = 0
	var out labelRecord
	if err := r.c.do(ctx, http.MethodPost, recordsPath(labelsTable), rec, &out); err != nil {
		return err
	}
	*label = *out.toModel(r.now())
	return nil
}

func (r *Repository) UpdateLabel(ctx context.Context, label *models.Label) error {
	label.UpdatedAt = r.now()
	var out labelRecord
	if err := r.c.do(ctx, http.MethodPut, recordPath(labelsTable, label.ID), labelToRecord(label), &out); err != nil {
		return notFound(err, "label", label.ID)
	}
	return nil
}

func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	return r.remove(ctx, labelsTable, "label", id)
}

// Task operations

func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	ctx, span := r.c.tracer.Start(ctx, "remote list "+tasksTable, trace.WithAttributes(tracing.BoardAttributes(boardID)...))
	defer span.End()
	tasks, err := list(ctx, r, tasksTable, taskRecord.toModel)
	if err != nil {
		return nil, err
	}
	if boardID != 0 {
		tasks = slices.DeleteFunc(tasks, func(t *models.Task) bool { return t.BoardID != boardID })
	}
	return tasks, nil
}

func (r *Repository) ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	tasks, err := list(ctx, r, tasksTable, taskRecord.toModel)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(tasks, func(t *models.Task) bool { return t.ColumnID != columnID }), nil
}

func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return get(ctx, r, tasksTable, "task", id, taskRecord.toModel)
}

func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	if _, err := r.GetColumn(ctx, task.ColumnID); err != nil {
		return err
	}
	rec := taskToRecord(task)
	rec.ID = 0
	var out taskRecord
	if err := r.c.do(ctx, http.MethodPost, recordsPath(tasksTable), rec, &out); err != nil {
		return err
	}
	*task = *out.toModel(r.now())
	return nil
}

func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = r.now()
	var out taskRecord
	if err := r.c.do(ctx, http.MethodPut, recordPath(tasksTable, task.ID), taskToRecord(task), &out); err != nil {
		return notFound(err, "task", task.ID)
	}
	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return r.remove(ctx, tasksTable, "task", id)
}
