package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

const taskColumns = `id, board_id, column_id, title, description, priority, assignee, label_ids, due_date, created_at, updated_at`

// taskRow is the tasks table layout; label ids are stored as a JSON array.
type taskRow struct {
	ID          int64        `db:"id"`
	BoardID     int64        `db:"board_id"`
	ColumnID    int64        `db:"column_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Priority    string       `db:"priority"`
	Assignee    string       `db:"assignee"`
	LabelIDs    string       `db:"label_ids"`
	DueDate     sql.NullTime `db:"due_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (row *taskRow) toModel() (*models.Task, error) {
	task := &models.Task{
		ID:          row.ID,
		BoardID:     row.BoardID,
		ColumnID:    row.ColumnID,
		Title:       row.Title,
		Description: row.Description,
		Priority:    models.Priority(row.Priority),
		Assignee:    row.Assignee,
		LabelIDs:    []int64{},
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.LabelIDs != "" {
		if err := json.Unmarshal([]byte(row.LabelIDs), &task.LabelIDs); err != nil {
			return nil, fmt.Errorf("decode labels of task %d: %w", row.ID, err)
		}
	}
	if row.DueDate.Valid {
		d := row.DueDate.Time.UTC()
		task.DueDate = &d
	}
	return task, nil
}

func encodeLabels(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	return string(data), err
}

func dueDateArg(d *time.Time) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.UTC(), Valid: true}
}

func (r *Repository) selectTasks(ctx context.Context, where string, args ...interface{}) ([]*models.Task, error) {
	var rows []taskRow
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY id`
	if err := r.ro.SelectContext(ctx, &rows, r.ro.Rebind(query), args...); err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(rows))
	for i := range rows {
		task, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ListTasks returns the tasks of a board, or of every board when boardID is 0.
func (r *Repository) ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error) {
	if boardID == 0 {
		return r.selectTasks(ctx, "")
	}
	return r.selectTasks(ctx, "board_id = ?", boardID)
}

// ListTasksByColumn returns the tasks of one column.
func (r *Repository) ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error) {
	return r.selectTasks(ctx, "column_id = ?", columnID)
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var row taskRow
	err := r.ro.GetContext(ctx, &row, r.ro.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "task", id)
	}
	return row.toModel()
}

// CreateTask assigns an id and inserts task. The column must exist.
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, "board_columns", task.ColumnID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("column", task.ColumnID)
		}
		id, err := dialect.NextID(ctx, tx, "tasks")
		if err != nil {
			return err
		}
		task.ID = id
		task.CreatedAt = time.Now().UTC()
		task.UpdatedAt = task.CreatedAt
		return insertTask(ctx, tx, task)
	})
}

func insertTask(ctx context.Context, tx *sqlx.Tx, task *models.Task) error {
	labels, err := encodeLabels(task.LabelIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO tasks (id, board_id, column_id, title, description, priority, assignee, label_ids, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), task.ID, task.BoardID, task.ColumnID, task.Title, task.Description, string(task.Priority),
		task.Assignee, labels, dueDateArg(task.DueDate), task.CreatedAt, task.UpdatedAt)
	return err
}

// UpdateTask overwrites every mutable field of task.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	labels, err := encodeLabels(task.LabelIDs)
	if err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE tasks SET board_id = ?, column_id = ?, title = ?, description = ?, priority = ?,
			assignee = ?, label_ids = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`), task.BoardID, task.ColumnID, task.Title, task.Description, string(task.Priority),
		task.Assignee, labels, dueDateArg(task.DueDate), task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "task", task.ID)
}

// DeleteTask deletes a task by ID.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(result, "task", id)
}
