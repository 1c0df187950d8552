package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

const columnColumns = `id, board_id, title, position, created_at, updated_at`

// ListColumns returns the columns of a board ordered by position.
// A zero boardID lists every column.
func (r *Repository) ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error) {
	cols := []*models.Column{}
	query := `SELECT ` + columnColumns + ` FROM board_columns`
	var args []interface{}
	if boardID != 0 {
		query += ` WHERE board_id = ?`
		args = append(args, boardID)
	}
	query += ` ORDER BY board_id, position, id`
	err := r.ro.SelectContext(ctx, &cols, r.ro.Rebind(query), args...)
	return cols, err
}

// GetColumn retrieves a column by ID.
func (r *Repository) GetColumn(ctx context.Context, id int64) (*models.Column, error) {
	col := &models.Column{}
	err := r.ro.GetContext(ctx, col, r.ro.Rebind(`SELECT `+columnColumns+` FROM board_columns WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "column", id)
	}
	return col, nil
}

// CreateColumn assigns an id and inserts column. The board must exist.
func (r *Repository) CreateColumn(ctx context.Context, column *models.Column) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, "boards", column.BoardID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("board", column.BoardID)
		}
		id, err := dialect.NextID(ctx, tx, "board_columns")
		if err != nil {
			return err
		}
		column.ID = id
		column.CreatedAt = time.Now().UTC()
		column.UpdatedAt = column.CreatedAt
		return insertColumn(ctx, tx, column)
	})
}

func insertColumn(ctx context.Context, tx *sqlx.Tx, column *models.Column) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO board_columns (id, board_id, title, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), column.ID, column.BoardID, column.Title, column.Position, column.CreatedAt, column.UpdatedAt)
	return err
}

// UpdateColumn overwrites the title and position of column.
func (r *Repository) UpdateColumn(ctx context.Context, column *models.Column) error {
	column.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE board_columns SET title = ?, position = ?, updated_at = ? WHERE id = ?
	`), column.Title, column.Position, column.UpdatedAt, column.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "column", column.ID)
}

// DeleteColumn deletes a column by ID.
func (r *Repository) DeleteColumn(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM board_columns WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(result, "column", id)
}
