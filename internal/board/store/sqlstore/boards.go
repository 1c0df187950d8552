package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

const boardColumns = `id, name, description, color, created_at, updated_at`

// ListBoards returns all boards in id order.
func (r *Repository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	boards := []*models.Board{}
	err := r.ro.SelectContext(ctx, &boards, `SELECT `+boardColumns+` FROM boards ORDER BY id`)
	return boards, err
}

// GetBoard retrieves a board by ID.
func (r *Repository) GetBoard(ctx context.Context, id int64) (*models.Board, error) {
	board := &models.Board{}
	err := r.ro.GetContext(ctx, board, r.ro.Rebind(`SELECT `+boardColumns+` FROM boards WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "board", id)
	}
	return board, nil
}

// CreateBoard assigns an id and inserts board.
func (r *Repository) CreateBoard(ctx context.Context, board *models.Board) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := dialect.NextID(ctx, tx, "boards")
		if err != nil {
			return err
		}
		board.ID = id
		board.CreatedAt = time.Now().UTC()
		board.UpdatedAt = board.CreatedAt
		return insertBoard(ctx, tx, board)
	})
}

func insertBoard(ctx context.Context, tx *sqlx.Tx, board *models.Board) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO boards (id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), board.ID, board.Name, board.Description, board.Color, board.CreatedAt, board.UpdatedAt)
	return err
}

// UpdateBoard overwrites the mutable fields of board.
func (r *Repository) UpdateBoard(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE boards SET name = ?, description = ?, color = ?, updated_at = ? WHERE id = ?
	`), board.Name, board.Description, board.Color, board.UpdatedAt, board.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "board", board.ID)
}

// DeleteBoard deletes a board by ID.
func (r *Repository) DeleteBoard(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM boards WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(result, "board", id)
}
