package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

const labelColumns = `id, name, color, description, created_at, updated_at`

// ListLabels returns all labels in id order.
func (r *Repository) ListLabels(ctx context.Context) ([]*models.Label, error) {
	labels := []*models.Label{}
	err := r.ro.SelectContext(ctx, &labels, `SELECT `+labelColumns+` FROM labels ORDER BY id`)
	return labels, err
}

// GetLabel retrieves a label by ID.
func (r *Repository) GetLabel(ctx context.Context, id int64) (*models.Label, error) {
	label := &models.Label{}
	err := r.ro.GetContext(ctx, label, r.ro.Rebind(`SELECT `+labelColumns+` FROM labels WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "label", id)
	}
	return label, nil
}

// CreateLabel assigns an id and inserts label.
func (r *Repository) CreateLabel(ctx context.Context, label *models.Label) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := dialect.NextID(ctx, tx, "labels")
		if err != nil {
			return err
		}
		label.ID = id
		label.CreatedAt = time.Now().UTC()
		label.UpdatedAt = label.CreatedAt
		return insertLabel(ctx, tx, label)
	})
}

func insertLabel(ctx context.Context, tx *sqlx.Tx, label *models.Label) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO labels (id, name, color, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), label.ID, label.Name, label.Color, label.Description, label.CreatedAt, label.UpdatedAt)
	return err
}

// UpdateLabel overwrites the mutable fields of label.
func (r *Repository) UpdateLabel(ctx context.Context, label *models.Label) error {
	label.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE labels SET name = ?, color = ?, description = ?, updated_at = ? WHERE id = ?
	`), label.Name, label.Color, label.Description, label.UpdatedAt, label.ID)
	if err != nil {
		return err
	}
	return expectOne(result, "label", label.ID)
}

// DeleteLabel deletes a label by ID. Task references are cleared by the service.
func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM labels WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(result, "label", id)
}
