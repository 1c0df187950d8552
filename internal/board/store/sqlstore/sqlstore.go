// Package sqlstore provides the SQL data source for SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
	"github.com/apper-canvas/holodevboard/internal/db"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

// Repository stores boards in SQL tables.
type Repository struct {
	db    *sqlx.DB // writer
	ro    *sqlx.DB // reader
	pool  *db.Pool
	owned bool
}

var (
	_ store.Repository = (*Repository)(nil)
	_ store.Seeder     = (*Repository)(nil)
)

// New creates a repository over pool. The pool stays owned by the caller.
func New(pool *db.Pool) (*Repository, error) {
	return newRepository(pool, false)
}

// NewOwned creates a repository that closes the pool on Close.
func NewOwned(pool *db.Pool) (*Repository, error) {
	return newRepository(pool, true)
}

func newRepository(pool *db.Pool, owned bool) (*Repository, error) {
	repo := &Repository{db: pool.Writer(), ro: pool.Reader(), pool: pool, owned: owned}
	if err := repo.initSchema(); err != nil {
		if owned {
			_ = pool.Close()
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

// Close closes the pool when the repository owns it.
func (r *Repository) Close() error {
	if !r.owned {
		return nil
	}
	return r.pool.Close()
}

func (r *Repository) initSchema() error {
	driver := r.db.DriverName()
	id := dialect.AutoIDColumn(driver)
	ts := dialect.TimestampType(driver)

	statements := []string{
		dialect.SequenceTableDDL,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS boards (
			id %s,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, id, ts, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS board_columns (
			id %s,
			board_id BIGINT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, id, ts, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS labels (
			id %s,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, id, ts, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %s,
			board_id BIGINT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			column_id BIGINT NOT NULL REFERENCES board_columns(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			assignee TEXT NOT NULL DEFAULT '',
			label_ids TEXT NOT NULL DEFAULT '[]',
			due_date %s,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, id, ts, ts, ts),
		`CREATE INDEX IF NOT EXISTS idx_board_columns_board_id ON board_columns(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_board_id ON tasks(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column_id ON tasks(column_id)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the boards table has no rows.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.ro.GetContext(ctx, &n, `SELECT COUNT(*) FROM boards`); err != nil {
		return false, err
	}
	return n == 0, nil
}

// Import inserts every seed record with its own id in one transaction.
func (r *Repository) Import(ctx context.Context, seed *store.Seed) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, b := range seed.Boards {
			if err := insertBoard(ctx, tx, b); err != nil {
				return fmt.Errorf("import board %d: %w", b.ID, err)
			}
		}
		for _, c := range seed.Columns {
			if err := insertColumn(ctx, tx, c); err != nil {
				return fmt.Errorf("import column %d: %w", c.ID, err)
			}
		}
		for _, l := range seed.Labels {
			if err := insertLabel(ctx, tx, l); err != nil {
				return fmt.Errorf("import label %d: %w", l.ID, err)
			}
		}
		for _, t := range seed.Tasks {
			if err := insertTask(ctx, tx, t); err != nil {
				return fmt.Errorf("import task %d: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// exists reports whether table holds a row with id.
func exists(ctx context.Context, tx *sqlx.Tx, table string, id int64) (bool, error) {
	var n int
	query := tx.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table))
	if err := tx.GetContext(ctx, &n, query, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// notFoundOnNoRows maps sql.ErrNoRows to a NotFound error.
func notFoundOnNoRows(err error, resource string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, id)
	}
	return err
}

// expectOne maps a zero-row update or delete to NotFound.
func expectOne(result sql.Result, resource string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}
