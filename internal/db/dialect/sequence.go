package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SequenceTableDDL creates the high-water mark table used by NextID.
const SequenceTableDDL = `CREATE TABLE IF NOT EXISTS id_sequences (
	name TEXT PRIMARY KEY,
	last_id BIGINT NOT NULL
)`

// NextID returns the next identifier for table inside tx: one greater than
// both the largest live id and the largest id ever issued. The table name is
// trusted input from the store, never user data.
func NextID(ctx context.Context, tx *sqlx.Tx, table string) (int64, error) {
	var maxLive int64
	if err := tx.GetContext(ctx, &maxLive, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("read max id of %s: %w", table, err)
	}

	var last int64
	err := tx.GetContext(ctx, &last, tx.Rebind(`SELECT last_id FROM id_sequences WHERE name = ?`), table)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		last = 0
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO id_sequences (name, last_id) VALUES (?, 0)`), table); err != nil {
			return 0, fmt.Errorf("init sequence %s: %w", table, err)
		}
	case err != nil:
		return 0, fmt.Errorf("read sequence %s: %w", table, err)
	}

	next := max(maxLive, last) + 1
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE id_sequences SET last_id = ? WHERE name = ?`), next, table); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", table, err)
	}
	return next, nil
}
