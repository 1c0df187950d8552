package dialect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres(PGX))
	assert.False(t, IsPostgres(SQLite3))
	assert.Equal(t, "BIGINT PRIMARY KEY", AutoIDColumn(PGX))
	assert.Equal(t, "DATETIME", TimestampType(SQLite3))
}

func TestNextIDNeverReuses(t *testing.T) {
	db, err := sqlx.Open(SQLite3, filepath.Join(t.TempDir(), "seq.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.Exec(SequenceTableDDL)
	require.NoError(t, err)

	ctx := context.Background()
	next := func() int64 {
		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		id, err := NextID(ctx, tx, "items")
		require.NoError(t, err)
		_, err = tx.Exec(`INSERT INTO items (id) VALUES (?)`, id)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		return id
	}

	assert.Equal(t, int64(1), next())
	assert.Equal(t, int64(2), next())
	assert.Equal(t, int64(3), next())

	_, err = db.Exec(`DELETE FROM items WHERE id = 3`)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next())

	// Rows inserted with explicit ids move the mark forward.
	_, err = db.Exec(`INSERT INTO items (id) VALUES (10)`)
	require.NoError(t, err)
	assert.Equal(t, int64(11), next())
}
