package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

func TestSQLitePoolSplitsReaderAndWriter(t *testing.T) {
	pool, err := OpenSQLitePool(filepath.Join(t.TempDir(), "nested", "board.db"))
	require.NoError(t, err)

	assert.Equal(t, dialect.SQLite3, pool.Driver())
	assert.NotSame(t, pool.Writer(), pool.Reader())

	_, err = pool.Writer().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = pool.Writer().Exec(`INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, pool.Reader().Get(&n, `SELECT COUNT(*) FROM t`))
	assert.Equal(t, 1, n)

	require.NoError(t, pool.Close())
	assert.NoError(t, pool.Close())
}

func TestProvideRejectsNonSQLDrivers(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Driver: config.DriverMemory}}
	_, err := Provide(context.Background(), cfg, logger.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenPostgresRejectsBadDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), config.DatabaseConfig{DSN: "postgres://%zz"})
	assert.ErrorContains(t, err, "invalid postgres dsn")
}
