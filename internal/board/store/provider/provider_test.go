package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
)

func TestProvideMemorySeedsFixtures(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Driver: config.DriverMemory}}
	repo, cleanup, err := Provide(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	boards, err := repo.ListBoards(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, boards)
}

func TestProvideSQLiteSeedsOnce(t *testing.T) {
	cfg := &config.Config{
		Source:   config.SourceConfig{Driver: config.DriverSQLite, Seed: true},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "board.db")},
	}
	ctx := context.Background()

	repo, cleanup, err := Provide(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	first, err := repo.ListTasks(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.NoError(t, cleanup())

	repo, cleanup, err = Provide(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	second, err := repo.ListTasks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestProvideUnknownDriver(t *testing.T) {
	cfg := &config.Config{Source: config.SourceConfig{Driver: "csv"}}
	_, _, err := Provide(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
