package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

// Provide opens the SQL pool for the configured driver.
func Provide(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Pool, error) {
	switch cfg.Source.Driver {
	case config.DriverSQLite:
		pool, err := OpenSQLitePool(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized",
			zap.String("db_path", cfg.Database.Path),
			zap.String("db_driver", cfg.Source.Driver))
		return pool, nil
	case config.DriverPostgres:
		conn, err := OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", zap.String("db_driver", cfg.Source.Driver))
		return NewPool(sqlx.NewDb(conn, dialect.PGX), nil), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Source.Driver)
	}
}

// OpenSQLitePool opens the writer and reader for one SQLite file.
func OpenSQLitePool(path string) (*Pool, error) {
	writer, err := openSQLite(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	reader, err := openSQLite(path, true)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to open sqlite reader: %w", err)
	}
	return NewPool(sqlx.NewDb(writer, dialect.SQLite3), sqlx.NewDb(reader, dialect.SQLite3)), nil
}
