package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/apper-canvas/holodevboard/internal/common/config"
)

const (
	defaultPostgresMaxConns = 25
	defaultPostgresMinConns = 5
	postgresPingTimeout     = 5 * time.Second
)

// OpenPostgres opens the board database on PostgreSQL through pgx and
// verifies the server is reachable before returning.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if connCfg.RuntimeParams == nil {
		connCfg.RuntimeParams = map[string]string{}
	}
	if _, ok := connCfg.RuntimeParams["application_name"]; !ok {
		connCfg.RuntimeParams["application_name"] = "devboard"
	}

	conn := stdlib.OpenDB(*connCfg)
	conn.SetMaxOpenConns(orDefault(cfg.MaxConns, defaultPostgresMaxConns))
	conn.SetMaxIdleConns(orDefault(cfg.MinConns, defaultPostgresMinConns))
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("postgres %s:%d unreachable: %w", connCfg.Host, connCfg.Port, err)
	}
	return conn, nil
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
