package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteBusyTimeout = 5 * time.Second
	sqliteReaderConns = 4
)

// openSQLite opens one side of a SQLite pool. The writer side creates the
// file and runs in WAL mode on a single connection; the reader side is
// read-only and allows a few concurrent SELECTs.
func openSQLite(path string, readOnly bool) (*sql.DB, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.Itoa(int(sqliteBusyTimeout/time.Millisecond)))
	params.Set("_cache", "shared")
	conns := sqliteReaderConns
	if readOnly {
		params.Set("_mode", "ro")
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		params.Set("_mode", "rwc")
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
		conns = 1
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(conns)
	conn.SetMaxIdleConns(conns)
	if !readOnly {
		// Touch the file now so the read-only side can open it.
		if err := conn.Ping(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	return conn, nil
}
