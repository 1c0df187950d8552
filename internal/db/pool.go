package db

import (
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"

	"github.com/apper-canvas/holodevboard/internal/db/dialect"
)

// Pool is the pair of handles a SQL board store works through. On SQLite
// the writer is a single connection next to a read-only reader pool; on
// PostgreSQL both are the same handle.
type Pool struct {
	writer *sqlx.DB
	reader *sqlx.DB

	closeOnce sync.Once
	closeErr  error
}

// NewPool pairs writer and reader. A nil reader reads through the writer.
func NewPool(writer, reader *sqlx.DB) *Pool {
	if reader == nil {
		reader = writer
	}
	return &Pool{writer: writer, reader: reader}
}

func (p *Pool) Writer() *sqlx.DB { return p.writer }

func (p *Pool) Reader() *sqlx.DB { return p.reader }

// Driver is the sqlx driver name, one of the dialect constants.
func (p *Pool) Driver() string { return p.writer.DriverName() }

// Close releases both handles once. SQLite refreshes planner statistics
// first.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		if p.Driver() == dialect.SQLite3 {
			_, _ = p.writer.Exec("PRAGMA optimize")
		}
		p.closeErr = p.writer.Close()
		if p.reader != p.writer {
			p.closeErr = multierr.Append(p.closeErr, p.reader.Close())
		}
	})
	return p.closeErr
}
