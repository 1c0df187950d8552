// Package store defines the data-source contract behind the board services.
// Implementations live in subpackages: memory (fixtures), sqlstore (SQLite or
// PostgreSQL), mongostore, remote (low-code REST backend) and cache (Redis
// read-through decorator).
//
// Every implementation assigns ids and timestamps on create, returns copies,
// and reports unknown ids with errors.NotFound.
package store

import (
	"context"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// BoardStore persists boards.
type BoardStore interface {
	ListBoards(ctx context.Context) ([]*models.Board, error)
	GetBoard(ctx context.Context, id int64) (*models.Board, error)
	CreateBoard(ctx context.Context, board *models.Board) error
	UpdateBoard(ctx context.Context, board *models.Board) error
	DeleteBoard(ctx context.Context, id int64) error
}

// ColumnStore persists columns. ListColumns orders by position.
type ColumnStore interface {
	ListColumns(ctx context.Context, boardID int64) ([]*models.Column, error)
	GetColumn(ctx context.Context, id int64) (*models.Column, error)
	CreateColumn(ctx context.Context, column *models.Column) error
	UpdateColumn(ctx context.Context, column *models.Column) error
	DeleteColumn(ctx context.Context, id int64) error
}

// LabelStore persists labels.
type LabelStore interface {
	ListLabels(ctx context.Context) ([]*models.Label, error)
	GetLabel(ctx context.Context, id int64) (*models.Label, error)
	CreateLabel(ctx context.Context, label *models.Label) error
	UpdateLabel(ctx context.Context, label *models.Label) error
	DeleteLabel(ctx context.Context, id int64) error
}

// TaskStore persists tasks. A zero boardID lists tasks of every board.
type TaskStore interface {
	ListTasks(ctx context.Context, boardID int64) ([]*models.Task, error)
	ListTasksByColumn(ctx context.Context, columnID int64) ([]*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// Repository is the full data source.
type Repository interface {
	BoardStore
	ColumnStore
	LabelStore
	TaskStore
	Close() error
}

// Seed is a complete data set used to populate an empty repository.
type Seed struct {
	Boards  []*models.Board  `json:"boards" yaml:"boards" toml:"boards"`
	Columns []*models.Column `json:"columns" yaml:"columns" toml:"columns"`
	Labels  []*models.Label  `json:"labels" yaml:"labels" toml:"labels"`
	Tasks   []*models.Task   `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Seeder is implemented by repositories that can import a seed while
// keeping its ids.
type Seeder interface {
	Import(ctx context.Context, seed *Seed) error
	IsEmpty(ctx context.Context) (bool, error)
}
