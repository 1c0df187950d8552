// Package models defines the board domain records.
package models

import (
	"slices"
	"time"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// LabelColor is the closed set of label colors.
type LabelColor string

const (
	LabelRed    LabelColor = "red"
	LabelBlue   LabelColor = "blue"
	LabelGreen  LabelColor = "green"
	LabelYellow LabelColor = "yellow"
	LabelPurple LabelColor = "purple"
	LabelGray   LabelColor = "gray"
	LabelOrange LabelColor = "orange"
	LabelIndigo LabelColor = "indigo"
)

// LabelColors lists every valid label color in display order.
var LabelColors = []LabelColor{
	LabelRed, LabelBlue, LabelGreen, LabelYellow,
	LabelPurple, LabelGray, LabelOrange, LabelIndigo,
}

// Valid reports whether c is a known label color.
func (c LabelColor) Valid() bool {
	return slices.Contains(LabelColors, c)
}

// Defaults applied on create.
const (
	DefaultBoardColor = "#5E72E4"
	DefaultAssignee   = "Developer"
	DefaultPriority   = PriorityMedium
	DefaultLabelColor = LabelGray
)

// Board is the top-level container of columns and tasks.
type Board struct {
	ID          int64     `json:"id" bson:"_id" db:"id"`
	Name        string    `json:"name" bson:"name" db:"name"`
	Description string    `json:"description" bson:"description" db:"description"`
	Color       string    `json:"color" bson:"color" db:"color"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// Clone returns a copy of b.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// Column is an ordered workflow stage within a board.
type Column struct {
	ID        int64     `json:"id" bson:"_id" db:"id"`
	BoardID   int64     `json:"board_id" bson:"board_id" db:"board_id"`
	Title     string    `json:"title" bson:"title" db:"title"`
	Position  int       `json:"position" bson:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// Clone returns a copy of c.
func (c *Column) Clone() *Column {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Task is a unit of work owned by exactly one column.
type Task struct {
	ID          int64      `json:"id" bson:"_id"`
	BoardID     int64      `json:"board_id" bson:"board_id"`
	ColumnID    int64      `json:"column_id" bson:"column_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Priority    Priority   `json:"priority" bson:"priority"`
	Assignee    string     `json:"assignee" bson:"assignee"`
	LabelIDs    []int64    `json:"labels" bson:"labels"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.LabelIDs = slices.Clone(t.LabelIDs)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

// HasLabel reports whether the task references labelID.
func (t *Task) HasLabel(labelID int64) bool {
	return slices.Contains(t.LabelIDs, labelID)
}

// Label is a named, colored tag referenced by tasks.
type Label struct {
	ID          int64      `json:"id" bson:"_id" db:"id"`
	Name        string     `json:"name" bson:"name" db:"name"`
	Color       LabelColor `json:"color" bson:"color" db:"color"`
	Description string     `json:"description" bson:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// Clone returns a copy of l.
func (l *Label) Clone() *Label {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// PositionUpdate is one entry of a batch column reorder.
type PositionUpdate struct {
	ID       int64 `json:"id"`
	Position int   `json:"position"`
}

// SortColumns orders columns by position, then id.
func SortColumns(cols []*Column) {
	slices.SortStableFunc(cols, func(a, b *Column) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// ReorderColumns returns copies of cols, sorted by position, with the column
// id moved to index target (clamped to the slice) and positions renumbered
// 1..N. It reports false when id is not present; cols is never modified.
func ReorderColumns(cols []*Column, id int64, target int) ([]*Column, bool) {
	out := make([]*Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Clone())
	}
	SortColumns(out)

	from := slices.IndexFunc(out, func(c *Column) bool { return c.ID == id })
	if from < 0 {
		return out, false
	}
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	target = min(max(target, 0), len(out))
	out = slices.Insert(out, target, moved)
	Renumber(out)
	return out, true
}

// Renumber assigns positions 1..N in slice order.
func Renumber(cols []*Column) {
	for i, c := range cols {
		c.Position = i + 1
	}
}
