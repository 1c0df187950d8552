package dto

import (
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

type GetRequest struct {
	ID int64
}

type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateBoardRequest struct {
	ID          int64   `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

type CreateColumnRequest struct {
	BoardID  int64  `json:"board_id"`
	Title    string `json:"title"`
	Position *int   `json:"position,omitempty"`
}

type UpdateColumnRequest struct {
	ID       int64   `json:"-"`
	Title    *string `json:"title,omitempty"`
	Position *int    `json:"position,omitempty"`
}

type UpdatePositionsRequest struct {
	BoardID   int64                   `json:"-"`
	Positions []models.PositionUpdate `json:"positions"`
}

type CreateLabelRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type UpdateLabelRequest struct {
	ID          int64   `json:"-"`
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTaskRequest takes the due date as YYYY-MM-DD.
type CreateTaskRequest struct {
	ColumnID    int64   `json:"column_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Assignee    string  `json:"assignee"`
	LabelIDs    []int64 `json:"label_ids"`
	DueDate     string  `json:"due_date"`
}

// UpdateTaskRequest takes the due date as YYYY-MM-DD; an empty string
// clears it.
type UpdateTaskRequest struct {
	ID          int64    `json:"-"`
	ColumnID    *int64   `json:"column_id,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	Assignee    *string  `json:"assignee,omitempty"`
	LabelIDs    *[]int64 `json:"label_ids,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
}

type ListTasksRequest struct {
	BoardID int64
	Query   filter.Query
}

type BoardStateRequest struct {
	BoardID int64        `json:"board_id"`
	Query   filter.Query `json:"query"`
}

type MoveTaskRequest struct {
	BoardID        int64 `json:"board_id"`
	TaskID         int64 `json:"task_id"`
	TargetColumnID int64 `json:"target_column_id"`
}

type ReorderColumnRequest struct {
	BoardID        int64 `json:"board_id"`
	ColumnID       int64 `json:"column_id"`
	TargetColumnID int64 `json:"target_column_id"`
}

// ParseDueDate reads a YYYY-MM-DD date as UTC midnight.
func ParseDueDate(s string) (*time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperrors.ValidationError("due_date", "must be a date in YYYY-MM-DD form")
	}
	return &d, nil
}
