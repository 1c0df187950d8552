package service

import (
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// CreateBoardRequest contains the data for creating a board.
type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// UpdateBoardRequest contains the fields of a board to change.
type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// CreateColumnRequest contains the data for creating a column. A nil
// Position appends the column.
type CreateColumnRequest struct {
	BoardID  int64  `json:"board_id"`
	Title    string `json:"title"`
	Position *int   `json:"position,omitempty"`
}

// UpdateColumnRequest contains the fields of a column to change. A Position
// moves the column and renumbers its siblings.
type UpdateColumnRequest struct {
	Title    *string `json:"title,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// CreateLabelRequest contains the data for creating a label.
type CreateLabelRequest struct {
	Name        string            `json:"name"`
	Color       models.LabelColor `json:"color"`
	Description string            `json:"description"`
}

// UpdateLabelRequest contains the fields of a label to change.
type UpdateLabelRequest struct {
	Name        *string            `json:"name,omitempty"`
	Color       *models.LabelColor `json:"color,omitempty"`
	Description *string            `json:"description,omitempty"`
}

// CreateTaskRequest contains the data for creating a task. The board is
// taken from the column.
type CreateTaskRequest struct {
	ColumnID    int64           `json:"column_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Assignee    string          `json:"assignee"`
	LabelIDs    []int64         `json:"labels"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// UpdateTaskRequest contains the fields of a task to change. ClearDueDate
// removes the due date.
type UpdateTaskRequest struct {
	ColumnID     *int64           `json:"column_id,omitempty"`
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Priority     *models.Priority `json:"priority,omitempty"`
	Assignee     *string          `json:"assignee,omitempty"`
	LabelIDs     *[]int64         `json:"labels,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	ClearDueDate bool             `json:"clear_due_date,omitempty"`
}
