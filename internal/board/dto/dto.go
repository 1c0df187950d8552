// Package dto holds the JSON shapes of the HTTP and WebSocket APIs.
package dto

import (
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/filter"
	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// LabelPreviewLimit is how many labels a task card shows before "+N more".
const LabelPreviewLimit = 3

type BoardDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ColumnDTO struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"board_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LabelDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskLabelDTO is a label as shown on a task card.
type TaskLabelDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TaskDTO struct {
	ID          int64          `json:"id"`
	BoardID     int64          `json:"board_id"`
	ColumnID    int64          `json:"column_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Assignee    string         `json:"assignee"`
	LabelIDs    []int64        `json:"label_ids"`
	Labels      []TaskLabelDTO `json:"labels"`
	MoreLabels  int            `json:"more_labels"`
	DueDate     *string        `json:"due_date,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ListBoardsResponse struct {
	Boards []BoardDTO `json:"boards"`
	Total  int        `json:"total"`
}

type ListColumnsResponse struct {
	Columns []ColumnDTO `json:"columns"`
	Total   int         `json:"total"`
}

type ListTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int       `json:"total"`
}

type ListLabelsResponse struct {
	Labels []LabelDTO `json:"labels"`
	Total  int        `json:"total"`
}

// UpdatePositionsResponse reports a batch position update. Errors lists the
// failures when some updates did not apply.
type UpdatePositionsResponse struct {
	Columns []ColumnDTO `json:"columns"`
	Errors  []string    `json:"errors,omitempty"`
}

// BoardStateDTO is a session snapshot plus the filtered task view.
// TaskCounts holds the total number of tasks per column regardless of the
// query; the number shown under a filter is derived from VisibleTasks.
type BoardStateDTO struct {
	BoardID      int64         `json:"board_id"`
	Status       string        `json:"status"`
	Error        string        `json:"error,omitempty"`
	Columns      []ColumnDTO   `json:"columns"`
	Tasks        []TaskDTO     `json:"tasks"`
	VisibleTasks []int64       `json:"visible_task_ids"`
	Query        filter.Query  `json:"query"`
	TaskCounts   map[int64]int `json:"task_counts"`
	Labels       []LabelDTO    `json:"labels"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func FromBoard(b *models.Board) BoardDTO {
	return BoardDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Color:       b.Color,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func FromColumn(c *models.Column) ColumnDTO {
	return ColumnDTO{
		ID:        c.ID,
		BoardID:   c.BoardID,
		Title:     c.Title,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromLabel(l *models.Label) LabelDTO {
	return LabelDTO{
		ID:          l.ID,
		Name:        l.Name,
		Color:       string(l.Color),
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// FromTask converts a task, resolving up to LabelPreviewLimit labels from
// labels. MoreLabels counts the resolved labels left out.
func FromTask(t *models.Task, labels []*models.Label) TaskDTO {
	resolved := filter.ResolveLabels(t, labels)
	preview := make([]TaskLabelDTO, 0, min(len(resolved), LabelPreviewLimit))
	for _, l := range resolved[:min(len(resolved), LabelPreviewLimit)] {
		preview = append(preview, TaskLabelDTO{ID: l.ID, Name: l.Name, Color: string(l.Color)})
	}

	out := TaskDTO{
		ID:          t.ID,
		BoardID:     t.BoardID,
		ColumnID:    t.ColumnID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Assignee:    t.Assignee,
		LabelIDs:    append([]int64{}, t.LabelIDs...),
		Labels:      preview,
		MoreLabels:  len(resolved) - len(preview),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC().Format(time.DateOnly)
		out.DueDate = &d
	}
	return out
}

func FromBoards(boards []*models.Board) ListBoardsResponse {
	resp := ListBoardsResponse{Boards: make([]BoardDTO, 0, len(boards)), Total: len(boards)}
	for _, b := range boards {
		resp.Boards = append(resp.Boards, FromBoard(b))
	}
	return resp
}

func FromColumns(cols []*models.Column) ListColumnsResponse {
	resp := ListColumnsResponse{Columns: make([]ColumnDTO, 0, len(cols)), Total: len(cols)}
	for _, c := range cols {
		resp.Columns = append(resp.Columns, FromColumn(c))
	}
	return resp
}

func FromTasks(tasks []*models.Task, labels []*models.Label) ListTasksResponse {
	resp := ListTasksResponse{Tasks: make([]TaskDTO, 0, len(tasks)), Total: len(tasks)}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, FromTask(t, labels))
	}
	return resp
}

func FromLabels(labels []*models.Label) ListLabelsResponse {
	resp := ListLabelsResponse{Labels: make([]LabelDTO, 0, len(labels)), Total: len(labels)}
	for _, l := range labels {
		resp.Labels = append(resp.Labels, FromLabel(l))
	}
	return resp
}
