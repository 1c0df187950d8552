package remote

import (
	"time"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// Backend records use the platform's system fields (Id, Name, CreatedOn,
// ModifiedOn) and custom fields suffixed with _c.

type boardRecord struct {
	ID          int64  `json:"Id,omitempty"`
	Name        string `json:"Name"`
	Description string `json:"description_c"`
	Color       string `json:"color_c"`
	CreatedOn   string `json:"CreatedOn,omitempty"`
	ModifiedOn  string `json:"ModifiedOn,omitempty"`
}

type columnRecord struct {
	ID         int64  `json:"Id,omitempty"`
	Title      string `json:"title_c"`
	BoardID    int64  `json:"board_id_c"`
	Position   int    `json:"position_c"`
	CreatedOn  string `json:"CreatedOn,omitempty"`
	ModifiedOn string `json:"ModifiedOn,omitempty"`
}

type labelRecord struct {
	ID          int64  `json:"Id,omitempty"`
	Name        string `json:"Name"`
	Color       string `json:"color_c"`
	Description string `json:"description_c"`
	CreatedOn   string `json:"CreatedOn,omitempty"`
	ModifiedOn  string `json:"ModifiedOn,omitempty"`
}

type taskRecord struct {
	ID          int64   `json:"Id,omitempty"`
	Title       string  `json:"title_c"`
	Description string  `json:"description_c"`
	Priority    string  `json:"priority_c"`
	Assignee    string  `json:"assignee_c"`
	BoardID     int64   `json:"board_id_c"`
	ColumnID    int64   `json:"column_id_c"`
	Labels      []int64 `json:"labels_c"`
	DueDate     string  `json:"due_date_c,omitempty"`
	CreatedOn   string  `json:"CreatedOn,omitempty"`
	ModifiedOn  string  `json:"ModifiedOn,omitempty"`
}

const dueDateLayout = "2006-01-02"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime falls back to fallback when the backend omits or garbles a stamp.
func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t.UTC()
}

func boardToRecord(b *models.Board) boardRecord {
	return boardRecord{
		ID: b.ID, Name: b.Name, Description: b.Description, Color: b.Color,
		CreatedOn: formatTime(b.CreatedAt), ModifiedOn: formatTime(b.UpdatedAt),
	}
}

func (r boardRecord) toModel(now time.Time) *models.Board {
	created := parseTime(r.CreatedOn, now)
	return &models.Board{
		ID: r.ID, Name: r.Name, Description: r.Description, Color: r.Color,
		CreatedAt: created, UpdatedAt: parseTime(r.ModifiedOn, created),
	}
}

func columnToRecord(c *models.Column) columnRecord {
	return columnRecord{
		ID: c.ID, Title: c.Title, BoardID: c.BoardID, Position: c.Position,
		CreatedOn: formatTime(c.CreatedAt), ModifiedOn: formatTime(c.UpdatedAt),
	}
}

func (r columnRecord) toModel(now time.Time) *models.Column {
	created := parseTime(r.CreatedOn, now)
	return &models.Column{
		ID: r.ID, BoardID: r.BoardID, Title: r.Title, Position: r.Position,
		CreatedAt: created, UpdatedAt: parseTime(r.ModifiedOn, created),
	}
}

func labelToRecord(l *models.Label) labelRecord {
	return labelRecord{
		ID: l.ID, Name: l.Name, Color: string(l.Color), Description: l.Description,
		CreatedOn: formatTime(l.CreatedAt), ModifiedOn: formatTime(l.UpdatedAt),
	}
}

func (r labelRecord) toModel(now time.Time) *models.Label {
	created := parseTime(r.CreatedOn, now)
	return &models.Label{
		ID: r.ID, Name: r.Name, Color: models.LabelColor(r.Color), Description: r.Description,
		CreatedAt: created, UpdatedAt: parseTime(r.ModifiedOn, created),
	}
}

func taskToRecord(t *models.Task) taskRecord {
	rec := taskRecord{
		ID: t.ID, Title: t.Title, Description: t.Description,
		Priority: string(t.Priority), Assignee: t.Assignee,
		BoardID: t.BoardID, ColumnID: t.ColumnID, Labels: t.LabelIDs,
		CreatedOn: formatTime(t.CreatedAt), ModifiedOn: formatTime(t.UpdatedAt),
	}
	if rec.Labels == nil {
		rec.Labels = []int64{}
	}
	if t.DueDate != nil {
		rec.DueDate = t.DueDate.UTC().Format(dueDateLayout)
	}
	return rec
}

func (r taskRecord) toModel(now time.Time) *models.Task {
	created := parseTime(r.CreatedOn, now)
	task := &models.Task{
		ID: r.ID, BoardID: r.BoardID, ColumnID: r.ColumnID,
		Title: r.Title, Description: r.Description,
		Priority: models.Priority(r.Priority), Assignee: r.Assignee,
		LabelIDs:  r.Labels,
		CreatedAt: created, UpdatedAt: parseTime(r.ModifiedOn, created),
	}
	if task.LabelIDs == nil {
		task.LabelIDs = []int64{}
	}
	if r.DueDate != "" {
		if d, err := time.Parse(dueDateLayout, r.DueDate); err == nil {
			task.DueDate = &d
		} else if d, err := time.Parse(time.RFC3339, r.DueDate); err == nil {
			d = d.UTC()
			task.DueDate = &d
		}
	}
	return task
}
