// Package filter computes the visible subset of a board's tasks.
package filter

import (
	"strings"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// Query selects tasks. The zero Query matches everything.
type Query struct {
	Text   string   `json:"q" form:"q"`
	Labels []string `json:"labels" form:"labels"`
}

// IsZero reports whether q matches every task.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && len(normalize(q.Labels)) == 0
}

// Apply returns the tasks matching q, in input order. A task matches when
// the trimmed text is a case-insensitive substring of its title or
// description and, if labels are selected, at least one of its labels is
// selected (names compared case-insensitively). Inputs are not modified.
func Apply(tasks []*models.Task, labels []*models.Label, q Query) []*models.Task {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	selected := make(map[string]bool)
	for _, name := range normalize(q.Labels) {
		selected[name] = true
	}
	names := make(map[int64]string, len(labels))
	for _, l := range labels {
		names[l.ID] = strings.ToLower(l.Name)
	}

	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesText(t, text) && matchesLabels(t, names, selected) {
			out = append(out, t)
		}
	}
	return out
}

// ParseLabels splits a comma separated list, dropping empty entries.
func ParseLabels(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResolveLabels returns the labels of t in the task's order. Unknown ids
// are skipped.
func ResolveLabels(t *models.Task, labels []*models.Label) []*models.Label {
	byID := make(map[int64]*models.Label, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}
	out := make([]*models.Label, 0, len(t.LabelIDs))
	for _, id := range t.LabelIDs {
		if l, ok := byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func matchesText(t *models.Task, text string) bool {
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), text) ||
		strings.Contains(strings.ToLower(t.Description), text)
}

func matchesLabels(t *models.Task, names map[int64]string, selected map[string]bool) bool {
	if len(selected) == 0 {
		return true
	}
	for _, id := range t.LabelIDs {
		if name, ok := names[id]; ok && selected[name] {
			return true
		}
	}
	return false
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}
