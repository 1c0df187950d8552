package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/apper-canvas/holodevboard/internal/board/drag"
	"github.com/apper-canvas/holodevboard/internal/board/dto"
	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/state"
	"github.com/apper-canvas/holodevboard/internal/notify"
)

const (
	minColumnWidth = 22
	maxColumnWidth = 36
	statusTTL      = 5 * time.Second
	helpText       = "←↓↑→/hjkl move · space grab/drop task · m grab/drop column · esc cancel · / search · f label · r reload · tab board · q quit"
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewFilter())
	b.WriteString("\n\n")
	b.WriteString(m.viewBoard())
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(helpText))
	return b.String()
}

func (m *Model) viewHeader() string {
	parts := []string{titleStyle.Render("DevBoard")}
	for i, board := range m.boards {
		style := tabStyle
		if i == m.boardIdx {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(board.Name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) viewFilter() string {
	text := m.query.Text
	if m.searching {
		text += "▏"
	}
	search := metaStyle.Render("Search: ") + text
	label := metaStyle.Render("Label: ") + "all"
	if m.labelIdx >= 0 && m.labelIdx < len(m.labels) {
		l := m.labels[m.labelIdx]
		label = metaStyle.Render("Label: ") + labelChip(l.Name, string(l.Color))
	}
	return search + "   " + label
}

func (m *Model) viewBoard() string {
	if len(m.boards) == 0 && m.err == nil {
		return mutedStyle.Render("Loading boards...")
	}
	if m.session == nil {
		if m.err != nil {
			return errorStyle.Render("Could not load board: " + m.err.Error())
		}
		return mutedStyle.Render("Loading board...")
	}
	status, loadErr := m.session.Board.Status()
	switch status {
	case state.StatusIdle, state.StatusLoading:
		return mutedStyle.Render("Loading board...")
	case state.StatusError:
		msg := "Could not load board"
		if loadErr != nil {
			msg += ": " + loadErr.Error()
		}
		return errorStyle.Render(msg + " (press r to retry)")
	}

	cols, byColumn := m.visible()
	if len(cols) == 0 {
		return mutedStyle.Render("This board has no columns.")
	}
	total := make(map[int64]int, len(cols))
	for _, t := range m.session.Board.Tasks() {
		total[t.ColumnID]++
	}

	width := m.columnWidth(len(cols))
	grab := m.grabbed()
	rendered := make([]string, 0, len(cols))
	for i, col := range cols {
		rendered = append(rendered, m.viewColumn(col, byColumn[col.ID], total[col.ID], i == m.col, grab, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) viewColumn(col *models.Column, tasks []*models.Task, total int, active bool, grab drag.Grab, width int) string {
	style := columnStyle
	switch {
	case grab.Kind == drag.KindColumn && grab.ID == col.ID:
		style = grabbedColumnStyle
	case active:
		style = activeColumnStyle
	}

	count := fmt.Sprintf("%d", len(tasks))
	if len(tasks) != total {
		count = fmt.Sprintf("%d/%d", len(tasks), total)
	}
	lines := []string{
		columnHeaderStyle.Render(truncate(col.Title, width-len(count)-1)) + " " + countStyle.Render(count),
		"",
	}
	if len(tasks) == 0 {
		lines = append(lines, mutedStyle.Render("No tasks"))
	}
	for i, t := range tasks {
		selected := active && i == m.row
		grabbed := grab.Kind == drag.KindTask && grab.ID == t.ID
		lines = append(lines, m.viewCard(t, selected, grabbed, width))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) viewCard(t *models.Task, selected, grabbed bool, width int) string {
	card := dto.FromTask(t, m.labels)
	style := cardStyle
	switch {
	case grabbed:
		style = grabbedCardStyle
	case selected:
		style = selectedCardStyle
	}

	lines := []string{truncate(card.Title, width-2)}
	meta := lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render(card.Priority) +
		metaStyle.Render(" · "+card.Assignee)
	if card.DueDate != nil {
		meta += metaStyle.Render(" · " + *card.DueDate)
	}
	lines = append(lines, meta)
	if len(card.Labels) > 0 {
		chips := make([]string, 0, len(card.Labels)+1)
		for _, l := range card.Labels {
			chips = append(chips, labelChip(l.Name, l.Color))
		}
		if card.MoreLabels > 0 {
			chips = append(chips, mutedStyle.Render(fmt.Sprintf("+%d more", card.MoreLabels)))
		}
		lines = append(lines, strings.Join(chips, " "))
	}
	return style.Render(strings.Join(lines, "\n")) + "\n"
}

func (m *Model) viewStatus() string {
	var parts []string
	if grab := m.grabbed(); grab.Kind != drag.KindNone {
		parts = append(parts, infoStyle.Render(fmt.Sprintf("Holding %s %d", grab.Kind, grab.ID)))
	}
	if m.busy > 0 {
		parts = append(parts, metaStyle.Render("saving..."))
	}
	if n, ok := m.deps.Recorder.Last(); ok && time.Since(n.Timestamp) < statusTTL {
		parts = append(parts, notificationStyle(n.Severity).Render(n.Message))
	} else if m.err != nil && m.session != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) grabbed() drag.Grab {
	if m.drag == nil {
		return drag.Grab{}
	}
	return m.drag.Grabbed()
}

func (m *Model) columnWidth(n int) int {
	if m.width <= 0 || n == 0 {
		return 28
	}
	w := m.width/n - 4
	return max(minColumnWidth, min(w, maxColumnWidth))
}

func notificationStyle(s notify.Severity) lipgloss.Style {
	switch s {
	case notify.SeveritySuccess:
		return successStyle
	case notify.SeverityError:
		return errorStyle
	default:
		return infoStyle
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
