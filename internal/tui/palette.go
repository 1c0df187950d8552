package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/apper-canvas/holodevboard/internal/board/models"
)

// labelPalette maps label colors to 256-color terminal codes.
var labelPalette = map[models.LabelColor]lipgloss.Color{
	models.LabelRed:    lipgloss.Color("160"),
	models.LabelBlue:   lipgloss.Color("27"),
	models.LabelGreen:  lipgloss.Color("28"),
	models.LabelYellow: lipgloss.Color("178"),
	models.LabelPurple: lipgloss.Color("91"),
	models.LabelGray:   lipgloss.Color("242"),
	models.LabelOrange: lipgloss.Color("166"),
	models.LabelIndigo: lipgloss.Color("61"),
}

var priorityPalette = map[models.Priority]lipgloss.Color{
	models.PriorityLow:    lipgloss.Color("244"),
	models.PriorityMedium: lipgloss.Color("214"),
	models.PriorityHigh:   lipgloss.Color("196"),
}

// labelColor returns the terminal color for a label color name. Unknown
// names fall back to the default label color.
func labelColor(name string) lipgloss.Color {
	if c, ok := labelPalette[models.LabelColor(name)]; ok {
		return c
	}
	return labelPalette[models.DefaultLabelColor]
}

func priorityColor(p models.Priority) lipgloss.Color {
	if c, ok := priorityPalette[p]; ok {
		return c
	}
	return priorityPalette[models.DefaultPriority]
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5E72E4"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("#5E72E4")).Bold(true)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
	activeColumnStyle  = columnStyle.BorderForeground(lipgloss.Color("#5E72E4"))
	grabbedColumnStyle = columnStyle.BorderForeground(lipgloss.Color("214")).BorderStyle(lipgloss.DoubleBorder())

	columnHeaderStyle = lipgloss.NewStyle().Bold(true)
	countStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("#5E72E4"))
	grabbedCardStyle  = cardStyle.BorderForeground(lipgloss.Color("214")).Faint(true)

	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

func labelChip(name, color string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("231")).
		Background(labelColor(color)).
		Padding(0, 1).
		Render(name)
}
