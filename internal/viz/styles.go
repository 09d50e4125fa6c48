package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1)
}

func (t Theme) canvas() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2)
}

func (t Theme) graph() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0)
}

func (t Theme) status(running bool, failed bool) lipgloss.Style {
	c := t.Success
	switch {
	case failed:
		c = t.Error
	case !running:
		c = t.Warning
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
