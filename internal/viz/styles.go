package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt whenever the theme changes.
type styles struct {
	canvas  lipgloss.Style
	stats   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
	overlay lipgloss.Style
	spark   [3]lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		stats: lipgloss.NewStyle().Padding(0, 2).Width(52),
		header: lipgloss.NewStyle().Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		graph:   lipgloss.NewStyle().Foreground(t.Good),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(t.Accent).
			Padding(0, 2),
		spark: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(t.Good),
			lipgloss.NewStyle().Foreground(t.Warn),
			lipgloss.NewStyle().Foreground(t.Bad),
		},
	}
}

// row renders a label and a value on one line.
func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value) + "\n"
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline draws the last width values, colored by their height relative to
// the window maximum.
func (s styles) sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / span
		r := string(sparkRunes[int(norm*float64(len(sparkRunes)-1))])
		switch {
		case norm > 0.7:
			b.WriteString(s.spark[2].Render(r))
		case norm > 0.3:
			b.WriteString(s.spark[1].Render(r))
		default:
			b.WriteString(s.spark[0].Render(r))
		}
	}
	return b.String()
}
