package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a color scheme for the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Good    lipgloss.Color
	Warn    lipgloss.Color
	Bad     lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "terminal",
		Primary: lipgloss.Color("86"),
		Accent:  lipgloss.Color("205"),
		Text:    lipgloss.Color("252"),
		Muted:   lipgloss.Color("245"),
		Border:  lipgloss.Color("240"),
		Good:    lipgloss.Color("49"),
		Warn:    lipgloss.Color("214"),
		Bad:     lipgloss.Color("196"),
	},
	{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00dd00"),
		Muted:   lipgloss.Color("#007700"),
		Border:  lipgloss.Color("#005500"),
		Good:    lipgloss.Color("#88ff88"),
		Warn:    lipgloss.Color("#ffff00"),
		Bad:     lipgloss.Color("#ff0000"),
	},
	{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Border:  lipgloss.Color("#0077be"),
		Good:    lipgloss.Color("#00ff88"),
		Warn:    lipgloss.Color("#ffcc00"),
		Bad:     lipgloss.Color("#ff4444"),
	},
	{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Border:  lipgloss.Color("#feca57"),
		Good:    lipgloss.Color("#5fd068"),
		Warn:    lipgloss.Color("#ffc048"),
		Bad:     lipgloss.Color("#ff4757"),
	},
}

// GetTheme returns the named theme, or the first theme if there is none.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
