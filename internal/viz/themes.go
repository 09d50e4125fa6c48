package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeOcean}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// next returns the theme after t, wrapping around.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
