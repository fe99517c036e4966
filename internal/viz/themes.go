package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the wireframe and the side panel.
type Theme struct {
	Name    string
	Mesh    lipgloss.Color
	Pinned  lipgloss.Color
	Grab    lipgloss.Color
	Sphere  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Mesh:    lipgloss.Color("#00ffff"),
		Pinned:  lipgloss.Color("#ffff00"),
		Grab:    lipgloss.Color("#ff00ff"),
		Sphere:  lipgloss.Color("#ff8800"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Mesh:    lipgloss.Color("#00ff00"),
		Pinned:  lipgloss.Color("#88ff88"),
		Grab:    lipgloss.Color("#ffff00"),
		Sphere:  lipgloss.Color("#00cc00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeSilk = Theme{
		Name:    "silk",
		Mesh:    lipgloss.Color("#ff9ff3"),
		Pinned:  lipgloss.Color("#feca57"),
		Grab:    lipgloss.Color("#ff6b6b"),
		Sphere:  lipgloss.Color("#8b6b8c"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Success: lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeSilk}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme cycles to the theme after name.
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
