package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live preview.
type Theme struct {
	Name    string
	Frame   lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeFluor = Theme{
		Name:    "fluor",
		Frame:   lipgloss.Color("#39ff14"),
		Primary: lipgloss.Color("#00ffaa"),
		Accent:  lipgloss.Color("#00aaff"),
		Text:    lipgloss.Color("#e8ffe8"),
		Muted:   lipgloss.Color("#557755"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeBrightfield = Theme{
		Name:    "brightfield",
		Frame:   lipgloss.Color("#f5f0e1"),
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#c8a060"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	ThemeDAPI = Theme{
		Name:    "dapi",
		Frame:   lipgloss.Color("#4c6fff"),
		Primary: lipgloss.Color("#7f9bff"),
		Accent:  lipgloss.Color("#ff4cd2"),
		Text:    lipgloss.Color("#e0e6ff"),
		Muted:   lipgloss.Color("#4a5580"),
		Warning: lipgloss.Color("#ff8844"),
	}

	Themes = []Theme{ThemeFluor, ThemeBrightfield, ThemeDAPI}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
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
