package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Frame  lipgloss.Style
	Panel  lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Status lipgloss.Style
	Paused lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Frame: lipgloss.NewStyle().Foreground(t.Frame).Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(44),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		Label:  lipgloss.NewStyle().Foreground(t.Muted).Width(11),
		Value:  lipgloss.NewStyle().Foreground(t.Text),
		Status: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Paused: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Error:  lipgloss.NewStyle().Foreground(t.Warning),
		Help:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
	}
}

// Row renders an aligned label/value line.
func (s Styles) Row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value)
}

// Swatch renders a block in the given color.
func Swatch(c colorful.Color) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Clamped().Hex())).Render("██")
}

// GradientText blends each rune of text from one color to another in Lab
// space.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(from))
	b, errB := colorful.Hex(string(to))
	if errA != nil || errB != nil {
		return lipgloss.NewStyle().Foreground(from).Render(text)
	}

	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}
