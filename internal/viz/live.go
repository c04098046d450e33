package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/metrics"
)

const (
	canvasWidth     = 64
	canvasHeight    = 32
	historyCapacity = 120
)

type LiveOptions struct {
	FPS int
	// StageStep is how far one key press moves the stage, in pixels.
	StageStep float64
	// FocusStep is how far one key press moves the focus.
	FocusStep float64
	// Threshold is the fraction of the frame peak drawn for fluorescence
	// channels. Brightfield draws every labeled pixel.
	Threshold float64
	Theme     string
}

func DefaultLiveOptions() LiveOptions {
	return LiveOptions{FPS: 10, StageStep: 32, FocusStep: 2, Threshold: 0.1, Theme: ThemeFluor.Name}
}

type TickMsg time.Time

// LiveModel previews a camera in the terminal.
type LiveModel struct {
	ctx    context.Context
	cam    *camera.Camera
	opts   LiveOptions
	theme  Theme
	styles Styles
	canvas *Canvas

	state   camera.State
	stats   metrics.FrameStats
	steps   int
	cells   []float64
	err     error
	frames  int
	started time.Time
}

func NewLiveModel(ctx context.Context, cam *camera.Camera, opts LiveOptions) LiveModel {
	if opts.FPS <= 0 {
		opts.FPS = DefaultLiveOptions().FPS
	}
	theme := GetTheme(opts.Theme)
	return LiveModel{
		ctx:     ctx,
		cam:     cam,
		opts:    opts,
		theme:   theme,
		styles:  NewStyles(theme),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		cells:   make([]float64, 0, historyCapacity),
		started: time.Now(),
	}
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			m.cam.Pause()
			return m, tea.Quit
		}
		m.snap()
	case TickMsg:
		m.snap()
		return m, m.tick()
	}
	return m, nil
}

// handleKey applies a key press and reports whether to quit.
func (m *LiveModel) handleKey(key string) bool {
	st := m.cam.State()
	switch key {
	case "q", "ctrl+c", "esc":
		return true
	case "up", "k":
		m.cam.SetXY(st.XY.Add(imagegen.Point{X: -m.opts.StageStep}))
	case "down", "j":
		m.cam.SetXY(st.XY.Add(imagegen.Point{X: m.opts.StageStep}))
	case "left", "h":
		m.cam.SetXY(st.XY.Add(imagegen.Point{Y: -m.opts.StageStep}))
	case "right", "l":
		m.cam.SetXY(st.XY.Add(imagegen.Point{Y: m.opts.StageStep}))
	case "0":
		m.cam.SetXY(imagegen.Point{})
	case "+", "=":
		m.cam.SetZ(st.Z + m.opts.FocusStep)
	case "-", "_":
		m.cam.SetZ(st.Z - m.opts.FocusStep)
	case "]":
		m.err = m.cam.SetExposure(st.Exposure * 2)
	case "[":
		m.err = m.cam.SetExposure(st.Exposure / 2)
	case "c":
		m.cam.NextChannel()
	case " ":
		if m.cam.Running() {
			m.cam.Pause()
		} else {
			m.cam.Start(m.ctx)
		}
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == m.theme.Name {
				m.theme = GetTheme(names[(i+1)%len(names)])
				m.styles = NewStyles(m.theme)
				break
			}
		}
	}
	return false
}

func (m *LiveModel) snap() {
	f, err := m.cam.LastImage()
	if err != nil {
		m.err = err
		return
	}
	m.state = m.cam.State()
	m.steps = m.cam.Steps()
	m.stats = metrics.Summarize(f)
	m.frames++

	var threshold uint16
	if m.state.ChannelIndex > 0 {
		threshold = Threshold(f, m.opts.Threshold)
	}
	DrawFrame(m.canvas, f, threshold)

	m.cells = append(m.cells, float64(m.stats.Cells))
	if len(m.cells) > historyCapacity {
		m.cells = m.cells[1:]
	}
}

func (m LiveModel) View() string {
	s := m.styles
	frame := s.Frame.Render(m.canvas.String())

	var b strings.Builder
	b.WriteString(GradientText("MDASIM LIVE", m.theme.Primary, m.theme.Accent) + "\n\n")

	if m.cam.Running() {
		b.WriteString(s.Status.Render(fmt.Sprintf("RUNNING every %v", m.cam.Timing())) + "\n\n")
	} else {
		b.WriteString(s.Paused.Render("TIMER PAUSED") + "\n\n")
	}

	b.WriteString(s.Row("Channel", m.state.Channel) + "\n")
	b.WriteString(s.Row("Stage", fmt.Sprintf("(%.1f, %.1f)", m.state.XY.X, m.state.XY.Y)) + "\n")
	b.WriteString(s.Row("Z", fmt.Sprintf("%.1f", m.state.Z)) + "\n")
	b.WriteString(s.Row("Exposure", fmt.Sprintf("%g", m.state.Exposure)) + "\n")
	b.WriteString(s.Row("Steps", fmt.Sprintf("%d", m.steps)) + "\n")
	b.WriteString(s.Row("Cells", fmt.Sprintf("%d", m.stats.Cells)) + "\n")
	b.WriteString(s.Row("Mean", fmt.Sprintf("%.2f", m.stats.Mean)) + "\n")
	b.WriteString(s.Row("Peak", fmt.Sprintf("%d", m.stats.Peak)) + "\n")
	b.WriteString(s.Row("Sharpness", fmt.Sprintf("%.3f", m.stats.Focus)) + "\n")

	if len(m.cells) > 1 {
		chart := asciigraph.Plot(m.cells, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("visible cells"))
		b.WriteString("\n" + chart + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + s.Error.Render(m.err.Error()) + "\n")
	}

	b.WriteString(s.Help.Render("arrows:stage +/-:focus [ ]:exposure\nc:channel 0:center space:timer\nt:theme q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, frame, s.Panel.Render(b.String()))
}

// RunLive runs the live preview until the user quits or ctx is done.
func RunLive(ctx context.Context, cam *camera.Camera, opts LiveOptions) error {
	p := tea.NewProgram(NewLiveModel(ctx, cam, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	cam.Pause()
	if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
