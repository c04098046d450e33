package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
)

func newLiveModel(t *testing.T) (LiveModel, *camera.Camera) {
	t.Helper()
	opts := imagegen.DefaultOptions(300)
	opts.Height, opts.Width = 64, 64
	opts.Extent = 1
	opts.Seed = 3
	gen, err := imagegen.New(opts)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	cam, err := camera.New(gen, camera.Options{Timing: time.Hour})
	if err != nil {
		t.Fatalf("camera: %v", err)
	}
	t.Cleanup(cam.Pause)
	return NewLiveModel(context.Background(), cam, DefaultLiveOptions()), cam
}

func press(t *testing.T, m LiveModel, keys ...tea.KeyMsg) LiveModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(LiveModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestLiveModel_Stage(t *testing.T) {
	m, cam := newLiveModel(t)
	step := DefaultLiveOptions().StageStep

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight}, runes("l"))
	if got := cam.State().XY; got != (imagegen.Point{X: step, Y: 2 * step}) {
		t.Errorf("stage at %v", got)
	}

	m = press(t, m, runes("0"))
	if got := cam.State().XY; got != (imagegen.Point{}) {
		t.Errorf("expected recentered stage, got %v", got)
	}
	if m.frames != 4 {
		t.Errorf("expected a frame per key press, got %d", m.frames)
	}
}

func TestLiveModel_FocusExposureChannel(t *testing.T) {
	m, cam := newLiveModel(t)

	m = press(t, m, runes("+"), runes("+"), runes("-"), runes("]"), runes("]"), runes("["), runes("c"))
	st := cam.State()
	if st.Z != DefaultLiveOptions().FocusStep {
		t.Errorf("z = %v", st.Z)
	}
	if st.Exposure != 2 {
		t.Errorf("exposure = %v, want 2", st.Exposure)
	}
	if st.Channel != "DAPI" || m.state.ChannelIndex != 1 {
		t.Errorf("channel = %s (%d)", st.Channel, m.state.ChannelIndex)
	}
}

func TestLiveModel_Timer(t *testing.T) {
	m, cam := newLiveModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !cam.Running() {
		t.Fatal("space should start the timer")
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("view should report the running timer")
	}

	press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if cam.Running() {
		t.Error("space should pause the timer")
	}
}

func TestLiveModel_TickDrawsFrame(t *testing.T) {
	m, _ := newLiveModel(t)

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(LiveModel)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.canvas.Lit() == 0 {
		t.Error("expected cells drawn at the origin")
	}
	if len(m.cells) != 1 || m.cells[0] != float64(m.stats.Cells) {
		t.Errorf("cells history = %v", m.cells)
	}

	view := m.View()
	for _, want := range []string{"BF", "Cells", "TIMER PAUSED"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLiveModel_ThemeAndQuit(t *testing.T) {
	m, _ := newLiveModel(t)

	m = press(t, m, runes("t"))
	if m.theme.Name != ThemeBrightfield.Name {
		t.Errorf("theme = %s", m.theme.Name)
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", ThemeFluor.Primary, ThemeFluor.Accent) != "" {
		t.Error("empty text should stay empty")
	}
	if out := GradientText("ab", "not-a-color", ThemeFluor.Accent); !strings.Contains(out, "ab") {
		t.Errorf("invalid colors should fall back to plain text, got %q", out)
	}
	if Swatch(colorful.Color{R: 1}) == "" {
		t.Error("empty swatch")
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("dapi").Name != "dapi" {
		t.Error("expected dapi theme")
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}
