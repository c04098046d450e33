package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
)

func TestDefaultConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	g.Expect(cfg.Generator.Cells).To(Equal(DefaultCells))
	g.Expect(cfg.LogLevel).To(Equal("info"))
	g.Expect(cfg.GeneratorOptions().Validate()).To(Succeed())
	g.Expect(cfg.Sequence.Validate()).To(Succeed())
	g.Expect(cfg.CameraOptions().Timing).To(Equal(camera.DefaultTiming))
}

func TestGetPreset(t *testing.T) {
	g := NewWithT(t)

	cfg := GetPreset("napari")
	g.Expect(cfg).NotTo(BeNil())
	g.Expect(cfg.Generator.Cells).To(Equal(4000))
	g.Expect(cfg.Sequence.Channels).To(HaveLen(3))
	g.Expect(cfg.Sequence.ZPlan.Offsets()).To(HaveLen(11))
	g.Expect(cfg.Sequence.Events()).To(HaveLen(4 * 2 * 3 * 11))
}

func TestGetPreset_NotFound(t *testing.T) {
	NewWithT(t).Expect(GetPreset("nonexistent")).To(BeNil())
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	g := NewWithT(t)

	cfg := GetPreset("napari")
	cfg.Generator.Cells = 1
	cfg.Sequence.Channels[0].Name = "changed"

	again := GetPreset("napari")
	g.Expect(again.Generator.Cells).To(Equal(4000))
	g.Expect(again.Sequence.Channels[0].Name).To(Equal("BF"))
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			g := NewWithT(t)
			cfg := GetPreset(name)
			g.Expect(cfg.GeneratorOptions().Validate()).To(Succeed())
			g.Expect(cfg.Sequence.Validate()).To(Succeed())
		})
	}
}

func TestListPresets(t *testing.T) {
	NewWithT(t).Expect(ListPresets()).To(Equal([]string{"basic", "dense", "drift", "napari"}))
}

func TestLinspace(t *testing.T) {
	g := NewWithT(t)

	z := linspace(-30, 30, 10)
	g.Expect(z).To(HaveLen(10))
	g.Expect(z[0]).To(Equal(-30.0))
	g.Expect(z[9]).To(Equal(30.0))
	g.Expect(z[1]).To(BeNumerically("~", -30+60.0/9, 1e-12))
	g.Expect(linspace(3, 7, 1)).To(Equal([]float64{3}))
}

func TestSaveLoad(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "mdasim.yaml")

	cfg := GetPreset("napari")
	cfg.Seed = 99
	cfg.Generator.StageDrift = imagegen.Point{X: 1, Y: -1}
	g.Expect(Save(path, cfg)).To(Succeed())

	loaded, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded).To(Equal(cfg))
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "partial.yaml")
	g.Expect(os.WriteFile(path, []byte("seed: 7\ngenerator:\n  cells: 50\n"), 0644)).To(Succeed())

	loaded, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded.Seed).To(Equal(int64(7)))
	g.Expect(loaded.Generator.Cells).To(Equal(50))
	g.Expect(loaded.Generator.Height).To(Equal(imagegen.DefaultHeight))
	g.Expect(loaded.Sequence.TimePlan.Loops).To(Equal(DefaultLoops))
	g.Expect(loaded.GeneratorOptions().Seed).To(Equal(int64(7)))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	NewWithT(t).Expect(err).To(HaveOccurred())
}

func TestCameraOptions(t *testing.T) {
	g := NewWithT(t)

	cfg := DefaultConfig()
	cfg.Camera.Timing = 0.5
	cfg.Camera.Channels = []string{"BF"}
	cfg.Sequence.Channels = []acquire.ChannelSpec{{Name: "BF", Exposure: 1}, {Name: "Cy5", Exposure: 2}}

	opts := cfg.CameraOptions()
	g.Expect(opts.Timing).To(Equal(500 * time.Millisecond))
	g.Expect(opts.Channels).To(Equal([]string{"BF", "Cy5"}))
	g.Expect(cfg.Camera.Channels).To(Equal([]string{"BF"}))
}

func TestValidate_Timing(t *testing.T) {
	g := NewWithT(t)

	cfg := DefaultConfig()
	cfg.Camera.Timing = 0
	g.Expect(cfg.Validate()).To(Succeed())
	g.Expect(cfg.CameraOptions().Timing).To(Equal(camera.DefaultTiming))

	cfg.Camera.Timing = -5
	g.Expect(cfg.Validate()).To(MatchError(camera.ErrInvalidTiming))
	g.Expect(cfg.CameraOptions().Timing).To(Equal(-5 * time.Second))

	gen, err := imagegen.New(cfg.GeneratorOptions())
	g.Expect(err).NotTo(HaveOccurred())
	_, err = camera.New(gen, cfg.CameraOptions())
	g.Expect(err).To(MatchError(camera.ErrInvalidTiming))
}

func TestLoad_RejectsNegativeTiming(t *testing.T) {
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	g.Expect(os.WriteFile(path, []byte("camera:\n  timing: -2\n"), 0644)).To(Succeed())

	_, err := Load(path)
	g.Expect(err).To(MatchError(camera.ErrInvalidTiming))
}
