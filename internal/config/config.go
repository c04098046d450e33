package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
)

const (
	DefaultCells    = 1000
	DefaultLoops    = 5
	DefaultDeltaT   = 1.0
	DefaultLogLevel = "info"
)

type Config struct {
	Seed      int64            `yaml:"seed"`
	LogLevel  string           `yaml:"log_level"`
	Generator GeneratorConfig  `yaml:"generator"`
	Camera    CameraConfig     `yaml:"camera"`
	Sequence  acquire.Sequence `yaml:"sequence"`
}

type GeneratorConfig struct {
	Cells       int            `yaml:"cells"`
	Height      int            `yaml:"height"`
	Width       int            `yaml:"width"`
	Extent      float64        `yaml:"extent"`
	RadiusLoc   float64        `yaml:"radius_loc"`
	RadiusScale float64        `yaml:"radius_scale"`
	StepScale   imagegen.Point `yaml:"step_scale"`
	StageDrift  imagegen.Point `yaml:"stage_drift"`
	CacheSize   int            `yaml:"cache_size"`
}

type CameraConfig struct {
	// Timing is the wall-clock interval between time steps, in seconds.
	Timing   float64  `yaml:"timing"`
	Channels []string `yaml:"channels"`
}

func DefaultConfig() *Config {
	gen := imagegen.DefaultOptions(DefaultCells)
	return &Config{
		LogLevel: DefaultLogLevel,
		Generator: GeneratorConfig{
			Cells:       gen.N,
			Height:      gen.Height,
			Width:       gen.Width,
			Extent:      gen.Extent,
			RadiusLoc:   gen.RadiusLoc,
			RadiusScale: gen.RadiusScale,
			StepScale:   gen.StepScale,
			CacheSize:   gen.CacheSize,
		},
		Camera: CameraConfig{
			Timing:   camera.DefaultTiming.Seconds(),
			Channels: slices.Clone(camera.DefaultChannels),
		},
		Sequence: acquire.Sequence{
			Channels:       []acquire.ChannelSpec{{Name: "BF", Exposure: 1}},
			TimePlan:       acquire.TimePlan{Loops: DefaultLoops, DeltaT: DefaultDeltaT},
			StagePositions: []acquire.Position{{}},
			AxisOrder:      acquire.DefaultAxisOrder,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that have no other boundary before use. A zero
// camera timing means the default.
func (c *Config) Validate() error {
	if c.Camera.Timing < 0 {
		return fmt.Errorf("camera.timing: %w, got %vs", camera.ErrInvalidTiming, c.Camera.Timing)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Camera.Channels = slices.Clone(c.Camera.Channels)
	out.Sequence.Channels = slices.Clone(c.Sequence.Channels)
	out.Sequence.StagePositions = slices.Clone(c.Sequence.StagePositions)
	out.Sequence.ZPlan.Positions = slices.Clone(c.Sequence.ZPlan.Positions)
	return &out
}

func (c *Config) GeneratorOptions() imagegen.Options {
	g := c.Generator
	return imagegen.Options{
		N:           g.Cells,
		Height:      g.Height,
		Width:       g.Width,
		Extent:      g.Extent,
		RadiusLoc:   g.RadiusLoc,
		RadiusScale: g.RadiusScale,
		StepScale:   g.StepScale,
		StageDrift:  g.StageDrift,
		Seed:        c.Seed,
		CacheSize:   g.CacheSize,
	}
}

// CameraOptions falls back to the camera defaults for unset values. A negative
// timing is passed through for camera.New to reject. Sequence channels missing
// from the camera presets are appended to them.
func (c *Config) CameraOptions() camera.Options {
	opts := camera.DefaultOptions()
	if c.Camera.Timing != 0 {
		opts.Timing = time.Duration(c.Camera.Timing * float64(time.Second))
	}
	if len(c.Camera.Channels) > 0 {
		opts.Channels = c.Camera.Channels
	}
	opts.Channels = slices.Clone(opts.Channels)
	for _, ch := range c.Sequence.Channels {
		if !slices.Contains(opts.Channels, ch.Name) {
			opts.Channels = append(opts.Channels, ch.Name)
		}
	}
	return opts
}

func (c *Config) AcquireSequence() acquire.Sequence {
	return c.Clone().Sequence
}
