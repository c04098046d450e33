package config

import (
	"maps"
	"slices"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/imagegen"
)

var Presets = map[string]*Config{
	// A single field of view focused through +-30 over five time points.
	"basic": withDefaults(func(c *Config) {
		c.Generator.Cells = 10000
		c.Sequence = acquire.Sequence{
			Channels:       []acquire.ChannelSpec{{Name: "BF", Exposure: 1}},
			TimePlan:       acquire.TimePlan{Loops: 5, DeltaT: 1},
			ZPlan:          acquire.ZPlan{Positions: linspace(-30, 30, 10)},
			StagePositions: []acquire.Position{{X: -512, Y: 0}},
			AxisOrder:      "tpcz",
		}
	}),
	"napari": withDefaults(func(c *Config) {
		c.Generator.Cells = 4000
		c.Sequence = acquire.Sequence{
			Channels: []acquire.ChannelSpec{
				{Name: "BF", Exposure: 1},
				{Name: "DAPI", Exposure: 1},
				{Name: "FITC", Exposure: 10},
			},
			TimePlan:       acquire.TimePlan{Loops: 4, DeltaT: 1},
			ZPlan:          acquire.ZPlan{Range: 50, Step: 5},
			StagePositions: []acquire.Position{{X: 0, Y: 1, Z: 1}, {X: 512, Y: 128, Z: 0}},
			AxisOrder:      "tpcz",
		}
	}),
	// No diffusion, only a constant stage drift.
	"drift": withDefaults(func(c *Config) {
		c.Generator.Cells = 2000
		c.Generator.StepScale = imagegen.Point{}
		c.Generator.StageDrift = imagegen.Point{X: 4, Y: -2}
		c.Sequence.TimePlan = acquire.TimePlan{Loops: 20, DeltaT: 1}
	}),
	"dense": withDefaults(func(c *Config) {
		c.Generator.Cells = imagegen.MaxCells
		c.Generator.Extent = 2
		c.Generator.RadiusLoc = 12
		c.Generator.RadiusScale = 3
		c.Sequence.Channels = []acquire.ChannelSpec{{Name: "BF", Exposure: 1}, {Name: "FITC", Exposure: 5}}
	}),
}

func withDefaults(fn func(*Config)) *Config {
	cfg := DefaultConfig()
	fn(cfg)
	return cfg
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
