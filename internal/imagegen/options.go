package imagegen

import "fmt"

const (
	DefaultHeight      = 512
	DefaultWidth       = 512
	DefaultExtent      = 10.0
	DefaultRadiusLoc   = 25.0
	DefaultRadiusScale = 5.0
	DefaultStepScale   = 2.5
	DefaultCacheSize   = 256

	// MaxCells keeps every id representable as a uint16 pixel.
	MaxCells = 1 << 16
)

// Options configures a Generator.
type Options struct {
	N      int `json:"n"`
	Height int `json:"height"`
	Width  int `json:"width"`

	// Extent scatters cells uniformly over [-Height*Extent, Height*Extent) x
	// [-Width*Extent, Width*Extent).
	Extent      float64 `json:"extent"`
	RadiusLoc   float64 `json:"radius_loc"`
	RadiusScale float64 `json:"radius_scale"`

	// StepScale is the per-axis standard deviation of one time step.
	StepScale Point `json:"step_scale"`
	// StageDrift is added to every position on every time step.
	StageDrift Point `json:"stage_drift"`

	// Seed makes the population reproducible. Zero seeds from system entropy.
	Seed int64 `json:"seed"`
	// CacheSize bounds the render cache. Zero disables caching.
	CacheSize int `json:"cache_size"`
}

func DefaultOptions(n int) Options {
	return Options{
		N:           n,
		Height:      DefaultHeight,
		Width:       DefaultWidth,
		Extent:      DefaultExtent,
		RadiusLoc:   DefaultRadiusLoc,
		RadiusScale: DefaultRadiusScale,
		StepScale:   Point{X: DefaultStepScale, Y: DefaultStepScale},
		CacheSize:   DefaultCacheSize,
	}
}

func (o Options) Validate() error {
	switch {
	case o.N <= 0:
		return fmt.Errorf("%w: population size must be positive, got %d", ErrInvalidOptions, o.N)
	case o.N > MaxCells:
		return fmt.Errorf("%w: population size %d exceeds %d", ErrInvalidOptions, o.N, MaxCells)
	case o.Height <= 0 || o.Width <= 0:
		return fmt.Errorf("%w: frame shape must be positive, got %dx%d", ErrInvalidOptions, o.Height, o.Width)
	case o.Extent < 0:
		return fmt.Errorf("%w: extent must be non-negative, got %f", ErrInvalidOptions, o.Extent)
	case o.RadiusScale < 0:
		return fmt.Errorf("%w: radius scale must be non-negative, got %f", ErrInvalidOptions, o.RadiusScale)
	case o.StepScale.X < 0 || o.StepScale.Y < 0:
		return fmt.Errorf("%w: step scale must be non-negative, got %v", ErrInvalidOptions, o.StepScale)
	case o.CacheSize < 0:
		return fmt.Errorf("%w: cache size must be non-negative, got %d", ErrInvalidOptions, o.CacheSize)
	}
	return nil
}
