// Package camera exposes an image generator as a fake microscope camera.
//
// A Camera tracks the stage position, focus, exposure and channel preset the
// way a microscope core would, renders a frame for that state on Snap, and can
// advance simulated time on a wall-clock ticker. All access to the generator
// goes through the camera's mutex.
package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/logging"
)

const DefaultTiming = 10 * time.Second

var DefaultChannels = []string{"BF", "DAPI", "FITC"}

type Options struct {
	// Timing is the wall-clock interval between simulated time steps.
	Timing   time.Duration
	Channels []string
	Logger   *slog.Logger
}

func DefaultOptions() Options {
	return Options{Timing: DefaultTiming, Channels: DefaultChannels}
}

// State is the stage and acquisition state the next snap will use.
type State struct {
	XY       imagegen.Point
	Z        float64
	Exposure float64
	Channel  string

	// ChannelIndex is the generator channel Channel renders as.
	ChannelIndex int
}

type Camera struct {
	mu       sync.Mutex
	gen      *imagegen.Generator
	channels *ChannelTracker
	log      *slog.Logger

	xy       imagegen.Point
	z        float64
	exposure float64
	image    *imagegen.Frame

	timing time.Duration
	ticker *time.Ticker
	cancel context.CancelFunc
	done   chan struct{}
}

func New(gen *imagegen.Generator, opts Options) (*Camera, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}
	if opts.Timing <= 0 {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidTiming, opts.Timing)
	}
	channels := opts.Channels
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	return &Camera{
		gen:      gen,
		channels: NewChannelTracker(channels),
		log:      logging.OrDiscard(opts.Logger),
		exposure: 1,
		timing:   opts.Timing,
	}, nil
}

func (c *Camera) Generator() *imagegen.Generator { return c.gen }

func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		XY:           c.xy,
		Z:            c.z,
		Exposure:     c.exposure,
		Channel:      c.channels.Current(),
		ChannelIndex: c.channels.CurrentIndex(),
	}
}

func (c *Camera) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels.Presets()
}

func (c *Camera) SetXY(p imagegen.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.xy = p
}

func (c *Camera) SetZ(z float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.z = z
}

func (c *Camera) SetExposure(e float64) error {
	if !(e > 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidExposure, e)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exposure = e
	return nil
}

func (c *Camera) SetChannel(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels.Set(name)
}

// NextChannel cycles to the next channel preset and returns its name.
func (c *Camera) NextChannel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels.Next()
}

// Advance steps the simulation by dt time units.
func (c *Camera) Advance(dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen.Advance(dt)
	c.log.Debug("advanced simulation", "dt", dt, "steps", c.gen.Steps())
}

func (c *Camera) Steps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen.Steps()
}

// Snap renders a frame for the current state and keeps it for Image.
func (c *Camera) Snap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := imagegen.SnapParams{
		Center:   c.xy,
		Channel:  c.channels.CurrentIndex(),
		Z:        c.z,
		Exposure: c.exposure,
	}
	f := c.gen.SnapParams(p)
	c.image = &f
	c.log.Log(context.Background(), logging.LevelTrace, "snapped frame",
		"x", p.Center.X, "y", p.Center.Y, "channel", c.channels.Current(), "z", p.Z, "exposure", p.Exposure)
}

// Image returns the last snapped frame, or ErrNotReady before the first snap.
func (c *Camera) Image() (imagegen.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.image == nil {
		return imagegen.Frame{}, ErrNotReady
	}
	return c.image.Clone(), nil
}

// LastImage snaps and returns the new frame.
func (c *Camera) LastImage() (imagegen.Frame, error) {
	c.Snap()
	return c.Image()
}

func (c *Camera) Timing() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timing
}

// SetTiming changes the time-step interval, also for a running timer.
func (c *Camera) SetTiming(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidTiming, d)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timing = d
	if c.ticker != nil {
		c.ticker.Reset(d)
	}
	return nil
}

// Start advances the simulation by one step every Timing until ctx is done or
// Pause is called. Starting a running camera does nothing; once ctx is done
// the camera reports not running and can be started again.
func (c *Camera) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.ticker = time.NewTicker(c.timing)
	c.done = make(chan struct{})
	c.log.Info("simulation timer started", "timing", c.timing)

	go c.run(ctx, c.ticker, c.done)
}

func (c *Camera) run(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.stopped(done)
			return
		case <-ticker.C:
			c.Advance(1)
		}
	}
}

// stopped clears the timer state when the loop owning done exits on its own,
// so the camera can be started again.
func (c *Camera) stopped(done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != done {
		return
	}
	c.cancel()
	c.cancel, c.ticker, c.done = nil, nil, nil
	c.log.Info("simulation timer stopped")
}

// Pause stops the timer and waits for it to exit.
func (c *Camera) Pause() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel()
	done := c.done
	c.cancel, c.ticker, c.done = nil, nil, nil
	c.mu.Unlock()

	<-done
	c.log.Info("simulation timer paused")
}

func (c *Camera) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
