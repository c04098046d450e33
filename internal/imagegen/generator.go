package imagegen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	amplitudeMean = 1024.0
	amplitudeStd  = 256.0
)

// Generator owns a fixed population of cells and renders frames of it.
type Generator struct {
	opts Options
	src  rand.Source
	rng  *rand.Rand

	ids    []int
	radii  []float64
	colors []colorful.Color
	pos    []Point

	channels map[int]*channelParams
	cache    *renderCache
	steps    int
}

// channelParams holds the lazily derived intensity model of one channel.
type channelParams struct {
	amplitude float64
	sigma     []float64
}

// ChannelParams is a copy of a channel's intensity model.
type ChannelParams struct {
	Amplitude float64
	Sigma     []float64
}

// New builds the whole population at once.
func New(opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cache, err := newRenderCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	src := newSource(opts.Seed)
	n := opts.N
	g := &Generator{
		opts:     opts,
		src:      src,
		rng:      rand.New(src),
		ids:      make([]int, n),
		radii:    make([]float64, n),
		colors:   make([]colorful.Color, n),
		pos:      make([]Point, n),
		channels: make(map[int]*channelParams),
		cache:    cache,
	}

	radius := distuv.Normal{Mu: opts.RadiusLoc, Sigma: opts.RadiusScale, Src: src}
	for i := range n {
		g.ids[i] = i
		g.radii[i] = radius.Rand()
	}
	for i := range n {
		g.colors[i] = colorful.Color{R: g.rng.Float64(), G: g.rng.Float64(), B: g.rng.Float64()}
	}

	hx := float64(opts.Height) * opts.Extent
	hy := float64(opts.Width) * opts.Extent
	xs := distuv.Uniform{Min: -hx, Max: hx, Src: src}
	for i := range n {
		g.pos[i].X = xs.Rand()
	}
	ys := distuv.Uniform{Min: -hy, Max: hy, Src: src}
	for i := range n {
		g.pos[i].Y = ys.Rand()
	}

	return g, nil
}

func newSource(seed int64) rand.Source {
	if seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(uint64(seed), uint64(seed))
}

func (g *Generator) N() int            { return g.opts.N }
func (g *Generator) Shape() (h, w int) { return g.opts.Height, g.opts.Width }
func (g *Generator) Options() Options  { return g.opts }
func (g *Generator) Steps() int        { return g.steps }
func (g *Generator) CacheLen() int     { return g.cache.len() }

// Color is the false color assigned to cell id.
func (g *Generator) Color(id int) colorful.Color { return g.colors[id] }

// Cells returns a snapshot of the population in id order.
func (g *Generator) Cells() []Cell {
	cells := make([]Cell, len(g.ids))
	for i, id := range g.ids {
		cells[i] = Cell{ID: id, Position: g.pos[i], Radius: g.radii[i], Color: g.colors[i]}
	}
	return cells
}

// Centroid is the mean position of the population.
func (g *Generator) Centroid() Point {
	var c Point
	for _, p := range g.pos {
		c = c.Add(p)
	}
	n := float64(len(g.pos))
	return Point{X: c.X / n, Y: c.Y / n}
}

// Channel returns the intensity model of channel c, deriving it on first use.
func (g *Generator) Channel(c int) ChannelParams {
	p := g.channelParams(c)
	sigma := make([]float64, len(p.sigma))
	copy(sigma, p.sigma)
	return ChannelParams{Amplitude: p.amplitude, Sigma: sigma}
}

// channelParams looks up channel c and inserts it when missing. The sigma
// vector is drawn before the amplitude.
func (g *Generator) channelParams(c int) *channelParams {
	if p, ok := g.channels[c]; ok {
		return p
	}

	width := distuv.Normal{Mu: g.opts.RadiusLoc / 10, Sigma: g.opts.RadiusScale / 10, Src: g.src}
	p := &channelParams{sigma: make([]float64, g.opts.N)}
	for i := range p.sigma {
		p.sigma[i] = 1 + math.Abs(width.Rand())
	}
	amplitude := distuv.Normal{Mu: amplitudeMean, Sigma: amplitudeStd, Src: g.src}
	p.amplitude = math.Abs(amplitude.Rand())

	g.channels[c] = p
	return p
}

// Advance moves every cell by an independent normal step with per-axis
// standard deviation StepScale*dt, then adds the stage drift once. The drift
// is not scaled by dt. Any cached frames are dropped.
func (g *Generator) Advance(dt float64) {
	g.cache.purge()

	sx := distuv.Normal{Sigma: math.Abs(g.opts.StepScale.X * dt), Src: g.src}
	sy := distuv.Normal{Sigma: math.Abs(g.opts.StepScale.Y * dt), Src: g.src}
	drift := g.opts.StageDrift
	for i := range g.pos {
		g.pos[i].X += sx.Rand() + drift.X
		g.pos[i].Y += sy.Rand() + drift.Y
	}
	g.steps++
}
