package imagegen

import "math"

// SnapParams identifies one render. It is also the render cache key.
type SnapParams struct {
	Center   Point
	Channel  int
	Z        float64
	Exposure float64
}

type SnapOption func(*SnapParams)

func WithChannel(c int) SnapOption      { return func(p *SnapParams) { p.Channel = c } }
func WithZ(z float64) SnapOption        { return func(p *SnapParams) { p.Z = z } }
func WithExposure(e float64) SnapOption { return func(p *SnapParams) { p.Exposure = e } }

// Snap renders the camera field of view centered on center. Without options
// it images channel 0 in focus at exposure 1.
func (g *Generator) Snap(center Point, opts ...SnapOption) Frame {
	p := SnapParams{Center: center, Exposure: 1}
	for _, opt := range opts {
		opt(&p)
	}
	return g.SnapParams(p)
}

// SnapParams renders with explicit parameters, serving repeats from the
// render cache until the next Advance.
func (g *Generator) SnapParams(p SnapParams) Frame {
	if f, ok := g.cache.get(p); ok {
		return f
	}
	f := g.render(p)
	g.cache.add(p, f)
	return f.Clone()
}

// SnapRGB renders channel 0 at focal offset z and its false-color version.
func (g *Generator) SnapRGB(center Point, z float64) (Frame, ColorFrame) {
	f := g.Snap(center, WithZ(z))
	return f, g.ToRGB(f)
}

func (g *Generator) render(p SnapParams) Frame {
	h, w := g.opts.Height, g.opts.Width
	out := NewFrame(h, w)
	params := g.channelParams(p.Channel)

	// window bounds use integer halves, local offsets use exact halves
	halfH, halfW := float64(h/2), float64(w/2)
	offset := Point{X: float64(h)/2 - p.Center.X, Y: float64(w)/2 - p.Center.Y}

	for i, pos := range g.pos {
		if pos.X <= p.Center.X-halfH || pos.X >= p.Center.X+halfH {
			continue
		}
		if pos.Y <= p.Center.Y-halfW || pos.Y >= p.Center.Y+halfW {
			continue
		}
		r2 := DefocusRadius2(g.radii[i], p.Z)
		if r2 <= 0 {
			continue
		}
		local := pos.Add(offset)

		if p.Channel > 0 {
			scale := p.Exposure * params.amplitude
			spread := 2 * params.sigma[i] * params.sigma[i]
			fillDisk(out, local, r2, func(d float64) uint16 {
				return saturate(scale * math.Exp(-d/spread))
			})
		} else {
			id := uint16(g.ids[i])
			fillDisk(out, local, r2, func(float64) uint16 { return id })
		}
	}
	return out
}

// DefocusRadius2 is the squared apparent radius of a cell of radius r seen
// at focal offset z: max(0, r² - z²).
func DefocusRadius2(r, z float64) float64 {
	return math.Max(0, r*r-z*z)
}

// DefocusRadius is sqrt(max(0, r² - z²)).
func DefocusRadius(r, z float64) float64 {
	return math.Sqrt(DefocusRadius2(r, z))
}

// fillDisk writes value(d) to every pixel strictly inside the circle of
// squared radius r2 around c, d being the pixel's distance to c.
func fillDisk(f Frame, c Point, r2 float64, value func(d float64) uint16) {
	r := math.Sqrt(r2)
	rowMin := max(0, int(math.Floor(c.X-r)))
	rowMax := min(f.Height-1, int(math.Ceil(c.X+r)))
	colMin := max(0, int(math.Floor(c.Y-r)))
	colMax := min(f.Width-1, int(math.Ceil(c.Y+r)))

	for i := rowMin; i <= rowMax; i++ {
		dx := float64(i) - c.X
		for j := colMin; j <= colMax; j++ {
			dy := float64(j) - c.Y
			d2 := dx*dx + dy*dy
			if d2 < r2 {
				f.Pix[i*f.Width+j] = value(math.Sqrt(d2))
			}
		}
	}
}

// saturate truncates toward zero and clips to the uint16 range.
func saturate(v float64) uint16 {
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}
