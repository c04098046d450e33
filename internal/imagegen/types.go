package imagegen

import (
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Point is a location in stage coordinates. X runs along frame rows (the
// height axis) and Y along frame columns (the width axis).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Cell is a snapshot of one member of the population.
type Cell struct {
	ID       int
	Position Point
	Radius   float64
	Color    colorful.Color
}

// Frame is a row-major grid of unsigned intensities.
type Frame struct {
	Height, Width int
	Pix           []uint16
}

func NewFrame(height, width int) Frame {
	return Frame{Height: height, Width: width, Pix: make([]uint16, height*width)}
}

func (f Frame) At(row, col int) uint16     { return f.Pix[row*f.Width+col] }
func (f Frame) Set(row, col int, v uint16) { f.Pix[row*f.Width+col] = v }

func (f Frame) Clone() Frame {
	c := Frame{Height: f.Height, Width: f.Width, Pix: make([]uint16, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

func (f Frame) Equal(o Frame) bool {
	return f.Height == o.Height && f.Width == o.Width && slices.Equal(f.Pix, o.Pix)
}

// Labels returns the distinct pixel values present, ascending.
func (f Frame) Labels() []uint16 {
	var seen [1 << 16]bool
	labels := make([]uint16, 0, 16)
	for _, v := range f.Pix {
		if !seen[v] {
			seen[v] = true
			labels = append(labels, v)
		}
	}
	slices.Sort(labels)
	return labels
}

// ColorFrame is a row-major grid of RGB colors with components in [0, 1).
type ColorFrame struct {
	Height, Width int
	Pix           []colorful.Color
}

func NewColorFrame(height, width int) ColorFrame {
	return ColorFrame{Height: height, Width: width, Pix: make([]colorful.Color, height*width)}
}

func (c ColorFrame) At(row, col int) colorful.Color { return c.Pix[row*c.Width+col] }
