package imagegen

import "github.com/lucasb-eyer/go-colorful"

// Background is the color of label 0.
var Background = colorful.Color{}

// Colorize paints a labeled frame. The palette is indexed by the rank of each
// label among the labels present, so the k-th smallest label gets palette[k]
// regardless of its numeric value. Label 0 is background. A short palette is
// reused cyclically.
func Colorize(f Frame, palette []colorful.Color) ColorFrame {
	out := NewColorFrame(f.Height, f.Width)

	labels := f.Labels()
	lut := make(map[uint16]colorful.Color, len(labels))
	for k, label := range labels {
		if label == 0 || len(palette) == 0 {
			lut[label] = Background
			continue
		}
		lut[label] = palette[k%len(palette)]
	}

	for i, v := range f.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// ToRGB colors a channel 0 frame with each present cell's own color. Labels
// outside the population wrap around it.
func (g *Generator) ToRGB(f Frame) ColorFrame {
	labels := f.Labels()
	palette := make([]colorful.Color, len(labels))
	for k, label := range labels {
		palette[k] = g.colors[int(label)%g.opts.N]
	}
	return Colorize(f, palette)
}
