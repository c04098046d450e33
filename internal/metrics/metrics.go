// Package metrics summarizes rendered frames.
package metrics

import "github.com/san-kum/mdasim/internal/imagegen"

// Metric accumulates one scalar over the frames of an acquisition.
type Metric interface {
	Name() string
	Observe(f imagegen.Frame)
	Value() float64
	Reset()
}

// FocusName is the name NewFocus reports.
const FocusName = "focus"

// Defaults is the metric set the acquisition runner reports.
func Defaults() []Metric {
	return []Metric{
		NewVisibleCells(),
		NewMeanIntensity(),
		NewPeakIntensity(),
		NewFocus(DefaultFocusCutoff),
	}
}

// mean averages a per-frame value.
type mean struct {
	name    string
	fn      func(imagegen.Frame) float64
	samples int
	total   float64
}

func (m *mean) Name() string { return m.name }

func (m *mean) Observe(f imagegen.Frame) {
	m.total += m.fn(f)
	m.samples++
}

func (m *mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *mean) Reset() {
	m.total = 0
	m.samples = 0
}

// NewVisibleCells averages the number of distinct non-zero labels per frame.
// It is meaningful for channel 0 frames.
func NewVisibleCells() Metric {
	return &mean{name: "cells", fn: func(f imagegen.Frame) float64 { return float64(CountLabels(f)) }}
}

// NewMeanIntensity averages the mean pixel value per frame.
func NewMeanIntensity() Metric {
	return &mean{name: "mean", fn: MeanIntensity}
}

// NewFocus averages the high-frequency energy share per frame.
func NewFocus(cutoff float64) Metric {
	return &mean{name: FocusName, fn: func(f imagegen.Frame) float64 { return Focus(f, cutoff) }}
}

// PeakIntensity tracks the brightest pixel seen.
type PeakIntensity struct {
	peak uint16
}

func NewPeakIntensity() *PeakIntensity { return &PeakIntensity{} }

func (p *PeakIntensity) Name() string { return "peak" }

func (p *PeakIntensity) Observe(f imagegen.Frame) {
	p.peak = max(p.peak, Peak(f))
}

func (p *PeakIntensity) Value() float64 { return float64(p.peak) }
func (p *PeakIntensity) Reset()         { p.peak = 0 }
