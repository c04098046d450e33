package metrics

import "github.com/san-kum/mdasim/internal/imagegen"

// FrameStats describes one frame.
type FrameStats struct {
	Cells int     `json:"cells"`
	Mean  float64 `json:"mean"`
	Peak  uint16  `json:"peak"`
	Focus float64 `json:"focus"`
}

// Summarize fills every field of FrameStats. Focus runs a 2-D FFT over the
// whole frame and dominates the cost; use SummarizeNoFocus when it is not
// needed.
func Summarize(f imagegen.Frame) FrameStats {
	s := SummarizeNoFocus(f)
	s.Focus = Focus(f, DefaultFocusCutoff)
	return s
}

// SummarizeNoFocus leaves Focus at 0.
func SummarizeNoFocus(f imagegen.Frame) FrameStats {
	return FrameStats{
		Cells: CountLabels(f),
		Mean:  MeanIntensity(f),
		Peak:  Peak(f),
	}
}

// CountLabels counts distinct non-zero pixel values.
func CountLabels(f imagegen.Frame) int {
	n := 0
	for _, l := range f.Labels() {
		if l != 0 {
			n++
		}
	}
	return n
}

func MeanIntensity(f imagegen.Frame) float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f.Pix {
		sum += float64(v)
	}
	return sum / float64(len(f.Pix))
}

func Peak(f imagegen.Frame) uint16 {
	var p uint16
	for _, v := range f.Pix {
		p = max(p, v)
	}
	return p
}
