package metrics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/mdasim/internal/imagegen"
)

// DefaultFocusCutoff is the radial frequency, in cycles per pixel, above which
// spectral energy counts as detail.
const DefaultFocusCutoff = 0.1

// Focus returns the share of non-DC spectral energy above cutoff. Sharp
// in-focus cells score higher than blurred or vanished ones; an empty or flat
// frame scores 0.
func Focus(f imagegen.Frame, cutoff float64) float64 {
	if f.Height == 0 || f.Width == 0 {
		return 0
	}

	rows := make([][]float64, f.Height)
	for i := range rows {
		rows[i] = make([]float64, f.Width)
		for j := range rows[i] {
			rows[i][j] = float64(f.At(i, j))
		}
	}
	spectrum := fft.FFT2Real(rows)

	var total, high float64
	for i, row := range spectrum {
		fu := frequency(i, f.Height)
		for j, c := range row {
			if i == 0 && j == 0 {
				continue
			}
			fv := frequency(j, f.Width)
			e := math.Pow(cmplx.Abs(c), 2)
			total += e
			if math.Hypot(fu, fv) > cutoff {
				high += e
			}
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}

// frequency maps an FFT bin to signed cycles per pixel.
func frequency(k, n int) float64 {
	if k > n/2 {
		k -= n
	}
	return float64(k) / float64(n)
}
