package viz

import "github.com/san-kum/mdasim/internal/imagegen"

// DrawFrame clears c and lights every sub-pixel whose block of frame pixels
// has a maximum above threshold. Frame rows map to canvas rows.
func DrawFrame(c *Canvas, f imagegen.Frame, threshold uint16) {
	c.Clear()
	sw, sh := c.SubWidth(), c.SubHeight()
	if sw == 0 || sh == 0 || f.Height == 0 || f.Width == 0 {
		return
	}

	for y := range sh {
		r0, r1 := span(y, sh, f.Height)
		for x := range sw {
			c0, c1 := span(x, sw, f.Width)
			if blockMax(f, r0, r1, c0, c1) > threshold {
				c.Set(x, y)
			}
		}
	}
}

// span maps sub-pixel i of n onto the half-open pixel range it covers out of
// size, never empty.
func span(i, n, size int) (int, int) {
	lo := i * size / n
	hi := (i + 1) * size / n
	if hi <= lo {
		hi = lo + 1
	}
	return lo, min(hi, size)
}

func blockMax(f imagegen.Frame, r0, r1, c0, c1 int) uint16 {
	var m uint16
	for i := r0; i < r1; i++ {
		for _, v := range f.Pix[i*f.Width+c0 : i*f.Width+c1] {
			m = max(m, v)
		}
	}
	return m
}

// Threshold picks the display threshold as a fraction of the frame peak.
func Threshold(f imagegen.Frame, frac float64) uint16 {
	var peak uint16
	for _, v := range f.Pix {
		peak = max(peak, v)
	}
	return uint16(frac * float64(peak))
}
