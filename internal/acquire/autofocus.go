package acquire

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/metrics"
)

type FocusResult struct {
	Z      float64   `json:"z"`
	Score  float64   `json:"score"`
	Scores []float64 `json:"scores"`
}

// Autofocus snaps at each offset from the current focus and leaves the
// camera at the sharpest one. Ties keep the first offset.
func Autofocus(ctx context.Context, cam *camera.Camera, plan ZPlan) (*FocusResult, error) {
	offsets := plan.Offsets()
	base := cam.State().Z

	res := &FocusResult{Score: math.Inf(-1), Scores: make([]float64, 0, len(offsets))}
	for _, dz := range offsets {
		select {
		case <-ctx.Done():
			cam.SetZ(base)
			return nil, ctx.Err()
		default:
		}

		z := base + dz
		cam.SetZ(z)
		f, err := cam.LastImage()
		if err != nil {
			cam.SetZ(base)
			return nil, fmt.Errorf("autofocus at z=%g: %w", z, err)
		}

		score := metrics.Focus(f, metrics.DefaultFocusCutoff)
		res.Scores = append(res.Scores, score)
		if score > res.Score {
			res.Z, res.Score = z, score
		}
	}

	cam.SetZ(res.Z)
	return res, nil
}
