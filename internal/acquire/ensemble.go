package acquire

import (
	"context"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/metrics"
)

// CameraFactory builds an independent camera over a population drawn with
// the given seed.
type CameraFactory func(seed int64) (*camera.Camera, error)

// Ensemble acquires the same sequence over populations with consecutive
// seeds, one goroutine per run.
type Ensemble struct {
	newCamera  CameraFactory
	newMetrics func() []metrics.Metric
	numRuns    int
	seedStart  int64
}

func NewEnsemble(newCamera CameraFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		newCamera:  newCamera,
		newMetrics: metrics.Defaults,
		numRuns:    numRuns,
		seedStart:  seedStart,
	}
}

// Run returns one result per seed together with the first error any run hit.
// Runs that were cancelled keep their partial result; a run whose camera
// could not be built leaves a nil entry.
func (e *Ensemble) Run(ctx context.Context, seq Sequence) ([]*Result, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cam, err := e.newCamera(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}

			r := NewRunner(cam, nil)
			for _, m := range e.newMetrics() {
				r.AddMetric(m)
			}
			results[idx], errs[idx] = r.Run(ctx, seq)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Spread is the mean and standard deviation of a metric across runs.
type Spread struct {
	Mean   float64
	StdDev float64
}

// Summarize aggregates each metric over the ensemble, skipping missing runs.
func Summarize(results []*Result) map[string]Spread {
	values := make(map[string][]float64)
	for _, res := range results {
		if res == nil {
			continue
		}
		for name, v := range res.Metrics {
			values[name] = append(values[name], v)
		}
	}

	out := make(map[string]Spread, len(values))
	for name, vs := range values {
		var s Spread
		if len(vs) > 1 {
			s.Mean, s.StdDev = stat.MeanStdDev(vs, nil)
		} else {
			s.Mean = vs[0]
		}
		out[name] = s
	}
	return out
}
