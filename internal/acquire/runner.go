// Package acquire runs multi-dimensional acquisitions against a fake camera.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/logging"
	"github.com/san-kum/mdasim/internal/metrics"
)

// Observer is notified of every frame as it is acquired.
type Observer interface {
	OnFrame(ev Event, f imagegen.Frame)
}

type ObserverFunc func(ev Event, f imagegen.Frame)

func (fn ObserverFunc) OnFrame(ev Event, f imagegen.Frame) { fn(ev, f) }

type Record struct {
	Event Event              `json:"event"`
	Stats metrics.FrameStats `json:"stats"`
}

type Result struct {
	Frames   int                `json:"frames"`
	Steps    int                `json:"steps"`
	Records  []Record           `json:"records"`
	Metrics  map[string]float64 `json:"metrics"`
	Duration time.Duration      `json:"duration"`
}

// EventError wraps a failure with the event it happened on.
type EventError struct {
	Index   int
	Event   Event
	Wrapped error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (t=%d p=%d c=%s z=%d): %v",
		e.Index, e.Event.T, e.Event.P, e.Event.Channel, e.Event.Z, e.Wrapped)
}

func (e *EventError) Unwrap() error {
	return e.Wrapped
}

type Runner struct {
	cam       *camera.Camera
	log       *slog.Logger
	metrics   []metrics.Metric
	observers []Observer

	// focus is set once a focus metric is registered; records carry the
	// per-frame focus score only then.
	focus bool
}

func NewRunner(cam *camera.Camera, log *slog.Logger) *Runner {
	return &Runner{
		cam:       cam,
		log:       logging.OrDiscard(log),
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m metrics.Metric) {
	r.metrics = append(r.metrics, m)
	if m.Name() == metrics.FocusName {
		r.focus = true
	}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run acquires every event of seq in order. The camera advances by
// seq.TimePlan.DeltaT whenever the time index changes. On cancellation the
// partial result is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, seq Sequence) (*Result, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}

	events := seq.Events()
	result := &Result{
		Records: make([]Record, 0, len(events)),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	start := time.Now()
	r.log.Info("acquisition started", "events", len(events), "axis_order", seq.axisOrder())

	t := 0
	for _, ev := range events {
		select {
		case <-ctx.Done():
			r.finish(result, start)
			return result, ctx.Err()
		default:
		}

		if ev.T != t {
			r.cam.Advance(seq.TimePlan.DeltaT)
			t = ev.T
		}

		f, err := r.acquire(ev)
		if err != nil {
			r.finish(result, start)
			return result, &EventError{Index: ev.Index, Event: ev, Wrapped: err}
		}

		for _, m := range r.metrics {
			m.Observe(f)
		}
		for _, obs := range r.observers {
			obs.OnFrame(ev, f)
		}

		result.Records = append(result.Records, Record{Event: ev, Stats: r.summarize(f)})
		result.Frames++
	}

	r.finish(result, start)
	r.log.Info("acquisition finished", "frames", result.Frames, "duration", result.Duration)
	return result, nil
}

func (r *Runner) summarize(f imagegen.Frame) metrics.FrameStats {
	if r.focus {
		return metrics.Summarize(f)
	}
	return metrics.SummarizeNoFocus(f)
}

func (r *Runner) acquire(ev Event) (imagegen.Frame, error) {
	if err := r.cam.SetChannel(ev.Channel); err != nil {
		return imagegen.Frame{}, err
	}
	if err := r.cam.SetExposure(ev.Exposure); err != nil {
		return imagegen.Frame{}, err
	}
	r.cam.SetXY(imagegen.Point{X: ev.X, Y: ev.Y})
	r.cam.SetZ(ev.ZPos)
	return r.cam.LastImage()
}

func (r *Runner) finish(result *Result, start time.Time) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Steps = r.cam.Steps()
	result.Duration = time.Since(start)
}
