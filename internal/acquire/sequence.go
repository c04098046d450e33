package acquire

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalidSequence indicates a sequence that cannot be acquired.
var ErrInvalidSequence = errors.New("acquire: invalid sequence")

const DefaultAxisOrder = "tpcz"

type ChannelSpec struct {
	Name     string  `json:"config" yaml:"config"`
	Exposure float64 `json:"exposure" yaml:"exposure"`
}

type TimePlan struct {
	Loops int `json:"loops" yaml:"loops"`
	// DeltaT is the simulated time that passes between time points.
	DeltaT float64 `json:"delta_t" yaml:"delta_t"`
}

// ZPlan lists focal offsets relative to each stage position. Explicit
// Positions win over Range/Step.
type ZPlan struct {
	Range     float64   `json:"range" yaml:"range"`
	Step      float64   `json:"step" yaml:"step"`
	Positions []float64 `json:"positions,omitempty" yaml:"positions,omitempty"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Sequence is a multi-dimensional acquisition: time points, stage positions,
// channels and z-slices.
type Sequence struct {
	Channels       []ChannelSpec `json:"channels" yaml:"channels"`
	TimePlan       TimePlan      `json:"time_plan" yaml:"time_plan"`
	ZPlan          ZPlan         `json:"z_plan" yaml:"z_plan"`
	StagePositions []Position    `json:"stage_positions" yaml:"stage_positions"`
	AxisOrder      string        `json:"axis_order" yaml:"axis_order"`
}

// Event is one frame of a sequence.
type Event struct {
	Index    int     `json:"index"`
	T        int     `json:"t"`
	P        int     `json:"p"`
	C        int     `json:"c"`
	Z        int     `json:"z"`
	Channel  string  `json:"channel"`
	Exposure float64 `json:"exposure"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ZPos     float64 `json:"z_pos"`
}

func (s Sequence) Validate() error {
	if s.TimePlan.Loops < 1 {
		return fmt.Errorf("%w: time loops must be at least 1, got %d", ErrInvalidSequence, s.TimePlan.Loops)
	}
	if s.TimePlan.DeltaT < 0 {
		return fmt.Errorf("%w: delta_t must be non-negative, got %f", ErrInvalidSequence, s.TimePlan.DeltaT)
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidSequence)
	}
	for _, ch := range s.Channels {
		if !(ch.Exposure > 0) {
			return fmt.Errorf("%w: channel %q exposure must be positive, got %f", ErrInvalidSequence, ch.Name, ch.Exposure)
		}
	}
	if len(s.StagePositions) == 0 {
		return fmt.Errorf("%w: no stage positions", ErrInvalidSequence)
	}
	if len(s.ZPlan.Positions) == 0 && s.ZPlan.Range != 0 && !(s.ZPlan.Step > 0) {
		return fmt.Errorf("%w: z step must be positive with a z range, got %f", ErrInvalidSequence, s.ZPlan.Step)
	}
	return validateAxisOrder(s.axisOrder())
}

func (s Sequence) axisOrder() string {
	if s.AxisOrder == "" {
		return DefaultAxisOrder
	}
	return s.AxisOrder
}

// validateAxisOrder requires a permutation of "tpcz" with time outermost,
// since simulated time only moves forward.
func validateAxisOrder(order string) error {
	axes := []rune(order)
	slices.Sort(axes)
	if string(axes) != "cptz" {
		return fmt.Errorf("%w: axis order %q is not a permutation of %q", ErrInvalidSequence, order, DefaultAxisOrder)
	}
	if !strings.HasPrefix(order, "t") {
		return fmt.Errorf("%w: axis order %q must start with t", ErrInvalidSequence, order)
	}
	return nil
}

// Offsets lists the focal offsets of the plan: explicit positions, else
// -Range/2 to +Range/2 inclusive in Step increments, else a single 0.
func (z ZPlan) Offsets() []float64 {
	if len(z.Positions) > 0 {
		return slices.Clone(z.Positions)
	}
	if z.Range == 0 || !(z.Step > 0) {
		return []float64{0}
	}
	n := int(math.Floor(math.Abs(z.Range)/z.Step+1e-9)) + 1
	offsets := make([]float64, n)
	start := -math.Abs(z.Range) / 2
	for i := range offsets {
		offsets[i] = start + float64(i)*z.Step
	}
	return offsets
}

// Events enumerates the sequence in axis order, first axis slowest.
func (s Sequence) Events() []Event {
	offsets := s.ZPlan.Offsets()
	sizes := map[rune]int{
		't': s.TimePlan.Loops,
		'p': len(s.StagePositions),
		'c': len(s.Channels),
		'z': len(offsets),
	}
	order := []rune(s.axisOrder())

	total := 1
	for _, a := range order {
		total *= sizes[a]
	}

	events := make([]Event, 0, total)
	idx := make(map[rune]int, len(order))
	for n := range total {
		rem := n
		for i := len(order) - 1; i >= 0; i-- {
			a := order[i]
			idx[a] = rem % sizes[a]
			rem /= sizes[a]
		}
		pos := s.StagePositions[idx['p']]
		ch := s.Channels[idx['c']]
		events = append(events, Event{
			Index:    n,
			T:        idx['t'],
			P:        idx['p'],
			C:        idx['c'],
			Z:        idx['z'],
			Channel:  ch.Name,
			Exposure: ch.Exposure,
			X:        pos.X,
			Y:        pos.Y,
			ZPos:     pos.Z + offsets[idx['z']],
		})
	}
	return events
}
