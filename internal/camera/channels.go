package camera

import (
	"fmt"
	"slices"
)

// ChannelTracker maps channel preset names to the channel index the
// generator renders. A preset's index is its position in the preset list.
type ChannelTracker struct {
	presets []string
	current string
}

func NewChannelTracker(presets []string) *ChannelTracker {
	t := &ChannelTracker{presets: slices.Clone(presets)}
	if len(t.presets) > 0 {
		t.current = t.presets[0]
	}
	return t
}

func (t *ChannelTracker) Presets() []string { return slices.Clone(t.presets) }
func (t *ChannelTracker) Current() string   { return t.current }

// CurrentIndex is the generator channel for the last known preset.
func (t *ChannelTracker) CurrentIndex() int {
	idx, err := t.Index(t.current)
	if err != nil {
		return 0
	}
	return idx
}

func (t *ChannelTracker) Index(name string) (int, error) {
	idx := slices.Index(t.presets, name)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q (available: %v)", ErrUnknownChannel, name, t.presets)
	}
	return idx, nil
}

func (t *ChannelTracker) Set(name string) error {
	if _, err := t.Index(name); err != nil {
		return err
	}
	t.current = name
	return nil
}

// Next selects the preset after the current one, wrapping around.
func (t *ChannelTracker) Next() string {
	if len(t.presets) == 0 {
		return ""
	}
	t.current = t.presets[(t.CurrentIndex()+1)%len(t.presets)]
	return t.current
}
