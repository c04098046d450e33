// Package viz draws frames in the terminal.
//
// A [Canvas] packs 2x4 sub-pixels into each Braille character. [DrawFrame]
// max-pools a frame onto it, so even small cells survive downsampling. The
// [LiveModel] is a Bubble Tea program that snaps a camera on every tick and
// lets the user drive the stage:
//
//	arrows/hjkl - move the stage
//	+/-         - move the focus
//	[ ]         - halve/double the exposure
//	c           - next channel preset
//	0           - recenter the stage
//	space       - start/pause the time-step timer
//	t           - cycle color themes
//	q           - quit
package viz
