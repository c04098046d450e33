// Package imagegen synthesizes fake microscope images.
//
// A [Generator] owns a fixed population of circular cells scattered over a
// large virtual stage. It renders camera-sized crops of that population and
// lets the positions drift over simulated time:
//
//   - [Generator.Snap]: render a frame at a stage location, channel, focal
//     offset and exposure
//   - [Generator.SnapRGB]: render channel 0 and its false-color version
//   - [Generator.ToRGB] / [Colorize]: map a labeled frame to colors
//   - [Generator.Advance]: step every cell by a random displacement plus the
//     constant stage drift
//
// Channel 0 is the brightfield/reference channel: every pixel a cell covers
// carries the cell id. Channels above 0 are fluorescence channels with an
// exponential radial decay scaled by a per-channel amplitude.
//
// Cells are composited in ascending id order, so where disks overlap the
// cell with the larger id wins.
//
// # Example
//
//	gen, _ := imagegen.New(imagegen.DefaultOptions(10000))
//	bf := gen.Snap(imagegen.Point{}, imagegen.WithZ(5))
//	dapi := gen.Snap(imagegen.Point{}, imagegen.WithChannel(1), imagegen.WithExposure(10))
//	gen.Advance(1)
//
// # Thread Safety
//
// Generator instances are NOT thread-safe. Callers sharing a generator
// between goroutines must serialize access themselves (see package camera).
package imagegen
