// Package smooth ramps continuous parameters towards new targets so that
// automation does not produce zipper noise.
//
// A [Smoother] is advanced once per sample frame by the caller. Linear
// ramps add a constant step, logarithmic ramps multiply by a constant
// factor (suited to gains and frequencies), and exponential ramps follow a
// one-pole curve. Every ramp lands exactly on its target after the
// configured time.
package smooth
