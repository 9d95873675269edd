// Package pipeline composes the filter, waveshaper, rectifier and crusher
// stages into the per-sample signal flow of the distortion effect.
//
// For every channel and sample the [Pipeline] runs, in order: dry capture,
// two filter slots in series (each yielding an excess signal), pre-gain,
// rectify, waveshape, crush, post-gain, excess recombination, dry/wet mix
// and an optional output clip. Only the filter delay registers carry state
// across samples.
//
// Parameter values arrive as a [Params] snapshot per call. Continuous
// values are expected to be smoothed already; a [Controller] does that for
// callers that hold only target values.
package pipeline
