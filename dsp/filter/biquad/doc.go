// Package biquad provides the second-order IIR filters used ahead of the
// waveshaper.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. The design functions
// [Lowpass], [Highpass], [Bandpass] and [Identity] produce RBJ cookbook
// coefficients, and [Filter] wraps a Section with a lazily recomputed design
// key and reports the "excess" signal the filter removed.
package biquad
