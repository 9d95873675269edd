// Package shaper provides the stateless sample transforms of the waveshaper:
// the nonlinear transfer functions selected by [Kind], half/full wave
// rectification ([RectifyMode]) and step quantization ([CrushMode]).
//
// Every transform is a pure function of its input sample and a single
// drive/threshold parameter. Nothing is range checked: a zero parameter for
// the reciprocal or quantizing curves divides by zero and the resulting
// ±Inf/NaN propagates, so callers are expected to keep parameters inside
// their published ranges.
package shaper
