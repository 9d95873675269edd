// Package testutil holds signal generators and tolerance helpers shared by
// the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Sweep returns length evenly spaced levels from lo to hi inclusive, the
// input axis of a transfer curve.
func Sweep(lo, hi float64, length int) []float64 {
	out := make([]float64, length)
	if length == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(length-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[length-1] = hi
	return out
}

// ToFloat32 narrows a signal to host precision.
func ToFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

// Clone returns a copy of x.
func Clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}
