package core

import "math"

// MinusInfinityGain is the linear gain treated as silence by GainToDB.
// It corresponds to -100 dB.
const MinusInfinityGain = 1e-5

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// GainToDB converts a linear gain to dB, flooring the gain at
// MinusInfinityGain so silence maps to -100 dB instead of -Inf.
func GainToDB(gain float64) float64 {
	return 20 * math.Log10(math.Max(gain, MinusInfinityGain))
}

// MixBetween crossfades linearly from a (mix=0) to b (mix=1).
func MixBetween(a, b, mix float64) float64 {
	return a*(1-mix) + b*mix
}

// MixIn adds b to a scaled by mix.
func MixIn(a, b, mix float64) float64 {
	return a + b*mix
}

// Sign returns +1 or -1 carrying the sign bit of x, including for ±0.
func Sign(x float64) float64 {
	return math.Copysign(1, x)
}
