package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates H(z) on the unit circle at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeDB returns |H| at freqHz in dB.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// ExcessMagnitudeDB returns |1 - H| at freqHz in dB, the level of the
// excess output of a Filter running c.
func (c Coefficients) ExcessMagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(1-c.Response(freqHz, sampleRate)))
}

// SeriesResponse is the response of sections run one after another. The
// summed excess of such a chain has the response 1 - SeriesResponse.
func SeriesResponse(freqHz, sampleRate float64, cs ...Coefficients) complex128 {
	h := complex(1, 0)
	for _, c := range cs {
		h *= c.Response(freqHz, sampleRate)
	}

	return h
}
