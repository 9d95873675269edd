package pipeline

import (
	"math/cmplx"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
	"github.com/cwbudde/algo-waveshaper/dsp/filter/biquad"
)

// FilterPoint is the level of the two filter paths at one frequency, in dB.
type FilterPoint struct {
	Freq float64
	// Filtered is the gain from the input to the shaper.
	Filtered float64
	// Excess is the gain of the summed excess of both slots.
	Excess float64
}

// FilterResponse evaluates the filter slots of p in series at each of
// freqs. Excess is -Inf where the slots pass the input unchanged.
func (p *Params) FilterResponse(sampleRate float64, freqs []float64) []FilterPoint {
	var cs [NumFilterSlots]biquad.Coefficients
	for slot := range cs {
		f := &p.Filters[slot]
		cs[slot] = biquad.Design(f.Kind, f.Freq, f.Q, sampleRate)
	}

	points := make([]FilterPoint, len(freqs))
	for i, freq := range freqs {
		h := biquad.SeriesResponse(freq, sampleRate, cs[:]...)
		points[i] = FilterPoint{
			Freq:     freq,
			Filtered: core.LinearToDB(cmplx.Abs(h)),
			Excess:   core.LinearToDB(cmplx.Abs(1 - h)),
		}
	}

	return points
}
