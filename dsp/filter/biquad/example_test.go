package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-waveshaper/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	// y[n] = 0.5 x[n] + 0.25 x[n-1] + 0.5 y[n-1]
	s := biquad.NewSection(biquad.Coefficients{B0: 0.5, B1: 0.25, A1: -0.5})

	for i := range 5 {
		var x float64
		if i == 0 {
			x = 1
		}

		fmt.Printf("y[%d] = %.4f\n", i, s.ProcessSample(x))
	}
	// Output:
	// y[0] = 0.5000
	// y[1] = 0.5000
	// y[2] = 0.2500
	// y[3] = 0.1250
	// y[4] = 0.0625
}

func ExampleCoefficients_MagnitudeDB() {
	c := biquad.Lowpass(1000, biquad.DefaultQ, 48000)

	for _, freq := range []float64{1000, 10000, 20000} {
		fmt.Printf("%5.0f Hz: %+.2f dB\n", freq, c.MagnitudeDB(freq, 48000))
	}
	// Output:
	//  1000 Hz: -3.01 dB
	// 10000 Hz: -42.74 dB
	// 20000 Hz: -70.22 dB
}

func ExampleCoefficients_ExcessMagnitudeDB() {
	c := biquad.Lowpass(1000, biquad.DefaultQ, 48000)

	for _, freq := range []float64{100, 1000, 5000} {
		fmt.Printf("%4.0f Hz: %+.2f dB\n", freq, c.ExcessMagnitudeDB(freq, 48000))
	}
	// Output:
	//  100 Hz: -16.98 dB
	// 1000 Hz: +1.76 dB
	// 5000 Hz: +0.31 dB
}

func ExampleFilter_Update() {
	f := biquad.NewFilter()

	y, excess := f.Process(0.5)
	fmt.Printf("identity: %.2f %.2f\n", y, excess)

	fmt.Println(f.Update(biquad.KindLowpass, 1000, biquad.DefaultQ, 48000))
	fmt.Println(f.Update(biquad.KindLowpass, 1000, biquad.DefaultQ, 48000))
	fmt.Println(f.Kind())
	// Output:
	// identity: 0.50 0.00
	// true
	// false
	// Lowpass
}
