package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d channels=%d\n", cfg.SampleRate, cfg.BlockSize, cfg.Channels)

	// Output:
	// sampleRate=44100 blockSize=256 channels=2
}

func ExampleMixBetween() {
	dry, wet := 0.2, 1.0

	fmt.Printf("%.2f %.2f %.2f\n",
		core.MixBetween(dry, wet, 0),
		core.MixBetween(dry, wet, 0.5),
		core.MixBetween(dry, wet, 1))

	// Output:
	// 0.20 0.60 1.00
}
