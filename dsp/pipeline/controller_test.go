package pipeline

import (
	"testing"

	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/dsp/smooth"
)

func TestNewController_Validation(t *testing.T) {
	if _, err := NewController(0, DefaultParams(), DefaultSmoothing()); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	bad := DefaultSmoothing()
	bad.Ratio.TimeMs = -5
	if _, err := NewController(testRate, DefaultParams(), bad); err == nil {
		t.Fatal("expected error for negative smoothing time")
	}
}

func TestController_RestsAtInitial(t *testing.T) {
	p := DefaultParams()
	p.PreGain = 3

	c, err := NewController(testRate, p, DefaultSmoothing())
	if err != nil {
		t.Fatal(err)
	}

	if c.IsSmoothing() {
		t.Fatal("fresh controller should not be smoothing")
	}

	if got := c.Next(); *got != p {
		t.Fatalf("Next() = %+v, want %+v", *got, p)
	}
}

func TestController_DiscreteImmediateContinuousRamped(t *testing.T) {
	p := DefaultParams()

	c, err := NewController(1000, p, DefaultSmoothing())
	if err != nil {
		t.Fatal(err)
	}

	target := p
	target.Pos.Kind = shaper.Softdrive
	target.Copy = CopyPositive
	target.PreGain = 2
	target.Filters[0].Freq = 1000
	c.SetTarget(&target)

	cur := c.Current()
	if cur.Pos.Kind != shaper.Softdrive || cur.Copy != CopyPositive {
		t.Fatalf("discrete fields not applied: %+v", cur)
	}

	if cur.PreGain != 1 || cur.Filters[0].Freq != 22000 {
		t.Fatalf("continuous fields jumped: pre=%v freq=%v", cur.PreGain, cur.Filters[0].Freq)
	}

	if !c.IsSmoothing() {
		t.Fatal("controller should be smoothing")
	}

	first := c.Next()
	if !(first.PreGain > 1 && first.PreGain < 2) {
		t.Fatalf("first pre gain = %v, want between 1 and 2", first.PreGain)
	}

	// Gain ramps take 50 ms and filter ramps 100 ms at 1 kHz.
	for range 49 {
		c.Next()
	}

	if c.Current().PreGain != 2 {
		t.Fatalf("pre gain after 50 frames = %v, want 2", c.Current().PreGain)
	}

	if !c.IsSmoothing() {
		t.Fatal("filter ramp should still run")
	}

	for range 50 {
		c.Next()
	}

	if c.IsSmoothing() || *c.Current() != target {
		t.Fatalf("after 100 frames: %+v, want %+v", *c.Current(), target)
	}

	if c.Target() != target {
		t.Fatal("Target() differs from the last SetTarget")
	}
}

func TestController_Reset(t *testing.T) {
	c, err := NewController(testRate, DefaultParams(), DefaultSmoothing())
	if err != nil {
		t.Fatal(err)
	}

	target := DefaultParams()
	target.Mix = 0.25
	c.SetTarget(&target)
	c.Next()

	c.Reset(&target)
	if c.IsSmoothing() || c.Current().Mix != 0.25 {
		t.Fatalf("Reset did not jump: smoothing=%v mix=%v", c.IsSmoothing(), c.Current().Mix)
	}
}

func TestController_NoSmoothing(t *testing.T) {
	none := smooth.Profile{Style: smooth.StyleNone}

	c, err := NewController(testRate, DefaultParams(), Smoothing{Gain: none, Filter: none, Ratio: none})
	if err != nil {
		t.Fatal(err)
	}

	target := DefaultParams()
	target.PostGain = 0.5
	c.SetTarget(&target)

	if c.IsSmoothing() || c.Next().PostGain != 0.5 {
		t.Fatal("unsmoothed controller should jump")
	}
}

func TestController_SetSampleRate(t *testing.T) {
	c, err := NewController(testRate, DefaultParams(), DefaultSmoothing())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetSampleRate(96000); err != nil {
		t.Fatal(err)
	}

	if err := c.SetSampleRate(0); err == nil {
		t.Fatal("expected error")
	}
}
