package pipeline

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/internal/testutil"
)

func TestDisplay_DefaultCurveIsSine(t *testing.T) {
	p := DefaultParams()
	d := p.Display()

	curve := make([]float64, 16)
	d.Curve(curve)

	for i, v := range curve {
		want := math.Sin(2 * math.Pi * float64(i) / 16)
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("curve[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestDisplay_Transfer(t *testing.T) {
	p := DefaultParams()
	p.PreGain = 2
	p.PostGain = 0.5
	p.Pos = Shape{Kind: shaper.HardClip, Param: 0.5, Mix: 1}
	p.Neg = Shape{Kind: shaper.TwoTanh, Param: 1, Mix: 1}

	d := p.Display()

	if got := d.Transfer(1); got != 0.25 {
		t.Fatalf("positive: got %v, want 0.25", got)
	}

	if got, want := d.Transfer(-0.25), 0.5*math.Tanh(-1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("negative: got %v, want %v", got, want)
	}

	d.Copy = CopyPositive
	if got := d.Transfer(-1); got != -0.25 {
		t.Fatalf("copy positive: got %v, want -0.25", got)
	}

	d.Copy = CopyNegative
	if got, want := d.Transfer(0.25), 0.5*math.Tanh(1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("copy negative: got %v, want %v", got, want)
	}

	d.Copy = CopyOff
	d.Flip = true
	if got := d.Transfer(1); got != -0.25 {
		t.Fatalf("flip: got %v, want -0.25", got)
	}

	// Output clip applies before the post gain.
	d.Flip = false
	d.Pos = DisplayShape{Kind: shaper.TwoTanh, Param: 4}
	d.OutputClipThreshold = 0.5
	if got := d.Transfer(1); got != 0.25 {
		t.Fatalf("output clip: got %v, want 0.25", got)
	}
}

func TestParams_Display(t *testing.T) {
	p := DefaultParams()
	p.Flip = true
	p.Copy = CopyNegative
	p.Neg.Param = 0.7

	d := p.Display()
	if !d.Flip || d.Copy != CopyNegative || d.Neg.Param != 0.7 || d.Pos.Kind != shaper.HardClip ||
		!d.OutputClip || d.OutputClipThreshold != 1 {
		t.Fatalf("unexpected display %+v", d)
	}
}

func TestDisplay_OutputClipBoundsTransfer(t *testing.T) {
	p := DefaultParams()
	p.PreGain = 4
	p.Pos = Shape{Kind: shaper.Reciprocal, Param: 8, Mix: 1}
	p.Neg = Shape{Kind: shaper.Sqrt, Param: 8, Mix: 1}
	p.OutputClipThreshold = 0.5
	d := p.Display()

	levels := testutil.Sweep(-1, 1, 101)
	out := make([]float64, len(levels))
	for i, x := range levels {
		out[i] = d.Transfer(x)
	}

	testutil.RequireBounded(t, out, 0.5)

	if out[0] != -0.5 || out[100] != 0.5 || out[50] != 0 {
		t.Fatalf("ends and centre = %v %v %v, want -0.5 0.5 0", out[0], out[100], out[50])
	}
}
