package pipeline

import (
	"math"

	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
)

// Telemetry is returned by every Process call.
type Telemetry struct {
	// Peak is the largest absolute output sample across all channels.
	Peak float64
	// Display is the parameter state the block was rendered with.
	Display Display
}

// DisplayShape is the per-polarity part of a Display.
type DisplayShape struct {
	Kind  shaper.Kind
	Param float64
}

// Display is a snapshot of the values an editor needs to draw the transfer
// curve. It holds no references and is safe to hand to another goroutine.
type Display struct {
	PreGain             float64
	PostGain            float64
	Pos                 DisplayShape
	Neg                 DisplayShape
	Copy                CopyMode
	Flip                bool
	OutputClip          bool
	OutputClipThreshold float64
}

// Display returns the editor snapshot of p.
func (p *Params) Display() Display {
	return Display{
		PreGain:             p.PreGain,
		PostGain:            p.PostGain,
		Pos:                 DisplayShape{Kind: p.Pos.Kind, Param: p.Pos.Param},
		Neg:                 DisplayShape{Kind: p.Neg.Kind, Param: p.Neg.Param},
		Copy:                p.Copy,
		Flip:                p.Flip,
		OutputClip:          p.OutputClip,
		OutputClipThreshold: p.OutputClipThreshold,
	}
}

// Transfer maps one input level through pre-gain, the polarity's transfer
// function, flip, output clip and post-gain. Filters and mixes are not
// part of the display curve.
func (d Display) Transfer(x float64) float64 {
	y := x * d.PreGain

	shape := d.Neg
	switch {
	case d.Copy == CopyPositive, d.Copy == CopyOff && y >= 0:
		shape = d.Pos
	}

	y = shaper.Apply(shape.Kind, y, shape.Param)

	if d.Flip {
		y = -y
	}

	if d.OutputClip {
		y = shaper.HardClipSample(y, d.OutputClipThreshold)
	}

	return y * d.PostGain
}

// Curve fills dst with one full-scale sine cycle passed through Transfer.
func (d Display) Curve(dst []float64) {
	n := float64(len(dst))
	for i := range dst {
		dst[i] = d.Transfer(math.Sin(2 * math.Pi * float64(i) / n))
	}
}
