package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/dsp/filter/biquad"
)

// ErrInvalidParams is wrapped by every Params.Validate failure.
var ErrInvalidParams = errors.New("pipeline: invalid parameters")

// CopyMode selects whether one polarity's transfer function is reused for
// both halves of the waveform.
type CopyMode int

const (
	// CopyOff shapes each polarity with its own function.
	CopyOff CopyMode = iota
	// CopyPositive shapes both polarities with the positive function.
	CopyPositive
	// CopyNegative shapes both polarities with the negative function.
	CopyNegative
)

var copyNames = [...]string{
	CopyOff:      "Off",
	CopyPositive: "Positive",
	CopyNegative: "Negative",
}

func (m CopyMode) String() string {
	if m < CopyOff || m > CopyNegative {
		return fmt.Sprintf("CopyMode(%d)", int(m))
	}

	return copyNames[m]
}

// ParseCopyMode resolves a copy mode by name, ignoring case.
func ParseCopyMode(name string) (CopyMode, error) {
	for m, n := range copyNames {
		if strings.EqualFold(name, n) {
			return CopyMode(m), nil
		}
	}

	return 0, fmt.Errorf("unknown copy mode: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (m CopyMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CopyMode) UnmarshalText(text []byte) error {
	parsed, err := ParseCopyMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Shape is the transfer function setup for one polarity.
type Shape struct {
	Kind  shaper.Kind `json:"kind"`
	Param float64     `json:"param"`
	Mix   float64     `json:"mix"`
}

// Rectify configures the rectifier stage.
type Rectify struct {
	Enabled bool               `json:"enabled"`
	Mode    shaper.RectifyMode `json:"mode"`
	Flip    bool               `json:"flip"`
	Mix     float64            `json:"mix"`
	MixIn   float64            `json:"mixIn"`
}

// Crush configures the bit-crusher stage.
type Crush struct {
	Enabled bool             `json:"enabled"`
	Mode    shaper.CrushMode `json:"mode"`
	Step    float64          `json:"step"`
	Mix     float64          `json:"mix"`
	MixIn   float64          `json:"mixIn"`
}

// FilterParams configures one filter slot.
type FilterParams struct {
	Kind biquad.Kind `json:"kind"`
	Freq float64     `json:"freq"`
	Q    float64     `json:"q"`
}

// Params is the full parameter snapshot for one call. Gains, thresholds
// and transfer parameters are linear. Mix values are ratios in [0, 1].
type Params struct {
	Mix                 float64 `json:"mix"`
	OutputClip          bool    `json:"outputClip"`
	OutputClipThreshold float64 `json:"outputClipThreshold"`
	PreGain             float64 `json:"preGain"`
	PostGain            float64 `json:"postGain"`

	FunctionMix float64  `json:"functionMix"`
	Pos         Shape    `json:"pos"`
	Neg         Shape    `json:"neg"`
	Copy        CopyMode `json:"copy"`
	Flip        bool     `json:"flip"`
	Clip        bool     `json:"clip"`

	Rectify Rectify `json:"rectify"`
	Crush   Crush   `json:"crush"`

	Filters      [2]FilterParams `json:"filters"`
	ExcessMix    float64         `json:"excessMix"`
	ExcessBypass bool            `json:"excessBypass"`
}

// Range is an inclusive parameter range.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies in r. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to r.
func (r Range) Clamp(v float64) float64 {
	return core.Clamp(v, r.Min, r.Max)
}

// Ranges are the host-facing parameter ranges.
var Ranges = struct {
	Gain      Range
	Freq      Range
	Q         Range
	Ratio     Range
	CrushStep Range
}{
	Gain:      Range{Min: core.DBToLinear(-30), Max: core.DBToLinear(30)},
	Freq:      Range{Min: 3, Max: 22000},
	Q:         Range{Min: biquad.DefaultQ, Max: 10},
	Ratio:     Range{Min: 0, Max: 1},
	CrushStep: Range{Min: 1, Max: 32},
}

// DefaultParams returns the initial parameter set: unity gains, HardClip
// at 0 dB on both polarities, output clip at 0 dB, a 22 kHz lowpass and a
// 3 Hz highpass, no excess.
func DefaultParams() Params {
	unity := Shape{Kind: shaper.HardClip, Param: 1, Mix: 1}

	return Params{
		Mix:                 1,
		OutputClip:          true,
		OutputClipThreshold: 1,
		PreGain:             1,
		PostGain:            1,
		FunctionMix:         1,
		Pos:                 unity,
		Neg:                 unity,
		Copy:                CopyOff,
		Rectify:             Rectify{Mode: shaper.HalfWave, Mix: 1},
		Crush:               Crush{Mode: shaper.CrushBits, Step: 8, Mix: 1},
		Filters: [2]FilterParams{
			{Kind: biquad.KindLowpass, Freq: Ranges.Freq.Max, Q: biquad.DefaultQ},
			{Kind: biquad.KindHighpass, Freq: Ranges.Freq.Min, Q: biquad.DefaultQ},
		},
	}
}

// Validate checks every field against Ranges and the known enum values.
// The processing path never calls it.
func (p *Params) Validate() error {
	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{"mix", p.Mix, Ranges.Ratio},
		{"output clip threshold", p.OutputClipThreshold, Ranges.Gain},
		{"pre gain", p.PreGain, Ranges.Gain},
		{"post gain", p.PostGain, Ranges.Gain},
		{"function mix", p.FunctionMix, Ranges.Ratio},
		{"positive param", p.Pos.Param, Ranges.Gain},
		{"positive mix", p.Pos.Mix, Ranges.Ratio},
		{"negative param", p.Neg.Param, Ranges.Gain},
		{"negative mix", p.Neg.Mix, Ranges.Ratio},
		{"rectify mix", p.Rectify.Mix, Ranges.Ratio},
		{"rectify mix-in", p.Rectify.MixIn, Ranges.Ratio},
		{"crush step", p.Crush.Step, Ranges.CrushStep},
		{"crush mix", p.Crush.Mix, Ranges.Ratio},
		{"crush mix-in", p.Crush.MixIn, Ranges.Ratio},
		{"filter 1 freq", p.Filters[0].Freq, Ranges.Freq},
		{"filter 1 q", p.Filters[0].Q, Ranges.Q},
		{"filter 2 freq", p.Filters[1].Freq, Ranges.Freq},
		{"filter 2 q", p.Filters[1].Q, Ranges.Q},
		{"excess mix", p.ExcessMix, Ranges.Ratio},
	}

	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return fmt.Errorf("%w: %s must be in [%g, %g]: %f", ErrInvalidParams, c.name, c.r.Min, c.r.Max, c.v)
		}
	}

	switch {
	case !p.Pos.Kind.Valid():
		return fmt.Errorf("%w: positive kind %d", ErrInvalidParams, int(p.Pos.Kind))
	case !p.Neg.Kind.Valid():
		return fmt.Errorf("%w: negative kind %d", ErrInvalidParams, int(p.Neg.Kind))
	case p.Copy < CopyOff || p.Copy > CopyNegative:
		return fmt.Errorf("%w: copy mode %d", ErrInvalidParams, int(p.Copy))
	case p.Rectify.Mode != shaper.HalfWave && p.Rectify.Mode != shaper.FullWave:
		return fmt.Errorf("%w: rectify mode %d", ErrInvalidParams, int(p.Rectify.Mode))
	case p.Crush.Mode < shaper.CrushFloor || p.Crush.Mode > shaper.CrushBitsQU16:
		return fmt.Errorf("%w: crush mode %d", ErrInvalidParams, int(p.Crush.Mode))
	case !p.Filters[0].Kind.Valid() || !p.Filters[1].Kind.Valid():
		return fmt.Errorf("%w: filter kind", ErrInvalidParams)
	}

	return nil
}

// shape resolves the transfer function, parameter and per-polarity mix
// for a sample of the given polarity.
func (p *Params) shape(positive bool) (shaper.Kind, float64, float64) {
	mix := p.Neg.Mix
	if positive {
		mix = p.Pos.Mix
	}

	switch p.Copy {
	case CopyPositive:
		return p.Pos.Kind, p.Pos.Param, mix
	case CopyNegative:
		return p.Neg.Kind, p.Neg.Param, mix
	}

	if positive {
		return p.Pos.Kind, p.Pos.Param, mix
	}

	return p.Neg.Kind, p.Neg.Param, mix
}
