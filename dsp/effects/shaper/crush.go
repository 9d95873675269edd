package shaper

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
)

// CrushMode selects the quantization strategy of the crush stage.
type CrushMode int

const (
	// CrushFloor truncates |x| to steps of 1/step.
	CrushFloor CrushMode = iota
	// CrushRound rounds |x| to the nearest step of 1/step.
	CrushRound
	// CrushBits rounds x to a grid of 2^-step.
	CrushBits
	// CrushBitsQ is CrushBits; kept so stored presets keep their index.
	CrushBitsQ
	// CrushBitsQU16 is CrushBits; kept so stored presets keep their index.
	CrushBitsQU16
)

var crushNames = [...]string{
	CrushFloor:    "Floor",
	CrushRound:    "Round",
	CrushBits:     "Bits",
	CrushBitsQ:    "BitsQ",
	CrushBitsQU16: "BitsQU16",
}

// Apply quantizes x with the given step parameter.
func (m CrushMode) Apply(x, step float64) float64 {
	switch m {
	case CrushFloor:
		return floorStep(x, step)
	case CrushRound:
		return roundStep(x, step)
	case CrushBits, CrushBitsQ, CrushBitsQU16:
		return bits(x, step)
	default:
		return x
	}
}

func (m CrushMode) String() string {
	if m < 0 || int(m) >= len(crushNames) {
		return fmt.Sprintf("CrushMode(%d)", int(m))
	}
	return crushNames[m]
}

// ParseCrushMode resolves a crush mode by name, ignoring case.
func ParseCrushMode(name string) (CrushMode, error) {
	for i, n := range crushNames {
		if strings.EqualFold(n, name) {
			return CrushMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown crush mode: %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (m CrushMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CrushMode) UnmarshalText(text []byte) error {
	parsed, err := ParseCrushMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func floorStep(x, step float64) float64 {
	sig := core.Sign(x)
	return sig * math.Abs(math.Floor(x*sig*math.Abs(step))/step)
}

func roundStep(x, step float64) float64 {
	sig := core.Sign(x)
	return sig * math.Abs(math.Round(x*sig*math.Abs(step))/step)
}

func bits(x, step float64) float64 {
	b := math.Exp2(-step)
	return b * math.Round(x/b)
}
