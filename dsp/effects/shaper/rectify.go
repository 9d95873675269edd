package shaper

import (
	"fmt"
	"math"
	"strings"
)

// RectifyMode selects half-wave or full-wave rectification.
type RectifyMode int

const (
	// HalfWave keeps the positive half of the signal.
	HalfWave RectifyMode = iota
	// FullWave folds the negative half onto the positive one.
	FullWave
)

// Apply rectifies x.
func (m RectifyMode) Apply(x float64) float64 {
	if m == FullWave {
		return math.Abs(x)
	}
	return math.Max(x, 0)
}

func (m RectifyMode) String() string {
	switch m {
	case HalfWave:
		return "HalfWave"
	case FullWave:
		return "FullWave"
	default:
		return fmt.Sprintf("RectifyMode(%d)", int(m))
	}
}

// ParseRectifyMode resolves a rectifier by name, ignoring case.
func ParseRectifyMode(name string) (RectifyMode, error) {
	switch strings.ToLower(name) {
	case "halfwave", "half":
		return HalfWave, nil
	case "fullwave", "full":
		return FullWave, nil
	default:
		return 0, fmt.Errorf("unknown rectify mode: %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RectifyMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RectifyMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRectifyMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
