package shaper

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
)

// ErrUnknownKind is returned when a transfer function name is not recognised.
var ErrUnknownKind = errors.New("unknown transfer function")

// Kind selects the transfer function used by Apply.
type Kind int

const (
	// HardClip clamps to [-t, t].
	HardClip Kind = iota
	// ScaledClip clamps t*x to [-t, t].
	ScaledClip
	// TwoTanh is tanh(2x) * t.
	TwoTanh
	// Sqrt is sign(x) * sqrt(|x|) * t.
	Sqrt
	// Reciprocal is 2 * sign(x) * (t - t/(|x|+1)).
	Reciprocal
	// ReciprocalTanh is 2 * sign(x) * tanh(t - t/(|x|+1)).
	ReciprocalTanh
	// TanhTwoAtanh is sign(x) * tanh(2 atanh(2|x|/t)) * t below t/2, t above.
	TanhTwoAtanh
	// Sinusoidal blends x with a sine whose depth follows t in dB.
	Sinusoidal
	// Singlefold reflects once around t.
	Singlefold
	// Sillyfold folds with period t.
	Sillyfold
	// BrokenSin switches to sin(|x| t) wherever |x| exceeds a phase-shifted sine.
	BrokenSin
	// Floor quantizes |x| down to steps of 1/t.
	Floor
	// Round quantizes |x| to the nearest step of 1/t.
	Round
	// Bitcrush quantizes x to steps of 2^-t.
	Bitcrush
	// Softdrive is the piecewise quadratic overdrive curve.
	Softdrive

	kindCount
)

var kindNames = [kindCount]string{
	HardClip:       "HardClip",
	ScaledClip:     "ScaledClip",
	TwoTanh:        "2Tanh",
	Sqrt:           "Sqrt",
	Reciprocal:     "Reciprocal",
	ReciprocalTanh: "ReciprocalTanh",
	TanhTwoAtanh:   "Tanh2Atanh",
	Sinusoidal:     "Sinusoidal",
	Singlefold:     "Singlefold",
	Sillyfold:      "Sillyfold",
	BrokenSin:      "BrokenSin",
	Floor:          "Floor",
	Round:          "Round",
	Bitcrush:       "Bitcrush",
	Softdrive:      "Softdrive",
}

// Kinds returns every transfer function in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k names a known transfer function.
func (k Kind) Valid() bool {
	return k >= HardClip && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a transfer function by name, ignoring case.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Apply evaluates the transfer function k at x with drive/threshold t.
func Apply(k Kind, x, t float64) float64 {
	sig := core.Sign(x)
	xa := math.Abs(x)

	switch k {
	case HardClip:
		return hardClip(x, t)
	case ScaledClip:
		return hardClip(x*t, t)
	case TwoTanh:
		return math.Tanh(2*x) * t
	case Sqrt:
		return sig * (math.Sqrt(xa) * t)
	case Reciprocal:
		return 2 * sig * (t - t/(xa+1))
	case ReciprocalTanh:
		return 2 * sig * math.Tanh(t-t/(xa+1))
	case TanhTwoAtanh:
		if xa < t/2 {
			return sig * (math.Tanh(2*math.Atanh(2*xa/t)) * t)
		}
		return sig * t
	case Sinusoidal:
		return sinusoidal(x, t)
	case Singlefold:
		if xa > t {
			return sig * (-xa + 2*math.Abs(t))
		}
		return sig * xa
	case Sillyfold:
		return sig * 4 * xa / t * math.Abs(math.Mod(xa-t*0.25, t)-t*0.5)
	case BrokenSin:
		if xa > math.Sin(2*math.Pi*xa+(1+3*t)) {
			return sig * math.Sin(xa*t)
		}
		return sig * xa
	case Floor:
		return floorStep(x, t)
	case Round:
		return roundStep(x, t)
	case Bitcrush:
		return bits(x, t)
	case Softdrive:
		return sig * softdrive(xa, t)
	default:
		return x
	}
}

// HardClipSample clamps x to [-t, t]. It is the output stage limiter.
func HardClipSample(x, t float64) float64 {
	return hardClip(x, t)
}

func hardClip(x, t float64) float64 {
	return math.Max(math.Min(x, t), -t)
}

func sinusoidal(x, t float64) float64 {
	ab := math.Abs(core.GainToDB(math.Abs(t)) / 30)
	w1 := math.Sin(2 * math.Pi * x * (1 + 3*ab))
	w2 := (1-ab)*x + ab*w1
	return (1 - 0.3*ab) * w2
}

// softdrive jumps at its breakpoints unless t = 1.
func softdrive(xa, t float64) float64 {
	switch {
	case xa <= t/3:
		return 2 * xa
	case xa <= 2*t/3:
		d := 2 - 3*xa
		return (3 - d*d) / 3
	default:
		return t
	}
}
