package biquad

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownKind is returned when a filter kind name cannot be parsed.
var ErrUnknownKind = errors.New("biquad: unknown filter kind")

// DefaultQ is the Butterworth quality factor, sqrt(2)/2.
const DefaultQ = 1 / math.Sqrt2

// Kind selects the response designed for a [Filter] slot.
type Kind int

const (
	// KindIdentity passes the input unchanged.
	KindIdentity Kind = iota
	KindLowpass
	KindHighpass
	KindBandpass

	kindCount
)

var kindNames = [...]string{
	KindIdentity: "Identity",
	KindLowpass:  "Lowpass",
	KindHighpass: "Highpass",
	KindBandpass: "Bandpass",
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind resolves a case-insensitive kind name.
func ParseKind(s string) (Kind, error) {
	for k := range kindCount {
		if strings.EqualFold(s, kindNames[k]) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
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

// Design returns the coefficients of kind k. Unknown kinds design the
// identity.
func Design(k Kind, freq, q, sampleRate float64) Coefficients {
	switch k {
	case KindLowpass:
		return Lowpass(freq, q, sampleRate)
	case KindHighpass:
		return Highpass(freq, q, sampleRate)
	case KindBandpass:
		return Bandpass(freq, q, sampleRate)
	default:
		return Identity()
	}
}

// Identity returns pass-all coefficients (B0 = 1).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
// No range checks are applied: a frequency at or above Nyquist or a zero q
// yields whatever the formulas produce.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha := prewarp(freq, q, sampleRate)
	a0 := 1 + alpha

	return Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha := prewarp(freq, q, sampleRate)
	a0 := 1 + alpha

	return Coefficients{
		B0: (1 + cw) / 2 / a0,
		B1: -(1 + cw) / a0,
		B2: (1 + cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

// Bandpass designs an RBJ bandpass biquad with a constant 0 dB peak gain.
func Bandpass(freq, q, sampleRate float64) Coefficients {
	cw, alpha := prewarp(freq, q, sampleRate)
	a0 := 1 + alpha

	return Coefficients{
		B0: alpha / a0,
		B1: 0,
		B2: -alpha / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func prewarp(freq, q, sampleRate float64) (cw, alpha float64) {
	w0 := 2 * math.Pi * freq / sampleRate
	return math.Cos(w0), math.Sin(w0) / (2 * q)
}
