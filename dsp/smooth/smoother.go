package smooth

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownStyle is returned when a style name cannot be parsed.
var ErrUnknownStyle = errors.New("smooth: unknown style")

// Style selects the ramp shape.
type Style int

const (
	// StyleNone jumps to the target immediately.
	StyleNone Style = iota
	// StyleLinear adds a constant step per sample.
	StyleLinear
	// StyleLogarithmic multiplies by a constant factor per sample. Ramps
	// that cross or touch zero fall back to linear.
	StyleLogarithmic
	// StyleExponential follows a one-pole curve that is within 0.01 % of
	// the target at the end of the ramp.
	StyleExponential

	styleCount
)

var styleNames = [...]string{
	StyleNone:        "none",
	StyleLinear:      "linear",
	StyleLogarithmic: "logarithmic",
	StyleExponential: "exponential",
}

func (s Style) String() string {
	if s < 0 || s >= styleCount {
		return fmt.Sprintf("Style(%d)", int(s))
	}

	return styleNames[s]
}

// ParseStyle resolves a case-insensitive style name.
func ParseStyle(name string) (Style, error) {
	for s := range styleCount {
		if strings.EqualFold(name, styleNames[s]) {
			return s, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// exponentialResidual is the fraction of the distance left at the end of an
// exponential ramp.
const exponentialResidual = 1e-4

const (
	defaultTimeMs = 50
	maxTimeMs     = 10000
)

type config struct {
	style   Style
	timeMs  float64
	initial float64
}

// Option mutates construction-time parameters.
type Option func(*config) error

// WithStyle sets the ramp shape.
func WithStyle(style Style) Option {
	return func(cfg *config) error {
		if style < 0 || style >= styleCount {
			return fmt.Errorf("smoother style is invalid: %d", int(style))
		}

		cfg.style = style

		return nil
	}
}

// WithTime sets the ramp duration in milliseconds.
func WithTime(ms float64) Option {
	return func(cfg *config) error {
		if ms < 0 || ms > maxTimeMs || math.IsNaN(ms) {
			return fmt.Errorf("smoother time must be in [0, %d] ms: %f", maxTimeMs, ms)
		}

		cfg.timeMs = ms

		return nil
	}
}

// WithInitial sets the starting value (and target).
func WithInitial(v float64) Option {
	return func(cfg *config) error {
		cfg.initial = v
		return nil
	}
}

// Profile describes how one parameter is smoothed.
type Profile struct {
	Style  Style
	TimeMs float64
}

// New builds a smoother following the profile, starting at initial.
func (sp Profile) New(sampleRate, initial float64) (*Smoother, error) {
	return New(sampleRate, WithStyle(sp.Style), WithTime(sp.TimeMs), WithInitial(initial))
}

// Smoother ramps a value towards a target over a fixed time.
type Smoother struct {
	style      Style
	timeMs     float64
	sampleRate float64
	steps      int

	current float64
	target  float64

	// ramp is the style of the ramp in progress; logarithmic ramps may run
	// linear.
	ramp      Style
	step      float64
	stepsLeft int
}

// New creates a linear 50 ms smoother at sampleRate unless options say
// otherwise.
func New(sampleRate float64, opts ...Option) (*Smoother, error) {
	cfg := config{style: StyleLinear, timeMs: defaultTimeMs}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	s := &Smoother{style: cfg.style, timeMs: cfg.timeMs}

	err := s.SetSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	s.Reset(cfg.initial)

	return s, nil
}

// SetSampleRate changes the sample rate. A ramp in progress keeps its
// current step count.
func (s *Smoother) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("smoother sample rate must be > 0 and finite: %f", sampleRate)
	}

	s.sampleRate = sampleRate
	s.steps = int(math.Round(s.timeMs / 1000 * sampleRate))

	return nil
}

// Style returns the configured ramp shape.
func (s *Smoother) Style() Style {
	return s.style
}

// Steps returns the ramp length in samples.
func (s *Smoother) Steps() int {
	return s.steps
}

// Reset jumps to v and stops any ramp.
func (s *Smoother) Reset(v float64) {
	s.current = v
	s.target = v
	s.step = 0
	s.stepsLeft = 0
}

// SetTarget starts a ramp from the current value to target. Setting the
// same target again does not restart the ramp.
func (s *Smoother) SetTarget(target float64) {
	if target == s.target && s.stepsLeft > 0 {
		return
	}

	s.target = target

	if s.style == StyleNone || s.steps == 0 || target == s.current {
		s.current = target
		s.stepsLeft = 0

		return
	}

	s.stepsLeft = s.steps
	s.ramp = s.style

	if s.ramp == StyleLogarithmic && !(s.current*target > 0) {
		s.ramp = StyleLinear
	}

	n := float64(s.steps)

	switch s.ramp {
	case StyleLogarithmic:
		s.step = mathExp(mathLog(target/s.current) / n)
	case StyleExponential:
		s.step = mathExp(mathLog(exponentialResidual) / n)
	default:
		s.step = (target - s.current) / n
	}
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.stepsLeft == 0 {
		return s.current
	}

	s.stepsLeft--
	if s.stepsLeft == 0 {
		s.current = s.target
		return s.current
	}

	switch s.ramp {
	case StyleLogarithmic:
		s.current *= s.step
	case StyleExponential:
		s.current = s.target + (s.current-s.target)*s.step
	default:
		s.current += s.step
	}

	return s.current
}

// NextBlock fills dst with consecutive values.
func (s *Smoother) NextBlock(dst []float64) {
	for i := range dst {
		dst[i] = s.Next()
	}
}

// Current returns the last value produced without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value being ramped to.
func (s *Smoother) Target() float64 {
	return s.target
}

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool {
	return s.stepsLeft > 0
}
