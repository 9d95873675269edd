package pipeline

import (
	"github.com/cwbudde/algo-waveshaper/dsp/smooth"
)

// Smoothing assigns a ramp to each group of continuous parameters.
type Smoothing struct {
	// Gain covers gains, thresholds and transfer parameters.
	Gain smooth.Profile
	// Filter covers filter frequencies and Q.
	Filter smooth.Profile
	// Ratio covers mixes and the crush step.
	Ratio smooth.Profile
}

// DefaultSmoothing ramps gains logarithmically over 50 ms, filter settings
// logarithmically over 100 ms and ratios linearly over 50 ms.
func DefaultSmoothing() Smoothing {
	return Smoothing{
		Gain:   smooth.Profile{Style: smooth.StyleLogarithmic, TimeMs: 50},
		Filter: smooth.Profile{Style: smooth.StyleLogarithmic, TimeMs: 100},
		Ratio:  smooth.Profile{Style: smooth.StyleLinear, TimeMs: 50},
	}
}

type smoothedField struct {
	s       *smooth.Smoother
	target  *float64
	current *float64
}

// Controller turns target parameter values into a per-frame smoothed
// Params. Discrete settings (kinds, modes, toggles) follow the target
// immediately.
type Controller struct {
	target  Params
	current Params
	fields  []smoothedField
}

// NewController creates a controller resting at initial.
func NewController(sampleRate float64, initial Params, sm Smoothing) (*Controller, error) {
	c := &Controller{target: initial, current: initial}

	bind := func(prof smooth.Profile, target, current *float64) error {
		s, err := prof.New(sampleRate, *target)
		if err != nil {
			return err
		}

		c.fields = append(c.fields, smoothedField{s: s, target: target, current: current})

		return nil
	}

	t, cur := &c.target, &c.current

	bindings := []struct {
		profile         smooth.Profile
		target, current *float64
	}{
		{sm.Ratio, &t.Mix, &cur.Mix},
		{sm.Gain, &t.OutputClipThreshold, &cur.OutputClipThreshold},
		{sm.Gain, &t.PreGain, &cur.PreGain},
		{sm.Gain, &t.PostGain, &cur.PostGain},
		{sm.Ratio, &t.FunctionMix, &cur.FunctionMix},
		{sm.Gain, &t.Pos.Param, &cur.Pos.Param},
		{sm.Ratio, &t.Pos.Mix, &cur.Pos.Mix},
		{sm.Gain, &t.Neg.Param, &cur.Neg.Param},
		{sm.Ratio, &t.Neg.Mix, &cur.Neg.Mix},
		{sm.Ratio, &t.Rectify.Mix, &cur.Rectify.Mix},
		{sm.Ratio, &t.Rectify.MixIn, &cur.Rectify.MixIn},
		{sm.Ratio, &t.Crush.Step, &cur.Crush.Step},
		{sm.Ratio, &t.Crush.Mix, &cur.Crush.Mix},
		{sm.Ratio, &t.Crush.MixIn, &cur.Crush.MixIn},
		{sm.Filter, &t.Filters[0].Freq, &cur.Filters[0].Freq},
		{sm.Filter, &t.Filters[0].Q, &cur.Filters[0].Q},
		{sm.Filter, &t.Filters[1].Freq, &cur.Filters[1].Freq},
		{sm.Filter, &t.Filters[1].Q, &cur.Filters[1].Q},
		{sm.Ratio, &t.ExcessMix, &cur.ExcessMix},
	}

	for _, b := range bindings {
		err := bind(b.profile, b.target, b.current)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetTarget starts ramps towards p. Discrete fields take effect at once.
func (c *Controller) SetTarget(p *Params) {
	c.target = *p

	// Copy the discrete fields, then restore the smoothed ones.
	c.current = *p

	for _, f := range c.fields {
		*f.current = f.s.Current()
		f.s.SetTarget(*f.target)
	}
}

// Next advances every ramp by one frame and returns the smoothed snapshot.
// The returned value is owned by the controller and valid until the next
// call.
func (c *Controller) Next() *Params {
	for _, f := range c.fields {
		*f.current = f.s.Next()
	}

	return &c.current
}

// Current returns the last snapshot without advancing.
func (c *Controller) Current() *Params {
	return &c.current
}

// Target returns a copy of the target parameters.
func (c *Controller) Target() Params {
	return c.target
}

// Reset jumps to p without ramping.
func (c *Controller) Reset(p *Params) {
	c.target = *p
	c.current = *p

	for _, f := range c.fields {
		f.s.Reset(*f.target)
	}
}

// IsSmoothing reports whether any ramp is in progress.
func (c *Controller) IsSmoothing() bool {
	for _, f := range c.fields {
		if f.s.IsSmoothing() {
			return true
		}
	}

	return false
}

// SetSampleRate rescales every ramp length.
func (c *Controller) SetSampleRate(sampleRate float64) error {
	for _, f := range c.fields {
		err := f.s.SetSampleRate(sampleRate)
		if err != nil {
			return err
		}
	}

	return nil
}
