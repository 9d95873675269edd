package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-waveshaper/dsp/core"
	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/dsp/filter/biquad"
)

var (
	// ErrInvalidSampleRate is returned by Initialize for a sample rate
	// that is not finite and positive.
	ErrInvalidSampleRate = errors.New("pipeline: invalid sample rate")
	// ErrInvalidChannels is returned by Initialize for a channel count
	// below one.
	ErrInvalidChannels = errors.New("pipeline: invalid channel count")
)

// NumFilterSlots is the number of filters run in series ahead of the
// waveshaper.
const NumFilterSlots = 2

const (
	defaultMaxBlockSize = 1024
	maxMaxBlockSize     = 1 << 16
)

type config struct {
	maxBlockSize int
}

// Option mutates construction-time parameters.
type Option func(*config) error

// WithMaxBlockSize sets the chunk size of the float32 conversion scratch.
func WithMaxBlockSize(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > maxMaxBlockSize {
			return fmt.Errorf("pipeline max block size must be in [1, %d]: %d", maxMaxBlockSize, n)
		}

		cfg.maxBlockSize = n

		return nil
	}
}

type channelFilters [NumFilterSlots]biquad.Filter

// Pipeline runs the distortion signal flow over a fixed number of channels.
// It is not safe for concurrent use.
type Pipeline struct {
	maxBlockSize int
	sampleRate   float64
	filters      []channelFilters
	scratch      []float64
}

// New creates an uninitialized pipeline. Initialize must be called before
// processing.
func New(opts ...Option) (*Pipeline, error) {
	cfg := config{maxBlockSize: defaultMaxBlockSize}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Pipeline{maxBlockSize: cfg.maxBlockSize}, nil
}

// NewFromConfig creates a pipeline sized by cfg and initializes it. opts
// are applied after the block size taken from cfg.
func NewFromConfig(cfg core.ProcessorConfig, opts ...Option) (*Pipeline, error) {
	pl, err := New(append([]Option{WithMaxBlockSize(cfg.BlockSize)}, opts...)...)
	if err != nil {
		return nil, err
	}

	err = pl.Initialize(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, err
	}

	return pl, nil
}

// Initialize allocates fresh filter state for the given sample rate and
// channel count. Any previous state is discarded.
func (pl *Pipeline) Initialize(sampleRate float64, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}

	if channels < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	pl.sampleRate = sampleRate
	pl.filters = make([]channelFilters, channels)
	pl.scratch = core.EnsureLen(pl.scratch, pl.maxBlockSize)

	return nil
}

// SampleRate returns the rate passed to Initialize, or 0.
func (pl *Pipeline) SampleRate() float64 {
	return pl.sampleRate
}

// Channels returns the channel count passed to Initialize, or 0.
func (pl *Pipeline) Channels() int {
	return len(pl.filters)
}

// Reset zeroes every filter delay register. Coefficients are kept.
func (pl *Pipeline) Reset() {
	for ch := range pl.filters {
		for slot := range pl.filters[ch] {
			pl.filters[ch][slot].Reset()
		}
	}
}

// UpdateFilterCoefficients designs slot for every channel. Unchanged
// settings are a no-op.
func (pl *Pipeline) UpdateFilterCoefficients(slot int, kind biquad.Kind, freq, q float64) {
	pl.mustBeInitialized()

	if slot < 0 || slot >= NumFilterSlots {
		panic(fmt.Sprintf("pipeline: filter slot %d out of range [0, %d)", slot, NumFilterSlots))
	}

	for ch := range pl.filters {
		pl.filters[ch][slot].Update(kind, freq, q, pl.sampleRate)
	}
}

// ProcessSample runs one sample of channel ch through the signal flow.
func (pl *Pipeline) ProcessSample(ch int, x float64, p *Params) float64 {
	pl.mustBeInitialized()
	pl.mustHaveChannel(ch)

	fs := &pl.filters[ch]
	pl.updateFilters(fs, p)

	return tick(fs, x, p)
}

// Process runs every channel buffer in place with one parameter snapshot.
// buffers may hold fewer channels than were initialized.
func (pl *Pipeline) Process(buffers [][]float64, p *Params) Telemetry {
	pl.mustBeInitialized()
	pl.mustHaveBuffers(len(buffers))

	var peak float64

	for ch, buf := range buffers {
		fs := &pl.filters[ch]
		pl.updateFilters(fs, p)

		for i, x := range buf {
			buf[i] = tick(fs, x, p)
		}

		peak = math.Max(peak, vecmath.MaxAbs(buf))
	}

	return Telemetry{Peak: peak, Display: p.Display()}
}

// ProcessFloat32 is Process for float32 host buffers. Samples are widened
// into preallocated scratch in chunks of the max block size.
func (pl *Pipeline) ProcessFloat32(buffers [][]float32, p *Params) Telemetry {
	pl.mustBeInitialized()
	pl.mustHaveBuffers(len(buffers))

	var peak float64

	for ch, buf := range buffers {
		fs := &pl.filters[ch]
		pl.updateFilters(fs, p)

		for off := 0; off < len(buf); off += len(pl.scratch) {
			n := core.Widen(pl.scratch, buf[off:])
			block := pl.scratch[:n]

			for i, x := range block {
				block[i] = tick(fs, x, p)
			}

			peak = math.Max(peak, vecmath.MaxAbs(block))
			core.Narrow(buf[off:], block)
		}
	}

	return Telemetry{Peak: peak, Display: p.Display()}
}

// ProcessSmoothed processes frame by frame, advancing c once per frame so
// that automation is sample accurate. All buffers must have equal length.
func (pl *Pipeline) ProcessSmoothed(buffers [][]float64, c *Controller) Telemetry {
	pl.mustBeInitialized()
	pl.mustHaveBuffers(len(buffers))

	if len(buffers) == 0 {
		return Telemetry{Display: c.Current().Display()}
	}

	frames := len(buffers[0])
	for ch, buf := range buffers {
		if len(buf) != frames {
			panic(fmt.Sprintf("pipeline: buffer %d has %d frames, want %d", ch, len(buf), frames))
		}
	}

	for i := range frames {
		p := c.Next()

		for ch, buf := range buffers {
			fs := &pl.filters[ch]
			pl.updateFilters(fs, p)
			buf[i] = tick(fs, buf[i], p)
		}
	}

	var peak float64
	for _, buf := range buffers {
		peak = math.Max(peak, vecmath.MaxAbs(buf))
	}

	return Telemetry{Peak: peak, Display: c.Current().Display()}
}

func (pl *Pipeline) updateFilters(fs *channelFilters, p *Params) {
	for slot := range fs {
		f := &p.Filters[slot]
		fs[slot].Update(f.Kind, f.Freq, f.Q, pl.sampleRate)
	}
}

func (pl *Pipeline) mustBeInitialized() {
	if pl.filters == nil {
		panic("pipeline: process called before Initialize")
	}
}

func (pl *Pipeline) mustHaveChannel(ch int) {
	if ch < 0 || ch >= len(pl.filters) {
		panic(fmt.Sprintf("pipeline: channel %d out of range [0, %d)", ch, len(pl.filters)))
	}
}

func (pl *Pipeline) mustHaveBuffers(n int) {
	if n > len(pl.filters) {
		panic(fmt.Sprintf("pipeline: %d buffers for %d channels", n, len(pl.filters)))
	}
}

// tick is the per-sample signal flow.
func tick(fs *channelFilters, x float64, p *Params) float64 {
	dry := x

	s, e1 := fs[0].Process(x)
	s, e2 := fs[1].Process(s)

	s *= p.PreGain

	if p.Rectify.Enabled {
		rs := p.Rectify.Mode.Apply(s)
		if p.Rectify.Flip {
			rs = -rs
		}

		s = core.MixBetween(s, rs, p.Rectify.Mix)
		s = core.MixIn(s, rs, p.Rectify.MixIn)
	}

	kind, param, mix := p.shape(s >= 0)

	w := shaper.Apply(kind, s, param)
	w = core.MixBetween(s, w, mix)

	// Clip replaces the shaped sample with the clamped input.
	if p.Clip {
		w = shaper.HardClipSample(s, param)
	}

	if p.Flip {
		w = -w
	}

	s = core.MixBetween(s, w, p.FunctionMix)

	if p.Crush.Enabled {
		cs := p.Crush.Mode.Apply(s, p.Crush.Step)
		s = core.MixBetween(s, cs, p.Crush.Mix)
		s = core.MixIn(s, cs, p.Crush.MixIn)
	}

	s *= p.PostGain

	if p.ExcessBypass {
		s = e1 + e2
	} else {
		m := p.ExcessMix
		s = core.MixIn(s, m*e1+m*e2, m)
	}

	s = core.MixBetween(dry, s, p.Mix)

	if p.OutputClip {
		s = shaper.HardClipSample(s, p.OutputClipThreshold)
	}

	return s
}
