// Package thd measures harmonic distortion of a processed test tone.
//
// The signal is windowed, transformed with a forward FFT and the energy at
// integer multiples of the fundamental is compared with the fundamental
// itself. Levels are sums of bin magnitudes over a capture region around
// each harmonic so that window leakage is counted with its bin.
package thd

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
)

var (
	// ErrEmptySignal is returned when there is nothing to analyze.
	ErrEmptySignal = errors.New("thd: empty signal")
	// ErrInvalidConfig wraps every configuration error.
	ErrInvalidConfig = errors.New("thd: invalid config")
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
)

// Window selects the analysis window.
type Window int

const (
	// WindowHann is the periodic Hann window.
	WindowHann Window = iota
	// WindowRectangular applies no weighting.
	WindowRectangular
	// WindowBlackman is the periodic three-term Blackman window.
	WindowBlackman
)

func (w Window) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowRectangular:
		return "rectangular"
	case WindowBlackman:
		return "blackman"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// captureBins is the main-lobe half width of the window in bins.
func (w Window) captureBins() int {
	switch w {
	case WindowRectangular:
		return 1
	case WindowBlackman:
		return 3
	default:
		return 2
	}
}

// coefficients fills dst with the periodic window of length len(dst).
func (w Window) coefficients(dst []float64) {
	n := float64(len(dst))
	for i := range dst {
		x := 2 * math.Pi * float64(i) / n

		switch w {
		case WindowRectangular:
			dst[i] = 1
		case WindowBlackman:
			dst[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		default:
			dst[i] = 0.5 - 0.5*math.Cos(x)
		}
	}
}

// Config holds THD calculation parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the transform length. Zero picks the next power of two at
	// or above the signal length. Longer signals are truncated.
	FFTSize int
	// FundamentalFreq fixes the fundamental. Zero searches the largest bin
	// within the range.
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	// CaptureBins is the half width summed around each harmonic. Zero uses
	// the window's main lobe, a negative value sums a single bin.
	CaptureBins  int
	MaxHarmonics int
	Window       Window
}

// Result holds THD measurement results. Ratios are relative to the
// fundamental level.
//
//nolint:revive
type Result struct {
	FundamentalFreq float64
	// FundamentalLevel is the summed capture magnitude of the fundamental.
	FundamentalLevel float64
	// FundamentalAmplitude is the peak-bin amplitude estimate, exact for a
	// bin-centred tone.
	FundamentalAmplitude float64
	THD                  float64
	THDN                 float64
	THD_dB               float64
	THDN_dB              float64
	OddHD                float64
	EvenHD               float64
	Noise                float64
	SINAD                float64
	// Harmonics holds the ratio of harmonic k+2 to the fundamental.
	Harmonics []float64
}

// Calculator performs THD analysis and keeps its FFT plan and buffers
// between calls of the same size.
type Calculator struct {
	cfg Config

	plan    *algofft.Plan[complex128]
	fftSize int
	win     []float64
	winSum  float64
	buf     []float64
	in, out []complex128
	mag     []float64
}

// NewCalculator validates cfg and fills in defaults.
func NewCalculator(cfg Config) (*Calculator, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &Calculator{cfg: cfg}, nil
}

// Analyze is a one-shot THD analysis of a time-domain signal.
func Analyze(signal []float64, cfg Config) (Result, error) {
	c, err := NewCalculator(cfg)
	if err != nil {
		return Result{}, err
	}

	return c.Analyze(signal)
}

// Analyze windows signal, transforms it and evaluates the THD metrics.
func (c *Calculator) Analyze(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	fftSize := c.cfg.FFTSize
	if fftSize == 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize < 2 {
		return Result{}, fmt.Errorf("%w: fft size %d", ErrInvalidConfig, fftSize)
	}

	n := min(len(signal), fftSize)

	err := c.prepare(fftSize, n)
	if err != nil {
		return Result{}, err
	}

	copy(c.buf, signal[:n])
	vecmath.MulBlockInPlace(c.buf, c.win)

	for i := range c.in {
		c.in[i] = 0
	}

	for i, v := range c.buf {
		c.in[i] = complex(v, 0)
	}

	err = c.plan.Forward(c.out, c.in)
	if err != nil {
		return Result{}, fmt.Errorf("thd: forward fft: %w", err)
	}

	for i := range c.mag {
		x := c.out[i]
		c.mag[i] = real(x)*real(x) + imag(x)*imag(x)
	}

	res := c.calculate(c.mag, fftSize)
	if fb := int(math.Round(res.FundamentalFreq * float64(fftSize) / c.cfg.SampleRate)); fb > 0 && fb < len(c.mag) {
		res.FundamentalAmplitude = 2 * math.Sqrt(c.mag[fb]) / c.winSum
	}

	return res, nil
}

func (c *Calculator) prepare(fftSize, n int) error {
	if c.plan == nil || c.fftSize != fftSize {
		plan, err := algofft.NewPlan64(fftSize)
		if err != nil {
			return fmt.Errorf("%w: fft size %d: %w", ErrInvalidConfig, fftSize, err)
		}

		c.plan = plan
		c.fftSize = fftSize
		c.in = make([]complex128, fftSize)
		c.out = make([]complex128, fftSize)
		c.mag = make([]float64, fftSize/2+1)
	}

	if len(c.win) != n {
		c.win = make([]float64, n)
		c.cfg.Window.coefficients(c.win)
		c.buf = make([]float64, n)

		c.winSum = 0
		for _, w := range c.win {
			c.winSum += w
		}
	}

	return nil
}

// CalculateFromMagnitude computes THD metrics from a squared-magnitude
// spectrum holding the non-negative-frequency bins [0..Nyquist].
func (c *Calculator) CalculateFromMagnitude(magSquared []float64) Result {
	fftSize := c.cfg.FFTSize
	if fftSize <= 0 {
		fftSize = 2 * (len(magSquared) - 1)
	}

	return c.calculate(magSquared, fftSize)
}

//nolint:cyclop
func (c *Calculator) calculate(magSquared []float64, fftSize int) Result {
	if len(magSquared) <= 1 || fftSize <= 1 {
		return Result{}
	}

	cfg := c.cfg
	maxBin := len(magSquared) - 1
	binHz := cfg.SampleRate / float64(fftSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	fundamentalBin := c.findFundamentalBin(magSquared, lowerBin, upperBin, binHz)

	capture := cfg.CaptureBins
	if capture == 0 {
		capture = cfg.Window.captureBins()
	}

	if capture*2 > fundamentalBin {
		capture = fundamentalBin / 2
	}

	fundamentalLevel := binLevel(magSquared, fundamentalBin, capture)
	if fundamentalLevel <= 0 {
		return Result{FundamentalFreq: float64(fundamentalBin) * binHz}
	}

	var thdAbs, oddAbs, evenAbs float64

	harmonics := make([]float64, 0, 8)

	for k := 2; cfg.MaxHarmonics <= 0 || k-2 < cfg.MaxHarmonics; k++ {
		bin := k * fundamentalBin
		if bin > upperBin {
			break
		}

		value := binLevel(magSquared, bin, capture)

		thdAbs += value
		if k%2 == 0 {
			evenAbs += value
		} else {
			oddAbs += value
		}

		harmonics = append(harmonics, value/fundamentalLevel)
	}

	var totalAbs float64
	for i := lowerBin; i <= upperBin; i++ {
		totalAbs += sqrtPositive(magSquared[i])
	}

	thdnAbs := math.Max(totalAbs-fundamentalLevel, 0)
	noiseAbs := math.Max(thdnAbs-thdAbs, 0)

	thd := thdAbs / fundamentalLevel
	thdn := thdnAbs / fundamentalLevel

	sinad := math.Inf(1)
	if thdn > 0 {
		sinad = -20 * math.Log10(thdn)
	}

	return Result{
		FundamentalFreq:  float64(fundamentalBin) * binHz,
		FundamentalLevel: fundamentalLevel,
		THD:              thd,
		THDN:             thdn,
		THD_dB:           core.LinearToDB(thd),
		THDN_dB:          core.LinearToDB(thdn),
		OddHD:            oddAbs / fundamentalLevel,
		EvenHD:           evenAbs / fundamentalLevel,
		Noise:            noiseAbs / fundamentalLevel,
		SINAD:            sinad,
		Harmonics:        harmonics,
	}
}

func (c *Calculator) findFundamentalBin(magSquared []float64, lowerBin, upperBin int, binHz float64) int {
	if c.cfg.FundamentalFreq > 0 {
		return clampInt(int(math.Round(c.cfg.FundamentalFreq/binHz)), lowerBin, upperBin)
	}

	best := lowerBin
	for i := lowerBin + 1; i <= upperBin; i++ {
		if magSquared[i] > magSquared[best] {
			best = i
		}
	}

	return best
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return cfg, fmt.Errorf("%w: sample rate must be > 0 and finite: %f", ErrInvalidConfig, cfg.SampleRate)
	}

	if cfg.FFTSize < 0 {
		return cfg, fmt.Errorf("%w: fft size must be >= 0: %d", ErrInvalidConfig, cfg.FFTSize)
	}

	if cfg.Window < WindowHann || cfg.Window > WindowBlackman {
		return cfg, fmt.Errorf("%w: unknown window %d", ErrInvalidConfig, int(cfg.Window))
	}

	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = math.Min(defaultRangeUpperHz, cfg.SampleRate/2)
	}

	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	if cfg.MaxHarmonics < 0 {
		cfg.MaxHarmonics = 0
	}

	return cfg, nil
}

// binLevel sums bin magnitudes in [bin-capture, bin+capture]. A negative
// capture reads the single bin.
func binLevel(magSquared []float64, bin, capture int) float64 {
	if bin < 0 || bin >= len(magSquared) {
		return 0
	}

	capture = max(capture, 0)
	lo := max(bin-capture, 0)
	hi := min(bin+capture, len(magSquared)-1)

	var sum float64
	for i := lo; i <= hi; i++ {
		sum += sqrtPositive(magSquared[i])
	}

	return sum
}

func sqrtPositive(v float64) float64 {
	if v <= 0 {
		return 0
	}

	return math.Sqrt(v)
}

func clampInt(val, lo, hi int) int {
	return min(max(val, lo), hi)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
