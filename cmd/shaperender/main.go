// Command shaperender runs the waveshaper pipeline offline.
//
// Usage:
//
//	shaperender [flags] input.wav output.wav
//	shaperender -thd [flags]
//	shaperender -response [flags]
//	shaperender -list
//
// Parameters start from the built-in defaults, are overlaid by an optional
// JSON preset and finally by any flags given on the command line.
//
// Examples:
//
//	shaperender -pos tanh -param 6 -pre 12 in.wav out.wav
//	shaperender -preset fuzz.json -from clean.json -normalize -1 in.wav out.wav
//	shaperender -thd -freq 1000 -pre 6
//	shaperender -response -preset bright.json -rate 44100
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/dsp/pipeline"
)

var errUsage = errors.New("usage: shaperender [flags] input.wav output.wav")

// options holds the parsed command line.
type options struct {
	preset    string
	from      string
	normalize float64
	blockSize int
	bitDepth  int

	thd       bool
	thdRate   float64
	freq      float64
	amplitude float64

	response bool

	list    bool
	verbose bool

	args []string
}

// overrides applies flag values on top of a parameter set. Only flags the
// user actually set are recorded.
type overrides []func(*pipeline.Params) error

func (o overrides) apply(p *pipeline.Params) error {
	for _, fn := range o {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.WithError(err).Fatal("shaperender failed")
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, overrides, error) {
	fs := flag.NewFlagSet("shaperender", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.preset, "preset", "", "JSON preset with the target parameters")
	fs.StringVar(&opts.from, "from", "", "JSON preset to start from; the render ramps to the target")
	fs.Float64Var(&opts.normalize, "normalize", math.NaN(), "normalize the output peak to this level in dBFS")
	fs.IntVar(&opts.blockSize, "block", 1024, "processing block size in frames")
	fs.IntVar(&opts.bitDepth, "bits", 0, "output bit depth (16, 24, 32); 0 keeps the input depth")
	fs.BoolVar(&opts.thd, "thd", false, "print a THD table for every transfer function")
	fs.BoolVar(&opts.response, "response", false, "print the filter response in octave steps")
	fs.Float64Var(&opts.thdRate, "rate", 48000, "sample rate for -thd and -response")
	fs.Float64Var(&opts.freq, "freq", 1000, "test tone frequency for -thd in Hz")
	fs.Float64Var(&opts.amplitude, "amp", 1, "test tone amplitude for -thd")
	fs.BoolVar(&opts.list, "list", false, "list transfer function names")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output")

	var ov overrides

	dB := func(name, usage string, set func(*pipeline.Params, float64)) {
		fs.Func(name, usage+" in dB", func(s string) error {
			var v float64
			if _, err := fmt.Sscan(s, &v); err != nil {
				return fmt.Errorf("invalid -%s: %w", name, err)
			}
			ov = append(ov, func(p *pipeline.Params) error {
				set(p, core.DBToLinear(v))
				return nil
			})
			return nil
		})
	}

	ratio := func(name, usage string, set func(*pipeline.Params, float64)) {
		fs.Func(name, usage+" in [0, 1]", func(s string) error {
			var v float64
			if _, err := fmt.Sscan(s, &v); err != nil {
				return fmt.Errorf("invalid -%s: %w", name, err)
			}
			ov = append(ov, func(p *pipeline.Params) error {
				set(p, v)
				return nil
			})
			return nil
		})
	}

	kind := func(name, usage string, set func(*pipeline.Params, shaper.Kind)) {
		fs.Func(name, usage, func(s string) error {
			k, err := shaper.ParseKind(s)
			if err != nil {
				return err
			}
			ov = append(ov, func(p *pipeline.Params) error {
				set(p, k)
				return nil
			})
			return nil
		})
	}

	dB("pre", "pre gain", func(p *pipeline.Params, v float64) { p.PreGain = v })
	dB("post", "post gain", func(p *pipeline.Params, v float64) { p.PostGain = v })
	dB("param", "transfer parameter of both polarities", func(p *pipeline.Params, v float64) {
		p.Pos.Param = v
		p.Neg.Param = v
	})
	dB("threshold", "output clip threshold", func(p *pipeline.Params, v float64) { p.OutputClipThreshold = v })
	ratio("mix", "dry/wet mix", func(p *pipeline.Params, v float64) { p.Mix = v })
	ratio("fmix", "transfer function mix", func(p *pipeline.Params, v float64) { p.FunctionMix = v })
	ratio("excess", "excess mix", func(p *pipeline.Params, v float64) { p.ExcessMix = v })
	kind("pos", "transfer function for positive samples", func(p *pipeline.Params, k shaper.Kind) { p.Pos.Kind = k })
	kind("neg", "transfer function for negative samples", func(p *pipeline.Params, k shaper.Kind) { p.Neg.Kind = k })
	kind("shape", "transfer function for both polarities", func(p *pipeline.Params, k shaper.Kind) {
		p.Pos.Kind = k
		p.Neg.Kind = k
	})

	fs.Func("copy", "copy one polarity onto the other (off, positive, negative)", func(s string) error {
		m, err := pipeline.ParseCopyMode(s)
		if err != nil {
			return err
		}
		ov = append(ov, func(p *pipeline.Params) error {
			p.Copy = m
			return nil
		})
		return nil
	})

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shaperender [flags] input.wav output.wav\n\n")
		fmt.Fprintf(stderr, "Renders a WAV file through the waveshaper, measures distortion with -thd\n")
		fmt.Fprintf(stderr, "or prints the filter response with -response.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	opts.args = fs.Args()

	return opts, ov, nil
}

func run(args []string, stdout io.Writer) error {
	opts, ov, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if opts.list {
		return listKinds(stdout)
	}

	target, err := resolveParams(opts.preset, ov)
	if err != nil {
		return err
	}

	if opts.thd {
		freq, rows, err := measureTHD(target, opts.thdRate, opts.freq, opts.amplitude)
		if err != nil {
			return err
		}
		return printTHD(stdout, freq, rows)
	}

	if opts.response {
		return printResponse(stdout, target.FilterResponse(opts.thdRate, octaveFrequencies()))
	}

	if len(opts.args) != 2 {
		return errUsage
	}

	start := target
	if opts.from != "" {
		start, err = resolveParams(opts.from, nil)
		if err != nil {
			return err
		}
	}

	return renderFile(opts, start, target)
}

// resolveParams builds a validated parameter set from the defaults, an
// optional preset file and flag overrides.
func resolveParams(preset string, ov overrides) (pipeline.Params, error) {
	p := pipeline.DefaultParams()

	if preset != "" {
		var err error
		p, err = loadPresetFile(preset, p)
		if err != nil {
			return p, err
		}
	}

	if err := ov.apply(&p); err != nil {
		return p, err
	}

	if err := p.Validate(); err != nil {
		return p, err
	}

	return p, nil
}

func renderFile(opts *options, start, target pipeline.Params) error {
	in, out := opts.args[0], opts.args[1]

	switch opts.bitDepth {
	case 0, bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		return fmt.Errorf("unsupported output bit depth: %d", opts.bitDepth)
	}

	d, err := readWAV(in)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"file":     in,
		"rate":     d.sampleRate,
		"channels": len(d.channels),
		"bits":     d.bitDepth,
		"frames":   d.frames(),
	}).Info("input")

	tel, err := render(d, start, target, opts.blockSize)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"peak":    tel.Peak,
		"peak_db": core.GainToDB(tel.Peak),
		"pos":     tel.Display.Pos.Kind,
		"neg":     tel.Display.Neg.Kind,
	}).Info("rendered")

	if !math.IsNaN(opts.normalize) {
		gain := normalize(d.channels, core.DBToLinear(opts.normalize))
		logrus.WithField("gain_db", core.GainToDB(gain)).Debug("normalized")
	}

	if opts.bitDepth != 0 {
		d.bitDepth = opts.bitDepth
	}

	if err := writeWAV(out, d); err != nil {
		return err
	}

	logrus.WithField("file", out).Info("output")

	return nil
}

func listKinds(w io.Writer) error {
	names := make([]string, 0, len(shaper.Kinds()))
	for _, k := range shaper.Kinds() {
		names = append(names, k.String())
	}

	_, err := fmt.Fprintln(w, strings.Join(names, "\n"))

	return err
}
