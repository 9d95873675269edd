package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-waveshaper/dsp/core"
	"github.com/cwbudde/algo-waveshaper/dsp/effects/shaper"
	"github.com/cwbudde/algo-waveshaper/dsp/pipeline"
	"github.com/cwbudde/algo-waveshaper/measure/thd"
)

const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	wavFormatPCM = 1

	thdFFTSize = 8192
)

var errNoAudio = errors.New("no audio data")

// wavData is a decoded WAV file as per-channel float samples in [-1, 1].
type wavData struct {
	sampleRate int
	bitDepth   int
	channels   [][]float64
}

func (d *wavData) frames() int {
	if len(d.channels) == 0 {
		return 0
	}
	return len(d.channels[0])
}

// readWAV decodes a PCM WAV file into memory.
func readWAV(path string) (*wavData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	numChannels := buf.Format.NumChannels
	if numChannels < 1 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errNoAudio)
	}

	bitDepth := int(dec.BitDepth)

	return &wavData{
		sampleRate: buf.Format.SampleRate,
		bitDepth:   bitDepth,
		channels:   deinterleave(buf.Data, numChannels, bitDepth),
	}, nil
}

// writeWAV encodes d as a PCM WAV file.
func writeWAV(path string, d *wavData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, d.sampleRate, d.bitDepth, len(d.channels), wavFormatPCM)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: len(d.channels),
			SampleRate:  d.sampleRate,
		},
		Data:           interleave(d.channels, d.bitDepth),
		SourceBitDepth: d.bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}

	return f.Close()
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave converts interleaved int samples into per-channel floats.
// A trailing partial frame is dropped.
func deinterleave(data []int, numChannels, bitDepth int) [][]float64 {
	frames := len(data) / numChannels
	inv := 1 / getMaxValue(bitDepth)

	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch := range numChannels {
			out[ch][i] = float64(data[i*numChannels+ch]) * inv
		}
	}

	return out
}

// interleave converts per-channel floats into interleaved int samples,
// clamping to the integer range.
func interleave(channels [][]float64, bitDepth int) []int {
	if len(channels) == 0 {
		return nil
	}

	maxVal := getMaxValue(bitDepth)
	frames := len(channels[0])
	out := make([]int, frames*len(channels))

	for i := range frames {
		for ch, buf := range channels {
			v := math.Round(buf[i] * maxVal)
			v = math.Max(-maxVal-1, math.Min(maxVal, v))
			out[i*len(channels)+ch] = int(v)
		}
	}

	return out
}

// loadPreset overlays a JSON preset onto base. Fields missing from the
// file keep their base values.
func loadPreset(r io.Reader, base pipeline.Params) (pipeline.Params, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	p := base
	if err := dec.Decode(&p); err != nil {
		return base, fmt.Errorf("failed to decode preset: %w", err)
	}

	return p, nil
}

func loadPresetFile(path string, base pipeline.Params) (pipeline.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("failed to open preset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return loadPreset(f, base)
}

// render runs the pipeline over d in place, smoothing from start to target
// so that automation between the two is heard as a ramp.
func render(d *wavData, start, target pipeline.Params, blockSize int) (pipeline.Telemetry, error) {
	if blockSize < 1 {
		return pipeline.Telemetry{}, fmt.Errorf("block size must be positive: %d", blockSize)
	}

	pl, err := pipeline.NewFromConfig(core.ApplyProcessorOptions(
		core.WithSampleRate(float64(d.sampleRate)),
		core.WithBlockSize(blockSize),
		core.WithChannels(len(d.channels)),
	))
	if err != nil {
		return pipeline.Telemetry{}, err
	}

	ctrl, err := pipeline.NewController(float64(d.sampleRate), start, pipeline.DefaultSmoothing())
	if err != nil {
		return pipeline.Telemetry{}, err
	}

	ctrl.SetTarget(&target)

	var (
		peak  float64
		tel   pipeline.Telemetry
		block = make([][]float64, len(d.channels))
	)

	for off := 0; off < d.frames(); off += blockSize {
		end := min(off+blockSize, d.frames())
		for ch, buf := range d.channels {
			block[ch] = buf[off:end]
		}

		tel = pl.ProcessSmoothed(block, ctrl)
		peak = math.Max(peak, tel.Peak)

		logrus.WithFields(logrus.Fields{
			"offset": off,
			"frames": end - off,
			"peak":   tel.Peak,
		}).Trace("processed block")
	}

	tel.Peak = peak

	return tel, nil
}

// normalize scales every channel so the overall peak equals target and
// returns the applied gain. Silent input is left untouched.
func normalize(channels [][]float64, target float64) float64 {
	var peak float64
	for _, buf := range channels {
		peak = math.Max(peak, vecmath.MaxAbs(buf))
	}

	if peak == 0 {
		return 1
	}

	gain := target / peak
	for _, buf := range channels {
		vecmath.ScaleBlockInPlace(buf, gain)
	}

	return gain
}

// thdRow is one line of the distortion table.
type thdRow struct {
	kind   shaper.Kind
	result thd.Result
}

// measureTHD drives a bin-centred sine through the pipeline once per
// transfer function and analyzes the steady-state output.
func measureTHD(base pipeline.Params, sampleRate, freq, amplitude float64) (float64, []thdRow, error) {
	binHz := sampleRate / thdFFTSize
	bin := max(1, math.Round(freq/binHz))
	freq = bin * binHz

	rows := make([]thdRow, 0, len(shaper.Kinds()))

	for _, k := range shaper.Kinds() {
		p := base
		p.Pos.Kind = k
		p.Neg.Kind = k

		pl, err := pipeline.New()
		if err != nil {
			return 0, nil, err
		}

		if err := pl.Initialize(sampleRate, 1); err != nil {
			return 0, nil, err
		}

		// The first transform length lets the filters settle.
		signal := make([]float64, 2*thdFFTSize)
		for i := range signal {
			signal[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		}

		pl.Process([][]float64{signal}, &p)

		res, err := thd.Analyze(signal[thdFFTSize:], thd.Config{
			SampleRate:      sampleRate,
			FFTSize:         thdFFTSize,
			FundamentalFreq: freq,
		})
		if err != nil {
			return 0, nil, fmt.Errorf("analyze %s: %w", k, err)
		}

		rows = append(rows, thdRow{kind: k, result: res})
	}

	return freq, rows, nil
}

func printTHD(w io.Writer, freq float64, rows []thdRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "fundamental %.2f Hz\n", freq)
	fmt.Fprintln(tw, "KIND\tLEVEL dB\tTHD %\tTHD dB\tODD %\tEVEN %\tSINAD dB")

	for _, r := range rows {
		res := r.result
		level := core.GainToDB(res.FundamentalAmplitude)
		fmt.Fprintf(tw, "%s\t%.2f\t%.3f\t%.2f\t%.3f\t%.3f\t%.2f\n",
			r.kind, level, 100*res.THD, res.THD_dB, 100*res.OddHD, 100*res.EvenHD, res.SINAD)
	}

	return tw.Flush()
}

// octaveFrequencies returns the octave steps from 20 Hz to 20480 Hz.
func octaveFrequencies() []float64 {
	freqs := make([]float64, 0, 11)
	for f := 20.0; f <= 20480; f *= 2 {
		freqs = append(freqs, f)
	}

	return freqs
}

func printResponse(w io.Writer, points []pipeline.FilterPoint) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FREQ Hz\tFILTERED dB\tEXCESS dB\t")

	for _, pt := range points {
		fmt.Fprintf(tw, "%.0f\t%.2f\t%.2f\t\n", pt.Freq, pt.Filtered, pt.Excess)
	}

	return tw.Flush()
}
