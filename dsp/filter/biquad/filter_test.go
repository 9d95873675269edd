package biquad

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-waveshaper/internal/testutil"
)

func sine(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / testRate)
	}

	return out
}

func peakAfter(x []float64, skip int) float64 {
	var p float64
	for _, v := range x[skip:] {
		p = math.Max(p, math.Abs(v))
	}

	return p
}

func runFilter(f *Filter, in []float64) (filtered, excess []float64) {
	filtered = make([]float64, len(in))
	excess = make([]float64, len(in))

	for i, x := range in {
		filtered[i], excess[i] = f.Process(x)
	}

	return filtered, excess
}

func delays(f *Filter) [2]float64 {
	return [2]float64{f.section.d0, f.section.d1}
}

func TestFilter_ZeroValueIsIdentity(t *testing.T) {
	var f Filter
	for _, x := range []float64{0, 0.5, -1, 3} {
		y, e := f.Process(x)
		if y != x || e != 0 {
			t.Fatalf("Process(%v) = %v, %v; want %v, 0", x, y, e, x)
		}
	}
}

func TestFilter_IdentityHasNoExcess(t *testing.T) {
	f := NewFilter()
	f.Update(KindIdentity, 1000, DefaultQ, testRate)

	for _, x := range sine(440, 256) {
		y, e := f.Process(x)
		if y != x || e != 0 {
			t.Fatalf("identity Process(%v) = %v, %v", x, y, e)
		}
	}
}

func TestFilter_LowpassPassesDCAndRejectsHighFrequency(t *testing.T) {
	f := NewFilter()
	f.Update(KindLowpass, 500, DefaultQ, testRate)

	dc := make([]float64, 4800)
	for i := range dc {
		dc[i] = 1
	}

	y, e := runFilter(f, dc)
	if !almostEqual(y[len(y)-1], 1, 1e-9) || math.Abs(e[len(e)-1]) > 1e-9 {
		t.Fatalf("lowpass DC: filtered=%v excess=%v", y[len(y)-1], e[len(e)-1])
	}

	f.Reset()

	y, e = runFilter(f, sine(20000, 4800))
	if p := peakAfter(y, 2400); p > 0.01 {
		t.Fatalf("lowpass 20 kHz filtered peak = %v, want < 0.01", p)
	}

	if p := peakAfter(e, 2400); p < 0.98 {
		t.Fatalf("lowpass 20 kHz excess peak = %v, want about 1", p)
	}
}

func TestFilter_HighpassRejectsDC(t *testing.T) {
	f := NewFilter()
	f.Update(KindHighpass, 500, DefaultQ, testRate)

	dc := make([]float64, 4800)
	for i := range dc {
		dc[i] = 1
	}

	y, e := runFilter(f, dc)
	if math.Abs(y[len(y)-1]) > 1e-9 || !almostEqual(e[len(e)-1], 1, 1e-9) {
		t.Fatalf("highpass DC: filtered=%v excess=%v", y[len(y)-1], e[len(e)-1])
	}

	f.Reset()

	y, e = runFilter(f, sine(20000, 4800))
	if p := peakAfter(y, 2400); p < 0.98 {
		t.Fatalf("highpass 20 kHz filtered peak = %v, want about 1", p)
	}

	if p := peakAfter(e, 2400); p > 0.05 {
		t.Fatalf("highpass 20 kHz excess peak = %v, want small", p)
	}
}

func TestFilter_ResetEqualsFresh(t *testing.T) {
	in := sine(1234, 512)

	used := NewFilter()
	used.Update(KindBandpass, 1000, 2, testRate)
	runFilter(used, in)
	used.Reset()

	fresh := NewFilter()
	fresh.Update(KindBandpass, 1000, 2, testRate)

	a, ae := runFilter(used, in)
	b, be := runFilter(fresh, in)

	for i := range a {
		if a[i] != b[i] || ae[i] != be[i] {
			t.Fatalf("sample %d: reset=%v/%v fresh=%v/%v", i, a[i], ae[i], b[i], be[i])
		}
	}
}

func TestFilter_UpdateIsLazy(t *testing.T) {
	f := NewFilter()

	if !f.Update(KindLowpass, 1000, DefaultQ, testRate) {
		t.Fatal("first Update should recompute")
	}

	f.Process(1)
	f.Process(0.5)
	state := delays(f)

	if f.Update(KindLowpass, 1000, DefaultQ, testRate) {
		t.Fatal("repeated Update should not recompute")
	}

	if delays(f) != state {
		t.Fatal("Update touched the delay registers")
	}

	for _, change := range []struct {
		kind          Kind
		freq, q, rate float64
	}{
		{KindHighpass, 1000, DefaultQ, testRate},
		{KindHighpass, 2000, DefaultQ, testRate},
		{KindHighpass, 2000, 3, testRate},
		{KindHighpass, 2000, 3, 44100},
	} {
		if !f.Update(change.kind, change.freq, change.q, change.rate) {
			t.Fatalf("Update(%v, %v, %v, %v) should recompute", change.kind, change.freq, change.q, change.rate)
		}
	}

	if f.Kind() != KindHighpass {
		t.Fatalf("Kind() = %v, want Highpass", f.Kind())
	}

	if f.Coefficients() != Highpass(2000, 3, 44100) {
		t.Fatal("Coefficients() do not match the last design")
	}

	if delays(f) != state {
		t.Fatal("coefficient changes must keep the delay registers")
	}
}

func TestFilter_SeriesExcessReconstructsInput(t *testing.T) {
	lp := NewFilter()
	lp.Update(KindLowpass, 8000, DefaultQ, testRate)

	hp := NewFilter()
	hp.Update(KindHighpass, 200, DefaultQ, testRate)

	in := append(sine(3000, 512), testutil.DeterministicNoise(7, 1, 512)...)
	for i, x := range in {
		y1, e1 := lp.Process(x)
		y2, e2 := hp.Process(y1)

		if !almostEqual(y2+e1+e2, x, 1e-12) {
			t.Fatalf("sample %d: y2+e1+e2 = %v, want %v", i, y2+e1+e2, x)
		}
	}
}

func TestFilter_ImpulseMatchesSection(t *testing.T) {
	f := NewFilter()
	f.Update(KindBandpass, 2000, 2, testRate)

	imp := testutil.Impulse(64, 0)
	want := runSection(NewSection(f.Coefficients()), imp)

	got := make([]float64, len(imp))
	for i, x := range imp {
		got[i], _ = f.Process(x)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}
