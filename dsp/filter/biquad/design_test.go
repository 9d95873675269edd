package biquad

import (
	"errors"
	"math"
	"testing"
)

const testRate = 48000.0

func TestLowpass_DCAndHighFrequency(t *testing.T) {
	c := Lowpass(1000, DefaultQ, testRate)

	if db := c.MagnitudeDB(0, testRate); math.Abs(db) > 1e-9 {
		t.Fatalf("lowpass DC gain = %v dB, want 0", db)
	}

	if db := c.MagnitudeDB(1000, testRate); math.Abs(db+3.0103) > 0.01 {
		t.Fatalf("lowpass cutoff gain = %v dB, want -3.01", db)
	}

	if db := c.MagnitudeDB(20000, testRate); db > -40 {
		t.Fatalf("lowpass 20 kHz gain = %v dB, want < -40", db)
	}
}

func TestHighpass_DCAndHighFrequency(t *testing.T) {
	c := Highpass(1000, DefaultQ, testRate)

	if db := c.MagnitudeDB(0, testRate); db > -200 {
		t.Fatalf("highpass DC gain = %v dB, want a null", db)
	}

	if db := c.MagnitudeDB(20000, testRate); math.Abs(db) > 0.5 {
		t.Fatalf("highpass 20 kHz gain = %v dB, want about 0", db)
	}

	if db := c.MagnitudeDB(testRate/2, testRate); math.Abs(db) > 1e-9 {
		t.Fatalf("highpass Nyquist gain = %v dB, want 0", db)
	}
}

func TestBandpass_UnityPeak(t *testing.T) {
	for _, q := range []float64{0.5, DefaultQ, 2, 10} {
		c := Bandpass(2000, q, testRate)
		if db := c.MagnitudeDB(2000, testRate); math.Abs(db) > 1e-9 {
			t.Fatalf("q=%v: bandpass centre gain = %v dB, want 0", q, db)
		}

		if db := c.MagnitudeDB(0, testRate); db > -200 {
			t.Fatalf("q=%v: bandpass DC gain = %v dB, want a null", q, db)
		}
	}
}

func TestDesign_Coefficients(t *testing.T) {
	// w0 = pi/2: cos = 0, sin = 1, alpha = 1/(2q) = 0.5 for q = 1.
	fs := 4000.0
	a0 := 1.5

	tests := []struct {
		name string
		got  Coefficients
		want Coefficients
	}{
		{"lowpass", Lowpass(1000, 1, fs), Coefficients{B0: 0.5 / a0, B1: 1 / a0, B2: 0.5 / a0, A1: 0, A2: 0.5 / a0}},
		{"highpass", Highpass(1000, 1, fs), Coefficients{B0: 0.5 / a0, B1: -1 / a0, B2: 0.5 / a0, A1: 0, A2: 0.5 / a0}},
		{"bandpass", Bandpass(1000, 1, fs), Coefficients{B0: 0.5 / a0, B1: 0, B2: -0.5 / a0, A1: 0, A2: 0.5 / a0}},
		{"identity", Identity(), Coefficients{B0: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, w := tt.got, tt.want
			if !almostEqual(g.B0, w.B0, 1e-12) || !almostEqual(g.B1, w.B1, 1e-12) ||
				!almostEqual(g.B2, w.B2, 1e-12) || !almostEqual(g.A1, w.A1, 1e-12) ||
				!almostEqual(g.A2, w.A2, 1e-12) {
				t.Fatalf("got %+v, want %+v", g, w)
			}
		})
	}
}

func TestDesign_NoRangeGuards(t *testing.T) {
	// q = 0 makes alpha infinite, so A2 = (1-Inf)/Inf.
	c := Lowpass(1000, 0, testRate)
	if !math.IsNaN(c.A2) {
		t.Fatalf("q=0 lowpass A2 = %v, want NaN", c.A2)
	}

	c = Lowpass(1000, DefaultQ, 0)
	if !math.IsNaN(c.B0) {
		t.Fatalf("zero sample rate B0 = %v, want NaN", c.B0)
	}
}

func TestDesign_DispatchesByKind(t *testing.T) {
	if Design(KindLowpass, 500, 1, testRate) != Lowpass(500, 1, testRate) {
		t.Fatal("Design(KindLowpass) differs from Lowpass")
	}

	if Design(KindHighpass, 500, 1, testRate) != Highpass(500, 1, testRate) {
		t.Fatal("Design(KindHighpass) differs from Highpass")
	}

	if Design(KindBandpass, 500, 1, testRate) != Bandpass(500, 1, testRate) {
		t.Fatal("Design(KindBandpass) differs from Bandpass")
	}

	if Design(Kind(99), 500, 1, testRate) != Identity() {
		t.Fatal("unknown kind should design the identity")
	}
}

func TestParseKind(t *testing.T) {
	for k := range kindCount {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if k, err := ParseKind("LOWPASS"); err != nil || k != KindLowpass {
		t.Fatalf("ParseKind(LOWPASS) = %v, %v", k, err)
	}

	if _, err := ParseKind("notch"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("ParseKind(notch) err = %v, want ErrUnknownKind", err)
	}

	if s := Kind(42).String(); s != "Kind(42)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestKind_Text(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("bandpass")); err != nil || k != KindBandpass {
		t.Fatalf("UnmarshalText = %v, %v", k, err)
	}

	if _, err := Kind(-1).MarshalText(); err == nil {
		t.Fatal("MarshalText of invalid kind should fail")
	}
}
