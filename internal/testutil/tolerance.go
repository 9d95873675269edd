package testutil

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps || math.IsNaN(diff) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails t if any element's magnitude exceeds limit.
func RequireBounded(t *testing.T, data []float64, limit float64) {
	t.Helper()
	for i, v := range data {
		if !(math.Abs(v) <= limit) {
			t.Fatalf("index %d: |%v| exceeds %v", i, v, limit)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, math.Inf(1)), nil
}

// RelativeError returns ||a-b||2 / ||b||2. It returns the absolute error
// when b is all zeros.
func RelativeError(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	diff := floats.Distance(a, b, 2)
	ref := floats.Norm(b, 2)
	if ref == 0 {
		return diff, nil
	}
	return diff / ref, nil
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}
