//go:build !fastmath

package smooth

import "math"

// mathExp computes e^x using standard library math.
func mathExp(x float64) float64 {
	return math.Exp(x)
}

// mathLog computes ln(x) using standard library math.
func mathLog(x float64) float64 {
	return math.Log(x)
}
