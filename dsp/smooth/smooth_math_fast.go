//go:build fastmath

package smooth

import "github.com/meko-christian/algo-approx"

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}

// mathLog computes ln(x) using fast approximation.
func mathLog(x float64) float64 {
	return approx.FastLog(x)
}
