package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Widen copies float32 host samples into dst and returns the number copied.
func Widen(dst []float64, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	return n
}

// Narrow copies src into float32 host samples and returns the number copied.
func Narrow(dst []float32, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i])
	}
	return n
}
