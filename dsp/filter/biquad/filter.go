package biquad

type designKey struct {
	kind       Kind
	freq, q    float64
	sampleRate float64
}

// Filter is one filter slot: a Section plus the design key its
// coefficients were computed from. The zero value is an identity filter.
type Filter struct {
	section Section
	key     designKey
	valid   bool
}

// NewFilter returns an identity filter.
func NewFilter() *Filter {
	f := &Filter{}
	f.Update(KindIdentity, 0, 0, 0)

	return f
}

// Update recomputes the coefficients when any of kind, freq, q or
// sampleRate differ from the last call and reports whether it did.
// Delay registers are left untouched.
func (f *Filter) Update(kind Kind, freq, q, sampleRate float64) bool {
	key := designKey{kind: kind, freq: freq, q: q, sampleRate: sampleRate}
	if f.valid && key == f.key {
		return false
	}

	f.section.Coefficients = Design(kind, freq, q, sampleRate)
	f.key = key
	f.valid = true

	return true
}

// Process filters x and returns the filtered sample together with the
// excess, the part of x the filter removed (x - filtered).
func (f *Filter) Process(x float64) (filtered, excess float64) {
	if !f.valid {
		return x, 0
	}

	filtered = f.section.ProcessSample(x)

	return filtered, x - filtered
}

// Reset zeroes the delay registers. Coefficients are kept.
func (f *Filter) Reset() {
	f.section.Reset()
}

// Kind returns the kind the current coefficients were designed for.
func (f *Filter) Kind() Kind {
	return f.key.kind
}

// Coefficients returns the current coefficients.
func (f *Filter) Coefficients() Coefficients {
	if !f.valid {
		return Identity()
	}

	return f.section.Coefficients
}
