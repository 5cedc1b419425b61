// Package farrow implements a cubic-Lagrange Farrow-structure fractional
// delay interpolator: a 4-tap complex-in/complex-out variable-delay filter
// shared by the Gardner timing corrector and the channel-simulation STO
// collaborator.
package farrow

// numTaps is fixed at 4 (cubic Lagrange, order 3).
const numTaps = 4

// coeffs is the flipped cubic-Lagrange basis matrix: row k gives the FIR
// weights (applied to the buffer in oldest->newest order) that produce
// polynomial coefficient c_k. Rows 1-3 are rows 1-3 of the raw Lagrange
// basis
//
//	[[0,0,1,0],[-1/6,1,-1/2,-1/3],[0,1/2,-1,1/2],[1/6,-1/2,1/2,-1/6]]
//
// flipped horizontally, which aligns index 0 of the buffer with the
// oldest sample; row 0 is kept as [0,0,1,0], so c_0 is the second-newest
// sample.
var coeffs = [numTaps][numTaps]float64{
	{0, 0, 1, 0},
	{-1.0 / 3, -1.0 / 2, 1, -1.0 / 6},
	{1.0 / 2, -1, 1.0 / 2, 0},
	{-1.0 / 6, 1.0 / 2, -1.0 / 2, 1.0 / 6},
}

// Interpolator is a 4-deep shift register plus the fixed coefficient
// matrix above. The zero value is ready to use (zeroed buffer).
type Interpolator struct {
	buf [numTaps]complex64 // oldest -> newest
}

// New returns a freshly zeroed interpolator.
func New() *Interpolator {
	return &Interpolator{}
}

// Load shifts a new sample into the buffer, discarding the oldest.
func (f *Interpolator) Load(x complex64) {
	f.buf[0] = f.buf[1]
	f.buf[1] = f.buf[2]
	f.buf[2] = f.buf[3]
	f.buf[3] = x
}

// Reset zeroes the buffer.
func (f *Interpolator) Reset() {
	f.buf = [numTaps]complex64{}
}

// Buffer returns a copy of the current shift-register contents, oldest
// first, mainly for tests.
func (f *Interpolator) Buffer() [4]complex64 {
	return f.buf
}

// Interpolate evaluates the cubic polynomial with coefficients
// c = coeffs·buffer at x = mu - integerOffset. x = 0 returns the
// second-newest sample; for samples on a straight line, x = 1 returns the
// newest. mu is typically in [0,1); integerOffset moves the evaluation
// point back by whole samples (0 means "between second-newest and
// newest").
func (f *Interpolator) Interpolate(mu float64, integerOffset int) complex64 {
	x := mu - float64(integerOffset)

	var c [numTaps]complex128
	for k := 0; k < numTaps; k++ {
		var sum complex128
		for j := 0; j < numTaps; j++ {
			sum += complex(coeffs[k][j], 0) * complex128(f.buf[j])
		}
		c[k] = sum
	}

	var y complex128
	power := complex128(1)
	for k := 0; k < numTaps; k++ {
		y += c[k] * power
		power *= complex(x, 0)
	}
	return complex64(y)
}

// ProcessBatch streams samples through Load+Interpolate in order, using a
// fixed mu and integer offset for every sample.
func (f *Interpolator) ProcessBatch(samples []complex64, mu float64, integerOffset int) []complex64 {
	out := make([]complex64, len(samples))
	for i, s := range samples {
		f.Load(s)
		out[i] = f.Interpolate(mu, integerOffset)
	}
	return out
}

// ProcessBatchWithTailPadding appends two copies of the last sample before
// processing and discards the first two outputs, so the result length
// equals len(samples). Used by the symbol-timing-offset channel simulator.
func (f *Interpolator) ProcessBatchWithTailPadding(samples []complex64, mu float64, integerOffset int) []complex64 {
	if len(samples) == 0 {
		return nil
	}
	last := samples[len(samples)-1]
	padded := make([]complex64, len(samples)+2)
	copy(padded, samples)
	padded[len(samples)] = last
	padded[len(samples)+1] = last

	out := f.ProcessBatch(padded, mu, integerOffset)
	return out[2:]
}
