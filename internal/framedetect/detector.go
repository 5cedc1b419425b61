// Package framedetect implements the streaming preamble-based frame
// detector: a two-state machine (SEARCH/ACQUIRE) over a growable sample
// buffer, with matched-filter correlation and differential-correlation
// variants, plus a CFO-hypothesis acquisition detector built on top of
// them.
package framedetect

import (
	"math"

	"github.com/jeongseonghan/qpsk-sync/internal/dsp"
	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// Mode selects how detectPreamble resolves a detection within a search
// window.
type Mode int

const (
	// ModeFirst returns the first sample offset whose metric exceeds the
	// detection threshold.
	ModeFirst Mode = iota
	// ModeMax returns the offset with the largest metric in the search
	// window, regardless of threshold.
	ModeMax
)

// state is the two-state FSM from spec.md §4.4.
type state int

const (
	stateSearch state = iota
	stateAcquire
)

// DetectionResult records one detected preamble/frame.
type DetectionResult struct {
	SampleOffset  int         // offset within that sub-search where the preamble was found
	Metric        float64     // peak correlation metric, in [0,1] for a well-formed signal
	CFOHypothesis float64     // rad/sample; only set by AcquisitionFrameDetector
	HasCFO        bool        // true if CFOHypothesis was set
	Frame         []complex64 // set once the ACQUIRE transition completes
}

// preambleHook is implemented by each concrete variant (correlation,
// differential, acquisition) to supply the variant-specific search over
// the buffer's valid region. It returns the absolute offset of a detection
// within buf, or ok=false if none was found (or none cleared the
// threshold, in ModeFirst).
type preambleHook interface {
	detectPreamble(buf []complex64) (result DetectionResult, ok bool)
	preambleLen() int
}

// Detector is the shared SEARCH/ACQUIRE state machine described in
// spec.md §4.4. It is embedded by each concrete variant, which supplies
// the preambleHook.
type Detector struct {
	expectedFrameLength int
	buffer              []complex64
	st                  state
	pending             *DetectionResult // the most recent un-framed detection, awaiting ACQUIRE

	hook preambleHook
}

func newDetector(expectedFrameLength int, hook preambleHook) *Detector {
	return &Detector{
		expectedFrameLength: expectedFrameLength,
		st:                  stateSearch,
		hook:                hook,
	}
}

// Process appends newSamples to the internal buffer and runs the
// SEARCH/ACQUIRE loop until the buffer can no longer satisfy a step,
// returning every frame fully detected in this call.
func (d *Detector) Process(newSamples []complex64) []DetectionResult {
	d.buffer = append(d.buffer, newSamples...)

	var results []DetectionResult
	for {
		if len(d.buffer) < d.expectedFrameLength {
			return results
		}

		switch d.st {
		case stateSearch:
			res, ok := d.hook.detectPreamble(d.buffer)
			if !ok {
				// No preamble found: keep only the trailing preambleLen
				// samples so a preamble straddling the next arrival can
				// still be completed.
				tail := d.hook.preambleLen()
				if tail > len(d.buffer) {
					tail = len(d.buffer)
				}
				d.buffer = append([]complex64(nil), d.buffer[len(d.buffer)-tail:]...)
				return results
			}
			d.buffer = d.buffer[res.SampleOffset:]
			pending := res
			d.pending = &pending
			d.st = stateAcquire

		case stateAcquire:
			frame := make([]complex64, d.expectedFrameLength)
			copy(frame, d.buffer[:d.expectedFrameLength])
			d.buffer = d.buffer[d.expectedFrameLength:]

			d.pending.Frame = frame
			results = append(results, *d.pending)
			d.pending = nil
			d.st = stateSearch
		}
	}
}

// Reset clears the buffer and returns to the SEARCH state. Configuration
// (preamble, threshold, mode) is untouched.
func (d *Detector) Reset() {
	d.buffer = nil
	d.st = stateSearch
	d.pending = nil
}

// clampDenominator enforces the 1e-12 floor spec.md §4.4 and §7 require to
// avoid division by zero in the correlation metric (a NumericEdge case,
// not an error).
func clampDenominator(x float64) float64 {
	if x < 1e-12 {
		return 1e-12
	}
	return x
}

// preambleEnergy returns Σ|p[k]|², the normalization constant spec.md §3
// requires be recomputed whenever the preamble is replaced.
func preambleEnergy(p []complex64) float64 {
	var e float64
	for _, s := range p {
		e += absSq(s)
	}
	return e
}

func absSq(c complex64) float64 {
	re := float64(real(c))
	im := float64(imag(c))
	return re*re + im*im
}

// matchedFilterKernel returns the time-reversed complex conjugate of p,
// the kernel that turns a true linear convolution into the cross
// correlation computed by correlate.
func matchedFilterKernel(p []complex64) []complex64 {
	h := make([]complex64, len(p))
	n := len(p)
	for i, s := range p {
		h[n-1-i] = complex64(complex(real(s), -imag(s)))
	}
	return h
}

// firstDifference returns d[n] = s[n+1] - s[n] for n in [0, len(s)-1).
func firstDifference(s []complex64) []complex64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]complex64, len(s)-1)
	for i := 0; i < len(s)-1; i++ {
		out[i] = s[i+1] - s[i]
	}
	return out
}

// fftAccelThreshold is the buffer size at or above which the FFT convolution
// path is used instead of the direct-form sum.
const fftAccelThreshold = 1024

// correlate computes y[n] = Σ_k conj(preamble[k])·buf[n+k] for n in the
// valid range (output length = len(buf)-len(preamble)+1): the sliding
// cross-correlation of buf against preamble. For large buffers it takes
// an FFT-accelerated path that reaches the identical values by running a
// true linear convolution against the time-reversed conjugate kernel and
// reading off the correlation from the appropriate offset.
func correlate(preamble, buf []complex64, useFFT bool) []complex64 {
	outLen := len(buf) - len(preamble) + 1
	if outLen <= 0 {
		return nil
	}

	if useFFT && len(buf) >= fftAccelThreshold {
		return correlateFFT(preamble, buf, outLen)
	}

	out := make([]complex64, outLen)
	for n := 0; n < outLen; n++ {
		var acc complex128
		for k := 0; k < len(preamble); k++ {
			conjP := complex(real(preamble[k]), -imag(preamble[k]))
			acc += complex128(conjP) * complex128(buf[n+k])
		}
		out[n] = complex64(acc)
	}
	return out
}

func correlateFFT(preamble, buf []complex64, outLen int) []complex64 {
	h := matchedFilterKernel(preamble)
	hc := make([]complex128, len(h))
	for i, s := range h {
		hc[i] = complex128(s)
	}
	bc := make([]complex128, len(buf))
	for i, s := range buf {
		bc[i] = complex128(s)
	}

	full := dsp.ConvolveFFT(hc, bc)
	// The correlation y[n] equals the true linear convolution at index
	// n+len(h)-1, since h is preamble time-reversed and conjugated.
	start := len(h) - 1
	out := make([]complex64, outLen)
	for i := 0; i < outLen; i++ {
		out[i] = complex64(full[start+i])
	}
	return out
}

// slidingEnergy computes E[n] = Σ_k |buf[n+k]|² for a boxcar of length
// windowLen, over the same valid range as correlate.
func slidingEnergy(buf []complex64, windowLen int) []float64 {
	outLen := len(buf) - windowLen + 1
	if outLen <= 0 {
		return nil
	}
	out := make([]float64, outLen)
	var running float64
	for i := 0; i < windowLen && i < len(buf); i++ {
		running += absSq(buf[i])
	}
	out[0] = running
	for n := 1; n < outLen; n++ {
		running += absSq(buf[n+windowLen-1]) - absSq(buf[n-1])
		out[n] = running
	}
	return out
}

// correlationMetric computes m[n] = |y[n]|² / (preambleEnergy·E[n]),
// clamping the denominator per spec.md §4.4/§7.
func correlationMetric(y []complex64, energy []float64, preambleEnergyVal float64) []float64 {
	m := make([]float64, len(y))
	for n := range y {
		denom := clampDenominator(preambleEnergyVal * energy[n])
		m[n] = absSq(y[n]) / denom
	}
	return m
}

// resolveMode picks the detection offset from a metric slice per the
// selected Mode. ModeFirst returns the first crossing of threshold;
// ModeMax returns the argmax of any non-empty metric slice.
func resolveMode(m []float64, mode Mode, threshold float64) (offset int, metric float64, ok bool) {
	switch mode {
	case ModeFirst:
		for n, v := range m {
			if v > threshold {
				return n, v, true
			}
		}
		return 0, 0, false
	case ModeMax:
		best := -1
		bestVal := math.Inf(-1)
		for n, v := range m {
			if v > bestVal {
				bestVal = v
				best = n
			}
		}
		if best < 0 {
			return 0, 0, false
		}
		return best, bestVal, true
	default:
		return 0, 0, false
	}
}

// ValidateThreshold enforces the [0,1] invariant spec.md §3 requires on
// set.
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return syncerr.ErrInvalidConfig
	}
	return nil
}

// ValidateMode enforces that mode is one of the two recognized values.
func ValidateMode(mode Mode) error {
	if mode != ModeFirst && mode != ModeMax {
		return syncerr.ErrInvalidConfig
	}
	return nil
}
