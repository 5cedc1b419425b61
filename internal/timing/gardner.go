// Package timing implements the Gardner symbol-timing corrector: a
// non-data-aided resampler that decimates a 2-samples-per-symbol stream
// down to 1 sample per symbol, steering a Farrow fractional-delay
// interpolator with a timing-error detector and loop filter.
package timing

import (
	"github.com/jeongseonghan/qpsk-sync/internal/farrow"
	"github.com/jeongseonghan/qpsk-sync/internal/loopfilter"
	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// Hysteretic mu-rewrap thresholds, fixed per the single adopted
// convention: mu ranges over [lowerMu, upperMu] with hysteresis H.
const (
	lowerMu      = 0.2
	upperMu      = 1.0
	hysteresisMu = 0.1
	initialMu    = 0.5
	padLen       = 2
)

// TED computes the Gardner timing-error-detector output for SPS=2: the
// real part of (prev-next)*conj(curr), where prev/curr/next are the
// Farrow interpolator evaluated at mu-1, mu, and mu+1 respectively.
func TED(mu float64, interp *farrow.Interpolator) float64 {
	prev := complex128(interp.Interpolate(mu, 1))
	curr := complex128(interp.Interpolate(mu, 0))
	next := complex128(interp.Interpolate(mu, -1))

	e := (prev - next) * complexConj(curr)
	return real(e)
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Corrector drives a Farrow interpolator through the load/TED/interpolate
// cycle that resamples a 2-SPS stream to 1 SPS.
type Corrector struct {
	interp *farrow.Interpolator
	loop   *loopfilter.LoopFilter

	signal  []complex64
	sigSize int
	i       int
	mu      float64
	parity  int

	muLog []float64
	eLog  []float64
}

// New returns a corrector using the given loop filter to steer mu. If
// loop is nil, a pure-proportional filter with Kp=0.1 is used, matching
// the reference default.
func New(loop *loopfilter.LoopFilter) *Corrector {
	if loop == nil {
		loop = loopfilter.New(0.1, 0, 0)
	}
	c := &Corrector{interp: farrow.New(), loop: loop}
	c.resetState()
	return c
}

func (c *Corrector) resetState() {
	c.mu = initialMu
	c.parity = 0
	c.i = padLen
	c.muLog = nil
	c.eLog = nil
}

// Reset clears the Farrow buffer, the loop filter accumulator, the
// loaded signal, and the mu/parity/index state.
func (c *Corrector) Reset() {
	c.interp.Reset()
	c.loop.Reset()
	c.signal = nil
	c.sigSize = 0
	c.resetState()
}

// LoadSignal pads the signal with two repeats of its last sample,
// primes the Farrow buffer with the first two samples, and positions the
// read cursor to continue from there. Signals of odd length are
// right-padded by one extra sample repeat before the fixed 2-sample tail
// pad is applied, so process always sees an even-length buffer.
func (c *Corrector) LoadSignal(signal []complex64) error {
	if len(signal) < 2 {
		return syncerr.ErrInsufficientData
	}

	work := signal
	if len(signal)%2 != 0 {
		work = append(append([]complex64(nil), signal...), signal[len(signal)-1])
	}

	last := work[len(work)-1]
	padded := make([]complex64, len(work)+padLen)
	copy(padded, work)
	for k := 0; k < padLen; k++ {
		padded[len(work)+k] = last
	}

	c.signal = padded
	c.sigSize = len(padded)
	c.interp.Reset()
	c.interp.Load(padded[0])
	c.interp.Load(padded[1])
	c.i = padLen
	c.mu = initialMu
	c.parity = 0
	return nil
}

// Process loads signal (if non-nil) and runs it to completion, returning
// one output sample per symbol. Output length is exactly L/2 after an
// odd-length input is padded by one sample, i.e. ceil(L/2) of the
// original input length L.
func (c *Corrector) Process(signal []complex64) ([]complex64, error) {
	if signal != nil {
		if err := c.LoadSignal(signal); err != nil {
			return nil, err
		}
	} else if c.signal == nil {
		return nil, syncerr.ErrInsufficientData
	}

	var out []complex64
	for c.i+padLen <= c.sigSize {
		sample, err := c.processSymbolPair()
		if err != nil {
			return out, err
		}
		out = append(out, sample)
	}
	return out, nil
}

// processSymbolPair advances the corrector by one input sample pair,
// emitting exactly one output sample.
func (c *Corrector) processSymbolPair() (complex64, error) {
	if c.signal == nil {
		return 0, syncerr.ErrUsageError
	}
	if c.i+padLen > c.sigSize {
		return 0, syncerr.ErrInsufficientData
	}

	var sampleOut complex64
	haveSample := false
	var e float64

	for iter := 0; iter < 2; iter++ {
		// Hysteretic mu rewrap, checked before the next sample is loaded.
		if c.mu > upperMu+hysteresisMu {
			c.mu = lowerMu
			c.parity = flip(c.parity)
		} else if c.mu < lowerMu-hysteresisMu {
			c.mu = upperMu
			c.parity = flip(c.parity)
		}

		c.interp.Load(c.signal[c.i])
		c.i++

		if c.i%2 == c.parity {
			e = TED(c.mu, c.interp)
			c.mu += c.loop.Update(e)
		} else {
			sampleOut = c.interp.Interpolate(c.mu, 0)
			haveSample = true
		}
	}

	if !haveSample {
		sampleOut = c.interp.Interpolate(c.mu, 0)
	}

	// Rewrap once more so the logged and reported mu stays within
	// [lowerMu-H, upperMu+H]; the next pair's check is then a no-op.
	if c.mu > upperMu+hysteresisMu {
		c.mu = lowerMu
		c.parity = flip(c.parity)
	} else if c.mu < lowerMu-hysteresisMu {
		c.mu = upperMu
		c.parity = flip(c.parity)
	}

	c.muLog = append(c.muLog, c.mu)
	c.eLog = append(c.eLog, e)
	return sampleOut, nil
}

func flip(parity int) int {
	if parity == 0 {
		return 1
	}
	return 0
}

// Mu returns the current fractional-delay state.
func (c *Corrector) Mu() float64 { return c.mu }

// Parity returns the current parity offset (0 or 1).
func (c *Corrector) Parity() int { return c.parity }

// MuLog returns the per-output-symbol mu trace recorded since the last
// Reset/LoadSignal.
func (c *Corrector) MuLog() []float64 { return append([]float64(nil), c.muLog...) }

// ErrorLog returns the per-output-symbol TED error trace recorded since
// the last Reset/LoadSignal.
func (c *Corrector) ErrorLog() []float64 { return append([]float64(nil), c.eLog...) }
