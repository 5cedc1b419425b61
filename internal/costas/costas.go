// Package costas implements the decision-directed QPSK Costas loop: a
// residual-phase tracker that runs after timing recovery and coarse CFO
// correction, nudging a VCO phase estimate toward the nearest QPSK
// constellation point each symbol.
package costas

import (
	"math"
	"math/cmplx"

	"github.com/jeongseonghan/qpsk-sync/internal/lock"
	"github.com/jeongseonghan/qpsk-sync/internal/loopfilter"
)

// dampingFactor is the fixed ζ=0.707 damping used to derive loop gains
// from a bandwidth, per §4.1's loop-filter design formula.
const dampingFactor = 0.707

// Loop tracks residual carrier phase via decision-directed QPSK slicing.
type Loop struct {
	loopBW float64
	loop   *loopfilter.LoopFilter
	det    *lock.Detector

	theta        float64
	errorHistory []float64
}

// New returns a loop configured from a loop bandwidth in cycles/sample.
// Recommended range is R/20 to R/200 where R is the sample rate.
func New(loopBW float64) *Loop {
	l := &Loop{det: lock.New()}
	l.SetLoopBW(loopBW)
	return l
}

// LoopBW returns the configured loop bandwidth.
func (l *Loop) LoopBW() float64 { return l.loopBW }

// SetLoopBW recomputes the PI gains for a new bandwidth and installs a
// fresh loop filter, discarding any accumulated integrator state (mirrors
// replacing the controller object wholesale, as the reference does on
// bandwidth reconfiguration).
func (l *Loop) SetLoopBW(loopBW float64) {
	l.loopBW = loopBW
	kp, ki := loopfilter.GainsFromBandwidth(loopBW, dampingFactor)
	l.loop = loopfilter.NewPI(kp, ki)
}

// Reset clears VCO phase, error history, loop-filter accumulator state,
// and the lock detector. The configured bandwidth/gains are unaffected.
func (l *Loop) Reset() {
	l.theta = 0
	l.errorHistory = nil
	l.loop.Reset()
	l.det.Reset()
}

// Process runs the Costas loop over symbolsIn, returning the
// phase-corrected symbols; the per-symbol decision-directed phase error
// is appended to ErrorHistory. VCO phase (theta) persists across calls.
func (l *Loop) Process(symbolsIn []complex64) []complex64 {
	out := make([]complex64, len(symbolsIn))
	errs := make([]float64, len(symbolsIn))

	for i, s := range symbolsIn {
		rot := complex(math.Cos(-l.theta), math.Sin(-l.theta))
		y := complex64(complex128(s) * rot)
		out[i] = y

		ref := complex(sign(float64(real(y))), sign(float64(imag(y))))
		conjRef := complex(real(ref), -imag(ref))
		e := cmplx.Phase(complex128(y) * conjRef)
		errs[i] = e

		l.det.Update(e)
		l.theta += l.loop.Update(e)
	}

	l.errorHistory = append(l.errorHistory, errs...)
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Theta returns the current VCO phase estimate in radians.
func (l *Loop) Theta() float64 { return l.theta }

// ErrorHistory returns the phase-error trace recorded since construction
// or the last Reset.
func (l *Loop) ErrorHistory() []float64 {
	return append([]float64(nil), l.errorHistory...)
}

// IsLocked reports the hysteretic phase-lock state, updated on every
// symbol processed.
func (l *Loop) IsLocked() bool { return l.det.IsLocked() }
