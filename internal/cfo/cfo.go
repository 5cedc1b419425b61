// Package cfo implements coarse carrier-frequency-offset estimation from
// a detected preamble: a Schmidl-Cox two-half correlation estimator and a
// phase-drift estimator, both built on top of a differential-correlation
// frame detector to locate the preamble in the first place.
package cfo

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/jeongseonghan/qpsk-sync/internal/framedetect"
	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// madOutlierK is the Median-Absolute-Deviation outlier multiplier used by
// the Schmidl-Cox per-pair estimate filter.
const madOutlierK = 2.5

// base holds the shared preamble-acquisition and correction machinery
// common to every coarse CFO estimator variant.
type base struct {
	detector *framedetect.DifferentialCorrelationFrameDetector
	wEst     float64
	hasEst   bool
}

func newBase(preamble []complex64, threshold float64) (base, error) {
	det, err := framedetect.NewDifferentialCorrelationFrameDetector(preamble, len(preamble), threshold)
	if err != nil {
		return base{}, err
	}
	return base{detector: det}, nil
}

// Estimate returns the most recent CFO estimate in radians/sample, and
// whether one has been produced yet.
func (b *base) Estimate() (float64, bool) { return b.wEst, b.hasEst }

// Correct de-rotates signal by the current CFO estimate. Returns
// syncerr.ErrUsageError if no estimate has been produced yet.
func (b *base) Correct(signal []complex64) ([]complex64, error) {
	if !b.hasEst {
		return nil, syncerr.ErrUsageError
	}
	out := make([]complex64, len(signal))
	for n, s := range signal {
		phase := -b.wEst * float64(n)
		rot := complex(math.Cos(phase), math.Sin(phase))
		out[n] = complex64(complex128(s) * rot)
	}
	return out, nil
}

// Reset clears the internal frame detector and any prior estimate.
func (b *base) Reset() {
	b.detector.Reset()
	b.wEst = 0
	b.hasEst = false
}

func conj64(c complex64) complex64 {
	return complex64(complex(real(c), -imag(c)))
}

// median returns the median of values, which is sorted in place on a copy.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// madFilteredMean computes the mean of values after discarding outliers
// via Median Absolute Deviation: points farther than madOutlierK*MAD from
// the median are dropped. If MAD is zero, it falls back to 3% of the
// median to avoid rejecting every point outright.
func madFilteredMean(values []float64) float64 {
	med := median(values)
	absDev := make([]float64, len(values))
	for i, v := range values {
		absDev[i] = math.Abs(v - med)
	}
	mad := median(absDev)
	if mad == 0 {
		mad = med * 0.03
	}

	var sum float64
	var n int
	for i, v := range values {
		if absDev[i] < madOutlierK*mad {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SchmidlCoxEstimator estimates CFO from a preamble consisting of two
// identical halves, using the Schmidl-Cox conjugate-product method
// (T. M. Schmidl and D. C. Cox, IEEE Trans. Commun., 1997).
type SchmidlCoxEstimator struct {
	base
	halfLen int
}

// NewSchmidlCoxEstimator builds a Schmidl-Cox estimator. preamble must
// have even length and consist of two identical halves; threshold must
// lie in [0,1].
func NewSchmidlCoxEstimator(preamble []complex64, threshold float64) (*SchmidlCoxEstimator, error) {
	if len(preamble)%2 != 0 {
		return nil, syncerr.ErrInvalidConfig
	}
	half := len(preamble) / 2
	for i := 0; i < half; i++ {
		if preamble[i] != preamble[i+half] {
			return nil, syncerr.ErrInvalidConfig
		}
	}

	b, err := newBase(preamble, threshold)
	if err != nil {
		return nil, err
	}
	return &SchmidlCoxEstimator{base: b, halfLen: half}, nil
}

// Process feeds newSamples through the differential-correlation detector
// and, if a preamble is found, estimates CFO from it. Returns whether an
// estimate was produced in this call.
func (e *SchmidlCoxEstimator) Process(newSamples []complex64) bool {
	results := e.detector.Process(newSamples)
	if len(results) == 0 {
		return false
	}
	e.wEst = e.estimateCFO(results[0].Frame)
	e.hasEst = true
	return true
}

func (e *SchmidlCoxEstimator) estimateCFO(rxPreamble []complex64) float64 {
	T := e.halfLen
	wHat := make([]float64, T)
	for i := 0; i < T; i++ {
		p := complex128(conj64(rxPreamble[i])) * complex128(rxPreamble[i+T])
		phi := cmplx.Phase(p)
		wHat[i] = phi / float64(T)
	}
	return madFilteredMean(wHat)
}

// PhaseDriftEstimator estimates CFO from the rate of phase drift between
// the received preamble and the known transmitted preamble.
type PhaseDriftEstimator struct {
	base
	preamble []complex64
}

// NewPhaseDriftEstimator builds a phase-drift estimator. threshold must
// lie in [0,1].
func NewPhaseDriftEstimator(preamble []complex64, threshold float64) (*PhaseDriftEstimator, error) {
	b, err := newBase(preamble, threshold)
	if err != nil {
		return nil, err
	}
	return &PhaseDriftEstimator{base: b, preamble: append([]complex64(nil), preamble...)}, nil
}

// Process feeds newSamples through the differential-correlation detector
// and, if a preamble is found, estimates CFO from it. Returns whether an
// estimate was produced in this call.
func (e *PhaseDriftEstimator) Process(newSamples []complex64) bool {
	results := e.detector.Process(newSamples)
	if len(results) == 0 {
		return false
	}
	e.wEst = e.estimateCFO(results[0].Frame)
	e.hasEst = true
	return true
}

func (e *PhaseDriftEstimator) estimateCFO(rxPreamble []complex64) float64 {
	n := len(rxPreamble)
	phaseOff := make([]float64, n)
	for i := 0; i < n; i++ {
		p := complex128(rxPreamble[i]) * complex128(conj64(e.preamble[i]))
		phaseOff[i] = cmplx.Phase(p)
	}

	if n < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < n; i++ {
		sum += phaseOff[i] - phaseOff[i-1]
	}
	return sum / float64(n-1)
}
