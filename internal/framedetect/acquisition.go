package framedetect

import (
	"math"

	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// AcquisitionFrameDetector extends CorrelationFrameDetector with a bank of
// candidate carrier frequency offsets: the buffer is de-rotated by each
// hypothesis before correlating against the preamble, and the hypothesis
// giving the strongest peak is reported alongside the detection. This
// trades the differential detector's CFO-tolerance for an explicit coarse
// CFO estimate obtained for free during acquisition.
type AcquisitionFrameDetector struct {
	*Detector

	preamble       []complex64
	preambleEnergy float64
	threshold      float64
	mode           Mode
	cfoHypotheses  []float64 // rad/sample
}

// NewAcquisitionFrameDetector builds a detector that searches cfoHypotheses
// (in radians/sample) in addition to sample offset. threshold must lie in
// [0,1] and cfoHypotheses must be non-empty.
func NewAcquisitionFrameDetector(preamble []complex64, expectedFrameLength int, threshold float64, cfoHypotheses []float64) (*AcquisitionFrameDetector, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if len(cfoHypotheses) == 0 {
		return nil, syncerr.ErrInvalidConfig
	}
	a := &AcquisitionFrameDetector{
		preamble:       append([]complex64(nil), preamble...),
		preambleEnergy: preambleEnergy(preamble),
		threshold:      threshold,
		mode:           ModeMax,
		cfoHypotheses:  append([]float64(nil), cfoHypotheses...),
	}
	a.Detector = newDetector(expectedFrameLength, a)
	return a, nil
}

// UniformCFOHypotheses builds an evenly spaced hypothesis bank spanning
// [-maxCFO, maxCFO] rad/sample with the given count of points (count>=1).
func UniformCFOHypotheses(maxCFO float64, count int) []float64 {
	if count <= 1 {
		return []float64{0}
	}
	out := make([]float64, count)
	step := 2 * maxCFO / float64(count-1)
	for i := range out {
		out[i] = -maxCFO + step*float64(i)
	}
	return out
}

func (a *AcquisitionFrameDetector) preambleLen() int { return len(a.preamble) }

func (a *AcquisitionFrameDetector) detectPreamble(buf []complex64) (DetectionResult, bool) {
	if len(buf) < len(a.preamble) {
		return DetectionResult{}, false
	}

	var best DetectionResult
	found := false

	for _, cfo := range a.cfoHypotheses {
		derotated := derotate(buf, cfo)
		y := correlate(a.preamble, derotated, false)
		energy := slidingEnergy(derotated, len(a.preamble))
		m := correlationMetric(y, energy, a.preambleEnergy)

		offset, metric, ok := resolveMode(m, a.mode, a.threshold)
		if !ok {
			continue
		}
		if !found || metric > best.Metric {
			best = DetectionResult{
				SampleOffset:  offset,
				Metric:        metric,
				CFOHypothesis: cfo,
				HasCFO:        true,
			}
			found = true
		}
	}

	return best, found
}

// derotate multiplies buf[n] by exp(-j*cfo*n), undoing a hypothesized
// constant carrier frequency offset.
func derotate(buf []complex64, cfo float64) []complex64 {
	out := make([]complex64, len(buf))
	for n, s := range buf {
		phase := -cfo * float64(n)
		rot := complex(math.Cos(phase), math.Sin(phase))
		out[n] = complex64(complex128(s) * rot)
	}
	return out
}
