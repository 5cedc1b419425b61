package framedetect

// DifferentialCorrelationFrameDetector detects a preamble by correlating
// the first difference of the incoming signal against the first
// difference of the preamble. Differencing cancels a static carrier
// phase rotation, so this variant stays robust to carrier frequency
// offsets large enough to degrade CorrelationFrameDetector within a
// single preamble's duration.
type DifferentialCorrelationFrameDetector struct {
	*Detector

	preamble       []complex64
	diffPreamble   []complex64
	preambleEnergy float64
	threshold      float64
	mode           Mode
	useFFT         bool
}

// NewDifferentialCorrelationFrameDetector builds a differential-correlation
// detector. threshold must lie in [0,1].
func NewDifferentialCorrelationFrameDetector(preamble []complex64, expectedFrameLength int, threshold float64) (*DifferentialCorrelationFrameDetector, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	diffP := firstDifference(preamble)
	d := &DifferentialCorrelationFrameDetector{
		preamble:       append([]complex64(nil), preamble...),
		diffPreamble:   diffP,
		preambleEnergy: preambleEnergy(diffP),
		threshold:      threshold,
		mode:           ModeFirst,
	}
	d.Detector = newDetector(expectedFrameLength, d)
	return d, nil
}

// SetPreamble replaces the reference preamble, recomputing its
// differenced form and energy.
func (d *DifferentialCorrelationFrameDetector) SetPreamble(preamble []complex64) {
	d.preamble = append([]complex64(nil), preamble...)
	d.diffPreamble = firstDifference(preamble)
	d.preambleEnergy = preambleEnergy(d.diffPreamble)
}

// SetMode switches between ModeFirst and ModeMax.
func (d *DifferentialCorrelationFrameDetector) SetMode(mode Mode) error {
	if err := ValidateMode(mode); err != nil {
		return err
	}
	d.mode = mode
	return nil
}

// EnableFFT turns on the FFT-accelerated convolution path.
func (d *DifferentialCorrelationFrameDetector) EnableFFT(enabled bool) { d.useFFT = enabled }

// preambleLen reports the length of the original (non-differenced)
// preamble, since that is the number of raw samples the caller needs
// buffered to reconstruct a difference window.
func (d *DifferentialCorrelationFrameDetector) preambleLen() int { return len(d.preamble) }

func (d *DifferentialCorrelationFrameDetector) detectPreamble(buf []complex64) (DetectionResult, bool) {
	if len(buf) < len(d.preamble) {
		return DetectionResult{}, false
	}

	diffBuf := firstDifference(buf)
	if len(diffBuf) < len(d.diffPreamble) {
		return DetectionResult{}, false
	}

	y := correlate(d.diffPreamble, diffBuf, d.useFFT)
	energy := slidingEnergy(diffBuf, len(d.diffPreamble))
	m := correlationMetric(y, energy, d.preambleEnergy)

	offset, metric, ok := resolveMode(m, d.mode, d.threshold)
	if !ok {
		return DetectionResult{}, false
	}
	// offset indexes diffBuf, which is buf shifted by the one-sample
	// differencing; the offset into buf is the same value since
	// diffBuf[n] = buf[n+1]-buf[n] aligns diffBuf's index n with buf's
	// index n as the start of the preamble window.
	return DetectionResult{SampleOffset: offset, Metric: metric}, true
}
