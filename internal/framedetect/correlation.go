package framedetect

// CorrelationFrameDetector finds a known preamble in a streaming complex
// baseband buffer via normalized matched-filter cross-correlation: a
// sliding complex correlation against the time-reversed conjugate of the
// preamble, normalized by a boxcar energy estimate over the same window
// so the metric sits in roughly [0,1] regardless of input amplitude.
type CorrelationFrameDetector struct {
	*Detector

	preamble       []complex64
	preambleEnergy float64
	threshold      float64
	mode           Mode
	useFFT         bool
}

// NewCorrelationFrameDetector builds a detector for the given preamble
// and expected total frame length (preamble + payload). threshold must lie
// in [0,1].
func NewCorrelationFrameDetector(preamble []complex64, expectedFrameLength int, threshold float64) (*CorrelationFrameDetector, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	c := &CorrelationFrameDetector{
		preamble:       append([]complex64(nil), preamble...),
		preambleEnergy: preambleEnergy(preamble),
		threshold:      threshold,
		mode:           ModeFirst,
	}
	c.Detector = newDetector(expectedFrameLength, c)
	return c, nil
}

// SetPreamble replaces the reference preamble and recomputes its energy.
func (c *CorrelationFrameDetector) SetPreamble(preamble []complex64) {
	c.preamble = append([]complex64(nil), preamble...)
	c.preambleEnergy = preambleEnergy(preamble)
}

// SetMode switches between ModeFirst (first threshold crossing) and
// ModeMax (strongest correlation peak in the current buffer).
func (c *CorrelationFrameDetector) SetMode(mode Mode) error {
	if err := ValidateMode(mode); err != nil {
		return err
	}
	c.mode = mode
	return nil
}

// EnableFFT turns on the FFT-accelerated convolution path for buffers at
// or above the internal size threshold.
func (c *CorrelationFrameDetector) EnableFFT(enabled bool) { c.useFFT = enabled }

func (c *CorrelationFrameDetector) preambleLen() int { return len(c.preamble) }

func (c *CorrelationFrameDetector) detectPreamble(buf []complex64) (DetectionResult, bool) {
	if len(buf) < len(c.preamble) {
		return DetectionResult{}, false
	}

	y := correlate(c.preamble, buf, c.useFFT)
	energy := slidingEnergy(buf, len(c.preamble))
	m := correlationMetric(y, energy, c.preambleEnergy)

	offset, metric, ok := resolveMode(m, c.mode, c.threshold)
	if !ok {
		return DetectionResult{}, false
	}
	return DetectionResult{SampleOffset: offset, Metric: metric}, true
}
