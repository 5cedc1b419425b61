package framedetect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformCFOHypotheses(t *testing.T) {
	hs := UniformCFOHypotheses(0.1, 5)
	if len(hs) != 5 {
		t.Fatalf("got %d hypotheses, want 5", len(hs))
	}
	if hs[0] != -0.1 {
		t.Errorf("hs[0] = %v, want -0.1", hs[0])
	}
	if hs[len(hs)-1] != 0.1 {
		t.Errorf("hs[last] = %v, want 0.1", hs[len(hs)-1])
	}
}

func TestUniformCFOHypothesesSingleton(t *testing.T) {
	hs := UniformCFOHypotheses(0.2, 1)
	if len(hs) != 1 || hs[0] != 0 {
		t.Fatalf("got %v, want [0]", hs)
	}
}

func TestAcquisitionDetectorRecoversCFO(t *testing.T) {
	preamble := samplePreamble()
	payloadLen := 16
	leading := 4
	trueCFO := 0.08

	rotated := rotatePreamble(preamble, trueCFO)
	stream := buildStream(rotated, leading, payloadLen)
	for i := leading + len(preamble); i < len(stream); i++ {
		phase := trueCFO * float64(i)
		rot := complex(math.Cos(phase), math.Sin(phase))
		stream[i] = complex64(complex128(stream[i]) * rot)
	}

	hypotheses := UniformCFOHypotheses(0.15, 31)
	det, err := NewAcquisitionFrameDetector(preamble, len(preamble)+payloadLen, 0.5, hypotheses)
	if err != nil {
		t.Fatalf("NewAcquisitionFrameDetector: %v", err)
	}

	results := det.Process(stream)
	require.Len(t, results, 1)

	got := results[0]
	require.True(t, got.HasCFO, "expected HasCFO to be set")
	require.Equal(t, leading, got.SampleOffset)
	// The hypothesis bank has 31 points over [-0.15, 0.15], a step of 0.01,
	// so the nearest hypothesis to 0.08 should be within half a step.
	require.InDelta(t, trueCFO, got.CFOHypothesis, 0.005)
}

func TestAcquisitionDetectorRejectsEmptyHypotheses(t *testing.T) {
	if _, err := NewAcquisitionFrameDetector(samplePreamble(), 20, 0.5, nil); err == nil {
		t.Fatal("expected error for empty hypothesis bank")
	}
}

func TestAcquisitionDetectorRejectsInvalidThreshold(t *testing.T) {
	if _, err := NewAcquisitionFrameDetector(samplePreamble(), 20, -1, []float64{0}); err == nil {
		t.Fatal("expected error for negative threshold")
	}
}
