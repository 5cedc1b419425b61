package framedetect

import "testing"

func TestDetectorFindsMultipleFramesInOneStream(t *testing.T) {
	preamble := samplePreamble()
	payloadLen := 10
	frameLen := len(preamble) + payloadLen

	frame1 := buildStream(preamble, 2, payloadLen)
	frame2 := buildStream(preamble, 3, payloadLen)
	stream := append(frame1, frame2...)

	det, _ := NewCorrelationFrameDetector(preamble, frameLen, 0.8)
	results := det.Process(stream)

	if len(results) != 2 {
		t.Fatalf("got %d frames, want 2", len(results))
	}
	if results[0].SampleOffset != 2 {
		t.Errorf("first SampleOffset = %d, want 2", results[0].SampleOffset)
	}
}

func TestDetectorResetClearsBufferAndState(t *testing.T) {
	preamble := samplePreamble()
	payloadLen := 10
	stream := buildStream(preamble, 5, payloadLen)

	det, _ := NewCorrelationFrameDetector(preamble, len(preamble)+payloadLen, 0.8)
	det.Process(stream[:len(stream)/2])
	det.Reset()

	if len(det.buffer) != 0 {
		t.Errorf("Reset left %d buffered samples, want 0", len(det.buffer))
	}
	if det.st != stateSearch {
		t.Errorf("Reset left state %v, want stateSearch", det.st)
	}
}

func TestDetectorNoFrameOnShortBuffer(t *testing.T) {
	preamble := samplePreamble()
	det, _ := NewCorrelationFrameDetector(preamble, len(preamble)+10, 0.8)

	results := det.Process(preamble[:3])
	if len(results) != 0 {
		t.Errorf("got %d detections from a buffer shorter than the preamble, want 0", len(results))
	}
}

func TestClampDenominatorFloor(t *testing.T) {
	if got := clampDenominator(0); got != 1e-12 {
		t.Errorf("clampDenominator(0) = %v, want 1e-12", got)
	}
	if got := clampDenominator(5.0); got != 5.0 {
		t.Errorf("clampDenominator(5.0) = %v, want 5.0", got)
	}
}

func TestResolveModeFirstVsMax(t *testing.T) {
	m := []float64{0.1, 0.9, 0.95, 0.2}

	offset, _, ok := resolveMode(m, ModeFirst, 0.8)
	if !ok || offset != 1 {
		t.Errorf("ModeFirst: offset=%d ok=%v, want 1,true", offset, ok)
	}

	offset, _, ok = resolveMode(m, ModeMax, 0.0)
	if !ok || offset != 2 {
		t.Errorf("ModeMax: offset=%d ok=%v, want 2,true", offset, ok)
	}
}

func TestFirstDifference(t *testing.T) {
	s := []complex64{1, 3, 6, 10}
	d := firstDifference(s)
	want := []complex64{2, 3, 4}
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("diff[%d] = %v, want %v", i, d[i], want[i])
		}
	}
}
