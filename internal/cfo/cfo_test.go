package cfo

import (
	"math"
	"testing"
)

func rotateAt(s complex64, cfo float64, n int) complex64 {
	phase := cfo * float64(n)
	rot := complex(math.Cos(phase), math.Sin(phase))
	return complex64(complex128(s) * rot)
}

func schmidlCoxPreamble() []complex64 {
	half := []complex64{1, -1, 1, 1}
	return append(append([]complex64(nil), half...), half...)
}

func buildRotatedStream(preamble []complex64, leading, payloadLen int, cfo float64) []complex64 {
	total := leading + len(preamble) + payloadLen
	stream := make([]complex64, total)
	for i := 0; i < leading; i++ {
		stream[i] = rotateAt(complex64(complex(0.05, -0.05)), cfo, i)
	}
	for i, s := range preamble {
		stream[leading+i] = rotateAt(s, cfo, leading+i)
	}
	for i := leading + len(preamble); i < total; i++ {
		stream[i] = rotateAt(complex64(complex(0.3, -0.2)), cfo, i)
	}
	return stream
}

func TestSchmidlCoxRecoversCFO(t *testing.T) {
	preamble := schmidlCoxPreamble()
	trueCFO := 0.12
	stream := buildRotatedStream(preamble, 3, 10, trueCFO)

	est, err := NewSchmidlCoxEstimator(preamble, 0.5)
	if err != nil {
		t.Fatalf("NewSchmidlCoxEstimator: %v", err)
	}

	if ok := est.Process(stream); !ok {
		t.Fatal("expected a preamble detection")
	}
	w, has := est.Estimate()
	if !has {
		t.Fatal("expected an estimate after detection")
	}
	if math.Abs(w-trueCFO) > 1e-6 {
		t.Errorf("estimated CFO = %v, want %v", w, trueCFO)
	}
}

func TestSchmidlCoxRejectsUnevenPreamble(t *testing.T) {
	if _, err := NewSchmidlCoxEstimator([]complex64{1, 2, 3}, 0.5); err == nil {
		t.Fatal("expected error for odd-length preamble")
	}
}

func TestSchmidlCoxRejectsMismatchedHalves(t *testing.T) {
	if _, err := NewSchmidlCoxEstimator([]complex64{1, 2, 3, 4}, 0.5); err == nil {
		t.Fatal("expected error for mismatched halves")
	}
}

func TestSchmidlCoxCorrectAppliesEstimate(t *testing.T) {
	preamble := schmidlCoxPreamble()
	trueCFO := 0.2
	stream := buildRotatedStream(preamble, 2, 6, trueCFO)

	est, _ := NewSchmidlCoxEstimator(preamble, 0.5)
	est.Process(stream)

	corrected, err := est.Correct(stream)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(corrected) != len(stream) {
		t.Fatalf("corrected length = %d, want %d", len(corrected), len(stream))
	}
}

func TestSchmidlCoxCorrectWithoutEstimateErrors(t *testing.T) {
	est, _ := NewSchmidlCoxEstimator(schmidlCoxPreamble(), 0.5)
	if _, err := est.Correct([]complex64{1, 2}); err == nil {
		t.Fatal("expected error calling Correct before any estimate")
	}
}

func TestPhaseDriftRecoversCFO(t *testing.T) {
	preamble := samplePreambleCFO()
	trueCFO := 0.05
	stream := buildRotatedStream(preamble, 4, 12, trueCFO)

	est, err := NewPhaseDriftEstimator(preamble, 0.5)
	if err != nil {
		t.Fatalf("NewPhaseDriftEstimator: %v", err)
	}
	if ok := est.Process(stream); !ok {
		t.Fatal("expected a preamble detection")
	}
	w, has := est.Estimate()
	if !has {
		t.Fatal("expected an estimate after detection")
	}
	if math.Abs(w-trueCFO) > 1e-6 {
		t.Errorf("estimated CFO = %v, want %v", w, trueCFO)
	}
}

func samplePreambleCFO() []complex64 {
	return []complex64{1, -1, 1, 1, -1, -1, 1, -1}
}

func TestMedianOddAndEven(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median(odd) = %v, want 2", got)
	}
	if got := median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("median(even) = %v, want 2.5", got)
	}
}

func TestMadFilteredMeanRejectsOutlier(t *testing.T) {
	values := []float64{1.0, 1.01, 0.99, 1.02, 50.0}
	got := madFilteredMean(values)
	if math.Abs(got-1.005) > 0.05 {
		t.Errorf("madFilteredMean = %v, want near 1.0 (outlier rejected)", got)
	}
}
