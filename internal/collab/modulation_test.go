package collab

import (
	"math"
	"testing"
)

func TestModulateQPSKGrayMapping(t *testing.T) {
	bits := []byte{0, 0, 0, 1, 1, 1, 1, 0}
	symbols, err := ModulateQPSK(bits)
	if err != nil {
		t.Fatalf("ModulateQPSK: %v", err)
	}
	if len(symbols) != 4 {
		t.Fatalf("got %d symbols, want 4", len(symbols))
	}

	want := []complex64{
		complex64(complex(1, 1) / complex(math.Sqrt2, 0)),
		complex64(complex(1, -1) / complex(math.Sqrt2, 0)),
		complex64(complex(-1, -1) / complex(math.Sqrt2, 0)),
		complex64(complex(-1, 1) / complex(math.Sqrt2, 0)),
	}
	for i := range want {
		if diff := symbols[i] - want[i]; real(diff)*real(diff)+imag(diff)*imag(diff) > 1e-10 {
			t.Errorf("symbol[%d] = %v, want %v", i, symbols[i], want[i])
		}
	}
}

func TestModulateQPSKRejectsOddLength(t *testing.T) {
	if _, err := ModulateQPSK([]byte{0, 1, 1}); err == nil {
		t.Fatal("expected error for odd-length bit array")
	}
}

func TestDemodulateQPSKRoundTrip(t *testing.T) {
	bits := []byte{0, 0, 0, 1, 1, 1, 1, 0}
	symbols, _ := ModulateQPSK(bits)
	got := DemodulateQPSK(symbols)

	for i := range bits {
		if got[i] != bits[i] {
			t.Errorf("bit[%d] = %d, want %d", i, got[i], bits[i])
		}
	}
}

func TestOptimumDeciderQPSK(t *testing.T) {
	symbols := []complex64{complex64(complex(0.3, 0.3)), complex64(complex(-0.1, 0.4))}
	decided := OptimumDeciderQPSK(symbols)

	want := []complex64{1 + 1i, -1 + 1i}
	for i := range want {
		if decided[i] != want[i] {
			t.Errorf("decided[%d] = %v, want %v", i, decided[i], want[i])
		}
	}
}
