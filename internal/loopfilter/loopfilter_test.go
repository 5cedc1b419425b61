package loopfilter

import (
	"math"
	"testing"
)

func TestUpdatePureProportional(t *testing.T) {
	f := NewPI(0.5, 0)
	if got := f.Update(1.0); got != 0.5 {
		t.Errorf("Update(1.0) = %v, want 0.5", got)
	}
	if got := f.Update(2.0); got != 1.0 {
		t.Errorf("Update(2.0) = %v, want 1.0", got)
	}
}

func TestUpdateIntegral(t *testing.T) {
	f := NewPI(0, 1.0)
	f.Update(1.0)
	if got := f.Update(1.0); got != 2.0 {
		t.Errorf("Update accumulated sum = %v, want 2.0", got)
	}
}

func TestUpdateDerivative(t *testing.T) {
	f := New(0, 0, 1.0)
	f.Update(1.0)
	if got := f.Update(3.0); got != 2.0 {
		t.Errorf("Update derivative term = %v, want 2.0 (3-1)", got)
	}
}

func TestReset(t *testing.T) {
	f := NewPI(0, 1.0)
	f.Update(5.0)
	f.Reset()
	if f.SumE() != 0 || f.PrevE() != 0 {
		t.Fatalf("Reset did not clear state: sumE=%v prevE=%v", f.SumE(), f.PrevE())
	}
	if got := f.Update(1.0); got != 1.0 {
		t.Errorf("post-reset Update(1.0) = %v, want 1.0", got)
	}
}

func TestGainsFromBandwidth(t *testing.T) {
	bw := 0.01
	zeta := 0.707
	kp, ki := GainsFromBandwidth(bw, zeta)

	alpha := 1 - 2*zeta*zeta
	scaledBW := bw / math.Sqrt(alpha+math.Sqrt(alpha*alpha+1))
	wantKp := 2 * zeta * scaledBW
	wantKi := scaledBW * scaledBW

	if math.Abs(kp-wantKp) > 1e-12 {
		t.Errorf("Kp = %v, want %v", kp, wantKp)
	}
	if math.Abs(ki-wantKi) > 1e-12 {
		t.Errorf("Ki = %v, want %v", ki, wantKi)
	}
}

func TestNewFromBandwidthMatchesGains(t *testing.T) {
	f := NewFromBandwidth(0.02, 0.707)
	kp, ki := GainsFromBandwidth(0.02, 0.707)
	if f.Kp != kp || f.Ki != ki {
		t.Errorf("NewFromBandwidth gains = (%v,%v), want (%v,%v)", f.Kp, f.Ki, kp, ki)
	}
	if f.Kd != 0 {
		t.Errorf("NewFromBandwidth Kd = %v, want 0", f.Kd)
	}
}
