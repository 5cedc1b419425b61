package lock

import "testing"

func TestLocksBelowLowerThreshold(t *testing.T) {
	d := New()
	if d.IsLocked() {
		t.Fatal("detector should start unlocked")
	}
	if locked := d.Update(0.25); !locked {
		t.Fatalf("0.25 < lower threshold 0.3, should transition to locked")
	}
}

func TestLockUnlockHysteresis(t *testing.T) {
	d := New() // lower=0.3, upper=0.2

	// Large error: stays unlocked.
	if d.Update(0.5) {
		t.Fatal("should remain unlocked with large error")
	}

	// Error below lower threshold (0.3): transitions to locked.
	if !d.Update(0.1) {
		t.Fatal("should lock once |e| < lower threshold")
	}

	// Error between upper (0.2) and lower (0.3): since lower > upper there
	// is no hold band, so a locked detector unlocks (0.25 > upper).
	if d.Update(0.25) {
		t.Fatal("should unlock once |e| > upper threshold")
	}

	// Still between the thresholds: an unlocked detector relocks (0.21 < lower).
	if !d.Update(0.21) {
		t.Fatal("should relock once |e| < lower threshold")
	}
}

func TestUpdateUsesMagnitude(t *testing.T) {
	d := New()
	if !d.Update(-0.05) {
		t.Fatal("negative small error should still trigger lock via |e|")
	}
	if d.Update(-0.21) {
		t.Fatal("negative large error should still trigger unlock via |e|")
	}
}

func TestReset(t *testing.T) {
	d := New()
	d.Update(0.0)
	if !d.IsLocked() {
		t.Fatal("expected locked after update(0.0)")
	}
	d.Reset()
	if d.IsLocked() {
		t.Fatal("Reset should clear lock state")
	}
}
