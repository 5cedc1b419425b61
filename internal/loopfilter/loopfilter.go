// Package loopfilter implements the scalar PI/PID control law shared by the
// Gardner timing corrector and the Costas carrier-phase loop.
package loopfilter

import "math"

// LoopFilter is a single-input-single-output recursive control law:
//
//	Δ = Kp·e + Ki·(Σe) + Kd·(e - e_prev)
//
// Σe is the cumulative sum of all errors since the last Reset. Kd defaults
// to zero (pure PI). There is no output saturation; the caller owns any
// wrap/clamp of the accumulated control signal.
type LoopFilter struct {
	Kp, Ki, Kd float64

	sumE  float64
	prevE float64
}

// New builds a loop filter with explicit gains.
func New(kp, ki, kd float64) *LoopFilter {
	return &LoopFilter{Kp: kp, Ki: ki, Kd: kd}
}

// NewPI builds a pure proportional-integral loop filter (Kd = 0).
func NewPI(kp, ki float64) *LoopFilter {
	return New(kp, ki, 0)
}

// NewFromBandwidth derives Kp and Ki from a loop bandwidth bw (cycles per
// sample) and damping factor zeta, per the standard second-order loop
// design:
//
//	α = 1 - 2ζ²
//	scaled_bw = bw / sqrt(α + sqrt(α² + 1))
//	Kp = 2ζ·scaled_bw
//	Ki = scaled_bw²
//
// This is the formula the Costas loop's bandwidth setter uses.
func NewFromBandwidth(bw, zeta float64) *LoopFilter {
	kp, ki := GainsFromBandwidth(bw, zeta)
	return NewPI(kp, ki)
}

// GainsFromBandwidth computes (Kp, Ki) for a given loop bandwidth bw
// (cycles/sample) and damping factor zeta. Tests check the output against
// this exact formula for a chosen bandwidth.
func GainsFromBandwidth(bw, zeta float64) (kp, ki float64) {
	alpha := 1 - 2*zeta*zeta
	scaledBW := bw / math.Sqrt(alpha+math.Sqrt(alpha*alpha+1))
	kp = 2 * zeta * scaledBW
	ki = scaledBW * scaledBW
	return kp, ki
}

// Update feeds a new error sample through the control law and returns the
// control contribution Δ.
func (f *LoopFilter) Update(e float64) float64 {
	f.sumE += e
	d := e - f.prevE
	delta := f.Kp*e + f.Ki*f.sumE + f.Kd*d
	f.prevE = e
	return delta
}

// Reset zeroes the integral and derivative state but leaves the gains
// (Kp, Ki, Kd) untouched.
func (f *LoopFilter) Reset() {
	f.sumE = 0
	f.prevE = 0
}

// SumE returns the current cumulative error sum (Σe), mainly for tests and
// debug introspection.
func (f *LoopFilter) SumE() float64 { return f.sumE }

// PrevE returns the last error sample fed to Update.
func (f *LoopFilter) PrevE() float64 { return f.prevE }
