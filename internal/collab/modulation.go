// Package collab implements the external "collaborator" stubs the core
// synchronization packages are tested against: QPSK modulation, channel
// impairment simulators, Zadoff-Chu/frame assembly, chunked FEC coding,
// and RRC pulse-shaping coefficients. None of this is part of the
// receiver synchronization core itself — it exists to synthesize and
// impair test signals the core consumes.
package collab

import (
	"math"

	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

var invSqrt2 = 1 / math.Sqrt2

// ModulateQPSK Gray-maps bit pairs to unit-energy QPSK symbols:
// 00->+1+1j, 01->+1-1j, 11->-1-1j, 10->-1+1j, scaled by 1/sqrt(2). len(bits)
// must be even.
func ModulateQPSK(bits []byte) ([]complex64, error) {
	if len(bits)%2 != 0 {
		return nil, syncerr.ErrInvalidConfig
	}
	out := make([]complex64, len(bits)/2)
	for i := range out {
		b0 := bits[2*i]
		b1 := bits[2*i+1]
		re := (1 - 2*float64(b0)) * invSqrt2
		im := (1 - 2*float64(b1)) * invSqrt2
		out[i] = complex64(complex(re, im))
	}
	return out, nil
}

// DemodulateQPSK makes the optimum (minimum-distance, AWGN) bit decision
// per symbol: Re<0 sets the first bit, Im<0 sets the second.
func DemodulateQPSK(symbols []complex64) []byte {
	bits := make([]byte, len(symbols)*2)
	for i, s := range symbols {
		if real(s) < 0 {
			bits[2*i] = 1
		}
		if imag(s) < 0 {
			bits[2*i+1] = 1
		}
	}
	return bits
}

// OptimumDeciderQPSK returns the nearest-ideal-point slicer decision for
// each symbol, i.e. sgn(Re)+j*sgn(Im) without the 1/sqrt(2) scaling —
// the same reference the Costas loop computes internally.
func OptimumDeciderQPSK(symbols []complex64) []complex64 {
	out := make([]complex64, len(symbols))
	for i, s := range symbols {
		out[i] = complex64(complex(signOf(real(s)), signOf(imag(s))))
	}
	return out
}

func signOf(x float32) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
