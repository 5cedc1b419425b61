package collab

import (
	"math"

	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// ZadoffChu generates a Zadoff-Chu sequence of length n (odd) with root
// index q, p[k] = exp(-j*pi*q*k*(k+1)/n). n must be odd and q must lie
// in [1, n-1].
func ZadoffChu(n, q int) ([]complex64, error) {
	if n%2 == 0 {
		return nil, syncerr.ErrInvalidConfig
	}
	if q < 1 || q > n-1 {
		return nil, syncerr.ErrInvalidConfig
	}

	out := make([]complex64, n)
	for k := 0; k < n; k++ {
		phase := -math.Pi * float64(q) * float64(k) * float64(k+1) / float64(n)
		out[k] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	return out, nil
}

// ToFrames splits payload into chunks of chunkLen samples and prefixes
// each with preamble, returning one frame per chunk. len(payload) must be
// divisible by chunkLen.
func ToFrames(preamble, payload []complex64, chunkLen int) ([][]complex64, error) {
	if chunkLen <= 0 || len(payload)%chunkLen != 0 {
		return nil, syncerr.ErrInvalidConfig
	}

	numFrames := len(payload) / chunkLen
	frames := make([][]complex64, numFrames)
	for i := 0; i < numFrames; i++ {
		frame := make([]complex64, len(preamble)+chunkLen)
		copy(frame, preamble)
		copy(frame[len(preamble):], payload[i*chunkLen:(i+1)*chunkLen])
		frames[i] = frame
	}
	return frames, nil
}

// Upsample inserts factor-1 zeros after each sample, producing a
// pulse train suitable for RRC fast-convolution at the target SPS.
func Upsample(signal []complex64, factor int) ([]complex64, error) {
	if factor <= 0 {
		return nil, syncerr.ErrInvalidConfig
	}
	out := make([]complex64, len(signal)*factor)
	for i, s := range signal {
		out[i*factor] = s
	}
	return out, nil
}
