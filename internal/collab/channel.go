package collab

import (
	"math"
	"math/rand"

	"github.com/jeongseonghan/qpsk-sync/internal/farrow"
	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// ApplyAWGN adds complex Gaussian noise at the given SNR (dB), scaled to
// the signal's mean power. rng supplies the noise samples so tests stay
// reproducible under a fixed seed.
func ApplyAWGN(signal []complex64, snrDB float64, rng *rand.Rand) []complex64 {
	var sigPower float64
	for _, s := range signal {
		sigPower += absSq64(s)
	}
	if len(signal) > 0 {
		sigPower /= float64(len(signal))
	}
	noisePower := sigPower / math.Pow(10, snrDB/10)
	sigma := math.Sqrt(noisePower / 2)

	out := make([]complex64, len(signal))
	for i, s := range signal {
		n := complex(sigma*rng.NormFloat64(), sigma*rng.NormFloat64())
		out[i] = complex64(complex128(s) + n)
	}
	return out
}

func absSq64(c complex64) float64 {
	re := float64(real(c))
	im := float64(imag(c))
	return re*re + im*im
}

// ApplyCFO rotates signal by a constant per-sample phase increment wOffset
// (rad/sample): out[n] = signal[n] * exp(+j*wOffset*n).
func ApplyCFO(signal []complex64, wOffset float64) []complex64 {
	out := make([]complex64, len(signal))
	for n, s := range signal {
		phase := wOffset * float64(n)
		rot := complex(math.Cos(phase), math.Sin(phase))
		out[n] = complex64(complex128(s) * rot)
	}
	return out
}

// ApplySTO applies a fractional (mu) plus integer symbol-timing offset to
// signal via a freshly initialized Farrow interpolator, using the
// tail-padded batch helper so output length matches input length.
func ApplySTO(signal []complex64, mu float64, integerOffset int) []complex64 {
	f := farrow.New()
	return f.ProcessBatchWithTailPadding(signal, mu, integerOffset)
}

// ApplyFTO concatenates frames back to back with a random gap of
// zero-valued samples before each one (1..maxDelay-1 samples), simulating
// bursty transmission with unknown inter-frame spacing. maxDelay must be
// at least 2.
func ApplyFTO(frames [][]complex64, maxDelay int, rng *rand.Rand) ([]complex64, error) {
	if maxDelay < 2 {
		return nil, syncerr.ErrInvalidConfig
	}

	var out []complex64
	for _, frame := range frames {
		gap := 1 + rng.Intn(maxDelay-1)
		out = append(out, make([]complex64, gap)...)
		out = append(out, frame...)
	}
	return out, nil
}
