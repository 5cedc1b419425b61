package collab

import (
	"math"

	"github.com/jeongseonghan/qpsk-sync/internal/syncerr"
)

// RRC generates nTaps real-valued root-raised-cosine filter coefficients
// with rolloff beta over symbol period Ts, per the standard piecewise
// definition (https://en.wikipedia.org/wiki/Root-raised-cosine_filter).
// nTaps should be odd so the filter has a well-defined center tap; beta
// must lie in (0, 1].
func RRC(nTaps int, beta, ts float64) ([]float64, error) {
	if nTaps <= 0 || beta <= 0 || beta > 1 || ts <= 0 {
		return nil, syncerr.ErrInvalidConfig
	}

	h := make([]float64, nTaps)
	center := (nTaps - 1) / 2

	for i := 0; i < nTaps; i++ {
		t := float64(i-center) * 1.0
		switch {
		case t == 0:
			h[i] = (1 / ts) * (1 + beta*(4/math.Pi-1))
		case math.Abs(math.Abs(t)-ts/(4*beta)) < 1e-9:
			h[i] = (beta / (ts * math.Sqrt2)) * (
				(1+2/math.Pi)*math.Sin(math.Pi/(4*beta)) +
					(1-2/math.Pi)*math.Cos(math.Pi/(4*beta)))
		default:
			x := t / ts
			num := math.Sin(math.Pi*x*(1-beta)) + 4*beta*x*math.Cos(math.Pi*x*(1+beta))
			den := math.Pi * x * (1 - math.Pow(4*beta*x, 2))
			h[i] = num / (ts * den)
		}
	}
	return h, nil
}
