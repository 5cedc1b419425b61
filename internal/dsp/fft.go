// Package dsp holds small DSP primitives shared across the synchronization
// core: an FFT/IFFT pair used as an optional fast-convolution path for the
// frame detector's matched filter.
package dsp

import (
	"math"
	"math/cmplx"
)

// FFT computes the Discrete Fourier Transform using iterative radix-2
// Cooley-Tukey. Input length must be a power of two.
func FFT(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, x)
		return out
	}
	if n&(n-1) != 0 {
		panic("dsp: FFT length must be a power of 2")
	}

	out := make([]complex128, n)
	copy(out, x)
	bitReverse(out)
	fftIterative(out, false)
	return out
}

// IFFT computes the Inverse Discrete Fourier Transform.
func IFFT(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, x)
		return out
	}

	out := make([]complex128, n)
	copy(out, x)
	bitReverse(out)
	fftIterative(out, true)

	scale := 1.0 / float64(n)
	for i := range out {
		out[i] *= complex(scale, 0)
	}
	return out
}

func fftIterative(x []complex128, inverse bool) {
	n := len(x)
	for size := 2; size <= n; size <<= 1 {
		halfSize := size >> 1
		sign := -1.0
		if inverse {
			sign = 1.0
		}
		wn := cmplx.Exp(complex(0, sign*2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for j := 0; j < halfSize; j++ {
				u := x[start+j]
				v := w * x[start+j+halfSize]
				x[start+j] = u + v
				x[start+j+halfSize] = u - v
				w *= wn
			}
		}
	}
}

func bitReverse(x []complex128) {
	n := len(x)
	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := reverseBits(i, bits)
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
}

func reverseBits(x, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ConvolveFFT computes the linear convolution of a and b via zero-padded
// FFT multiplication, equivalent to numpy/scipy's full-mode convolution.
// Used by the frame detector as an optional acceleration of the matched
// filter for large buffers.
func ConvolveFFT(a, b []complex128) []complex128 {
	outLen := len(a) + len(b) - 1
	if outLen <= 0 {
		return nil
	}
	n := NextPowerOfTwo(outLen)

	pa := make([]complex128, n)
	copy(pa, a)
	pb := make([]complex128, n)
	copy(pb, b)

	fa := FFT(pa)
	fb := FFT(pb)
	for i := range fa {
		fa[i] *= fb[i]
	}
	prod := IFFT(fa)
	return prod[:outLen]
}
