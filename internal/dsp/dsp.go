// Package dsp provides the shared spectral engine: an in-place radix-2
// FFT and Hann-windowed magnitude spectra. Every analyzer frames audio
// through this package so all of them see bit-identical spectra for
// identical input.
package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

// FFT performs an in-place Cooley-Tukey radix-2 transform over the given
// real/imaginary pair: bit-reversal permutation followed by iterative
// butterfly passes with twiddle factors cos/sin(-2*pi*k/size).
//
// Both slices must share a power-of-two length >= 2. Violating that is a
// programming error, not an input condition, and panics.
func FFT(re, im []float64) {
	n := len(re)

	if len(im) != n {
		panic("dsp: FFT real/imaginary length mismatch")
	}

	if n < 2 || n&(n-1) != 0 {
		panic("dsp: FFT size must be a power of two >= 2")
	}

	// Bit-reversal permutation.
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}

		j |= bit

		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Iterative butterflies, doubling the sub-transform size each pass.
	for size := 2; size <= n; size <<= 1 {
		step := -2 * math.Pi / float64(size)
		wStepRe := math.Cos(step)
		wStepIm := math.Sin(step)
		half := size / 2

		for start := 0; start < n; start += size {
			wRe, wIm := 1.0, 0.0

			for k := range half {
				lo := start + k
				hi := lo + half

				tRe := re[hi]*wRe - im[hi]*wIm
				tIm := re[hi]*wIm + im[hi]*wRe

				re[hi] = re[lo] - tRe
				im[hi] = im[lo] - tIm
				re[lo] += tRe
				im[lo] += tIm

				wRe, wIm = wRe*wStepRe-wIm*wStepIm, wRe*wStepIm+wIm*wStepRe
			}
		}
	}
}

// NextPow2 returns the smallest power of two >= n, and at least 2.
func NextPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}

	return p
}

// Positions returns the frame start offsets for a sliding window of the
// given size and hop over n samples. Empty when the input is shorter
// than one window.
func Positions(n, size, hop int) []int {
	if size <= 0 || hop <= 0 || n < size {
		return nil
	}

	positions := make([]int, 0, (n-size)/hop+1)
	for pos := 0; pos+size <= n; pos += hop {
		positions = append(positions, pos)
	}

	return positions
}

// An Analyzer is a reusable spectrum workspace for one window size.
// It owns its scratch buffers, so one Analyzer serves one goroutine.
type Analyzer struct {
	size int
	win  window.Values
	re   []float64
	im   []float64
}

// NewAnalyzer creates a workspace for the given power-of-two window size.
func NewAnalyzer(size int) *Analyzer {
	return &Analyzer{
		size: size,
		win:  window.NewValues(window.Hann, size),
		re:   make([]float64, size),
		im:   make([]float64, size),
	}
}

// Size returns the analyzer's window size in samples.
func (a *Analyzer) Size() int {
	return a.size
}

// Spectrum computes the Hann-tapered magnitude spectrum of one frame,
// writing the lower size/2 bins into dst and returning it. dst is
// allocated when nil. The frame itself is never modified.
func (a *Analyzer) Spectrum(frame []float64, dst []float64) []float64 {
	if len(frame) != a.size {
		panic("dsp: frame length does not match analyzer size")
	}

	copy(a.re, frame)
	a.win.Transform(a.re)

	for i := range a.im {
		a.im[i] = 0
	}

	FFT(a.re, a.im)

	half := a.size / 2
	if dst == nil {
		dst = make([]float64, half)
	}

	for i := range half {
		dst[i] = math.Sqrt(a.re[i]*a.re[i] + a.im[i]*a.im[i])
	}

	return dst
}
