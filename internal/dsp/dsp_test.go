package dsp

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFFTImpulse(t *testing.T) {
	const n = 8

	re := make([]float64, n)
	im := make([]float64, n)
	re[0] = 1

	FFT(re, im)

	// A unit impulse at zero transforms to a flat spectrum.
	for i := range n {
		mag := math.Sqrt(re[i]*re[i] + im[i]*im[i])
		if !approxEqual(mag, 1, 1e-12) {
			t.Fatalf("bin %d magnitude = %v, want 1", i, mag)
		}
	}
}

func TestFFTSinePeaksAtItsBin(t *testing.T) {
	const (
		n   = 64
		bin = 4
	)

	re := make([]float64, n)
	im := make([]float64, n)

	for i := range n {
		re[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}

	FFT(re, im)

	best := 0

	for i := 1; i < n/2; i++ {
		if magSq(re[i], im[i]) > magSq(re[best], im[best]) {
			best = i
		}
	}

	if best != bin {
		t.Fatalf("peak at bin %d, want %d", best, bin)
	}

	// A pure tone at an exact bin carries amplitude n/2 in that bin.
	if mag := math.Sqrt(magSq(re[bin], im[bin])); !approxEqual(mag, n/2, 1e-9) {
		t.Fatalf("peak magnitude = %v, want %v", mag, float64(n)/2)
	}
}

func magSq(re, im float64) float64 {
	return re*re + im*im
}

func TestFFTLinearity(t *testing.T) {
	const n = 16

	a := make([]float64, n)
	b := make([]float64, n)

	for i := range n {
		a[i] = math.Sin(2 * math.Pi * 2 * float64(i) / n)
		b[i] = 0.5 * math.Cos(2*math.Pi*5*float64(i)/n)
	}

	sumRe := make([]float64, n)
	sumIm := make([]float64, n)

	for i := range n {
		sumRe[i] = a[i] + b[i]
	}

	FFT(sumRe, sumIm)

	aIm := make([]float64, n)
	bIm := make([]float64, n)

	FFT(a, aIm)
	FFT(b, bIm)

	for i := range n {
		if !approxEqual(sumRe[i], a[i]+b[i], 1e-9) || !approxEqual(sumIm[i], aIm[i]+bIm[i], 1e-9) {
			t.Fatalf("bin %d: transform of sum differs from sum of transforms", i)
		}
	}
}

func TestFFTPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for length 6")
		}
	}()

	FFT(make([]float64, 6), make([]float64, 6))
}

func TestFFTPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for mismatched lengths")
		}
	}()

	FFT(make([]float64, 8), make([]float64, 4))
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 2, 3: 4, 5: 8, 1000: 1024, 1024: 1024}

	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPositions(t *testing.T) {
	got := Positions(10, 4, 2)
	want := []int{0, 2, 4, 6}

	if len(got) != len(want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("positions = %v, want %v", got, want)
		}
	}

	if Positions(3, 4, 2) != nil {
		t.Fatal("expected nil for input shorter than one window")
	}

	if Positions(10, 4, 0) != nil {
		t.Fatal("expected nil for zero hop")
	}
}

func TestSpectrumPeaksAtToneBin(t *testing.T) {
	const (
		size = 256
		bin  = 16
	)

	analyzer := NewAnalyzer(size)

	frame := make([]float64, size)
	for i := range size {
		frame[i] = math.Sin(2 * math.Pi * bin * float64(i) / size)
	}

	spectrum := analyzer.Spectrum(frame, nil)

	if len(spectrum) != size/2 {
		t.Fatalf("spectrum length = %d, want %d", len(spectrum), size/2)
	}

	best := 0

	for i := range spectrum {
		if spectrum[i] > spectrum[best] {
			best = i
		}
	}

	if best != bin {
		t.Fatalf("peak at bin %d, want %d", best, bin)
	}
}

func TestSpectrumLeavesFrameUntouched(t *testing.T) {
	const size = 64

	analyzer := NewAnalyzer(size)

	frame := make([]float64, size)
	for i := range size {
		frame[i] = float64(i) / size
	}

	original := make([]float64, size)
	copy(original, frame)

	analyzer.Spectrum(frame, nil)

	for i := range frame {
		if frame[i] != original[i] {
			t.Fatalf("frame sample %d modified", i)
		}
	}
}

func TestSpectrumReusesDst(t *testing.T) {
	const size = 32

	analyzer := NewAnalyzer(size)
	frame := make([]float64, size)
	frame[0] = 1

	dst := make([]float64, size/2)
	got := analyzer.Spectrum(frame, dst)

	if &got[0] != &dst[0] {
		t.Fatal("expected spectrum to fill the provided destination")
	}
}
