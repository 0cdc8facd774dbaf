package random

import "testing"

func TestSeedEmptyIsOffsetBasis(t *testing.T) {
	if got := Seed(nil); got != fnvOffsetBasis {
		t.Fatalf("Seed(nil) = %d, want %d", got, fnvOffsetBasis)
	}

	if got := Seed([]float64{}); got != fnvOffsetBasis {
		t.Fatalf("Seed(empty) = %d, want %d", got, fnvOffsetBasis)
	}
}

func TestSeedDeterministic(t *testing.T) {
	samples := []float64{0.1, -0.5, 0.9, 0.0, -1.0}

	if Seed(samples) != Seed(samples) {
		t.Fatal("same samples produced different seeds")
	}
}

func TestSeedDistinguishesContent(t *testing.T) {
	// One differing quantized sample must change the hash: the xor input
	// differs and the final odd-prime multiply is a bijection mod 2^32.
	if Seed([]float64{0.5}) == Seed([]float64{-0.5}) {
		t.Fatal("sign-flipped sample hashed identically")
	}

	if Seed([]float64{0}) == Seed([]float64{0, 0}) {
		t.Fatal("length change hashed identically")
	}
}

func TestSeedIgnoresBeyondPrefix(t *testing.T) {
	long := make([]float64, seedPrefixSamples+100)
	for i := range long {
		long[i] = float64(i%7) / 10
	}

	altered := make([]float64, len(long))
	copy(altered, long)

	for i := seedPrefixSamples; i < len(altered); i++ {
		altered[i] = -altered[i] - 0.1
	}

	if Seed(long) != Seed(altered) {
		t.Fatal("samples beyond the prefix changed the seed")
	}

	if Seed(long) != Seed(long[:seedPrefixSamples]) {
		t.Fatal("truncating at the prefix changed the seed")
	}
}

func TestNextStaysInUnitInterval(t *testing.T) {
	src := New(12345)

	for i := range 10000 {
		v := src.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d = %v outside [0, 1)", i, v)
		}
	}
}

func TestNextSequencesMatchAcrossSources(t *testing.T) {
	a := New(987654321)
	b := New(987654321)

	for i := range 1000 {
		if a.Next() != b.Next() {
			t.Fatalf("sequences diverged at draw %d", i)
		}
	}
}

func TestNextSequencesDifferAcrossSeeds(t *testing.T) {
	a := New(1)
	b := New(2)

	for range 10 {
		if a.Next() != b.Next() {
			return
		}
	}

	t.Fatal("distinct seeds produced identical first ten draws")
}

func TestIntNBoundsAndCoverage(t *testing.T) {
	src := New(42)
	seen := make([]bool, 4)

	for i := range 1000 {
		v := src.IntN(4)
		if v < 0 || v >= 4 {
			t.Fatalf("draw %d = %d outside [0, 4)", i, v)
		}

		seen[v] = true
	}

	for v, ok := range seen {
		if !ok {
			t.Fatalf("value %d never drawn in 1000 tries", v)
		}
	}
}

func TestIntNPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for n = 0")
		}
	}()

	New(7).IntN(0)
}
