package bands

import (
	"math"
	"testing"
)

func TestDefaultEdgesFourLanes(t *testing.T) {
	edges := DefaultEdges(4)

	want := []float64{0, 200, 928.32, 4308.87, 20000}

	if len(edges) != len(want) {
		t.Fatalf("got %d edges, want %d", len(edges), len(want))
	}

	for i := range want {
		if math.Abs(edges[i]-want[i]) > 0.5 {
			t.Fatalf("edge %d = %v, want ~%v", i, edges[i], want[i])
		}
	}

	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not ascending at %d: %v", i, edges)
		}
	}
}

func TestDefaultEdgesSingleLane(t *testing.T) {
	edges := DefaultEdges(1)

	if len(edges) != 2 || edges[0] != 0 || edges[1] != 20000 {
		t.Fatalf("single lane edges = %v", edges)
	}
}

func TestBandFor(t *testing.T) {
	edges := DefaultEdges(4)

	cases := []struct {
		freq float64
		want int
	}{
		{freq: 0, want: 0},
		{freq: 100, want: 0},
		{freq: 199.9, want: 0},
		{freq: 200, want: 1},
		{freq: 500, want: 1},
		{freq: 1000, want: 2},
		{freq: 5000, want: 3},
		{freq: 19999, want: 3},
		{freq: 20000, want: -1},
		{freq: 25000, want: -1},
		{freq: -5, want: -1},
	}

	for _, tc := range cases {
		if got := BandFor(tc.freq, edges); got != tc.want {
			t.Fatalf("BandFor(%v) = %d, want %d", tc.freq, got, tc.want)
		}
	}
}

func TestProfileSineLandsInItsBand(t *testing.T) {
	const (
		sampleRate = 44100
		freq       = 1000.0
	)

	samples := make([]float64, sampleRate)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}

	profile := Profile(samples, sampleRate, DefaultEdges(4))

	// 1 kHz belongs to the third band of the default four-lane split.
	const wantBand = 2

	if profile.Energy[wantBand] != 1.0 {
		t.Fatalf("band %d energy = %v, want the normalized maximum 1.0", wantBand, profile.Energy[wantBand])
	}

	for band, energy := range profile.Energy {
		if band == wantBand {
			continue
		}

		if energy > 0.3 {
			t.Fatalf("band %d energy = %v, leakage should stay small", band, energy)
		}
	}
}

func TestProfileSilence(t *testing.T) {
	profile := Profile(make([]float64, 44100), 44100, DefaultEdges(4))

	for band, energy := range profile.Energy {
		if energy != 0 {
			t.Fatalf("band %d energy = %v, want 0 for silence", band, energy)
		}
	}
}

func TestProfileShortBuffer(t *testing.T) {
	profile := Profile(make([]float64, 100), 44100, DefaultEdges(4))

	if len(profile.Energy) != 4 {
		t.Fatalf("profile has %d bands, want 4", len(profile.Energy))
	}

	for band, energy := range profile.Energy {
		if energy != 0 {
			t.Fatalf("band %d energy = %v, want 0 for a sub-window buffer", band, energy)
		}
	}
}
