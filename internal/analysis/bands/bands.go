// Package bands computes the whole-track band energy profile: cumulative
// magnitude per lane-frequency-band, normalized to the loudest band. The
// profile biases lane assignment toward the band driving the music; it
// is global and onset-independent.
package bands

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tropism/internal/dsp"
	"github.com/farcloser/tropism/internal/types"
)

const (
	// Profiling frames the track coarsely: 2048-sample windows, no
	// overlap. The profile is cumulative, so hop density only changes
	// the constant factor normalization removes.
	windowSize = 2048
	hopSize    = 2048

	// Default edge span in Hz: 0 up to edgeLow catches sub-bass in the
	// first band, then log spacing out to edgeHigh.
	edgeLow  = 200.0
	edgeHigh = 20000.0
)

// DefaultEdges returns band boundaries for laneCount lanes: 0 Hz, then
// log-spaced edges from 200 Hz to 20 kHz. For four lanes:
// 0, 200, ~928, ~4309, 20000.
func DefaultEdges(laneCount int) []float64 {
	edges := make([]float64, laneCount+1)
	edges[0] = 0

	if laneCount == 1 {
		edges[1] = edgeHigh

		return edges
	}

	for i := 1; i <= laneCount; i++ {
		edges[i] = edgeLow * math.Pow(edgeHigh/edgeLow, float64(i-1)/float64(laneCount-1))
	}

	return edges
}

// BandFor returns the index of the band whose [edges[b], edges[b+1])
// range contains freq, or -1 when freq falls outside every band.
func BandFor(freq float64, edges []float64) int {
	for b := range len(edges) - 1 {
		if freq >= edges[b] && freq < edges[b+1] {
			return b
		}
	}

	return -1
}

// Profile slides analysis windows across the whole track, accumulates
// each bin's magnitude into the band containing the bin's center
// frequency, and normalizes by the global maximum. A silent or too-short
// track yields an all-zero profile.
func Profile(samples []float64, sampleRate int, edges []float64) *types.BandProfile {
	energy := make([]float64, len(edges)-1)
	profile := &types.BandProfile{Energy: energy, Edges: edges}

	positions := dsp.Positions(len(samples), windowSize, hopSize)
	if len(positions) == 0 {
		return profile
	}

	analyzer := dsp.NewAnalyzer(windowSize)
	mag := make([]float64, windowSize/2)
	binHz := float64(sampleRate) / float64(windowSize)

	for _, pos := range positions {
		analyzer.Spectrum(samples[pos:pos+windowSize], mag)

		for bin, m := range mag {
			band := BandFor((float64(bin)+0.5)*binHz, edges)
			if band >= 0 {
				energy[band] += m
			}
		}
	}

	if maxEnergy := floats.Max(energy); maxEnergy > 0 {
		floats.Scale(1/maxEnergy, energy)
	}

	return profile
}
