// Package onset turns mono samples into timestamped attack events plus a
// dominant tempo estimate. Detection is spectral-flux based: an onset is
// a frame where meaningfully more energy appears than the local average,
// and more than either neighbor.
package onset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tropism/internal/dsp"
	"github.com/farcloser/tropism/internal/types"
)

const (
	// baseMultiplier is how far above the local mean flux must rise at
	// maximum sensitivity before a frame can be an onset (unitless ratio).
	baseMultiplier = 1.2
	// multiplierSpan widens that ratio as sensitivity drops, so low
	// sensitivity keeps only the clearest attacks.
	multiplierSpan = 1.3

	// Tempo estimation bounds, in BPM. Intervals outside are discarded
	// before voting; candidates are rounded to even values.
	minTempo        = 60
	maxTempo        = 240
	tempoBucketStep = 2
	// fallbackTempo is reported when fewer than minOnsetsForTempo onsets
	// exist; too few intervals make the vote meaningless.
	fallbackTempo     = 120
	minOnsetsForTempo = 4
)

// Options tune the detector.
type Options struct {
	WindowSize  int     // samples per frame, power of two (default 1024)
	HopSize     int     // samples between frames (default 512)
	Sensitivity float64 // 0-1; higher yields more onsets (default 0.5)
	MinGap      float64 // seconds between kept onsets (default 0.15)
	MeanRadius  int     // frames each side for the local mean (default 3)
}

// DefaultOptions returns the detector defaults.
func DefaultOptions() Options {
	return Options{
		WindowSize:  1024,
		HopSize:     512,
		Sensitivity: 0.5,
		MinGap:      0.15,
		MeanRadius:  3,
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.WindowSize == 0 {
		opts.WindowSize = defaults.WindowSize
	}

	if opts.HopSize == 0 {
		opts.HopSize = defaults.HopSize
	}

	if opts.Sensitivity == 0 {
		opts.Sensitivity = defaults.Sensitivity
	}

	if opts.MinGap == 0 {
		opts.MinGap = defaults.MinGap
	}

	if opts.MeanRadius == 0 {
		opts.MeanRadius = defaults.MeanRadius
	}
}

// Detect analyzes mono samples and returns time-ordered onsets spaced at
// least MinGap apart, with strengths normalized to the track maximum,
// plus the tempo estimate. Degenerate input (silence, or a buffer
// shorter than one window) yields an empty onset list and the tempo
// fallback, never an error.
func Detect(samples []float64, sampleRate int, opts Options) *types.Detection {
	applyDefaults(&opts)

	result := &types.Detection{
		BPM:      fallbackTempo,
		Duration: float64(len(samples)) / float64(sampleRate),
	}

	flux := Envelope(samples, opts.WindowSize, opts.HopSize)

	onsets := pickPeaks(flux, sampleRate, opts)
	onsets = enforceGap(onsets, opts.MinGap)

	result.Onsets = onsets
	result.BPM = estimateTempo(onsets)

	return result
}

// Envelope computes the spectral-flux envelope: one value per frame,
// the half-wave-rectified magnitude increase since the previous frame.
// New energy raises flux; disappearing energy is ignored.
func Envelope(samples []float64, windowSize, hopSize int) []float64 {
	positions := dsp.Positions(len(samples), windowSize, hopSize)
	if len(positions) == 0 {
		return nil
	}

	analyzer := dsp.NewAnalyzer(windowSize)
	half := windowSize / 2
	prev := make([]float64, half)
	mag := make([]float64, half)
	flux := make([]float64, len(positions))

	for fi, pos := range positions {
		analyzer.Spectrum(samples[pos:pos+windowSize], mag)

		var sum float64

		for i, m := range mag {
			if d := m - prev[i]; d > 0 {
				sum += d
			}
		}

		flux[fi] = sum
		prev, mag = mag, prev
	}

	return flux
}

// pickPeaks selects flux frames that are strict local maxima exceeding
// the sensitivity-adjusted local mean. Edge frames have no neighbor on
// one side and are never candidates, so an attack in the very first
// frame is not reported.
func pickPeaks(flux []float64, sampleRate int, opts Options) []types.Onset {
	if len(flux) < 3 {
		return nil
	}

	maxFlux := floats.Max(flux)
	if maxFlux <= 0 {
		return nil
	}

	multiplier := baseMultiplier + (1.0-opts.Sensitivity)*multiplierSpan

	var onsets []types.Onset

	for i := 1; i < len(flux)-1; i++ {
		if flux[i] <= flux[i-1] || flux[i] <= flux[i+1] {
			continue
		}

		if flux[i] <= localMean(flux, i, opts.MeanRadius)*multiplier {
			continue
		}

		// Timestamp at the window center, where a Hann-tapered attack
		// contributes most.
		center := i*opts.HopSize + opts.WindowSize/2

		onsets = append(onsets, types.Onset{
			Time:     float64(center) / float64(sampleRate),
			Strength: flux[i] / maxFlux,
		})
	}

	return onsets
}

func localMean(flux []float64, center, radius int) float64 {
	lo := max(center-radius, 0)
	hi := min(center+radius, len(flux)-1)

	var sum float64

	for i := lo; i <= hi; i++ {
		sum += flux[i]
	}

	return sum / float64(hi-lo+1)
}

// enforceGap drops onsets closer than minGap to their predecessor,
// keeping the stronger of each conflicting pair.
func enforceGap(onsets []types.Onset, minGap float64) []types.Onset {
	if len(onsets) < 2 {
		return onsets
	}

	kept := onsets[:1]

	for _, cur := range onsets[1:] {
		last := &kept[len(kept)-1]

		if cur.Time-last.Time >= minGap {
			kept = append(kept, cur)
			continue
		}

		if cur.Strength > last.Strength {
			*last = cur
		}
	}

	return kept
}

// estimateTempo votes over inter-onset intervals: each interval becomes
// a BPM candidate, out-of-range candidates are dropped, the rest are
// rounded to even values and the most frequent bucket wins. Ties break
// toward the slower tempo.
func estimateTempo(onsets []types.Onset) int {
	if len(onsets) < minOnsetsForTempo {
		return fallbackTempo
	}

	candidates := make([]float64, 0, len(onsets)-1)

	for i := 1; i < len(onsets); i++ {
		interval := onsets[i].Time - onsets[i-1].Time
		if interval <= 0 {
			continue
		}

		bpm := 60.0 / interval
		if bpm < minTempo || bpm > maxTempo {
			continue
		}

		candidates = append(candidates, math.Round(bpm/tempoBucketStep)*tempoBucketStep)
	}

	if len(candidates) == 0 {
		return fallbackTempo
	}

	// Mode over the sorted candidates keeps bucket counting independent of
	// map iteration order; on a tie the first and therefore slowest bucket
	// wins.
	sort.Float64s(candidates)
	mode, _ := stat.Mode(candidates, nil)

	return int(mode)
}
