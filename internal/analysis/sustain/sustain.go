// Package sustain locates passages of continuous energy without new
// attacks: held chords, sung vowels, pads. These become hold-note
// candidates. Framing is finer than onset detection (25 ms windows,
// 10 ms hop) because hold boundaries need finer time resolution than
// attack detection does.
package sustain

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tropism/internal/analysis/bands"
	"github.com/farcloser/tropism/internal/dsp"
	"github.com/farcloser/tropism/internal/types"
)

const (
	windowMs = 25
	hopMs    = 10

	// A frame sustains when its normalized RMS is at least rmsFloor
	// while its normalized flux stays at or below fluxCeiling: loud
	// enough to matter, steady enough to not be an attack.
	rmsFloor    = 0.15
	fluxCeiling = 0.25

	// onsetExclusionFrames keeps frames this close to a detected onset
	// out of sustain runs. Attacks are taps, not holds, and must not be
	// counted twice.
	onsetExclusionFrames = 3
)

// Options tune segment detection.
type Options struct {
	MinDuration float64   // seconds; shorter runs are dropped (default 0.5)
	Edges       []float64 // band boundaries in Hz for dominant-band tagging
}

// DefaultOptions returns the detector defaults with four-lane band edges.
func DefaultOptions() Options {
	return Options{
		MinDuration: 0.5,
		Edges:       bands.DefaultEdges(4),
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.MinDuration == 0 {
		opts.MinDuration = defaults.MinDuration
	}

	if opts.Edges == nil {
		opts.Edges = defaults.Edges
	}
}

// Detect returns the sustained segments of the track: non-overlapping,
// time-ordered, each at least MinDuration long, tagged with mean energy
// and dominant band. Frames within the exclusion window of any onset
// never join a run. Degenerate input yields no segments.
func Detect(samples []float64, sampleRate int, onsets []types.Onset, opts Options) []types.Segment {
	applyDefaults(&opts)

	winLen := sampleRate * windowMs / 1000
	hopLen := sampleRate * hopMs / 1000

	if winLen < 2 || hopLen < 1 {
		return nil
	}

	positions := dsp.Positions(len(samples), winLen, hopLen)
	if len(positions) == 0 {
		return nil
	}

	rms, flux, bandFrames := measureFrames(samples, sampleRate, positions, winLen, opts.Edges)

	normalizeToMax(rms)
	normalizeToMax(flux)

	excluded := excludedFrames(onsets, sampleRate, winLen, hopLen, len(positions))

	sustained := make([]bool, len(positions))
	for fi := range positions {
		sustained[fi] = rms[fi] >= rmsFloor && flux[fi] <= fluxCeiling && !excluded[fi]
	}

	return mergeRuns(sustained, rms, bandFrames, sampleRate, hopLen, opts.MinDuration)
}

// measureFrames computes per-frame RMS, spectral flux, and per-band
// magnitude totals. RMS comes from the raw 25 ms frame; the spectrum
// comes from the Hann-tapered frame zero-padded to a power of two.
func measureFrames(
	samples []float64,
	sampleRate int,
	positions []int,
	winLen int,
	edges []float64,
) (rms, flux []float64, bandFrames [][]float64) {
	fftSize := dsp.NextPow2(winLen)
	half := fftSize / 2
	binHz := float64(sampleRate) / float64(fftSize)
	taper := window.NewValues(window.Hann, winLen)

	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	mag := make([]float64, half)
	prev := make([]float64, half)

	rms = make([]float64, len(positions))
	flux = make([]float64, len(positions))
	bandFrames = make([][]float64, len(positions))

	for fi, pos := range positions {
		frame := samples[pos : pos+winLen]

		var sumSq float64
		for _, s := range frame {
			sumSq += s * s
		}

		rms[fi] = math.Sqrt(sumSq / float64(winLen))

		copy(re[:winLen], frame)
		taper.Transform(re[:winLen])

		for i := winLen; i < fftSize; i++ {
			re[i] = 0
		}

		for i := range im {
			im[i] = 0
		}

		dsp.FFT(re, im)

		perBand := make([]float64, len(edges)-1)

		var fluxSum float64

		for bin := range half {
			m := math.Sqrt(re[bin]*re[bin] + im[bin]*im[bin])
			mag[bin] = m

			if d := m - prev[bin]; d > 0 {
				fluxSum += d
			}

			if band := bands.BandFor((float64(bin)+0.5)*binHz, edges); band >= 0 {
				perBand[band] += m
			}
		}

		flux[fi] = fluxSum
		bandFrames[fi] = perBand
		prev, mag = mag, prev
	}

	return rms, flux, bandFrames
}

func normalizeToMax(values []float64) {
	if len(values) == 0 {
		return
	}

	if maxVal := floats.Max(values); maxVal > 0 {
		floats.Scale(1/maxVal, values)
	}
}

// excludedFrames marks every frame within onsetExclusionFrames of an
// onset's nearest frame.
func excludedFrames(onsets []types.Onset, sampleRate, winLen, hopLen, frameCount int) []bool {
	excluded := make([]bool, frameCount)

	for _, o := range onsets {
		center := int(math.Round((o.Time*float64(sampleRate) - float64(winLen)/2) / float64(hopLen)))

		for fi := center - onsetExclusionFrames; fi <= center+onsetExclusionFrames; fi++ {
			if fi >= 0 && fi < frameCount {
				excluded[fi] = true
			}
		}
	}

	return excluded
}

// mergeRuns folds consecutive sustained frames into segments, dropping
// runs shorter than minDuration and characterizing the survivors.
func mergeRuns(
	sustained []bool,
	rms []float64,
	bandFrames [][]float64,
	sampleRate, hopLen int,
	minDuration float64,
) []types.Segment {
	var segments []types.Segment

	runStart := -1

	for fi := 0; fi <= len(sustained); fi++ {
		in := fi < len(sustained) && sustained[fi]

		if in && runStart < 0 {
			runStart = fi
			continue
		}

		if in || runStart < 0 {
			continue
		}

		// Run ended at fi-1. A run of frames [s, l] covers the
		// hop-quantized span [s*hop, (l+1)*hop); using the window tail
		// instead would overlap the next run across a one-frame gap.
		start := float64(runStart*hopLen) / float64(sampleRate)
		end := float64(fi*hopLen) / float64(sampleRate)

		if end-start >= minDuration {
			segments = append(segments, types.Segment{
				Start:        start,
				End:          end,
				Duration:     end - start,
				Energy:       stat.Mean(rms[runStart:fi], nil),
				DominantBand: dominantBand(bandFrames[runStart:fi]),
			})
		}

		runStart = -1
	}

	return segments
}

// dominantBand sums per-band magnitude across a run and returns the
// loudest band's index, preferring the lower band on exact ties.
func dominantBand(frames [][]float64) int {
	if len(frames) == 0 {
		return 0
	}

	totals := make([]float64, len(frames[0]))

	for _, perBand := range frames {
		for b, m := range perBand {
			totals[b] += m
		}
	}

	best := 0
	for b, total := range totals {
		if total > totals[best] {
			best = b
		}
	}

	return best
}
