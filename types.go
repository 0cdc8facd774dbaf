package tropism

import (
	"sync"

	"github.com/farcloser/tropism/internal/types"
)

// Note is one playable event in the beatmap. Taps carry a zero
// HoldDuration; holds carry both a duration and a hold class.
type Note = types.Note

// HoldClass buckets hold notes by duration.
type HoldClass = types.HoldClass

const (
	HoldNone   = types.HoldNone
	HoldShort  = types.HoldShort
	HoldMedium = types.HoldMedium
	HoldLong   = types.HoldLong
)

// SampleBuffer is decoded PCM audio handed to the generator. Samples
// are interleaved across channels in [-1, 1]. Use it by pointer: the
// mono mixdown is computed once and cached.
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
	Channels   int

	monoOnce sync.Once
	mono     []float64
}

// Mono returns the buffer mixed down to a single channel, averaging
// interleaved frames. Single-channel buffers return the samples as-is.
// The result is cached; callers must not modify it.
func (b *SampleBuffer) Mono() []float64 {
	b.monoOnce.Do(func() {
		if b.Channels <= 1 {
			b.mono = b.Samples

			return
		}

		frames := len(b.Samples) / b.Channels
		mono := make([]float64, frames)

		for frame := range frames {
			sum := 0.0
			for ch := range b.Channels {
				sum += b.Samples[frame*b.Channels+ch]
			}

			mono[frame] = sum / float64(b.Channels)
		}

		b.mono = mono
	})

	return b.mono
}

// Duration returns the buffer length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}

	frames := len(b.Samples) / b.Channels

	return float64(frames) / float64(b.SampleRate)
}

// Beatmap is the generator's output: the full note chart for one
// difficulty, ready to serialize.
type Beatmap struct {
	Notes      []Note     `json:"notes"`
	BPM        int        `json:"bpm"`
	Duration   float64    `json:"duration"`
	Difficulty Difficulty `json:"difficulty"`
	LaneCount  int        `json:"laneCount"`
}

// Options configures beatmap generation.
type Options struct {
	// LaneCount is the number of lanes on the highway (default: 4).
	LaneCount int

	// BandEdges are the frequency boundaries used to map spectral
	// energy onto lanes, in ascending Hz. Must hold LaneCount+1 values.
	// Leave nil for log-spaced defaults.
	BandEdges []float64

	// GridStep overrides the quantization grid, in seconds. Leave zero
	// to derive a sixteenth-note grid from the detected tempo.
	GridStep float64

	// Progress, when set, receives monotonic completion percentages
	// from 0 to 100 as generation advances.
	Progress func(percent int)
}

// DefaultOptions returns sensible defaults for beatmap generation.
func DefaultOptions() Options {
	return Options{
		LaneCount: 4,
	}
}

func applyDefaults(opts *Options) {
	if opts.LaneCount == 0 {
		opts.LaneCount = DefaultOptions().LaneCount
	}
}
