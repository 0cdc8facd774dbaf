package tropism

import (
	"fmt"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tropism/internal/analysis/bands"
	"github.com/farcloser/tropism/internal/analysis/onset"
	"github.com/farcloser/tropism/internal/analysis/sustain"
	"github.com/farcloser/tropism/internal/random"
	"github.com/farcloser/tropism/internal/synth"
)

/*
Usage:

beatmap, err := tropism.Generate(buf, tropism.DifficultyHard, tropism.DefaultOptions())
if err != nil {
    return err
}

fmt.Printf("%d notes at %d BPM\n", len(beatmap.Notes), beatmap.BPM)

// Custom lane layout
opts := tropism.DefaultOptions()
opts.LaneCount = 6
beatmap, err := tropism.Generate(buf, tropism.DifficultyMedium, opts)

// Progress reporting
opts := tropism.DefaultOptions()
opts.Progress = func(percent int) { fmt.Printf("\r%3d%%", percent) }
beatmap, err := tropism.Generate(buf, tropism.DifficultyDeadly, opts)

// Serialize
data, err := json.MarshalIndent(beatmap, "", "  ")

*/

// Generate builds the beatmap for one difficulty from decoded PCM
// audio. The same buffer, difficulty, and options always produce the
// same beatmap, byte for byte once serialized.
func Generate(buf *SampleBuffer, difficulty Difficulty, opts Options) (*Beatmap, error) {
	applyDefaults(&opts)

	if err := validate(buf, difficulty, opts); err != nil {
		return nil, err
	}

	report := func(percent int) {
		if opts.Progress != nil {
			opts.Progress(percent)
		}
	}

	report(0)

	mono := buf.Mono()
	rng := random.New(random.Seed(mono))
	prof := difficulty.Profile()

	report(10)

	det := onset.Detect(mono, buf.SampleRate, onset.Options{
		Sensitivity: prof.Sensitivity,
		MinGap:      prof.MinOnsetGap,
	})

	report(35)

	edges := opts.BandEdges
	if edges == nil {
		edges = bands.DefaultEdges(opts.LaneCount)
	}

	profile := bands.Profile(mono, buf.SampleRate, edges)

	report(50)

	segments := sustain.Detect(mono, buf.SampleRate, det.Onsets, sustain.Options{
		MinDuration: prof.MinSustainDuration,
		Edges:       edges,
	})

	report(65)

	notes := synth.Compose(det, profile, segments, synth.Config{
		LaneCount:     opts.LaneCount,
		ActiveLanes:   min(prof.ActiveLanes, opts.LaneCount),
		MinLaneGap:    prof.MinLaneGap,
		MaxChordSize:  prof.MaxChordSize,
		DensityFactor: prof.DensityFactor,
		StrengthFloor: prof.StrengthFloor,
		HoldFraction:  prof.HoldFraction,
		MinHoldRatio:  prof.MinHoldRatio,
		BackfillMin:   prof.HoldBackfillMin,
		BackfillMax:   prof.HoldBackfillMax,
		GridStep:      opts.GridStep,
	}, rng)

	report(90)

	beatmap := &Beatmap{
		Notes:      notes,
		BPM:        det.BPM,
		Duration:   buf.Duration(),
		Difficulty: difficulty,
		LaneCount:  opts.LaneCount,
	}

	report(100)

	return beatmap, nil
}

func validate(buf *SampleBuffer, difficulty Difficulty, opts Options) error {
	if buf == nil {
		return fmt.Errorf("%w: nil sample buffer", fault.ErrInvalidArgument)
	}

	if buf.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", fault.ErrInvalidArgument, buf.SampleRate)
	}

	if buf.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", fault.ErrInvalidArgument, buf.Channels)
	}

	if difficulty < DifficultyEasy || difficulty > DifficultyDeadly {
		return fmt.Errorf("%w: difficulty %d", fault.ErrInvalidArgument, int(difficulty))
	}

	if opts.LaneCount < 1 {
		return fmt.Errorf("%w: lane count %d", fault.ErrInvalidArgument, opts.LaneCount)
	}

	if opts.GridStep < 0 {
		return fmt.Errorf("%w: grid step %v", fault.ErrInvalidArgument, opts.GridStep)
	}

	if opts.BandEdges != nil {
		if len(opts.BandEdges) != opts.LaneCount+1 {
			return fmt.Errorf(
				"%w: %d band edges for %d lanes (want %d)",
				fault.ErrInvalidArgument, len(opts.BandEdges), opts.LaneCount, opts.LaneCount+1)
		}

		for i := 1; i < len(opts.BandEdges); i++ {
			if opts.BandEdges[i] <= opts.BandEdges[i-1] {
				return fmt.Errorf("%w: band edges must ascend", fault.ErrInvalidArgument)
			}
		}
	}

	return nil
}
