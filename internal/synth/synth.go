// Package synth is the note pipeline of the generator. It turns
// detection results into the final playable note list through a fixed
// sequence of stages: strength filtering, density reduction, lane
// assignment, chord expansion, quantization, gap enforcement, hold
// carving, and hidden-note removal. Every stage consumes one note list
// and produces the next.
package synth

import (
	"math"
	"sort"

	"github.com/farcloser/tropism/internal/random"
	"github.com/farcloser/tropism/internal/types"
)

const (
	// strongLaneThreshold separates onsets that snap to the dominant
	// energy lane from onsets routed through the pattern catalogue.
	strongLaneThreshold = 0.7

	// chordStrengthFloor is the minimum strength for an onset to spawn
	// chord partners on profiles that allow chords.
	chordStrengthFloor = 0.6

	// Hold durations are clamped to this range in seconds. Shorter
	// holds read as taps; longer ones outstay any musical sustain.
	minHoldDuration = 0.25
	maxHoldDuration = 4.0

	// holdSafetyGap is how much clearance a hold's tail must leave
	// before the next note in the same lane, in seconds.
	holdSafetyGap = 0.15

	// Hold classification boundaries, in seconds.
	shortHoldMax  = 0.7
	mediumHoldMax = 1.5

	// Hidden-note tolerances in seconds: a tap is unplayable when it
	// lands strictly inside a same-lane hold window, shrunk by these at
	// the head and tail.
	hiddenHeadTolerance = 0.05
	hiddenTailTolerance = 0.05
)

// Config carries the difficulty knobs the synthesizer consumes. The
// public profile table maps onto this; all fields are required.
type Config struct {
	LaneCount     int     // total lanes on the highway
	ActiveLanes   int     // lanes actually used, centered within LaneCount
	MinLaneGap    float64 // seconds between same-lane notes
	MaxChordSize  int     // 1 = no chords
	DensityFactor float64 // 0-1 share of onsets kept
	StrengthFloor float64 // onsets below this never become notes
	HoldFraction  float64 // chance a sustained note becomes a hold
	MinHoldRatio  float64 // backfill until holds reach this share
	BackfillMin   float64 // manufactured hold duration range, seconds
	BackfillMax   float64
	GridStep      float64 // quantization step, seconds; 0 = from BPM
}

// A note is the synthesizer's working representation. Strength rides
// along for ranking decisions and is dropped from the final output.
type note struct {
	time     float64
	lane     int
	strength float64
	hold     float64 // seconds; 0 = tap
	class    types.HoldClass
}

// Compose runs the full note pipeline for one difficulty configuration.
// The returned list is sorted by (time, lane) with no duplicate pairs.
// Degenerate input composes an empty, non-nil list.
func Compose(
	det *types.Detection,
	profile *types.BandProfile,
	segments []types.Segment,
	cfg Config,
	rng *random.Source,
) []types.Note {
	onsets := filterByStrength(det.Onsets, cfg.StrengthFloor)
	onsets = reduceDensity(onsets, cfg.DensityFactor)

	notes := assignLanes(onsets, profile, cfg, rng)
	notes = expandChords(notes, cfg, rng)
	notes = quantize(notes, float64(det.BPM), cfg.GridStep)
	notes = enforceLaneGaps(notes, cfg)
	carveHolds(notes, segments, cfg, rng)
	notes = removeHidden(notes)
	notes = enforceLaneGaps(notes, cfg)

	sortNotes(notes)

	out := make([]types.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, types.Note{
			Time:         n.time,
			Lane:         n.lane,
			HoldDuration: n.hold,
			Hold:         n.class,
		})
	}

	return out
}

// filterByStrength drops onsets weaker than the floor.
func filterByStrength(onsets []types.Onset, floor float64) []types.Onset {
	kept := make([]types.Onset, 0, len(onsets))

	for _, o := range onsets {
		if o.Strength >= floor {
			kept = append(kept, o)
		}
	}

	return kept
}

// reduceDensity keeps the strongest round(count*factor) onsets, then
// restores time order. Ranking ties break toward the earlier onset, so
// the result never depends on sort internals.
func reduceDensity(onsets []types.Onset, factor float64) []types.Onset {
	target := int(math.Round(float64(len(onsets)) * factor))
	if len(onsets) <= target {
		return onsets
	}

	ranked := make([]types.Onset, len(onsets))
	copy(ranked, onsets)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Strength != ranked[j].Strength {
			return ranked[i].Strength > ranked[j].Strength
		}

		return ranked[i].Time < ranked[j].Time
	})

	kept := ranked[:target]

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Time < kept[j].Time
	})

	return kept
}

func sortNotes(notes []note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].time != notes[j].time {
			return notes[i].time < notes[j].time
		}

		return notes[i].lane < notes[j].lane
	})
}
