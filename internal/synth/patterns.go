package synth

import (
	"github.com/farcloser/tropism/internal/random"
	"github.com/farcloser/tropism/internal/types"
)

// patternPhaseRate converts a note's time into an index step through a
// pattern sequence: 8 steps per second, an eighth-note feel at 120 BPM.
const patternPhaseRate = 8.0

// A pattern is a named lane sequence. Sequences are written in
// four-lane space and folded into the profile's active lane range, so
// the catalogue works for any lane count.
type pattern struct {
	name string
	seq  []int
}

// The catalogue is a closed, ordered set. Lane choice for weaker onsets
// is a pure lookup: one draw picks the pattern, the time-derived phase
// picks the position in its sequence.
var patterns = []pattern{
	{"wave", []int{0, 1, 2, 3, 2, 1}},
	{"zigzag", []int{0, 2, 1, 3}},
	{"staircase", []int{0, 1, 2, 3}},
	{"gallop", []int{0, 0, 2, 2}},
	{"trill", []int{0, 1, 0, 1}},
	{"cascade", []int{3, 2, 1, 0}},
	{"butterfly", []int{0, 3, 1, 2}},
	{"pulse", []int{1, 1, 2, 2}},
	{"alternating-edges", []int{0, 3, 0, 3}},
}

// laneOffset centers the active lanes within the full lane count.
func laneOffset(cfg Config) int {
	return (cfg.LaneCount - cfg.ActiveLanes) / 2
}

// assignLanes places each onset on a lane. Strong onsets snap to the
// active lane carrying the most band energy; the rest walk a pattern
// from the catalogue, selected per onset by one draw from the
// randomness source.
func assignLanes(onsets []types.Onset, profile *types.BandProfile, cfg Config, rng *random.Source) []note {
	offset := laneOffset(cfg)
	loudest := loudestActiveLane(profile, offset, cfg.ActiveLanes)
	notes := make([]note, 0, len(onsets))

	for _, o := range onsets {
		lane := loudest

		if o.Strength <= strongLaneThreshold {
			p := patterns[rng.IntN(len(patterns))]
			phase := int(o.Time * patternPhaseRate)
			lane = offset + p.seq[phase%len(p.seq)]%cfg.ActiveLanes
		}

		notes = append(notes, note{time: o.Time, lane: lane, strength: o.Strength})
	}

	return notes
}

// loudestActiveLane returns the active lane with the highest profile
// energy, preferring the lower lane on exact ties. An all-zero profile
// lands on the first active lane.
func loudestActiveLane(profile *types.BandProfile, offset, activeLanes int) int {
	best := offset

	for lane := offset; lane < offset+activeLanes && lane < len(profile.Energy); lane++ {
		if profile.Energy[lane] > profile.Energy[best] {
			best = lane
		}
	}

	return best
}

// expandChords spawns simultaneous partner notes for strong onsets on
// profiles that allow chords. Partners land on adjacent unused active
// lanes, searched outward from the base lane; one draw picks whether
// the search leans right or left first, and chord size scales with
// strength up to MaxChordSize-1 partners.
func expandChords(notesIn []note, cfg Config, rng *random.Source) []note {
	if cfg.MaxChordSize <= 1 {
		return notesIn
	}

	offset := laneOffset(cfg)
	out := make([]note, 0, len(notesIn))

	for _, n := range notesIn {
		out = append(out, n)

		if n.strength < chordStrengthFloor {
			continue
		}

		extras := chordExtras(n.strength, cfg.MaxChordSize)
		rightFirst := rng.Next() < 0.5
		used := []int{n.lane}

		for _, lane := range adjacentLanes(n.lane, offset, cfg.ActiveLanes, rightFirst) {
			if extras == 0 {
				break
			}

			if containsLane(used, lane) {
				continue
			}

			// Chord partners inherit the driving onset's strength so
			// later hold decisions treat the chord uniformly.
			out = append(out, note{time: n.time, lane: lane, strength: n.strength})
			used = append(used, lane)
			extras--
		}
	}

	return out
}

// chordExtras maps strength in [chordStrengthFloor, 1] linearly onto
// 1..MaxChordSize-1 partner notes.
func chordExtras(strength float64, maxChord int) int {
	span := (strength - chordStrengthFloor) / (1.0 - chordStrengthFloor)
	extras := 1 + int(span*float64(maxChord-1))

	return min(extras, maxChord-1)
}

// adjacentLanes lists candidate partner lanes outward from base,
// alternating direction, restricted to the active range.
func adjacentLanes(base, offset, activeLanes int, rightFirst bool) []int {
	lanes := make([]int, 0, activeLanes-1)

	for delta := 1; delta < activeLanes; delta++ {
		first, second := base+delta, base-delta
		if !rightFirst {
			first, second = second, first
		}

		for _, lane := range []int{first, second} {
			if lane >= offset && lane < offset+activeLanes {
				lanes = append(lanes, lane)
			}
		}
	}

	return lanes
}

func containsLane(lanes []int, lane int) bool {
	for _, l := range lanes {
		if l == lane {
			return true
		}
	}

	return false
}
