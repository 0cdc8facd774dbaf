package synth

import (
	"math"

	"github.com/farcloser/tropism/internal/random"
	"github.com/farcloser/tropism/internal/types"
)

// carveHolds turns taps inside sustain segments into hold notes and,
// when the map ends up hold-starved for the profile, promotes extra
// taps with short synthetic holds. Notes must be time-sorted; the
// slice is rewritten in place and times and lanes never change.
func carveHolds(notes []note, segments []types.Segment, cfg Config, rng *random.Source) {
	if len(notes) == 0 {
		return
	}

	next := nextNoteTimes(notes)
	holds := 0

	for i := range notes {
		seg := segmentAt(segments, notes[i].time)
		if seg == nil {
			continue
		}

		if rng.Next() >= cfg.HoldFraction {
			continue
		}

		dur := clampHold(seg.End - notes[i].time)
		dur = math.Min(dur, next[i]-holdSafetyGap-notes[i].time)

		if dur < minHoldDuration {
			continue
		}

		notes[i].hold = dur
		notes[i].class = classifyHold(dur)
		holds++
	}

	target := int(math.Round(cfg.MinHoldRatio * float64(len(notes))))
	if holds >= target {
		return
	}

	backfillHolds(notes, next, holds, target, cfg, rng)
}

// backfillHolds promotes taps to short holds until the hold count
// reaches target or the taps run out. Candidates are visited in time
// order; a candidate is skipped when its clamped duration drops below
// the playable minimum or its window would overlap an existing hold on
// any lane, which keeps promoted holds from bunching up.
func backfillHolds(notes []note, next []float64, holds, target int, cfg Config, rng *random.Source) {
	intervals := holdIntervals(notes)

	for i := range notes {
		if holds >= target {
			return
		}

		if notes[i].hold > 0 {
			continue
		}

		dur := cfg.BackfillMin + rng.Next()*(cfg.BackfillMax-cfg.BackfillMin)
		dur = math.Min(dur, next[i]-holdSafetyGap-notes[i].time)

		if dur < minHoldDuration {
			continue
		}

		if overlapsAny(intervals, notes[i].time, notes[i].time+dur) {
			continue
		}

		notes[i].hold = dur
		notes[i].class = classifyHold(dur)
		intervals = append(intervals, holdInterval{start: notes[i].time, end: notes[i].time + dur})
		holds++
	}
}

type holdInterval struct {
	start, end float64
}

func holdIntervals(notes []note) []holdInterval {
	intervals := make([]holdInterval, 0, len(notes)/4)

	for _, n := range notes {
		if n.hold > 0 {
			intervals = append(intervals, holdInterval{start: n.time, end: n.time + n.hold})
		}
	}

	return intervals
}

func overlapsAny(intervals []holdInterval, start, end float64) bool {
	for _, iv := range intervals {
		if start < iv.end && iv.start < end {
			return true
		}
	}

	return false
}

// nextNoteTimes returns, for each note, the start time of the next
// note in the same lane, or +Inf when the note is the last in its
// lane. Holds are capped against this so a hold bar always releases
// before the lane's next note.
func nextNoteTimes(notes []note) []float64 {
	next := make([]float64, len(notes))
	lastSeen := make(map[int]float64, 8)

	for i := len(notes) - 1; i >= 0; i-- {
		t, ok := lastSeen[notes[i].lane]
		if !ok {
			t = math.Inf(1)
		}

		next[i] = t
		lastSeen[notes[i].lane] = notes[i].time
	}

	return next
}

// segmentAt returns the sustain segment whose span contains t, or nil.
// Segments are sorted and non-overlapping, so the first hit wins.
func segmentAt(segments []types.Segment, t float64) *types.Segment {
	for i := range segments {
		if t >= segments[i].Start && t < segments[i].End {
			return &segments[i]
		}
	}

	return nil
}

func clampHold(dur float64) float64 {
	if dur < minHoldDuration {
		return minHoldDuration
	}

	if dur > maxHoldDuration {
		return maxHoldDuration
	}

	return dur
}

/*
 * Hold class interpretation:
 *
 * duration <= 0.7s  -> short
 * duration <= 1.5s  -> medium
 * otherwise         -> long
 */
func classifyHold(dur float64) types.HoldClass {
	switch {
	case dur <= shortHoldMax:
		return types.HoldShort
	case dur <= mediumHoldMax:
		return types.HoldMedium
	default:
		return types.HoldLong
	}
}
