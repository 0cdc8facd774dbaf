package synth

import (
	"math"
)

// quantize snaps every note onto the rhythmic grid and collapses
// collisions. The default grid is a sixteenth note at the detected
// tempo; a positive gridStep overrides it. Snapping can land two
// notes on the same grid point and lane, so the result is re-sorted
// and deduplicated before the next stage.
func quantize(notes []note, bpm, gridStep float64) []note {
	step := gridStep
	if step <= 0 {
		step = 60.0 / bpm / 4.0
	}

	for i := range notes {
		notes[i].time = math.Round(notes[i].time/step) * step
	}

	sortNotes(notes)

	return dedupNotes(notes)
}

// dedupNotes removes exact (time, lane) duplicates from a sorted note
// slice. A hold survives over a tap, a stronger note over a weaker
// one, the earlier entry otherwise.
func dedupNotes(notes []note) []note {
	if len(notes) < 2 {
		return notes
	}

	out := notes[:1]

	for _, cur := range notes[1:] {
		last := &out[len(out)-1]
		if cur.time != last.time || cur.lane != last.lane {
			out = append(out, cur)

			continue
		}

		if betterDuplicate(cur, *last) {
			*last = cur
		}
	}

	return out
}

// betterDuplicate reports whether cur should replace prev when both
// occupy the same grid point and lane.
func betterDuplicate(cur, prev note) bool {
	if (cur.hold > 0) != (prev.hold > 0) {
		return cur.hold > 0
	}

	return cur.strength > prev.strength
}

// enforceLaneGaps walks the time-sorted notes and drops any note that
// starts too soon after the previous kept note in its lane. When the
// later note is a hold and the earlier a tap, the hold wins and the
// tap is dropped instead: holds anchor the map's structure.
func enforceLaneGaps(notes []note, cfg Config) []note {
	minGap := cfg.MinLaneGap
	if minGap <= 0 || len(notes) < 2 {
		return notes
	}

	sortNotes(notes)

	keep := make([]bool, len(notes))
	lastInLane := make(map[int]int, 8)

	for i, n := range notes {
		keep[i] = true

		prev, ok := lastInLane[n.lane]
		if !ok || notes[i].time-notes[prev].time >= minGap {
			lastInLane[n.lane] = i

			continue
		}

		if n.hold > 0 && notes[prev].hold == 0 {
			keep[prev] = false
			lastInLane[n.lane] = i
		} else {
			keep[i] = false
		}
	}

	out := notes[:0]

	for i, n := range notes {
		if keep[i] {
			out = append(out, n)
		}
	}

	return out
}

// removeHidden drops notes that fall inside another note's hold window
// in the same lane. Earlier stages leave clearance around holds, so
// this normally removes nothing, but it is the stage that guarantees
// no note is ever buried under a hold bar. Containment is judged
// against the hold set as it stood on entry.
func removeHidden(notes []note) []note {
	holds := make([]note, 0, len(notes)/4)

	for _, n := range notes {
		if n.hold > 0 {
			holds = append(holds, n)
		}
	}

	if len(holds) == 0 {
		return notes
	}

	out := notes[:0]

	for _, n := range notes {
		if !buriedUnderHold(holds, n) {
			out = append(out, n)
		}
	}

	return out
}

// buriedUnderHold reports whether n starts strictly inside a same-lane
// hold window, shrunk by the head and tail tolerances. A hold never
// buries itself: its start time sits outside its own shrunk window.
func buriedUnderHold(holds []note, n note) bool {
	for _, h := range holds {
		if h.lane != n.lane {
			continue
		}

		if n.time > h.time+hiddenHeadTolerance && n.time < h.time+h.hold-hiddenTailTolerance {
			return true
		}
	}

	return false
}
