// Package output provides shared beatmap serialization for tropism JSON output.
package output

import (
	"github.com/farcloser/tropism"
)

// BeatmapToMap converts a beatmap into the canonical map structure
// used for JSON and JSONL serialization. Keys match the beatmap wire
// contract.
func BeatmapToMap(beatmap *tropism.Beatmap) map[string]any {
	notes := make([]any, 0, len(beatmap.Notes))
	for _, note := range beatmap.Notes {
		notes = append(notes, NoteToMap(note))
	}

	return map[string]any{
		"notes":      notes,
		"bpm":        beatmap.BPM,
		"duration":   beatmap.Duration,
		"difficulty": beatmap.Difficulty.String(),
		"laneCount":  beatmap.LaneCount,
	}
}

// NoteToMap converts one note. Hold fields only appear on holds,
// matching the omitempty behavior of the struct tags.
func NoteToMap(note tropism.Note) map[string]any {
	meta := map[string]any{
		"time": note.Time,
		"lane": note.Lane,
	}

	if note.IsHold() {
		meta["holdDuration"] = note.HoldDuration
		meta["holdType"] = note.Hold.String()
	}

	return meta
}
