package output

import (
	"testing"

	"github.com/farcloser/tropism"
)

func TestBeatmapToMap(t *testing.T) {
	beatmap := &tropism.Beatmap{
		Notes: []tropism.Note{
			{Time: 0.5, Lane: 0},
			{Time: 1.0, Lane: 3, HoldDuration: 0.9, Hold: tropism.HoldMedium},
		},
		BPM:        140,
		Duration:   3.5,
		Difficulty: tropism.DifficultyDeadly,
		LaneCount:  4,
	}

	meta := BeatmapToMap(beatmap)

	if meta["bpm"] != 140 {
		t.Fatalf("bpm = %v, want 140", meta["bpm"])
	}

	if meta["duration"] != 3.5 {
		t.Fatalf("duration = %v, want 3.5", meta["duration"])
	}

	if meta["difficulty"] != "deadly" {
		t.Fatalf("difficulty = %v, want deadly", meta["difficulty"])
	}

	if meta["laneCount"] != 4 {
		t.Fatalf("laneCount = %v, want 4", meta["laneCount"])
	}

	notes, ok := meta["notes"].([]any)
	if !ok || len(notes) != 2 {
		t.Fatalf("notes = %v, want a list of 2", meta["notes"])
	}
}

func TestNoteToMapTap(t *testing.T) {
	meta := NoteToMap(tropism.Note{Time: 0.5, Lane: 2})

	if meta["time"] != 0.5 || meta["lane"] != 2 {
		t.Fatalf("tap = %v", meta)
	}

	if _, ok := meta["holdDuration"]; ok {
		t.Fatal("tap carries holdDuration")
	}

	if _, ok := meta["holdType"]; ok {
		t.Fatal("tap carries holdType")
	}
}

func TestNoteToMapHold(t *testing.T) {
	meta := NoteToMap(tropism.Note{Time: 1.0, Lane: 1, HoldDuration: 2.0, Hold: tropism.HoldLong})

	if meta["holdDuration"] != 2.0 {
		t.Fatalf("holdDuration = %v, want 2.0", meta["holdDuration"])
	}

	if meta["holdType"] != "long" {
		t.Fatalf("holdType = %v, want long", meta["holdType"])
	}
}
