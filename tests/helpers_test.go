package tests_test

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// beatmapShape is the wire shape integration tests inspect. Kept local so the
// suite stays a black box over the binary's JSON output.
type beatmapShape struct {
	Notes []struct {
		Time         float64 `json:"time"`
		Lane         int     `json:"lane"`
		HoldDuration float64 `json:"holdDuration"`
		HoldType     string  `json:"holdType"`
	} `json:"notes"`
	BPM        int     `json:"bpm"`
	Duration   float64 `json:"duration"`
	Difficulty string  `json:"difficulty"`
	LaneCount  int     `json:"laneCount"`
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectBeatmap returns a comparator verifying stdout is a well-formed beatmap
// JSON document: parseable, with a plausible tempo, a positive lane count, and
// notes sorted by (time, lane) with every lane inside the highway.
func expectBeatmap() test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		beatmap, ok := parseBeatmap(stdout, testing)
		if !ok {
			return
		}

		if beatmap.BPM < 60 || beatmap.BPM > 240 {
			testing.Log(fmt.Sprintf("tempo %d outside [60, 240]", beatmap.BPM))
			testing.Fail()

			return
		}

		if beatmap.LaneCount < 1 {
			testing.Log(fmt.Sprintf("lane count %d is not positive", beatmap.LaneCount))
			testing.Fail()

			return
		}

		for i, note := range beatmap.Notes {
			if note.Lane < 0 || note.Lane >= beatmap.LaneCount {
				testing.Log(fmt.Sprintf("note %d on lane %d outside highway of %d lanes", i, note.Lane, beatmap.LaneCount))
				testing.Fail()

				return
			}

			if i == 0 {
				continue
			}

			prev := beatmap.Notes[i-1]
			if note.Time < prev.Time || (note.Time == prev.Time && note.Lane <= prev.Lane) {
				testing.Log(fmt.Sprintf("notes %d and %d out of (time, lane) order", i-1, i))
				testing.Fail()

				return
			}
		}
	}
}

// expectDifficulty returns a comparator verifying the generated difficulty tier.
func expectDifficulty(tier string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		beatmap, ok := parseBeatmap(stdout, testing)
		if !ok {
			return
		}

		if beatmap.Difficulty != tier {
			testing.Log(fmt.Sprintf("expected difficulty %q, got %q", tier, beatmap.Difficulty))
			testing.Fail()
		}
	}
}

// expectLaneCount returns a comparator verifying the highway width.
func expectLaneCount(lanes int) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		beatmap, ok := parseBeatmap(stdout, testing)
		if !ok {
			return
		}

		if beatmap.LaneCount != lanes {
			testing.Log(fmt.Sprintf("expected %d lanes, got %d", lanes, beatmap.LaneCount))
			testing.Fail()
		}
	}
}

func parseBeatmap(stdout string, testing tig.T) (*beatmapShape, bool) {
	testing.Helper()

	var beatmap beatmapShape
	if err := json.Unmarshal([]byte(stdout), &beatmap); err != nil {
		testing.Log(fmt.Sprintf("output is not beatmap JSON: %v\n%s", err, stdout))
		testing.Fail()

		return nil, false
	}

	return &beatmap, true
}
