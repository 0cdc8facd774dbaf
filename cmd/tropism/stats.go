package main

import (
	"context"
	"errors"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/tropism"
)

var errStatsArgs = errors.New("expected exactly one argument: beatmap file path or \"-\" for stdin")

// densityWindow is the sliding window, in seconds, used for the peak density figure.
const densityWindow = 1.0

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Print summary statistics for a beatmap file",
		ArgsUsage: "<beatmap.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errStatsArgs
			}

			path := cmd.Args().First()

			beatmap, err := loadBeatmap(path)
			if err != nil {
				return err
			}

			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err //nolint:wrapcheck
			}

			data := &format.Data{
				Object: path,
				Meta:   beatmapStats(beatmap),
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout) //nolint:wrapcheck
		},
	}
}

func beatmapStats(beatmap *tropism.Beatmap) map[string]any {
	taps := 0
	holds := 0
	holdTime := 0.0
	holdDist := map[tropism.HoldClass]int{}
	laneDist := make([]int, beatmap.LaneCount)

	for _, note := range beatmap.Notes {
		if note.Lane >= 0 && note.Lane < len(laneDist) {
			laneDist[note.Lane]++
		}

		if note.IsHold() {
			holds++
			holdTime += note.HoldDuration
			holdDist[note.Hold]++
		} else {
			taps++
		}
	}

	lanes := map[string]any{}
	for lane, count := range laneDist {
		lanes["lane "+strconv.Itoa(lane)] = count
	}

	stats := map[string]any{
		"difficulty": beatmap.Difficulty.String(),
		"bpm":        beatmap.BPM,
		"duration":   beatmap.Duration,
		"lane_count": beatmap.LaneCount,
		"notes": map[string]any{
			"total":     len(beatmap.Notes),
			"taps":      taps,
			"holds":     holds,
			"hold_time": holdTime,
		},
		"hold_types": map[string]any{
			"short":  holdDist[tropism.HoldShort],
			"medium": holdDist[tropism.HoldMedium],
			"long":   holdDist[tropism.HoldLong],
		},
		"lanes": lanes,
	}

	if beatmap.Duration > 0 {
		stats["density"] = map[string]any{
			"average": float64(len(beatmap.Notes)) / beatmap.Duration,
			"peak":    peakDensity(beatmap.Notes),
			"min_gap": minGap(beatmap.Notes),
		}
	}

	return stats
}

// peakDensity is the largest number of notes inside any one-second window.
func peakDensity(notes []tropism.Note) int {
	if len(notes) == 0 {
		return 0
	}

	times := make([]float64, len(notes))
	for i, note := range notes {
		times[i] = note.Time
	}

	sort.Float64s(times)

	peak := 0
	start := 0

	for end := range times {
		for times[end]-times[start] > densityWindow {
			start++
		}

		if window := end - start + 1; window > peak {
			peak = window
		}
	}

	return peak
}

// minGap is the smallest interval between two distinct note times.
func minGap(notes []tropism.Note) float64 {
	times := make([]float64, len(notes))
	for i, note := range notes {
		times[i] = note.Time
	}

	sort.Float64s(times)

	gap := math.Inf(1)

	for i := 1; i < len(times); i++ {
		if delta := times[i] - times[i-1]; delta > 0 && delta < gap {
			gap = delta
		}
	}

	if math.IsInf(gap, 1) {
		return 0
	}

	return gap
}
