package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tropism"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a tropism JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show the N densest tracks in detail",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.Int("top"))
		},
	}
}

func runDigest(reportPath string, top int) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if top > 0 {
		printDensest(records, top)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	// Dense beatmaps carry thousands of notes per line.
	const maxLineSize = 8 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

//nolint:funlen
func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	totalNotes := 0
	totalHolds := 0
	totalDuration := 0.0
	holdDist := map[tropism.HoldClass]int{}
	diffDist := map[tropism.Difficulty]int{}
	laneDist := map[int]int{}
	bpmDist := map[int]int{}

	const bpmBucket = 20

	for _, rec := range records {
		if rec.Error != "" || rec.Beatmap == nil {
			failed++

			continue
		}

		beatmap := rec.Beatmap
		diffDist[beatmap.Difficulty]++
		bpmDist[beatmap.BPM/bpmBucket*bpmBucket]++
		totalDuration += beatmap.Duration

		totalNotes += len(beatmap.Notes)

		for _, note := range beatmap.Notes {
			laneDist[note.Lane]++

			if note.IsHold() {
				totalHolds++
				holdDist[note.Hold]++
			}
		}
	}

	mapped := total - failed

	fmt.Println("=== Tropism Batch Digest ===")
	fmt.Println()
	fmt.Printf("Total tracks:  %d\n", total)
	fmt.Printf("Failed:        %d\n", failed)
	fmt.Printf("Mapped:        %d\n", mapped)
	fmt.Println()

	if mapped == 0 {
		return
	}

	fmt.Println("--- Notes ---")
	fmt.Printf("  Total notes:  %d\n", totalNotes)
	fmt.Printf("  Taps:         %d\n", totalNotes-totalHolds)
	fmt.Printf("  Holds:        %d\n", totalHolds)
	fmt.Printf("    short:   %d\n", holdDist[tropism.HoldShort])
	fmt.Printf("    medium:  %d\n", holdDist[tropism.HoldMedium])
	fmt.Printf("    long:    %d\n", holdDist[tropism.HoldLong])

	if totalDuration > 0 {
		fmt.Printf("  Density:      %.2f notes/s across the library\n", float64(totalNotes)/totalDuration)
	}

	fmt.Println()

	fmt.Println("--- Difficulty ---")

	for _, diff := range tropism.Difficulties() {
		if count, ok := diffDist[diff]; ok && count > 0 {
			fmt.Printf("  %-8s  %d tracks\n", diff.String(), count)
		}
	}

	fmt.Println()

	fmt.Println("--- Tempo ---")

	maxBucket := 0
	for bucket := range bpmDist {
		if bucket > maxBucket {
			maxBucket = bucket
		}
	}

	for bucket := 0; bucket <= maxBucket; bucket += bpmBucket {
		if count, ok := bpmDist[bucket]; ok && count > 0 {
			fmt.Printf("  %d-%d BPM:  %d tracks\n", bucket, bucket+bpmBucket-1, count)
		}
	}

	fmt.Println()

	fmt.Println("--- Lane Spread ---")

	maxLane := 0
	for lane := range laneDist {
		if lane > maxLane {
			maxLane = lane
		}
	}

	for lane := range maxLane + 1 {
		count, ok := laneDist[lane]
		if !ok || count == 0 {
			continue
		}

		share := 0.0
		if totalNotes > 0 {
			share = float64(count) / float64(totalNotes) * 100
		}

		fmt.Printf("  lane %d:  %d notes (%.1f%%)\n", lane, count, share)
	}
}

type denseEntry struct {
	file    string
	beatmap *tropism.Beatmap
	density float64
}

func printDensest(records []digestRecord, top int) {
	fmt.Println()

	var entries []denseEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Beatmap == nil || rec.Beatmap.Duration <= 0 {
			continue
		}

		entry := denseEntry{
			file:    rec.File,
			beatmap: rec.Beatmap,
			density: float64(len(rec.Beatmap.Notes)) / rec.Beatmap.Duration,
		}

		if entry.file == "" {
			entry.file = "(redacted)"
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Println("No mapped tracks in report")

		return
	}

	slices.SortFunc(entries, func(a, b denseEntry) int {
		switch {
		case a.density > b.density:
			return -1
		case a.density < b.density:
			return 1
		default:
			return 0
		}
	})

	if top > len(entries) {
		top = len(entries)
	}

	fmt.Printf("=== Densest Tracks (top %d) ===\n\n", top)

	for _, entry := range entries[:top] {
		holds := 0

		for _, note := range entry.beatmap.Notes {
			if note.IsHold() {
				holds++
			}
		}

		fmt.Printf("  %s\n", entry.file)
		fmt.Printf("    difficulty: %s  notes: %d  holds: %d\n",
			entry.beatmap.Difficulty, len(entry.beatmap.Notes), holds)
		fmt.Printf("    duration: %.1fs  bpm: %d  density: %.2f notes/s\n",
			entry.beatmap.Duration, entry.beatmap.BPM, entry.density)
		fmt.Println()
	}
}
