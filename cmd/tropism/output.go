//nolint:wrapcheck
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/tropism"
	"github.com/farcloser/tropism/internal/output"
)

// outputBeatmap renders the beatmap to stdout in the requested format,
// or writes canonical JSON to outPath when set.
func outputBeatmap(objectName string, beatmap *tropism.Beatmap, formatName, outPath string) error {
	if outPath != "" {
		return writeBeatmapFile(beatmap, outPath)
	}

	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := &format.Data{
		Object: objectName,
		Meta:   output.BeatmapToMap(beatmap),
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func writeBeatmapFile(beatmap *tropism.Beatmap, path string) error {
	data, err := json.MarshalIndent(beatmap, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)

		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec // beatmaps are shareable artifacts
}

// loadBeatmap reads a beatmap JSON file, "-" meaning stdin.
func loadBeatmap(path string) (*tropism.Beatmap, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // CLI tool opens user-specified beatmap files
	}

	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var beatmap tropism.Beatmap
	if err := json.Unmarshal(data, &beatmap); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &beatmap, nil
}

// progressPrinter writes a carriage-returned percentage to stderr so
// it never pollutes piped beatmap output.
func progressPrinter() func(int) {
	return func(percent int) {
		fmt.Fprintf(os.Stderr, "\r%3d%%", percent)

		if percent >= 100 {
			fmt.Fprintln(os.Stderr)
		}
	}
}
