package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/tropism"
)

var errPreviewArgs = errors.New("expected exactly one argument: beatmap file path or \"-\" for stdin")

//nolint:gochecknoglobals
var (
	tapColor    = color.New(color.FgHiWhite)
	shortColor  = color.New(color.FgGreen)
	mediumColor = color.New(color.FgYellow)
	longColor   = color.New(color.FgRed)
)

const (
	glyphEmpty = '.'
	glyphTap   = 'o'
	glyphHead  = 'O'
	glyphBody  = '='

	minPreviewWidth = 10
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Render an ASCII lane preview of a beatmap",
		ArgsUsage: "<beatmap.json>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"w"},
				Usage:   "Number of columns in the rendered timeline",
				Value:   100,
			},
			&cli.FloatFlag{
				Name:  "start",
				Usage: "Window start in seconds",
			},
			&cli.FloatFlag{
				Name:  "window",
				Usage: "Window length in seconds (0 renders to the end of the map)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errPreviewArgs
			}

			beatmap, err := loadBeatmap(cmd.Args().First())
			if err != nil {
				return err
			}

			width := max(cmd.Int("width"), minPreviewWidth)

			return renderPreview(os.Stdout, beatmap, width, cmd.Float("start"), cmd.Float("window"))
		},
	}
}

type previewCell struct {
	glyph byte
	class tropism.HoldClass
}

func renderPreview(out *os.File, beatmap *tropism.Beatmap, width int, start, window float64) error {
	if len(beatmap.Notes) == 0 {
		fmt.Fprintln(out, "(no notes)")

		return nil
	}

	end := beatmap.Duration
	if window > 0 {
		end = start + window
	}

	if end <= start {
		return fmt.Errorf("empty preview window: %.2fs to %.2fs", start, end) //nolint:err113
	}

	cellDur := (end - start) / float64(width)

	grid := make([][]previewCell, beatmap.LaneCount)
	for lane := range grid {
		grid[lane] = make([]previewCell, width)

		for col := range grid[lane] {
			grid[lane][col] = previewCell{glyph: glyphEmpty}
		}
	}

	for _, note := range beatmap.Notes {
		if note.Lane < 0 || note.Lane >= beatmap.LaneCount {
			continue
		}

		plotNote(grid[note.Lane], note, start, cellDur)
	}

	for lane := range grid {
		fmt.Fprintf(out, "lane %d |", lane)

		for _, cell := range grid[lane] {
			fmt.Fprint(out, cellColor(cell).Sprint(string(cell.glyph)))
		}

		fmt.Fprintln(out, "|")
	}

	fmt.Fprintf(out, "        %.1fs to %.1fs (%.3fs per column)\n", start, end, cellDur)

	return nil
}

// plotNote marks the note on its lane row. Hold bodies fill forward from the
// head. On collision the stronger glyph wins: head over tap over body.
func plotNote(row []previewCell, note tropism.Note, start, cellDur float64) {
	col := int((note.Time - start) / cellDur)
	if col < 0 || col >= len(row) {
		return
	}

	if !note.IsHold() {
		setCell(row, col, previewCell{glyph: glyphTap})

		return
	}

	setCell(row, col, previewCell{glyph: glyphHead, class: note.Hold})

	last := int((note.Time + note.HoldDuration - start) / cellDur)
	for body := col + 1; body <= last && body < len(row); body++ {
		setCell(row, body, previewCell{glyph: glyphBody, class: note.Hold})
	}
}

func setCell(row []previewCell, col int, cell previewCell) {
	if glyphRank(cell.glyph) > glyphRank(row[col].glyph) {
		row[col] = cell
	}
}

func glyphRank(glyph byte) int {
	switch glyph {
	case glyphHead:
		return 3
	case glyphTap:
		return 2
	case glyphBody:
		return 1
	default:
		return 0
	}
}

func cellColor(cell previewCell) *color.Color {
	switch {
	case cell.glyph == glyphEmpty:
		return tapColor
	case cell.glyph == glyphTap:
		return tapColor
	case cell.class == tropism.HoldShort:
		return shortColor
	case cell.class == tropism.HoldMedium:
		return mediumColor
	default:
		return longColor
	}
}
