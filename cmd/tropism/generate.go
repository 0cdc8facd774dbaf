//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tropism"
	"github.com/farcloser/tropism/internal/pcm"
	"github.com/farcloser/tropism/internal/types"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a beatmap from raw PCM audio",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			// PCMFormat flags.
			&cli.IntFlag{
				Name:     "sample-rate",
				Aliases:  []string{"s"},
				Usage:    "Sample rate in Hz (e.g., 44100, 48000, 96000)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth (16, 24, or 32)",
				Value:   16,
			},
			&cli.BoolFlag{
				Name:  "float",
				Usage: "Treat 32-bit samples as IEEE floats (pcm_f32le)",
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of channels (1 = mono, 2 = stereo)",
				Value:   2,
			},

			// Generation flags.
			&cli.StringFlag{
				Name:    "difficulty",
				Aliases: []string{"d"},
				Usage:   "Difficulty tier: easy, medium, hard, extreme, deadly",
				Value:   "medium",
			},
			&cli.IntFlag{
				Name:    "lanes",
				Aliases: []string{"l"},
				Usage:   "Number of lanes on the highway",
				Value:   4,
			},
			&cli.FloatFlag{
				Name:  "grid",
				Usage: "Quantization grid step in seconds (0 = sixteenth note at detected tempo)",
			},

			// Output.
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write canonical beatmap JSON to this path instead of rendering (\"-\" for stdout)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Report generation progress on stderr",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			format, err := parsePCMFormat(cmd)
			if err != nil {
				return err
			}

			difficulty, err := tropism.ParseDifficulty(cmd.String("difficulty"))
			if err != nil {
				return err
			}

			inputPath := cmd.Args().First()

			reader, cleanup, err := openInput(inputPath)
			if err != nil {
				return err
			}
			defer cleanup()

			samples, err := pcm.Decode(reader, format)
			if err != nil {
				return fmt.Errorf("decoding PCM: %w", err)
			}

			buf := &tropism.SampleBuffer{
				Samples:    samples,
				SampleRate: format.SampleRate,
				Channels:   int(format.Channels), //nolint:gosec // validated positive value
			}

			opts := tropism.DefaultOptions()
			opts.LaneCount = cmd.Int("lanes")
			opts.GridStep = cmd.Float("grid")

			if cmd.Bool("progress") {
				opts.Progress = progressPrinter()
			}

			beatmap, err := tropism.Generate(buf, difficulty, opts)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			return outputBeatmap(inputPath, beatmap, cmd.String("format"), cmd.String("out"))
		},
	}
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	rawBitDepth := cmd.Int("bit-depth")
	channels := cmd.Int("channels")

	bitDepth, err := toBitDepth(rawBitDepth, cmd.Bool("float"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

var (
	errInvalidBitDepth = errors.New("must be 16, 24, or 32")
	errFloatBitDepth   = errors.New("--float requires --bit-depth 32")
)

func toBitDepth(v int, isFloat bool) (types.BitDepth, error) {
	if isFloat {
		if v != 32 {
			return 0, errFloatBitDepth
		}

		return types.DepthFloat32, nil
	}

	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}

// openInput returns a reader for the path, "-" meaning stdin.
func openInput(source string) (io.Reader, func(), error) {
	if source == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, func() {}, fmt.Errorf("cannot access %s: %w", source, err)
	}

	return file, func() { _ = file.Close() }, nil
}
