//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tropism"
	"github.com/farcloser/tropism/internal/integration/ffmpeg"
	"github.com/farcloser/tropism/internal/integration/ffprobe"
	"github.com/farcloser/tropism/internal/pcm"
	"github.com/farcloser/tropism/internal/types"
)

var (
	errProcessArgs       = errors.New("expected exactly one argument: file path")
	errNoAudioStream     = errors.New("audio stream not found")
	errInvalidSampleRate = errors.New("invalid sample rate from probe")
	errInvalidChannels   = errors.New("invalid channel count from probe")
)

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Extract PCM from an audio file and generate a beatmap",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
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
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()
			streamIndex := cmd.Int("stream")

			difficulty, err := tropism.ParseDifficulty(cmd.String("difficulty"))
			if err != nil {
				return err
			}

			// Probe the file for audio properties.
			probeResult, err := ffprobe.Probe(ctx, filePath)
			if err != nil {
				return fmt.Errorf("probing file: %w", err)
			}

			stream, err := findAudioStream(probeResult, streamIndex)
			if err != nil {
				return err
			}

			format, err := buildPCMFormat(stream)
			if err != nil {
				return err
			}

			// Extract PCM (32-bit float) from the file via ffmpeg.
			file, openErr := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
			if openErr != nil {
				return fmt.Errorf("opening file: %w", openErr)
			}
			defer file.Close()

			var pcmBuf bytes.Buffer

			extractFormat := &types.PCMFormat{BitDepth: types.DepthFloat32}

			if err = ffmpeg.ExtractStream(ctx, file, &pcmBuf, streamIndex, extractFormat); err != nil {
				return fmt.Errorf("extracting PCM: %w", err)
			}

			samples, err := pcm.Decode(&pcmBuf, format)
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

			return outputBeatmap(filePath, beatmap, cmd.String("format"), cmd.String("out"))
		},
	}
}

func findAudioStream(result *ffprobe.Result, streamIndex int) (*ffprobe.Stream, error) {
	audioCount := 0

	for i := range result.Streams {
		if result.Streams[i].CodecType == "audio" {
			if audioCount == streamIndex {
				return &result.Streams[i], nil
			}

			audioCount++
		}
	}

	return nil, fmt.Errorf("%w: index %d (file has %d audio streams)", errNoAudioStream, streamIndex, audioCount)
}

func buildPCMFormat(stream *ffprobe.Stream) (types.PCMFormat, error) {
	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return types.PCMFormat{}, fmt.Errorf("%w: %q", errInvalidSampleRate, stream.SampleRate)
	}

	if stream.Channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("%w: %d", errInvalidChannels, stream.Channels)
	}

	// Extraction always converts to 32-bit float, whatever the source
	// codec carried.
	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   types.DepthFloat32,
		Channels:   uint(stream.Channels), //nolint:gosec // validated positive value
	}, nil
}
