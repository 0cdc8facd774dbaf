package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tropism/version"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Beatmap generator for scrolling rhythm games",
		Version: version.Version() + " " + version.Commit(),
		Commands: []*cli.Command{
			generateCommand(),
			processCommand(),
			statsCommand(),
			previewCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
