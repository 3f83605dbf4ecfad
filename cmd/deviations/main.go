// Command deviations lists the positions where the PGN corpus gives the
// player more than one acceptable move.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/repertoire/internal/analysis"
	"github.com/freeeve/repertoire/internal/cli"
)

func main() {
	flags := cli.Register()
	colorArg := flag.String("color", "", "player color: w or b (required)")
	flag.Parse()

	color := cli.Color(*colorArg)
	cfg, logger := flags.Setup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, report, err := cli.Import(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("import corpus")
	}

	devs, err := analysis.FindDeviations(root, color)
	if err != nil {
		logger.Fatal().Err(err).Msg("find deviations")
	}
	for _, d := range devs {
		fmt.Printf("-----deviation %d-----\n", d.Number)
		for _, line := range d.Lines() {
			fmt.Println(line)
		}
	}

	logger.Info().
		Str("color", color.String()).
		Int("files", report.Files).
		Int("failed", len(report.Failed)).
		Int("deviations", len(devs)).
		Msg("deviations checked")
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
