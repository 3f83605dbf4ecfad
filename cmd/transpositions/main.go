// Command transpositions lists the lines of the PGN corpus that reach the
// same position without a "Transposition" note.
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
	flag.Parse()
	cfg, logger := flags.Setup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, report, err := cli.Import(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("import corpus")
	}

	dups := analysis.FindDuplicateLines(root)
	for i, d := range dups {
		fmt.Printf("duplication %d:\n\n", i+1)
		for _, line := range d.Lines {
			fmt.Println(line)
		}
		fmt.Print("\n\n")
	}

	logger.Info().
		Int("files", report.Files).
		Int("failed", len(report.Failed)).
		Int("duplicates", len(dups)).
		Msg("transpositions checked")
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
