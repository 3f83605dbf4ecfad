// Command save imports the PGN corpus and stores it as the repertoire of a
// color.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/repertoire/internal/cli"
	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	flags := cli.Register()
	colorArg := flag.String("color", "", "player color: w or b (required)")
	openings := flag.Bool("openings", false, "name openings from the opening book before saving")
	flag.Parse()

	color := cli.Color(*colorArg)
	cfg, logger := flags.Setup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, report, err := cli.Import(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("import corpus")
	}
	if len(report.Failed) > 0 {
		logger.Warn().Int("failed", len(report.Failed)).Msg("some files were skipped")
	}

	if *openings {
		db := eco.NewDatabase(rules.Standard{})
		if err := db.LoadDir(cfg.Paths.Openings); err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.Paths.Openings).Msg("load opening book")
		}
		logger.Info().Int("openings", db.Count()).Int("named", db.Enrich(root)).Msg("openings named")
	}

	st := store.New(store.Config{Dir: cfg.Paths.Repertoire, Logger: logger})
	if err := st.Save(color, root); err != nil {
		logger.Fatal().Err(err).Msg("save repertoire")
	}
	logger.Info().Str("path", st.Path(color)).Int("nodes", report.Nodes).Msg("repertoire saved")
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
