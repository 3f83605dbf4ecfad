// Command openings writes opening names from the opening book into the PGN
// corpus: the first move of each file reaching a known position gets the
// name as a comment.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/cli"
	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/rules"
)

func main() {
	flags := cli.Register()
	book := flag.String("book", "", "opening book directory (overrides paths.openings)")
	dryRun := flag.Bool("dry-run", false, "report the names without rewriting files")
	flag.Parse()

	cfg, logger := flags.Setup()
	if *book != "" {
		cfg.Paths.Openings = *book
	}

	std := rules.Standard{}
	db := eco.NewDatabase(std)
	if err := db.LoadDir(cfg.Paths.Openings); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Paths.Openings).Msg("load opening book")
	}
	logger.Info().Int("openings", db.Count()).Int("skipped", db.Skipped()).Msg("opening book loaded")

	entries, err := os.ReadDir(cfg.Paths.PGN)
	if err != nil {
		logger.Fatal().Err(err).Msg("list PGN directory")
	}
	failed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pgn") {
			continue
		}
		path := filepath.Join(cfg.Paths.PGN, e.Name())
		named, err := nameOpenings(path, db, std, *dryRun)
		if err != nil {
			logger.Error().Err(err).Str("file", e.Name()).Msg("naming failed, skipping file")
			failed++
			continue
		}
		logEvent(logger, named).Str("file", e.Name()).Int("named", named).Msg("openings named")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// nameOpenings rewrites one file with opening names added. Position
// descriptors are used for the lookup only and are not written back.
func nameOpenings(path string, db *eco.Database, p movetext.Player, dryRun bool) (int, error) {
	text, err := ingest.ReadFile(path)
	if err != nil {
		return 0, err
	}
	annotated, err := movetext.Annotate(text, p)
	if err != nil {
		return 0, err
	}
	games, err := movetext.ParseGames(annotated)
	if err != nil {
		return 0, err
	}

	named := 0
	var sb strings.Builder
	for _, g := range games {
		named += db.Enrich(g.Root)
		sb.WriteString(movetext.WriteGame(g, movetext.WriteOptions{}))
	}
	if dryRun || named == 0 {
		return named, nil
	}
	return named, os.WriteFile(path, []byte(sb.String()), 0o644)
}

func logEvent(logger zerolog.Logger, named int) *zerolog.Event {
	if named == 0 {
		return logger.Debug()
	}
	return logger.Info()
}
