// Command split cuts a multi-game PGN export into one file per game.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/freeeve/repertoire/internal/cli"
	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/movetext"
)

func main() {
	flags := cli.Register()
	file := flag.String("file", "", "export to split, relative to the PGN directory (required)")
	flag.Parse()

	if *file == "" {
		cli.Usage(&config.InputError{Field: "file", Hint: "name the export to split"})
	}
	cfg, logger := flags.Setup()

	path := *file
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Paths.PGN, path)
	}
	text, err := ingest.ReadFile(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("read export")
	}

	files, err := movetext.Split(text)
	if err != nil {
		logger.Fatal().Err(err).Str("file", path).Msg("split export")
	}
	dir := filepath.Dir(path)
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0o644); err != nil {
			logger.Fatal().Err(err).Str("file", f.Name).Msg("write game")
		}
		logger.Info().Str("file", f.Name).Msg("written")
	}
	logger.Info().Int("games", len(files)).Msg("export split")
}
