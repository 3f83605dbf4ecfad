// Command export writes a stored repertoire back to one PGN file per source
// file.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/freeeve/repertoire/internal/cli"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	flags := cli.Register()
	colorArg := flag.String("color", "", "player color: w or b (required)")
	out := flag.String("out", "", "output directory (overrides paths.export)")
	withFEN := flag.Bool("fen", false, "write position descriptors after every move")
	flag.Parse()

	color := cli.Color(*colorArg)
	cfg, logger := flags.Setup()
	if *out != "" {
		cfg.Paths.Export = *out
	}

	st := store.New(store.Config{Dir: cfg.Paths.Repertoire, Logger: logger})
	root, err := st.Load(color)
	if err != nil {
		logger.Fatal().Err(err).Msg("load repertoire")
	}

	files, err := movetext.WriteFiles(root, movetext.WriteOptions{FEN: *withFEN})
	if err != nil {
		logger.Fatal().Err(err).Msg("export repertoire")
	}
	if err := os.MkdirAll(cfg.Paths.Export, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create export dir")
	}
	for _, f := range files {
		path := filepath.Join(cfg.Paths.Export, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("write file")
		}
		logger.Info().Str("file", f.Name).Msg("exported")
	}
	logger.Info().Str("color", color.String()).Int("files", len(files)).Msg("repertoire exported")
}
