// Package cli holds the setup shared by the command-line tools.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/tree"
)

// ExitUsage is the exit code for invalid arguments.
const ExitUsage = 2

// Flags are the options every tool accepts.
type Flags struct {
	Config string
	PGN    string
	Level  string
	Quiet  bool
}

// Register adds the common flags to the default flag set.
func Register() *Flags {
	f := &Flags{}
	flag.StringVar(&f.Config, "config", os.Getenv("REPERTOIRE_CONFIG"), "YAML configuration file")
	flag.StringVar(&f.PGN, "pgn", "", "PGN directory (overrides paths.pgn)")
	flag.StringVar(&f.Level, "log-level", "", "log level (overrides log.level)")
	flag.BoolVar(&f.Quiet, "quiet", false, "only log warnings and errors")
	return f
}

// Setup loads the configuration and builds the logger. Configuration errors
// are user input errors and end the program with ExitUsage.
func (f *Flags) Setup() (config.Config, zerolog.Logger) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		Usage(err)
	}
	if f.PGN != "" {
		cfg.Paths.PGN = f.PGN
	}
	if f.Level != "" {
		cfg.Log.Level = f.Level
	}
	level := logx.ParseLevel(cfg.Log.Level)
	if f.Quiet {
		level = zerolog.WarnLevel
	}
	return cfg, logx.NewLoggerTo(os.Stderr, level)
}

// Color parses a color argument, ending the program with ExitUsage when it is
// not w or b.
func Color(s string) tree.Color {
	c, err := config.ParseColor(s)
	if err != nil {
		Usage(err)
	}
	return c
}

// Usage prints err with the flag defaults and exits with ExitUsage.
func Usage(err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
	if errors.Is(err, config.ErrUserInput) {
		flag.PrintDefaults()
	}
	os.Exit(ExitUsage)
}

// Player returns the rules engine used to annotate sources, nil when
// annotation is off.
func Player(cfg config.Config) movetext.Player {
	if !cfg.Import.Annotate {
		return nil
	}
	return rules.Standard{}
}

// Import reads the PGN corpus into one tree.
func Import(ctx context.Context, cfg config.Config, log zerolog.Logger) (*tree.Node, ingest.Report, error) {
	im := ingest.NewImporter(ingest.Config{
		Dir:     cfg.Paths.PGN,
		Workers: cfg.Import.Workers,
		Player:  Player(cfg),
		Logger:  log,
	})
	return im.Import(ctx)
}
