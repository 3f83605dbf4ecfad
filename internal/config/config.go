// Package config loads tool configuration from defaults, an optional YAML
// file and the environment. Command-line flags are applied last by each
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/freeeve/repertoire/internal/tree"
)

// EnvPrefix prefixes every environment variable, e.g. REPERTOIRE_SERVER_ADDR.
const EnvPrefix = "REPERTOIRE"

// Config is the full tool configuration.
type Config struct {
	Paths  Paths  `yaml:"paths"`
	Engine Engine `yaml:"engine"`
	Server Server `yaml:"server"`
	Import Import `yaml:"import"`
	Log    Log    `yaml:"log"`
}

// Paths locates the files the tools read and write.
type Paths struct {
	PGN        string `yaml:"pgn" envconfig:"PGN"`               // source .pgn files
	Repertoire string `yaml:"repertoire" envconfig:"REPERTOIRE"` // persisted w/b repertoires
	Openings   string `yaml:"openings" envconfig:"OPENINGS"`     // opening book .tsv files
	Export     string `yaml:"export" envconfig:"EXPORT"`         // exported .pgn files
	Status     string `yaml:"status" envconfig:"STATUS"`         // engine status file
}

// Engine configures UCI analysis.
type Engine struct {
	Path    string   `yaml:"path" envconfig:"PATH"`
	Args    []string `yaml:"args" envconfig:"ARGS"`
	Depth   int      `yaml:"depth" envconfig:"DEPTH"`
	MultiPV int      `yaml:"multipv" envconfig:"MULTIPV"`
	Hash    int      `yaml:"hash" envconfig:"HASH"` // MB
	Threads int      `yaml:"threads" envconfig:"THREADS"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// Import configures corpus import.
type Import struct {
	Workers  int  `yaml:"workers" envconfig:"WORKERS"`
	Annotate bool `yaml:"annotate" envconfig:"ANNOTATE"` // replay moves to add position descriptors
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
}

// legacyEnv holds variables read without the prefix.
type legacyEnv struct {
	StockfishPath string `envconfig:"STOCKFISH_PATH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			PGN:        "pgns",
			Repertoire: "repertoire",
			Openings:   "openings",
			Export:     "pgns",
			Status:     "stockfish.txt",
		},
		Engine: Engine{
			Depth:   30,
			MultiPV: 4,
			Hash:    512,
			Threads: 4,
		},
		Server: Server{Addr: ":8080"},
		Import: Import{Workers: 4, Annotate: true},
		Log:    Log{Level: "info"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is not empty, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var legacy legacyEnv
	if err := envconfig.Process("", &legacy); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if legacy.StockfishPath != "" {
		cfg.Engine.Path = legacy.StockfishPath
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.Depth < 1 {
		errs = append(errs, &InputError{Field: "engine.depth", Value: fmt.Sprint(c.Engine.Depth)})
	}
	if c.Engine.MultiPV < 1 {
		errs = append(errs, &InputError{Field: "engine.multipv", Value: fmt.Sprint(c.Engine.MultiPV)})
	}
	if c.Import.Workers < 1 {
		errs = append(errs, &InputError{Field: "import.workers", Value: fmt.Sprint(c.Import.Workers)})
	}
	return errors.Join(errs...)
}

// ErrUserInput is matched by every InputError.
var ErrUserInput = errors.New("invalid input")

// InputError reports an invalid user-supplied value.
type InputError struct {
	Field string
	Value string
	Hint  string
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrUserInput
}

// ParseColor reads a player color: "w", "white", "b" or "black".
func ParseColor(s string) (tree.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return tree.White, nil
	case "b", "black":
		return tree.Black, nil
	}
	return tree.NoColor, &InputError{Field: "color", Value: s, Hint: "expected w or b"}
}
