// Package ingest builds a repertoire tree from a directory of PGN files.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/tree"
)

// Config configures an Importer.
type Config struct {
	Dir     string          // directory holding .pgn and .pgn.zst files
	Workers int             // files parsed concurrently (default 4)
	Player  movetext.Player // when set, moves are replayed to add position descriptors
	Logger  zerolog.Logger
}

// FileError records a source file that could not be imported.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Report summarizes an import.
type Report struct {
	Files  int // files imported
	Games  int
	Nodes  int // moves in the merged tree
	Failed []FileError
}

// Importer reads every PGN file of a directory into one tree.
type Importer struct {
	cfg Config
	log zerolog.Logger
}

// NewImporter returns an importer for cfg.
func NewImporter(cfg Config) *Importer {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Importer{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "ingest").Logger(),
	}
}

type parsed struct {
	games []movetext.Game
	err   error
}

// Import parses the files in parallel and merges them in file-name order. A
// file that fails to read or parse is logged, listed in the report and left
// out; the import goes on with the others.
func (im *Importer) Import(ctx context.Context) (*tree.Node, Report, error) {
	var report Report
	files, err := im.listFiles()
	if err != nil {
		return nil, report, err
	}
	im.log.Info().Int("files", len(files)).Int("workers", im.cfg.Workers).Str("dir", im.cfg.Dir).Msg("importing PGN files")

	start := time.Now()
	results := make([]parsed, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.cfg.Workers)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			games, err := im.parseFile(filepath.Join(im.cfg.Dir, name))
			results[i] = parsed{games: games, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	root := tree.NewRoot()
	for i, name := range files {
		res := results[i]
		if res.err != nil {
			im.log.Error().Err(res.err).Str("file", name).Msg("import failed, skipping file")
			report.Failed = append(report.Failed, FileError{Name: name, Err: res.err})
			continue
		}
		for _, game := range res.games {
			root.Graft(game.Root)
		}
		report.Files++
		report.Games += len(res.games)
	}
	report.Nodes = root.Count() - 1

	im.log.Info().
		Int("files", report.Files).
		Int("failed", len(report.Failed)).
		Int("games", report.Games).
		Int("nodes", report.Nodes).
		Dur("elapsed", time.Since(start)).
		Msg("import complete")
	return root, report, nil
}

func (im *Importer) listFiles() ([]string, error) {
	entries, err := os.ReadDir(im.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", im.cfg.Dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsPGNFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (im *Importer) parseFile(path string) ([]movetext.Game, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if im.cfg.Player != nil {
		text, err = movetext.Annotate(text, im.cfg.Player)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
	}
	games, err := movetext.ParseGames(text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	im.log.Debug().Str("file", filepath.Base(path)).Int("games", len(games)).Msg("parsed file")
	return games, nil
}

// IsPGNFile reports whether name is a plain or zstd-compressed PGN file.
func IsPGNFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".pgn") || strings.HasSuffix(lower, ".pgn.zst")
}

// ReadFile returns the text of a PGN file, decompressing .zst files.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return "", err
		}
		defer zr.Close()
		r = zr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
