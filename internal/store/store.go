// Package store persists repertoire trees, one compressed file per color.
//
// A file is a zstd-compressed JSON document holding the nodes in pre-order.
// Each record names its parent by index, so the tree is rebuilt in one pass
// without recursion.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/tree"
)

// FormatVersion is written into every file.
const FormatVersion = 1

// ErrNotFound is returned when no repertoire has been saved for a color.
var ErrNotFound = errors.New("repertoire not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config configures a Store.
type Config struct {
	Dir    string
	Logger zerolog.Logger
}

// Store reads and writes repertoire files under a directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// New returns a store rooted at cfg.Dir. The directory is created on first
// save.
func New(cfg Config) *Store {
	return &Store{
		dir: cfg.Dir,
		log: cfg.Logger.With().Str("component", "store").Logger(),
	}
}

// Path returns the file holding the repertoire of color.
func (s *Store) Path(color tree.Color) string {
	return filepath.Join(s.dir, color.Letter()+".repertoire.zst")
}

// Exists reports whether a repertoire has been saved for color.
func (s *Store) Exists(color tree.Color) bool {
	_, err := os.Stat(s.Path(color))
	return err == nil
}

// Save replaces the repertoire of color. The file is written next to its
// destination and renamed into place.
func (s *Store) Save(color tree.Color, root *tree.Node) error {
	start := time.Now()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	doc := document{
		Version: FormatVersion,
		Color:   color.Letter(),
		SavedAt: time.Now().UTC(),
		Nodes:   encode(root),
	}

	path := s.Path(color)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeDocument(tmp, doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}

	s.log.Info().
		Str("color", color.String()).
		Int("nodes", len(doc.Nodes)).
		Dur("elapsed", time.Since(start)).
		Msg("saved repertoire")
	return nil
}

// Load reads the repertoire of color.
func (s *Store) Load(color tree.Color) (*tree.Node, error) {
	path := s.Path(color)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s repertoire: %w", color, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := readDocument(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("read %s: unsupported format version %d", path, doc.Version)
	}
	root, err := decode(doc.Nodes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	s.log.Debug().Str("color", color.String()).Int("nodes", len(doc.Nodes)).Msg("loaded repertoire")
	return root, nil
}

func writeDocument(w io.Writer, doc document) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func readDocument(r io.Reader) (document, error) {
	var doc document
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return doc, err
	}
	defer zr.Close()
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return doc, err
	}
	return doc, nil
}
