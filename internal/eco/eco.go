// Package eco provides opening-name lookup from ECO (Encyclopedia of Chess
// Openings) tables.
package eco

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/tree"
)

// Opening represents an ECO opening classification.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
	PGN  string `json:"pgn"`
}

// Database holds ECO opening data indexed by position key.
type Database struct {
	byKey   map[poskey.Key]Opening
	player  movetext.Player
	count   int
	skipped int
}

// NewDatabase creates an empty ECO database. The player replays the move
// column of rows that carry no position column; it may be nil when every
// table has one.
func NewDatabase(p movetext.Player) *Database {
	return &Database{
		byKey:  make(map[poskey.Key]Opening),
		player: p,
	}
}

// LoadDir loads all .tsv files from a directory.
func (db *Database) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tsv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tsv files found in %s", dir)
	}

	for _, file := range files {
		if err := db.LoadFile(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// LoadFile loads a single TSV file with columns eco, name, pgn and optionally
// uci and epd.
func (db *Database) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return db.Load(f)
}

// Load reads TSV rows from r: eco, name, pgn and optionally uci and epd.
func (db *Database) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		// Skip header
		if lineNum == 1 && strings.HasPrefix(line, "eco\t") {
			continue
		}
		row := strings.Split(line, "\t")
		if len(row) < 3 {
			continue
		}

		key, err := db.rowKey(row)
		if err != nil {
			db.skipped++
			continue
		}
		if _, dup := db.byKey[key]; !dup {
			db.count++
		}
		db.byKey[key] = Opening{ECO: row[0], Name: row[1], PGN: row[2]}
	}
	return scanner.Err()
}

// rowKey takes the key from the epd column when present, otherwise replays
// the moves.
func (db *Database) rowKey(row []string) (poskey.Key, error) {
	if len(row) >= 5 && poskey.LooksLikeFEN(row[4]) {
		return poskey.FromFEN(row[4]), nil
	}
	if db.player == nil {
		return poskey.Missing, errors.New("no position column")
	}
	fen, err := db.applyMoves(row[2])
	if err != nil {
		return poskey.Missing, err
	}
	return poskey.FromFEN(fen), nil
}

// applyMoves replays PGN moves like "1. e4 e5 2. Nf3 Nc6".
func (db *Database) applyMoves(pgnMoves string) (string, error) {
	tokens, err := movetext.Tokenize(pgnMoves)
	if err != nil {
		return "", err
	}
	fen := poskey.StartFEN
	for _, t := range tokens {
		if t.Kind != movetext.Move {
			continue
		}
		fen, err = db.player.Play(fen, t.Text)
		if err != nil {
			return "", fmt.Errorf("apply %q: %w", t.Text, err)
		}
	}
	return fen, nil
}

// Lookup returns the opening reaching key, or nil if not found.
func (db *Database) Lookup(key poskey.Key) *Opening {
	if o, ok := db.byKey[key]; ok {
		return &o
	}
	return nil
}

// Count returns the number of openings loaded.
func (db *Database) Count() int {
	return db.count
}

// Skipped returns the number of rows that could not be placed.
func (db *Database) Skipped() int {
	return db.skipped
}

// Enrich names the openings of the subtree below root: the first node in
// pre-order reaching a known position gets the opening name as a comment,
// ahead of any comment it already has. It returns the number of nodes named.
func (db *Database) Enrich(root *tree.Node) int {
	named := make(map[poskey.Key]bool)
	count := 0
	root.Walk(func(n *tree.Node) bool {
		if n == root {
			return true
		}
		key := n.Key()
		if key.IsMissing() || named[key] {
			return true
		}
		o := db.Lookup(key)
		if o == nil {
			return true
		}
		named[key] = true
		if strings.Contains(n.Comment, o.Name) {
			return true
		}
		if n.Comment == "" {
			n.Comment = o.Name
		} else {
			n.Comment = o.Name + " " + n.Comment
		}
		count++
		return true
	})
	return count
}
