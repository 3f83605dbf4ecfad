package eco_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/rules"
)

const table = `eco	name	pgn	uci	epd
B00	King's Pawn Game	1. e4	e2e4	rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -
C50	Italian Game	1. e4 e5 2. Nf3 Nc6 3. Bc4
D02	Queen's Pawn Game: Zukertort Variation	1. d4 d5 2. Nf3
A00	Broken	1. e4 Ke7
`

func loadTable(t *testing.T) *eco.Database {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.tsv"), []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}
	db := eco.NewDatabase(rules.Standard{})
	if err := db.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	return db
}

func TestLoadAndLookup(t *testing.T) {
	db := loadTable(t)

	if db.Count() != 3 {
		t.Errorf("Count() = %d, want 3", db.Count())
	}
	if db.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", db.Skipped())
	}

	fen, err := rules.Replay(rules.Standard{}, poskey.StartFEN, "e4")
	if err != nil {
		t.Fatal(err)
	}
	if o := db.Lookup(poskey.FromFEN(fen)); o == nil || o.ECO != "B00" {
		t.Errorf("Lookup(1. e4) = %v, want B00", o)
	}

	fen, err = rules.Replay(rules.Standard{}, poskey.StartFEN, "e4", "e5", "Nf3", "Nc6", "Bc4")
	if err != nil {
		t.Fatal(err)
	}
	if o := db.Lookup(poskey.FromFEN(fen)); o == nil || o.ECO != "C50" {
		t.Errorf("Lookup(Italian) = %v, want C50", o)
	}

	if o := db.Lookup(poskey.Start); o != nil {
		t.Errorf("Lookup(start) = %v, want nil", o)
	}
}

func TestLoadDirEmpty(t *testing.T) {
	if err := eco.NewDatabase(nil).LoadDir(t.TempDir()); err == nil {
		t.Error("expected error for directory without .tsv files")
	}
}

func TestEnrich(t *testing.T) {
	db := loadTable(t)

	text, err := movetext.Annotate("1. Nf3 {Reti} (1. d4 d5 2. Nf3) 1... d5 2. d4 (2. e4) 2... Nf6 *", rules.Standard{})
	if err != nil {
		t.Fatal(err)
	}
	root, err := movetext.Parse(text)
	if err != nil {
		t.Fatal(err)
	}

	if n := db.Enrich(root); n != 1 {
		t.Errorf("Enrich() = %d, want 1", n)
	}
	d4 := root.FindLine("1. Nf3", "1... d5", "2. d4")
	if d4 == nil || d4.Comment != "Queen's Pawn Game: Zukertort Variation" {
		t.Errorf("first occurrence not named: %+v", d4)
	}
	nf3 := root.FindLine("1. d4", "1... d5", "2. Nf3")
	if nf3 == nil || nf3.Comment != "" {
		t.Errorf("later occurrence named: %+v", nf3)
	}

	// Enriching twice does not repeat the name
	db.Enrich(root)
	if strings.Count(d4.Comment, "Zukertort") != 1 {
		t.Errorf("comment = %q", d4.Comment)
	}
}

func TestLoadCRLFAndQuotedNames(t *testing.T) {
	db := eco.NewDatabase(rules.Standard{})
	text := "eco\tname\tpgn\r\nC20\tKing's Pawn Game: \"Wayward Queen\" Attack\t1. e4 e5 2. Qh5\r\n"
	if err := db.Load(strings.NewReader(text)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", db.Count())
	}

	fen, err := rules.Replay(rules.Standard{}, poskey.StartFEN, "e4", "e5", "Qh5")
	if err != nil {
		t.Fatal(err)
	}
	o := db.Lookup(poskey.FromFEN(fen))
	if o == nil || o.Name != `King's Pawn Game: "Wayward Queen" Attack` {
		t.Errorf("Lookup(Qh5) = %v", o)
	}
}
