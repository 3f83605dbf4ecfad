package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/rules"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeZst(t *testing.T, dir, name, content string) {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	writeFile(t, dir, name, string(enc.EncodeAll([]byte(content), nil)))
}

func TestImportMergesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pgn", "[White \"French\"]\n\n1. e4 e6 *\n")
	writeZst(t, dir, "a.pgn.zst", "[White \"Sicilian\"]\n\n1. e4 c5 2. Nf3 *\n")
	writeFile(t, dir, "notes.txt", "1. d4")

	root, report, err := NewImporter(Config{Dir: dir, Workers: 2, Logger: zerolog.Nop()}).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 2, report.Games)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 5, report.Nodes)

	top := root.Children()
	require.Len(t, top, 2)
	assert.Equal(t, "Sicilian", movetext.TagValue(top[0].FileHeader, "White"))
	assert.True(t, top[0].MainVariant)
	assert.False(t, top[1].MainVariant)
}

func TestImportSkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.pgn", "1. e4 e5 *\n")
	writeFile(t, dir, "broken.pgn", "1. e4 (1... c5 *\n")

	root, report, err := NewImporter(Config{Dir: dir, Logger: zerolog.Nop()}).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken.pgn", report.Failed[0].Name)
	assert.ErrorIs(t, report.Failed[0].Err, movetext.ErrStructural)
	assert.Equal(t, 3, root.Count())
}

func TestImportAnnotates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pgn", "1. d4 d5 2. Nf3 *\n")
	writeFile(t, dir, "b.pgn", "1. Nf3 d5 2. d4 *\n")
	writeFile(t, dir, "c.pgn", "1. e4 Ke7 Kf1 *\n")

	root, report, err := NewImporter(Config{Dir: dir, Player: rules.Standard{}, Logger: zerolog.Nop()}).Import(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0].Err, rules.ErrInvalidMove)

	a := root.FindLine("1. d4", "1... d5", "2. Nf3")
	b := root.FindLine("1. Nf3", "1... d5", "2. d4")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.False(t, a.Key().IsMissing())
	assert.Equal(t, a.Key(), b.Key())
}

func TestImportCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pgn", "1. e4 *\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewImporter(Config{Dir: dir, Logger: zerolog.Nop()}).Import(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsPGNFile(t *testing.T) {
	assert.True(t, IsPGNFile("a.pgn"))
	assert.True(t, IsPGNFile("A.PGN"))
	assert.True(t, IsPGNFile("a.pgn.zst"))
	assert.False(t, IsPGNFile("a.zst"))
	assert.False(t, IsPGNFile("a.tsv"))
}
