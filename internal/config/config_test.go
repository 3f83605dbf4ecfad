package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/repertoire/internal/tree"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    tree.Color
		wantErr bool
	}{
		{"w", tree.White, false},
		{"White", tree.White, false},
		{"b", tree.Black, false},
		{" black ", tree.Black, false},
		{"x", tree.NoColor, true},
		{"", tree.NoColor, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUserInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Paths, cfg.Paths)
	assert.Equal(t, 4, cfg.Engine.MultiPV)
}

func TestLoadLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repertoire.yaml")
	yml := `
paths:
  pgn: /data/pgns
engine:
  depth: 20
  threads: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("STOCKFISH_PATH", "/usr/bin/stockfish")
	t.Setenv("REPERTOIRE_ENGINE_THREADS", "8")
	t.Setenv("REPERTOIRE_SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/pgns", cfg.Paths.PGN)
	assert.Equal(t, "repertoire", cfg.Paths.Repertoire)
	assert.Equal(t, 20, cfg.Engine.Depth)
	assert.Equal(t, 8, cfg.Engine.Threads)
	assert.Equal(t, "/usr/bin/stockfish", cfg.Engine.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  multipv: 0\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUserInput)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
