package poskey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFEN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Key
	}{
		{"start", StartFEN, Start},
		{"after e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b"},
		{"two fields", "8/8/8/8/8/8/8/4K2k w", "8/8/8/8/8/8/8/4K2k w"},
		{"padded", "  8/8/8/8/8/8/8/4K2k   b - - 12 40 ", "8/8/8/8/8/8/8/4K2k b"},
		{"free text", "Sicilian Defence", Missing},
		{"seven ranks", "8/8/8/8/8/8/4K2k w - - 0 1", Missing},
		{"bad side", "8/8/8/8/8/8/8/4K2k x - - 0 1", Missing},
		{"rank overflow", "9/8/8/8/8/8/8/4K2k w - - 0 1", Missing},
		{"bad piece", "8/8/8/8/8/8/8/4K2x w - - 0 1", Missing},
		{"empty", "", Missing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromFEN(tt.fen))
			assert.Equal(t, tt.want != Missing, LooksLikeFEN(tt.fen))
		})
	}
}

func TestMoveCountersIgnored(t *testing.T) {
	a := FromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	b := FromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w Kq - 6 7")
	assert.Equal(t, a, b)
}

func TestKeyAccessors(t *testing.T) {
	assert.Equal(t, byte('w'), Start.SideToMove())
	assert.Equal(t, byte(0), Missing.SideToMove())
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", Start.Placement())
	assert.True(t, Missing.IsMissing())
	assert.False(t, Start.IsMissing())
}
