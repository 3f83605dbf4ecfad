package tree

import "strings"

// glyphs maps the numeric annotation glyphs used in repertoires to their
// display symbols.
var glyphs = map[string]string{
	"$1":   "!",
	"$2":   "?",
	"$3":   "!!",
	"$4":   "??",
	"$5":   "!?",
	"$6":   "?!",
	"$8":   "only move",
	"$11":  "=",
	"$13":  "not clear",
	"$14":  "little W advantage",
	"$15":  "little B advantage",
	"$16":  "W advantage",
	"$17":  "B advantage",
	"$18":  "+-",
	"$19":  "-+",
	"$22":  "Zugzwang",
	"$32":  "development advantage",
	"$36":  "initiative",
	"$40":  "attack",
	"$44":  "compensation",
	"$132": "counterplay",
	"$138": "zeitnot",
	"$140": "with the idea",
	"$146": "N",
}

var symbols = func() map[string]string {
	m := make(map[string]string, len(glyphs))
	for code, sym := range glyphs {
		m[sym] = code
	}
	return m
}()

// suffixes maps move suffix annotations to their glyph codes.
var suffixes = map[string]string{
	"!":  "$1",
	"?":  "$2",
	"!!": "$3",
	"??": "$4",
	"!?": "$5",
	"?!": "$6",
}

// Glyph returns the display symbol of a NAG code. Unknown codes are returned
// unchanged.
func Glyph(code string) string {
	if sym, ok := glyphs[code]; ok {
		return sym
	}
	return code
}

// GlyphCode returns the NAG code for a display symbol. Underscores are
// accepted in place of spaces ("only_move").
func GlyphCode(symbol string) (string, bool) {
	symbol = strings.ReplaceAll(strings.TrimSpace(symbol), "_", " ")
	if code, ok := symbols[symbol]; ok {
		return code, true
	}
	if _, ok := glyphs[symbol]; ok {
		return symbol, true
	}
	return "", false
}

// SuffixCode returns the NAG code of a move suffix such as "?!".
func SuffixCode(suffix string) (string, bool) {
	code, ok := suffixes[suffix]
	return code, ok
}

// Describe renders codes as space separated display symbols.
func Describe(codes []string) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = Glyph(c)
	}
	return strings.Join(parts, " ")
}

func isBadGlyph(code string) bool {
	switch code {
	case "$2", "$4", "$6":
		return true
	}
	return false
}
