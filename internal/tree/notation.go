package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a side in a game, encoded as the FEN side-to-move letter.
type Color byte

const (
	NoColor Color = 0
	White   Color = 'w'
	Black   Color = 'b'
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Letter returns "w" or "b".
func (c Color) Letter() string {
	if c == NoColor {
		return ""
	}
	return string(rune(c))
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// FormatNotation renders san with its move number: white moves get "N. ",
// black moves "N... ".
func FormatNotation(ply int, san string) string {
	number := (ply + 1) / 2
	if ply%2 == 1 {
		return fmt.Sprintf("%d. %s", number, san)
	}
	return fmt.Sprintf("%d... %s", number, san)
}

// PlyOf returns the ply encoded by a move number token such as "12." or
// "12...".
func PlyOf(number int, black bool) int {
	if black {
		return number * 2
	}
	return number*2 - 1
}

// ParseNotation splits "12... Nf3" into its ply and SAN.
func ParseNotation(notation string) (ply int, san string, err error) {
	num, rest, ok := strings.Cut(notation, ".")
	if !ok {
		return 0, "", fmt.Errorf("notation %q: missing move number", notation)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0, "", fmt.Errorf("notation %q: bad move number", notation)
	}
	black := strings.HasPrefix(rest, "..")
	san = strings.TrimSpace(strings.TrimLeft(rest, "."))
	if san == "" {
		return 0, "", fmt.Errorf("notation %q: missing move", notation)
	}
	return PlyOf(n, black), san, nil
}
