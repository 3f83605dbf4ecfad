// Package poskey derives canonical position keys from position descriptors.
//
// A key is the piece placement and side to move of a FEN string. Castling
// rights, the en passant square and the move counters are dropped so that a
// position reached through different move orders compares equal.
package poskey

import "strings"

// Key identifies a board position for transposition purposes.
type Key string

// Missing is the zero key. A node with a missing key never transposes.
const Missing Key = ""

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Start is the key of the standard starting position.
const Start Key = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w"

// FromFEN returns the key of a position descriptor, or Missing when s is not
// a descriptor.
func FromFEN(s string) Key {
	fields := strings.Fields(s)
	if !validFields(fields) {
		return Missing
	}
	return Key(fields[0] + " " + fields[1])
}

// LooksLikeFEN reports whether s parses as a position descriptor: a piece
// placement of eight ranks followed by the side to move.
func LooksLikeFEN(s string) bool {
	return validFields(strings.Fields(s))
}

func validFields(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	if fields[1] != "w" && fields[1] != "b" {
		return false
	}
	return validPlacement(fields[0])
}

func validPlacement(p string) bool {
	ranks := strings.Split(p, "/")
	if len(ranks) != 8 {
		return false
	}
	for _, rank := range ranks {
		squares := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				squares += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}
	return true
}

// IsMissing reports whether k carries no position.
func (k Key) IsMissing() bool {
	return k == Missing
}

// SideToMove returns 'w' or 'b', or 0 for a missing key.
func (k Key) SideToMove() byte {
	if k.IsMissing() {
		return 0
	}
	return k[len(k)-1]
}

// Placement returns the piece placement field.
func (k Key) Placement() string {
	if i := strings.IndexByte(string(k), ' '); i >= 0 {
		return string(k[:i])
	}
	return string(k)
}

func (k Key) String() string {
	return string(k)
}
