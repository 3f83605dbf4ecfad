package rules

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
)

const (
	files = "abcdefgh"
	ranks = "12345678"

	flagEnPassant = 2
	flagCastle    = 4
)

func square(sq int) string {
	return string(files[sq%8]) + string(ranks[sq/8])
}

func toUCI(mv pgn.Mv) string {
	uci := square(int(mv.From)) + square(int(mv.To))
	switch mv.Promo {
	case pgn.PromoQueen:
		uci += "q"
	case pgn.PromoRook:
		uci += "r"
	case pgn.PromoBishop:
		uci += "b"
	case pgn.PromoKnight:
		uci += "n"
	}
	return uci
}

// ParseSquare converts "e4" to a 0..63 square index, a1 = 0.
func ParseSquare(s string) (int, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	return int(s[1]-'1')*8 + int(s[0]-'a'), nil
}

// ValidUCI reports whether s is shaped like a coordinate move.
func ValidUCI(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	if _, err := ParseSquare(s[0:2]); err != nil {
		return false
	}
	if _, err := ParseSquare(s[2:4]); err != nil {
		return false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n', 'Q', 'R', 'B', 'N':
		default:
			return false
		}
	}
	return true
}

// toSAN renders a legal move of pos in SAN, with check and mate suffixes.
func toSAN(pos *pgn.GameState, mv pgn.Mv) string {
	if mv.Flags == flagCastle {
		san := "O-O-O"
		if mv.To > mv.From {
			san = "O-O"
		}
		return san + checkSuffix(pos, mv)
	}

	from, to := int(mv.From), int(mv.To)
	piece := pos.PieceAt(mv.From)
	pawn := piece == 'P' || piece == 'p'
	capture := pos.PieceAt(mv.To) != 0 || (pawn && mv.Flags == flagEnPassant)

	var san string
	if pawn {
		if capture {
			san = string(files[from%8]) + "x"
		}
		san += square(to)
		switch mv.Promo {
		case pgn.PromoQueen:
			san += "=Q"
		case pgn.PromoRook:
			san += "=R"
		case pgn.PromoBishop:
			san += "=B"
		case pgn.PromoKnight:
			san += "=N"
		}
		return san + checkSuffix(pos, mv)
	}

	upper := piece
	if piece >= 'a' && piece <= 'z' {
		upper = piece - 32
	}
	sameKind := func(other pgn.Mv) bool {
		p := pos.PieceAt(other.From)
		if p >= 'a' && p <= 'z' {
			p -= 32
		}
		return p == upper
	}
	san = string(upper) + disambiguation(pos, mv, sameKind)
	if capture {
		san += "x"
	}
	return san + square(to) + checkSuffix(pos, mv)
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same kind reaches the same square.
func disambiguation(pos *pgn.GameState, mv pgn.Mv, sameKind func(pgn.Mv) bool) string {
	from := int(mv.From)
	sameFile, sameRank, rivals := false, false, false
	for _, other := range pgn.GenerateLegalMoves(pos) {
		if other.To != mv.To || other.From == mv.From || !sameKind(other) {
			continue
		}
		rivals = true
		if int(other.From)%8 == from%8 {
			sameFile = true
		}
		if int(other.From)/8 == from/8 {
			sameRank = true
		}
	}
	switch {
	case !rivals:
		return ""
	case !sameFile:
		return string(files[from%8])
	case !sameRank:
		return string(ranks[from/8])
	default:
		return square(from)
	}
}

func checkSuffix(pos *pgn.GameState, mv pgn.Mv) string {
	next := pos.Pack().Unpack()
	if next == nil || pgn.ApplyMove(next, mv) != nil || !next.IsInCheck() {
		return ""
	}
	if len(pgn.GenerateLegalMoves(next)) == 0 {
		return "#"
	}
	return "+"
}
