package httpapi

import (
	"github.com/freeeve/repertoire/internal/analysis"
	"github.com/freeeve/repertoire/internal/tree"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeviationsResponse lists the positions where the repertoire offers the
// player several acceptable moves.
type DeviationsResponse struct {
	Color      string              `json:"color"`
	Count      int                 `json:"count"`
	Deviations []DeviationResponse `json:"deviations"`
}

type DeviationResponse struct {
	Number int            `json:"number"`
	Line   string         `json:"line"` // moves leading to the position
	FEN    string         `json:"fen,omitempty"`
	Moves  []MoveResponse `json:"moves"`
}

type MoveResponse struct {
	Notation string `json:"notation"`
	Line     string `json:"line"`             // full line with comment
	Glyphs   string `json:"glyphs,omitempty"` // e.g. "?!"
	Main     bool   `json:"main"`
	Good     bool   `json:"good"` // not marked as a mistake
}

// TranspositionsResponse lists the duplicate lines missing a transposition
// note.
type TranspositionsResponse struct {
	Count  int                 `json:"count"`
	Groups []DuplicateResponse `json:"groups"`
}

type DuplicateResponse struct {
	Position string   `json:"position"` // piece placement and side to move
	Lines    []string `json:"lines"`
}

// ToDeviationsResponse converts analysis results to a JSON-friendly response.
func ToDeviationsResponse(color tree.Color, devs []analysis.Deviation) *DeviationsResponse {
	resp := &DeviationsResponse{
		Color:      color.String(),
		Count:      len(devs),
		Deviations: make([]DeviationResponse, 0, len(devs)),
	}
	for _, d := range devs {
		lines := d.Lines()
		dr := DeviationResponse{
			Number: d.Number,
			Line:   d.Node.Path(),
			FEN:    d.Node.FEN,
			Moves:  make([]MoveResponse, 0, len(d.Moves)),
		}
		for i, m := range d.Moves {
			dr.Moves = append(dr.Moves, MoveResponse{
				Notation: m.Notation,
				Line:     lines[i],
				Glyphs:   tree.Describe(m.Evaluation),
				Main:     m.MainVariant,
				Good:     m.IsAcceptable(),
			})
		}
		resp.Deviations = append(resp.Deviations, dr)
	}
	return resp
}

// ToTranspositionsResponse converts duplicate groups to a JSON-friendly
// response.
func ToTranspositionsResponse(dups []analysis.Duplicate) *TranspositionsResponse {
	resp := &TranspositionsResponse{
		Count:  len(dups),
		Groups: make([]DuplicateResponse, 0, len(dups)),
	}
	for _, d := range dups {
		resp.Groups = append(resp.Groups, DuplicateResponse{
			Position: string(d.Key),
			Lines:    d.Lines,
		})
	}
	return resp
}
