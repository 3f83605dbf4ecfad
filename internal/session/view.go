package session

import (
	"github.com/freeeve/repertoire/internal/transpose"
	"github.com/freeeve/repertoire/internal/tree"
)

// State is what a client needs to draw the board and the repertoire
// annotations of the current position.
type State struct {
	Loaded     bool        `json:"loaded"`
	Color      string      `json:"color"`
	FEN        string      `json:"fen"`
	SideToMove string      `json:"side_to_move"`
	Line       []string    `json:"line"`
	Last       *Move       `json:"last,omitempty"`
	Candidates []Candidate `json:"candidates"`
	Random     bool        `json:"random"`
	Flipped    bool        `json:"flipped"`
}

// Move describes a repertoire node.
type Move struct {
	Notation   string   `json:"notation"`
	Evaluation []string `json:"evaluation,omitempty"`
	Glyphs     string   `json:"glyphs,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	Main       bool     `json:"main"`
}

// Candidate is a repertoire continuation of the current position.
type Candidate struct {
	Move
	UCI   string `json:"uci"`
	Index int    `json:"index"` // traversal index of the first occurrence with this notation
}

// Candidates returns the resolved continuations of the current position.
func (s *Session) Candidates() ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return nil, ErrNoRepertoire
	}
	return s.candidates(), nil
}

func (s *Session) state() State {
	st := State{
		Loaded:     s.tracker != nil,
		Color:      s.color.String(),
		FEN:        s.fen(),
		SideToMove: s.sideToMove().String(),
		Random:     s.random,
		Flipped:    s.flipped,
		Candidates: []Candidate{},
	}
	if s.tracker == nil {
		return st
	}
	s.tracker.Read(func(*tree.Node, *transpose.Snapshot) {
		for _, n := range s.moves[1:] {
			st.Line = append(st.Line, n.Notation)
		}
		if len(s.moves) > 1 {
			m := describe(s.last())
			st.Last = &m
		}
	})
	st.Candidates = s.candidates()
	return st
}

func (s *Session) candidates() []Candidate {
	fen := s.fen()
	out := []Candidate{}
	s.tracker.Read(func(_ *tree.Node, snap *transpose.Snapshot) {
		for _, c := range snap.ResolveNode(s.last()) {
			uci, err := s.cfg.Rules.UCI(fen, c.SAN())
			if err != nil {
				s.log.Warn().Err(err).Str("move", c.Path()).Msg("repertoire move not legal here")
				continue
			}
			out = append(out, Candidate{
				Move:  describe(c),
				UCI:   uci,
				Index: canonicalIndex(snap, c),
			})
		}
	})
	return out
}

// canonicalIndex returns the traversal index of the first node reaching the
// same position as c with the same notation.
func canonicalIndex(snap *transpose.Snapshot, c *tree.Node) int {
	for _, n := range snap.Lookup(c.Key()) {
		if n.Notation == c.Notation {
			i, _ := snap.IndexOf(n)
			return i
		}
	}
	i, _ := snap.IndexOf(c)
	return i
}

func describe(n *tree.Node) Move {
	return Move{
		Notation:   n.Notation,
		Evaluation: append([]string(nil), n.Evaluation...),
		Glyphs:     tree.Describe(n.Evaluation),
		Comment:    n.Comment,
		Main:       n.MainVariant,
	}
}
