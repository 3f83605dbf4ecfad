package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/tree"
)

// SetLastMoveMain makes the last move the main variant of its position. Every
// resolved continuation of the parent position is demoted first, so the flag
// is unique across transposed occurrences.
func (s *Session) SetLastMoveMain() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lastMove()
	if err != nil {
		return State{}, err
	}

	snap := s.tracker.Snapshot()
	s.tracker.Mutate(func(*tree.Node) error {
		for _, c := range snap.ResolveNode(n.Parent()) {
			c.MainVariant = false
		}
		n.MainVariant = true
		return nil
	})
	return s.state(), nil
}

// SetEvaluation adds the glyphs named by symbols ("!", "?!", "only move",
// "$14") to the last move. An empty list, or a first symbol that is empty,
// clears the evaluation.
func (s *Session) SetEvaluation(symbols []string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lastMove()
	if err != nil {
		return State{}, err
	}

	if len(symbols) == 0 || strings.TrimSpace(symbols[0]) == "" {
		s.edit(func() { n.Evaluation = nil })
		return s.state(), nil
	}

	codes := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		code, ok := tree.GlyphCode(sym)
		if !ok {
			return State{}, fmt.Errorf("%q: %w", sym, ErrUnknownGlyph)
		}
		codes = append(codes, code)
	}
	s.edit(func() {
		for _, code := range codes {
			if !slices.Contains(n.Evaluation, code) {
				n.Evaluation = append(n.Evaluation, code)
			}
		}
	})
	return s.state(), nil
}

// SetComment replaces the comment of the last move.
func (s *Session) SetComment(text string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lastMove()
	if err != nil {
		return State{}, err
	}
	s.edit(func() { n.Comment = strings.TrimSpace(text) })
	return s.state(), nil
}

// NewFileForLastMove moves the last move into a file of its own: the line
// leading to it is copied as a new top-level line with a generated header,
// and the move is re-attached, with its continuations, at the end of the
// copy.
func (s *Session) NewFileForLastMove() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lastMove()
	if err != nil {
		return State{}, err
	}

	line := n.Line()
	moved := make([]*tree.Node, 0, len(line)+1)
	moved = append(moved, s.moves[0])

	s.tracker.Mutate(func(root *tree.Node) error {
		if p := n.Parent(); p != nil {
			p.RemoveChild(n)
		}
		parent := root
		for i, src := range line[:len(line)-1] {
			c := &tree.Node{
				Notation:    src.Notation,
				FEN:         src.FEN,
				Comment:     src.Comment,
				MainVariant: true,
				Ply:         src.Ply,
			}
			if src.Evaluation != nil {
				c.Evaluation = append([]string(nil), src.Evaluation...)
			}
			if i == 0 {
				c.MainVariant = !root.HasMainChild()
				c.FileHeader = fileHeader(n)
			}
			parent.AddChild(c)
			moved = append(moved, c)
			parent = c
		}
		if parent == root {
			n.MainVariant = !root.HasMainChild()
			n.FileHeader = fileHeader(n)
		} else {
			n.MainVariant = true
		}
		parent.AddChild(n)
		moved = append(moved, n)
		return nil
	})

	// The board line is the copied line, which reaches the same positions.
	if len(moved) == len(s.moves) {
		s.moves = moved
	}
	s.log.Info().Str("move", n.Path()).Msg("moved to a new file")
	return s.state(), nil
}

func fileHeader(n *tree.Node) string {
	tags := []struct{ name, value string }{
		{"Event", "?"},
		{"Site", "?"},
		{"Date", "?"},
		{"Round", "?"},
		{"White", "?"},
		{"Black", n.Notation},
		{"Result", "*"},
	}
	lines := make([]string, len(tags))
	for i, t := range tags {
		lines[i] = movetext.FormatTag(t.name, t.value)
	}
	return strings.Join(lines, "\n")
}

// edit runs a non-structural change to a node under the tracker's write
// lock, so analyses reading the tree never see it half applied.
func (s *Session) edit(fn func()) {
	s.tracker.Mutate(func(*tree.Node) error {
		fn()
		return nil
	})
}

func (s *Session) lastMove() (*tree.Node, error) {
	if s.tracker == nil {
		return nil, ErrNoRepertoire
	}
	if len(s.moves) < 2 {
		return nil, ErrAtStart
	}
	return s.last(), nil
}

