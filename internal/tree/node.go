// Package tree models an opening repertoire as a tree of plies.
//
// The root is a sentinel at the starting position with an empty notation.
// Every other node is one move, owns its children, and keeps a non-owning
// pointer to its parent. The first listed continuation of a node is its main
// variant; parenthesized alternatives are the other children.
//
// Two comparisons coexist and are never mixed: pointer identity is used for
// structural edits (removal, deduplication), while Key equality decides
// whether two nodes are the same board position.
package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/repertoire/internal/poskey"
)

// ErrMissingPositionKey is returned for nodes whose descriptor could not be
// interpreted as a position.
var ErrMissingPositionKey = errors.New("missing position key")

// ErrNotChild is returned when a mutator is given a node of another parent.
var ErrNotChild = errors.New("node is not a child")

// TranspositionMarker is the comment text acknowledging a transposed line.
const TranspositionMarker = "Transposition"

// Node is one ply of the repertoire.
type Node struct {
	Notation    string   // "12. Nf3" or "12... Nf3", empty for the root
	FEN         string   // position descriptor after the move
	Comment     string   // free-text annotation
	Evaluation  []string // NAG codes in source order, e.g. "$1"
	MainVariant bool
	FileHeader  string // tag-pair block of the source file, top-level nodes only
	Ply         int    // 0 for the root, 1 for white's first move

	parent   *Node
	children []*Node
}

// NewRoot returns the sentinel root at the starting position.
func NewRoot() *Node {
	return &Node{FEN: poskey.StartFEN, MainVariant: true}
}

// NewMove returns a detached node for the move san played at ply.
func NewMove(ply int, san, fen string) *Node {
	return &Node{
		Notation: FormatNotation(ply, san),
		FEN:      fen,
		Ply:      ply,
	}
}

// Key returns the canonical position key, Missing when FEN is not a
// position descriptor.
func (n *Node) Key() poskey.Key {
	return poskey.FromFEN(n.FEN)
}

// RequireKey returns the position key or ErrMissingPositionKey.
func (n *Node) RequireKey() (poskey.Key, error) {
	k := n.Key()
	if k.IsMissing() {
		return k, fmt.Errorf("%q: %w", n.Notation, ErrMissingPositionKey)
	}
	return k, nil
}

// Parent returns the preceding ply, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the continuations in priority order. The slice must not be
// modified by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// IsRoot reports whether n is a sentinel root.
func (n *Node) IsRoot() bool {
	return n.parent == nil && n.Notation == ""
}

// AddChild appends c to the children of n.
func (n *Node) AddChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveChild detaches c from n by identity. It reports whether c was found.
func (n *Node) RemoveChild(c *Node) bool {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// SetMain promotes c to main variant and demotes every sibling.
func (n *Node) SetMain(c *Node) error {
	if c.parent != n {
		return fmt.Errorf("set main %q: %w", c.Notation, ErrNotChild)
	}
	for _, child := range n.children {
		child.MainVariant = false
	}
	c.MainVariant = true
	return nil
}

// MainChild returns the child flagged as main variant, or nil.
func (n *Node) MainChild() *Node {
	for _, c := range n.children {
		if c.MainVariant {
			return c
		}
	}
	return nil
}

// HasMainChild reports whether a child already holds the main variant flag.
func (n *Node) HasMainChild() bool {
	return n.MainChild() != nil
}

// SAN returns the move without its number prefix.
func (n *Node) SAN() string {
	if i := strings.LastIndexByte(n.Notation, ' '); i >= 0 {
		return n.Notation[i+1:]
	}
	return n.Notation
}

// Mover returns the color that played n.
func (n *Node) Mover() Color {
	if n.Ply == 0 {
		return NoColor
	}
	if n.Ply%2 == 1 {
		return White
	}
	return Black
}

// SideToMove returns the color to move after n. The descriptor wins over the
// ply count when both are available.
func (n *Node) SideToMove() Color {
	switch n.Key().SideToMove() {
	case 'w':
		return White
	case 'b':
		return Black
	}
	if n.Ply%2 == 0 {
		return White
	}
	return Black
}

// Depth returns the number of plies between n and its root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the notations from the first move to n, space separated.
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.parent {
		if p.Notation != "" {
			parts = append(parts, p.Notation)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}

// Line returns the nodes from the first move to n.
func (n *Node) Line() []*Node {
	var line []*Node
	for p := n; p != nil && !p.IsRoot(); p = p.parent {
		line = append(line, p)
	}
	for i, j := 0, len(line)-1; i < j; i, j = i+1, j-1 {
		line[i], line[j] = line[j], line[i]
	}
	return line
}

// IsAcceptable reports whether no glyph marks the move as a mistake,
// blunder or dubious move.
func (n *Node) IsAcceptable() bool {
	for _, code := range n.Evaluation {
		if isBadGlyph(code) {
			return false
		}
	}
	return true
}

// HasTransposition reports whether the comment acknowledges a transposition.
func (n *Node) HasTransposition() bool {
	return strings.Contains(n.Comment, TranspositionMarker)
}

// Summary renders the move with its glyphs and comment for display.
func (n *Node) Summary() string {
	s := n.Notation
	if len(n.Evaluation) > 0 {
		s += " " + Describe(n.Evaluation)
	}
	if n.Comment != "" {
		s += " " + n.Comment
	}
	return s
}

// Clone deep-copies the subtree rooted at n. The copy has no parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Notation:    n.Notation,
		FEN:         n.FEN,
		Comment:     n.Comment,
		MainVariant: n.MainVariant,
		FileHeader:  n.FileHeader,
		Ply:         n.Ply,
	}
	if n.Evaluation != nil {
		c.Evaluation = append([]string(nil), n.Evaluation...)
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return c
}

func (n *Node) String() string {
	return n.Notation
}

// Graft moves every child of src under n and returns them. A grafted child
// keeps its main variant flag only while n has no main child yet.
func (n *Node) Graft(src *Node) []*Node {
	moved := src.children
	src.children = nil
	for _, c := range moved {
		if c.MainVariant && n.HasMainChild() {
			c.MainVariant = false
		}
		n.AddChild(c)
	}
	return moved
}
