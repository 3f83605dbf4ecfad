// Package analysis runs the batch checks over a repertoire tree: positions
// where the repertoire offers the player more than one move, and transposed
// lines that are not acknowledged as such.
package analysis

import (
	"errors"
	"fmt"

	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/transpose"
	"github.com/freeeve/repertoire/internal/tree"
)

// ErrNoColor is returned when no side is given to FindDeviations.
var ErrNoColor = errors.New("color must be white or black")

// Deviation is a position where the repertoire has several acceptable
// answers for the player.
type Deviation struct {
	Number int
	Node   *tree.Node   // first occurrence of the position
	Moves  []*tree.Node // every resolved continuation, bad ones included
}

// FindDeviations lists the positions with color to move that have more than
// one acceptable continuation once transposed lines are merged. Each position
// is reported once, at its first occurrence in pre-order; nodes without a
// position key stand for themselves.
func FindDeviations(root *tree.Node, color tree.Color) ([]Deviation, error) {
	if color != tree.White && color != tree.Black {
		return nil, fmt.Errorf("find deviations: %w", ErrNoColor)
	}

	s := transpose.NewSnapshot(root)
	seen := make(map[poskey.Key]bool)
	var out []Deviation
	for i, n := range s.Nodes {
		if n.SideToMove() != color {
			continue
		}
		if k := s.Keys[i]; !k.IsMissing() {
			if seen[k] {
				continue
			}
			seen[k] = true
		}

		moves := s.Resolve(i, false)
		if countAcceptable(moves) > 1 {
			out = append(out, Deviation{Number: len(out) + 1, Node: n, Moves: moves})
		}
	}
	return out, nil
}

func countAcceptable(nodes []*tree.Node) int {
	count := 0
	for _, n := range nodes {
		if n.IsAcceptable() {
			count++
		}
	}
	return count
}

// Lines renders each continuation as its full line followed by its comment.
func (d Deviation) Lines() []string {
	out := make([]string, len(d.Moves))
	for i, m := range d.Moves {
		out[i] = m.Path()
		if m.Comment != "" {
			out[i] += " " + m.Comment
		}
	}
	return out
}
