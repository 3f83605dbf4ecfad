package analysis

import (
	"strings"

	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/transpose"
	"github.com/freeeve/repertoire/internal/tree"
)

// Duplicate is a position reached by several lines that are not all marked
// as transpositions.
type Duplicate struct {
	Key   poskey.Key
	Nodes []*tree.Node
	Lines []string // "Transposition " followed by each node's path
}

// FindDuplicateLines reports transposition groups with fewer markers than
// lines to acknowledge. A marker counts on a participant, its parent, or any
// of its children. Groups whose first line is a mate, or is repeated inside
// the second or third line, are left out.
func FindDuplicateLines(root *tree.Node) []Duplicate {
	s := transpose.NewSnapshot(root)
	var out []Duplicate
	for _, g := range s.Index.Groups() {
		nodes := make([]*tree.Node, len(g.Indices))
		markers := 0
		for i, idx := range g.Indices {
			n := s.Nodes[idx]
			nodes[i] = n
			markers += countMarkers(n)
		}
		if markers >= len(nodes)-1 {
			continue
		}

		lines := make([]string, len(nodes))
		for i, n := range nodes {
			lines[i] = tree.TranspositionMarker + " " + n.Path()
		}
		if repetitionOrMate(lines) {
			continue
		}
		out = append(out, Duplicate{Key: g.Key, Nodes: nodes, Lines: lines})
	}
	return out
}

func countMarkers(n *tree.Node) int {
	count := 0
	if n.HasTransposition() {
		count++
	}
	if p := n.Parent(); p != nil && p.HasTransposition() {
		count++
	}
	for _, c := range n.Children() {
		if c.HasTransposition() {
			count++
		}
	}
	return count
}

// repetitionOrMate filters groups that come from repeated positions within
// one line or from mating lines.
func repetitionOrMate(lines []string) bool {
	first := lines[0]
	if strings.HasSuffix(first, "#") || strings.Contains(lines[1], first) {
		return true
	}
	return len(lines) > 2 && strings.Contains(lines[2], first)
}
