package transpose

import (
	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/tree"
)

// Snapshot is a pre-order traversal of a tree together with its
// transposition index. It is rebuilt after every structural edit.
type Snapshot struct {
	Nodes []*tree.Node
	Keys  []poskey.Key
	Index Index

	pos map[*tree.Node]int
}

// NewSnapshot flattens root and indexes it.
func NewSnapshot(root *tree.Node) *Snapshot {
	nodes := tree.Flatten(root)
	s := &Snapshot{
		Nodes: nodes,
		Keys:  make([]poskey.Key, len(nodes)),
		pos:   make(map[*tree.Node]int, len(nodes)),
	}
	for i, n := range nodes {
		s.Keys[i] = n.Key()
		s.pos[n] = i
	}
	s.Index = Build(s.Keys)
	return s
}

// IndexOf returns the traversal index of n.
func (s *Snapshot) IndexOf(n *tree.Node) (int, bool) {
	i, ok := s.pos[n]
	return i, ok
}

// Lookup returns the nodes reaching key in traversal order, nil when the key
// is not transposed.
func (s *Snapshot) Lookup(key poskey.Key) []*tree.Node {
	indices := s.Index[key]
	if len(indices) == 0 {
		return nil
	}
	nodes := make([]*tree.Node, len(indices))
	for i, idx := range indices {
		nodes[i] = s.Nodes[idx]
	}
	return nodes
}

// Occurrences returns every node sharing the position of n, n included. A
// node that does not transpose is its only occurrence.
func (s *Snapshot) Occurrences(n *tree.Node) []*tree.Node {
	if nodes := s.Lookup(n.Key()); nodes != nil {
		return nodes
	}
	return []*tree.Node{n}
}

// Resolve returns the continuations of the node at index i: the union of the
// children of every node in its transposition group, deduplicated by
// identity, in group order then child order. A node outside any group yields
// its own children. With remove set the group is consumed, so later
// resolutions of the same key fall back to per-node children.
func (s *Snapshot) Resolve(i int, remove bool) []*tree.Node {
	n := s.Nodes[i]
	key := s.Keys[i]
	indices, ok := s.Index[key]
	if !ok {
		return n.Children()
	}
	if remove {
		delete(s.Index, key)
	}

	seen := make(map[*tree.Node]bool)
	var out []*tree.Node
	for _, idx := range indices {
		for _, c := range s.Nodes[idx].Children() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// ResolveNode is Resolve for a node of the snapshot. Nodes unknown to the
// snapshot yield their own children.
func (s *Snapshot) ResolveNode(n *tree.Node) []*tree.Node {
	i, ok := s.pos[n]
	if !ok {
		return n.Children()
	}
	return s.Resolve(i, false)
}
