package store

import (
	"fmt"
	"time"

	"github.com/freeeve/repertoire/internal/tree"
)

type document struct {
	Version int       `json:"version"`
	Color   string    `json:"color"`
	SavedAt time.Time `json:"saved_at"`
	Nodes   []record  `json:"nodes"`
}

// record is one node. Parent is the index of the parent record, -1 for the
// root, and always precedes the record.
type record struct {
	Parent     int      `json:"p"`
	Notation   string   `json:"n,omitempty"`
	FEN        string   `json:"f,omitempty"`
	Comment    string   `json:"c,omitempty"`
	Evaluation []string `json:"e,omitempty"`
	Main       bool     `json:"m,omitempty"`
	Header     string   `json:"h,omitempty"`
	Ply        int      `json:"y,omitempty"`
}

func encode(root *tree.Node) []record {
	index := make(map[*tree.Node]int)
	var out []record
	root.Walk(func(n *tree.Node) bool {
		parent := -1
		if p := n.Parent(); p != nil && n != root {
			parent = index[p]
		}
		index[n] = len(out)
		out = append(out, record{
			Parent:     parent,
			Notation:   n.Notation,
			FEN:        n.FEN,
			Comment:    n.Comment,
			Evaluation: n.Evaluation,
			Main:       n.MainVariant,
			Header:     n.FileHeader,
			Ply:        n.Ply,
		})
		return true
	})
	return out
}

func decode(records []record) (*tree.Node, error) {
	if len(records) == 0 || records[0].Parent != -1 {
		return nil, fmt.Errorf("missing root record")
	}
	nodes := make([]*tree.Node, len(records))
	for i, r := range records {
		n := &tree.Node{
			Notation:    r.Notation,
			FEN:         r.FEN,
			Comment:     r.Comment,
			Evaluation:  r.Evaluation,
			MainVariant: r.Main,
			FileHeader:  r.Header,
			Ply:         r.Ply,
		}
		nodes[i] = n
		if i == 0 {
			continue
		}
		if r.Parent < 0 || r.Parent >= i {
			return nil, fmt.Errorf("record %d: bad parent %d", i, r.Parent)
		}
		nodes[r.Parent].AddChild(n)
	}
	return nodes[0], nil
}
