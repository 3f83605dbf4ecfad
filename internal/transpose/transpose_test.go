package transpose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/repertoire/internal/poskey"
	"github.com/freeeve/repertoire/internal/tree"
)

const (
	fenA = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	fenB = "4k3/8/8/8/8/8/8/3K4 b - - 0 1"
	fenC = "3k4/8/8/8/8/8/8/3K4 w - - 0 1"
)

func TestBuild(t *testing.T) {
	a, b, c := poskey.FromFEN(fenA), poskey.FromFEN(fenB), poskey.FromFEN(fenC)
	keys := []poskey.Key{a, b, a, poskey.Missing, poskey.Missing, c, b, a}

	ix := Build(keys)
	assert.Equal(t, Index{a: {0, 2, 7}, b: {1, 6}}, ix)

	groups := ix.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, a, groups[0].Key)
	assert.Equal(t, b, groups[1].Key)
}

func TestBuildIsDeterministic(t *testing.T) {
	a, b := poskey.FromFEN(fenA), poskey.FromFEN(fenB)
	keys := []poskey.Key{b, a, b, a, a}
	assert.Equal(t, Build(keys), Build(keys))
}

// transposed builds
//
//	root
//	├── 1. x (A) ── 1... p, 1... q
//	└── 1. y ── 1... z (A) ── 2. r
func transposed() (root, x, z *tree.Node) {
	root = tree.NewRoot()
	x = tree.NewMove(1, "x", fenA)
	x.MainVariant = true
	y := tree.NewMove(1, "y", fenC)
	z = tree.NewMove(2, "z", fenA)
	root.AddChild(x)
	root.AddChild(y)
	y.AddChild(z)
	x.AddChild(tree.NewMove(2, "p", ""))
	x.AddChild(tree.NewMove(2, "q", ""))
	z.AddChild(tree.NewMove(3, "r", ""))
	return root, x, z
}

func notations(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Notation
	}
	return out
}

func TestResolveUnion(t *testing.T) {
	root, x, z := transposed()
	s := NewSnapshot(root)

	want := []string{"1... p", "1... q", "2. r"}
	assert.Equal(t, want, notations(s.ResolveNode(x)))
	assert.Equal(t, want, notations(s.ResolveNode(z)))
	assert.Equal(t, []*tree.Node{x, z}, s.Lookup(poskey.FromFEN(fenA)))

	i, ok := s.IndexOf(z)
	require.True(t, ok)
	assert.Equal(t, z, s.Nodes[i])
}

func TestResolveWithoutGroup(t *testing.T) {
	root, _, _ := transposed()
	s := NewSnapshot(root)
	y := root.Children()[1]
	assert.Equal(t, []string{"1... z"}, notations(s.ResolveNode(y)))
	assert.Equal(t, []*tree.Node{y}, s.Occurrences(y))
}

func TestResolveRemoveConsumes(t *testing.T) {
	root, x, z := transposed()
	s := NewSnapshot(root)
	ix, _ := s.IndexOf(x)
	iz, _ := s.IndexOf(z)

	assert.Len(t, s.Resolve(ix, true), 3)
	assert.Equal(t, []string{"2. r"}, notations(s.Resolve(iz, true)))
	assert.Empty(t, s.Index)
}

func TestResolveMissingKeyNeverGroups(t *testing.T) {
	root := tree.NewRoot()
	a := tree.NewMove(1, "a", "")
	b := tree.NewMove(1, "b", "")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(tree.NewMove(2, "c", ""))

	s := NewSnapshot(root)
	assert.Empty(t, s.Index)
	assert.Empty(t, s.ResolveNode(b))
}

func TestTrackerMutateRebuilds(t *testing.T) {
	root, _, z := transposed()
	tr := NewTracker(root)
	key := poskey.FromFEN(fenA)
	assert.Len(t, tr.Snapshot().Lookup(key), 2)

	err := tr.Mutate(func(root *tree.Node) error {
		z.AddChild(tree.NewMove(3, "w", fenA))
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, tr.Snapshot().Lookup(key), 3)

	err = tr.Mutate(func(root *tree.Node) error {
		root.RemoveChild(root.Children()[1])
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, tr.Snapshot().Lookup(key), 0)
	assert.Equal(t, 4, len(tr.Snapshot().Nodes))
}
