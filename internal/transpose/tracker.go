package transpose

import (
	"sync"

	"github.com/freeeve/repertoire/internal/tree"
)

// Tracker owns a tree and keeps its snapshot consistent with it. Structural
// edits go through Mutate, which rebuilds the snapshot before readers can
// observe the tree again.
type Tracker struct {
	mu   sync.RWMutex
	root *tree.Node
	snap *Snapshot
}

// NewTracker indexes root.
func NewTracker(root *tree.Node) *Tracker {
	return &Tracker{root: root, snap: NewSnapshot(root)}
}

// Root returns the tracked tree.
func (t *Tracker) Root() *tree.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Snapshot returns the current snapshot. Callers must not resolve with
// remove set on a shared snapshot.
func (t *Tracker) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Read runs fn under the read lock.
func (t *Tracker) Read(fn func(root *tree.Node, s *Snapshot)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn(t.root, t.snap)
}

// Mutate applies a structural edit and rebuilds the snapshot, also when fn
// fails.
func (t *Tracker) Mutate(fn func(root *tree.Node) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := fn(t.root)
	t.snap = NewSnapshot(t.root)
	return err
}

// Replace swaps in a new tree.
func (t *Tracker) Replace(root *tree.Node) {
	snap := NewSnapshot(root)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = root
	t.snap = snap
}
