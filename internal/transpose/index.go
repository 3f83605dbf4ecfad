// Package transpose groups repertoire nodes that reach the same position and
// merges their continuations.
package transpose

import (
	"sort"

	"github.com/freeeve/repertoire/internal/poskey"
)

// Index maps a position key to the traversal indices of every node reaching
// it. Only keys seen at least twice are kept; missing keys never appear.
type Index map[poskey.Key][]int

// Group is one transposition group.
type Group struct {
	Key     poskey.Key
	Indices []int
}

// Build groups keys by equality. Indices within a group are ascending.
func Build(keys []poskey.Key) Index {
	all := make(map[poskey.Key][]int)
	for i, k := range keys {
		if k.IsMissing() {
			continue
		}
		all[k] = append(all[k], i)
	}
	ix := make(Index)
	for k, indices := range all {
		if len(indices) >= 2 {
			ix[k] = indices
		}
	}
	return ix
}

// Groups returns the groups ordered by their first occurrence.
func (ix Index) Groups() []Group {
	groups := make([]Group, 0, len(ix))
	for k, indices := range ix {
		groups = append(groups, Group{Key: k, Indices: indices})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Indices[0] < groups[j].Indices[0]
	})
	return groups
}

// Clone returns an independent copy of ix.
func (ix Index) Clone() Index {
	c := make(Index, len(ix))
	for k, v := range ix {
		c[k] = append([]int(nil), v...)
	}
	return c
}
