package txn

import (
	"sync"

	"coredb/heap"
)

// VersionMap is the per-table RID -> head UndoLink index that, together
// with each transaction's own append-only undo log array, forms the
// version chain: a single RID-keyed map with its own mutex, owned by
// the catalog's TableInfo for the table it indexes.
type VersionMap struct {
	mu    sync.RWMutex
	links map[heap.RID]UndoLink
}

func NewVersionMap() *VersionMap {
	return &VersionMap{links: make(map[heap.RID]UndoLink)}
}

// Head returns rid's current chain head, or the zero (invalid) link if
// rid has no recorded undo history yet.
func (v *VersionMap) Head(rid heap.RID) UndoLink {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.links[rid]
}

// SetHead installs link as rid's new chain head.
func (v *VersionMap) SetHead(rid heap.RID, link UndoLink) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.links[rid] = link
}

// Delete removes rid's chain head entry entirely, used once GC has
// retired every undo log a row ever accumulated.
func (v *VersionMap) Delete(rid heap.RID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.links, rid)
}
