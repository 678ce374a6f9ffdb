package exec

import (
	"coredb/catalog"
	"coredb/heap"
	"coredb/index/hash"
	"coredb/types"
)

// IndexScan probes index for probeKey (already projected to the
// index's key schema) and resolves the resulting RID's visible
// version. The index is allowed to return a RID for a row that is no
// longer visible (or no longer exists) to the scanning transaction;
// resolveVisible is what filters that out.
type IndexScan struct {
	ctx      *Context
	table    *catalog.TableInfo
	index    *catalog.IndexInfo
	probeKey types.Tuple

	done bool
}

func NewIndexScan(ctx *Context, table *catalog.TableInfo, index *catalog.IndexInfo, probeKey types.Tuple) *IndexScan {
	return &IndexScan{ctx: ctx, table: table, index: index, probeKey: probeKey}
}

func (s *IndexScan) Init() error {
	s.done = false
	return nil
}

func (s *IndexScan) Next() (types.Tuple, heap.RID, bool, error) {
	if s.done {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	s.done = true

	rid, found := s.index.Index.GetValue(hash.BuildKey(s.probeKey))
	if !found {
		return types.Tuple{}, heap.RID{}, false, nil
	}

	meta, data, err := s.table.Heap.GetTuple(rid)
	if err != nil {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	tuple, visible := resolveVisible(s.ctx, s.table, rid, meta, data)
	if !visible {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	return tuple, rid, true, nil
}
