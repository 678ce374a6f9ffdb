package exec

import (
	"coredb/catalog"
	"coredb/heap"
	"coredb/types"
)

// SeqScan walks a table's heap iterator, resolving each row's visible
// version under ctx's transaction and applying an optional filter.
type SeqScan struct {
	ctx    *Context
	table  *catalog.TableInfo
	filter func(types.Tuple) bool

	it *heap.Iterator
}

func NewSeqScan(ctx *Context, table *catalog.TableInfo, filter func(types.Tuple) bool) *SeqScan {
	return &SeqScan{ctx: ctx, table: table, filter: filter}
}

func (s *SeqScan) Init() error {
	s.it = s.table.Heap.MakeIterator()
	return nil
}

func (s *SeqScan) Next() (types.Tuple, heap.RID, bool, error) {
	for {
		rid, meta, data, ok := s.it.Next()
		if !ok {
			return types.Tuple{}, heap.RID{}, false, nil
		}
		tuple, visible := resolveVisible(s.ctx, s.table, rid, meta, data)
		if !visible {
			continue
		}
		if s.filter != nil && !s.filter(tuple) {
			continue
		}
		return tuple, rid, true, nil
	}
}
