package heap

import "coredb/storage/page"

// Iterator walks a Table's pages in link order and, within each page,
// slots in ascending index order. It holds no page pinned between
// calls to Next — each call fetches, reads, and drops its own guard —
// so a long-lived iterator does not starve the buffer pool.
type Iterator struct {
	table  *Table
	pageID int64
	slot   int
}

// IsEnd reports whether the iterator has exhausted every page in the
// chain.
func (it *Iterator) IsEnd() bool {
	return it.pageID == page.InvalidID
}

// Next returns the next (rid, meta, bytes) triple, advancing past it.
// ok is false once the chain is exhausted.
func (it *Iterator) Next() (rid RID, meta Meta, data []byte, ok bool) {
	for !it.IsEnd() {
		guard := it.table.bpm.FetchPageRead(it.pageID)
		if guard == nil {
			return RID{}, Meta{}, nil, false
		}
		tp := newTablePage(guard.Data())

		if it.slot < tp.numSlots() {
			m, d := tp.getTuple(it.slot)
			r := RID{PageID: it.pageID, Slot: uint32(it.slot)}
			it.slot++
			guard.Drop()
			return r, m, d, true
		}

		next := tp.nextPageID()
		guard.Drop()
		it.pageID = next
		it.slot = 0
	}
	return RID{}, Meta{}, nil, false
}
