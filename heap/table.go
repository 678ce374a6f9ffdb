package heap

import (
	"errors"
	"fmt"
	"sync"

	"coredb/storage/bufferpool"
	"coredb/storage/page"

	"github.com/sirupsen/logrus"
)

var ErrNoRoom = errors.New("heap: buffer pool has no free frame")

// Table is a heap-organized sequence of table pages linked by the
// next_page_id field in each page's header. RIDs are stable: a slot's
// (page_id, slot_index) never changes once assigned, even across
// in-place updates.
type Table struct {
	bpm *bufferpool.Pool

	mu           sync.Mutex
	firstPageID  int64
	lastPageID   int64
}

// NewTable allocates the table's first (empty) page.
func NewTable(bpm *bufferpool.Pool) (*Table, error) {
	pageID, guard := bpm.NewPage()
	if guard == nil {
		return nil, ErrNoRoom
	}
	newTablePage(guard.Data()).init()
	guard.SetDirty()
	guard.Drop()

	return &Table{bpm: bpm, firstPageID: pageID, lastPageID: pageID}, nil
}

// InsertTuple appends data to the last page with room, allocating a
// new page if none of the existing last page's free space suffices.
func (t *Table) InsertTuple(meta Meta, data []byte) (RID, error) {
	if len(data)+slotSize > page.Size-headerSize {
		return RID{}, fmt.Errorf("heap: tuple of %d bytes cannot fit on any page", len(data))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	guard := t.bpm.FetchPageWrite(t.lastPageID)
	if guard == nil {
		return RID{}, ErrNoRoom
	}
	tp := newTablePage(guard.Data())

	if !tp.canInsert(len(data)) {
		guard.Drop()

		newPageID, newGuard := t.bpm.NewPage()
		if newGuard == nil {
			return RID{}, ErrNoRoom
		}
		newTablePage(newGuard.Data()).init()

		oldGuard := t.bpm.FetchPageWrite(t.lastPageID)
		if oldGuard == nil {
			newGuard.Drop()
			return RID{}, ErrNoRoom
		}
		newTablePage(oldGuard.Data()).setNextPageID(newPageID)
		oldGuard.Drop()

		t.lastPageID = newPageID
		guard = newGuard.UpgradeWrite()
		tp = newTablePage(guard.Data())
	}

	idx := tp.insert(data, meta)
	rid := RID{PageID: guard.PageID(), Slot: uint32(idx)}
	guard.Drop()

	logrus.WithFields(logrus.Fields{"rid": rid.String()}).Trace("heap: inserted tuple")
	return rid, nil
}

// GetTuple reads rid's current metadata and payload.
func (t *Table) GetTuple(rid RID) (Meta, []byte, error) {
	guard := t.bpm.FetchPageRead(rid.PageID)
	if guard == nil {
		return Meta{}, nil, ErrNoRoom
	}
	defer guard.Drop()

	tp := newTablePage(guard.Data())
	if int(rid.Slot) >= tp.numSlots() {
		return Meta{}, nil, fmt.Errorf("heap: rid %s: slot out of range", rid)
	}
	meta, data := tp.getTuple(int(rid.Slot))
	return meta, data, nil
}

// UpdateTupleInPlace overwrites rid's payload and meta. data must not
// be larger than rid's original reserved slot capacity.
func (t *Table) UpdateTupleInPlace(meta Meta, data []byte, rid RID) error {
	guard := t.bpm.FetchPageWrite(rid.PageID)
	if guard == nil {
		return ErrNoRoom
	}
	defer guard.Drop()

	tp := newTablePage(guard.Data())
	if int(rid.Slot) >= tp.numSlots() {
		return fmt.Errorf("heap: rid %s: slot out of range", rid)
	}
	return tp.updateInPlace(int(rid.Slot), data, meta)
}

// UpdateTupleMeta rewrites rid's metadata only, leaving the payload
// untouched.
func (t *Table) UpdateTupleMeta(meta Meta, rid RID) error {
	guard := t.bpm.FetchPageWrite(rid.PageID)
	if guard == nil {
		return ErrNoRoom
	}
	defer guard.Drop()

	tp := newTablePage(guard.Data())
	if int(rid.Slot) >= tp.numSlots() {
		return fmt.Errorf("heap: rid %s: slot out of range", rid)
	}
	tp.updateMeta(int(rid.Slot), meta)
	return nil
}

// MakeIterator returns an iterator yielding (rid, meta, bytes) triples
// in stable RID order (page order, then slot order). It is
// snapshot-free: visibility filtering is the executor's job.
func (t *Table) MakeIterator() *Iterator {
	return &Iterator{table: t, pageID: t.firstPageID, slot: 0}
}

// FirstPageID exposes the head of the page chain for callers that need
// to walk it directly; most callers should prefer MakeIterator.
func (t *Table) FirstPageID() int64 { return t.firstPageID }
