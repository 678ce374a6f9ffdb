package heap

import (
	"fmt"
	"testing"

	"coredb/storage/bufferpool"
	"coredb/storage/page"

	"github.com/stretchr/testify/require"
)

// fakeDisk is an in-memory Disk for exercising the heap table without
// a real file, mirroring storage/bufferpool's own test fake.
type fakeDisk struct{ pages map[int64][]byte }

func newFakeDisk() *fakeDisk { return &fakeDisk{pages: make(map[int64][]byte)} }

func (d *fakeDisk) ReadPage(pageID int64, dst []byte) error {
	data, ok := d.pages[pageID]
	if !ok {
		return fmt.Errorf("fakeDisk: page %d never written", pageID)
	}
	copy(dst, data)
	return nil
}

func (d *fakeDisk) WritePage(pageID int64, src []byte) error {
	buf := make([]byte, page.Size)
	copy(buf, src)
	d.pages[pageID] = buf
	return nil
}

func newTestTable(t *testing.T, capacity int) *Table {
	pool := bufferpool.New(capacity, 2, newFakeDisk())
	tbl, err := NewTable(pool)
	require.NoError(t, err)
	return tbl
}

func TestInsertAndGetTuple(t *testing.T) {
	tbl := newTestTable(t, 8)

	rid, err := tbl.InsertTuple(Meta{TS: 1}, []byte("hello"))
	require.NoError(t, err)

	meta, data, err := tbl.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, uint64(1), meta.TS)
	require.False(t, meta.IsDeleted)
	require.Equal(t, []byte("hello"), data)
}

func TestUpdateTupleInPlace(t *testing.T) {
	tbl := newTestTable(t, 8)

	rid, err := tbl.InsertTuple(Meta{TS: 1}, []byte("abcde"))
	require.NoError(t, err)

	require.NoError(t, tbl.UpdateTupleInPlace(Meta{TS: 2}, []byte("xyz"), rid))

	meta, data, err := tbl.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, uint64(2), meta.TS)
	require.Equal(t, []byte("xyz"), data)
}

func TestUpdateTupleInPlaceRejectsOversizedPayload(t *testing.T) {
	tbl := newTestTable(t, 8)

	rid, err := tbl.InsertTuple(Meta{TS: 1}, []byte("abc"))
	require.NoError(t, err)

	err = tbl.UpdateTupleInPlace(Meta{TS: 2}, []byte("way too long for the reservation"), rid)
	require.Error(t, err, "a payload larger than the slot's original reservation must be rejected")
}

func TestUpdateTupleMetaLeavesPayloadAlone(t *testing.T) {
	tbl := newTestTable(t, 8)

	rid, err := tbl.InsertTuple(Meta{TS: 1}, []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, tbl.UpdateTupleMeta(Meta{TS: 5, IsDeleted: true}, rid))

	meta, data, err := tbl.GetTuple(rid)
	require.NoError(t, err)
	require.Equal(t, uint64(5), meta.TS)
	require.True(t, meta.IsDeleted)
	require.Equal(t, []byte("payload"), data)
}

// TestMakeIteratorYieldsStableRIDOrder inserts enough tuples to force
// a second page and confirms the iterator walks every row exactly
// once, in page order then slot order.
func TestMakeIteratorYieldsStableRIDOrder(t *testing.T) {
	tbl := newTestTable(t, 8)

	payload := make([]byte, 1024) // large enough that a handful forces a new page
	var rids []RID
	for i := 0; i < 6; i++ {
		rid, err := tbl.InsertTuple(Meta{TS: uint64(i)}, payload)
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	it := tbl.MakeIterator()
	var got []RID
	for {
		rid, meta, _, ok := it.Next()
		if !ok {
			break
		}
		require.Equal(t, rids[len(got)].PageID, rid.PageID)
		require.Equal(t, rids[len(got)].Slot, rid.Slot)
		require.Equal(t, uint64(len(got)), meta.TS)
		got = append(got, rid)
	}
	require.Equal(t, rids, got)
}

func TestInsertTupleTooLargeForAnyPage(t *testing.T) {
	tbl := newTestTable(t, 8)
	_, err := tbl.InsertTuple(Meta{}, make([]byte, page.Size))
	require.Error(t, err)
}
