package optimizer

import (
	"fmt"
	"testing"

	"coredb/catalog"
	"coredb/storage/bufferpool"
	"coredb/storage/page"
	"coredb/types"

	"github.com/stretchr/testify/require"
)

// fakeDisk is an in-memory Disk, mirroring the fake used by
// storage/bufferpool and catalog's own tests.
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

func TestMergeFilterScan(t *testing.T) {
	pred := &ColConstPredicate{Col: 0, Const: types.NewInteger(5)}
	plan := FilterNode(SeqScan("t", nil), pred)

	got := Optimize(plan, nil)
	require.Equal(t, KindSeqScan, got.Kind)
	require.Same(t, pred, got.Filter)
	require.Nil(t, got.Child, "the merged plan has no Filter node above it anymore")
}

func TestMergeFilterScanLeavesExistingScanFilterAlone(t *testing.T) {
	scanPred := &ColConstPredicate{Col: 0, Const: types.NewInteger(1)}
	filterPred := &ColConstPredicate{Col: 1, Const: types.NewInteger(2)}
	plan := FilterNode(SeqScan("t", scanPred), filterPred)

	got := Optimize(plan, nil)
	require.Equal(t, KindFilter, got.Kind, "a SeqScan that already carries a predicate must not be merged into")
}

func TestSeqScanToIndexScanRewrite(t *testing.T) {
	pool := bufferpool.New(16, 2, newFakeDisk())
	cat := catalog.New(pool)
	table, err := cat.CreateTable("accounts", types.NewSchema([]types.Column{
		{Name: "id", TypeID: types.TypeInteger},
		{Name: "balance", TypeID: types.TypeInteger},
	}))
	require.NoError(t, err)
	_, err = cat.CreateIndex("accounts_id_idx", table.OID, []int{0}, 2, 4, 2)
	require.NoError(t, err)

	pred := &ColConstPredicate{Col: 0, Const: types.NewInteger(42)}
	plan := SeqScan("accounts", pred)

	got := Optimize(plan, cat)
	require.Equal(t, KindIndexScan, got.Kind)
	require.Equal(t, "accounts_id_idx", got.IndexName)
	require.Same(t, pred, got.Filter)
}

func TestSeqScanToIndexScanSkipsNonIndexedColumn(t *testing.T) {
	pool := bufferpool.New(16, 2, newFakeDisk())
	cat := catalog.New(pool)
	table, err := cat.CreateTable("accounts", types.NewSchema([]types.Column{
		{Name: "id", TypeID: types.TypeInteger},
		{Name: "balance", TypeID: types.TypeInteger},
	}))
	require.NoError(t, err)
	_, err = cat.CreateIndex("accounts_id_idx", table.OID, []int{0}, 2, 4, 2)
	require.NoError(t, err)

	pred := &ColConstPredicate{Col: 1, Const: types.NewInteger(42)} // balance, not indexed
	plan := SeqScan("accounts", pred)

	got := Optimize(plan, cat)
	require.Equal(t, KindSeqScan, got.Kind, "no index covers column 1, so the scan stays a SeqScan")
}

func TestSortLimitToTopN(t *testing.T) {
	orderBy := []OrderByTerm{{Col: 0, Order: 1}}
	plan := LimitNode(SortNode(SeqScan("t", nil), orderBy), 10)

	got := Optimize(plan, nil)
	require.Equal(t, KindTopN, got.Kind)
	require.Equal(t, 10, got.Limit)
	require.Equal(t, orderBy, got.OrderBy)
	require.Equal(t, KindSeqScan, got.Child.Kind, "TopN must sit directly over the original Sort's child")
}

func TestOptimizeNilPlan(t *testing.T) {
	require.Nil(t, Optimize(nil, nil))
}
