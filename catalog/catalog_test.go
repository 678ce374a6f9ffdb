package catalog

import (
	"fmt"
	"testing"

	"coredb/storage/bufferpool"
	"coredb/storage/page"
	"coredb/types"

	"github.com/stretchr/testify/require"
)

// fakeDisk is an in-memory Disk, mirroring the fake used by
// storage/bufferpool and index/hash's own tests.
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

func newTestCatalog() *Catalog {
	pool := bufferpool.New(64, 2, newFakeDisk())
	return New(pool)
}

func accountsSchema() *types.Schema {
	return types.NewSchema([]types.Column{
		{Name: "id", TypeID: types.TypeInteger},
		{Name: "balance", TypeID: types.TypeInteger},
	})
}

func TestCreateAndLookupTable(t *testing.T) {
	cat := newTestCatalog()

	info, err := cat.CreateTable("accounts", accountsSchema())
	require.NoError(t, err)
	require.Equal(t, "accounts", info.Name)
	require.NotNil(t, info.Heap)
	require.NotNil(t, info.Versions)

	byName, ok := cat.GetTableByName("accounts")
	require.True(t, ok)
	require.Equal(t, info.OID, byName.OID)

	byOID, ok := cat.GetTable(info.OID)
	require.True(t, ok)
	require.Equal(t, info, byOID)

	_, ok = cat.GetTableByName("missing")
	require.False(t, ok)
}

func TestCreateTableDuplicateNameRejected(t *testing.T) {
	cat := newTestCatalog()
	_, err := cat.CreateTable("accounts", accountsSchema())
	require.NoError(t, err)

	_, err = cat.CreateTable("accounts", accountsSchema())
	require.Error(t, err)
}

func TestCreateAndLookupIndex(t *testing.T) {
	cat := newTestCatalog()
	table, err := cat.CreateTable("accounts", accountsSchema())
	require.NoError(t, err)

	idx, err := cat.CreateIndex("accounts_id_idx", table.OID, []int{0}, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, table.OID, idx.TableOID)
	require.Equal(t, []int{0}, idx.KeyAttrs)
	require.NotNil(t, idx.Index)

	byName, ok := cat.GetIndexByName("accounts_id_idx")
	require.True(t, ok)
	require.Equal(t, idx.OID, byName.OID)

	forTable := cat.GetIndexesForTable(table.OID)
	require.Len(t, forTable, 1)
	require.Equal(t, idx.OID, forTable[0].OID)
}

func TestCreateIndexDuplicateNameRejected(t *testing.T) {
	cat := newTestCatalog()
	table, err := cat.CreateTable("accounts", accountsSchema())
	require.NoError(t, err)

	_, err = cat.CreateIndex("accounts_id_idx", table.OID, []int{0}, 0, 0, 0)
	require.NoError(t, err)

	_, err = cat.CreateIndex("accounts_id_idx", table.OID, []int{0}, 0, 0, 0)
	require.Error(t, err)
}

func TestCreateIndexUnknownTableRejected(t *testing.T) {
	cat := newTestCatalog()
	_, err := cat.CreateIndex("orphan_idx", 999, []int{0}, 0, 0, 0)
	require.Error(t, err)
}

func TestGetIndexesForTableEmptyWhenNone(t *testing.T) {
	cat := newTestCatalog()
	table, err := cat.CreateTable("accounts", accountsSchema())
	require.NoError(t, err)

	require.Empty(t, cat.GetIndexesForTable(table.OID))
}
