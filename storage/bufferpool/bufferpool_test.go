package bufferpool

import (
	"fmt"

	"testing"

	"coredb/storage/page"

	"github.com/stretchr/testify/require"
)

// fakeDisk is an in-memory stand-in for storage/diskscheduler.Scheduler,
// letting these tests drive eviction/fetch without touching the
// filesystem.
type fakeDisk struct {
	pages map[int64][]byte
	reads int
}

func newFakeDisk() *fakeDisk { return &fakeDisk{pages: make(map[int64][]byte)} }

func (d *fakeDisk) ReadPage(pageID int64, dst []byte) error {
	d.reads++
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

func TestNewPageAndFetch(t *testing.T) {
	disk := newFakeDisk()
	pool := New(4, 2, disk)

	pageID, guard := pool.NewPage()
	require.NotNil(t, guard)
	guard.Data()[0] = 42
	guard.SetDirty()
	guard.Drop()

	fetched := pool.FetchPage(pageID)
	require.NotNil(t, fetched)
	require.Equal(t, byte(42), fetched.Data()[0])
	fetched.Drop()
}

// TestEvictionUnderPressure fills a capacity-2 pool, unpins both frames
// so they're evictable, then allocates a third page and expects one of
// the first two to be evicted to make room.
func TestEvictionUnderPressure(t *testing.T) {
	disk := newFakeDisk()
	pool := New(2, 2, disk)

	id1, g1 := pool.NewPage()
	require.NotNil(t, g1)
	g1.Data()[0] = 1
	g1.SetDirty()
	g1.Drop()

	id2, g2 := pool.NewPage()
	require.NotNil(t, g2)
	g2.Data()[0] = 2
	g2.SetDirty()
	g2.Drop()

	// Pool is full but both frames are unpinned/evictable; a third
	// NewPage must succeed by evicting one of them.
	id3, g3 := pool.NewPage()
	require.NotNil(t, g3, "expected eviction to free a frame")
	g3.Drop()

	require.NotEqual(t, id1, id3)
	require.NotEqual(t, id2, id3)

	// Whichever of id1/id2 was evicted must still be reloadable from disk.
	g := pool.FetchPage(id1)
	require.NotNil(t, g)
	require.Equal(t, byte(1), g.Data()[0])
	g.Drop()
}

func TestUnpinAlreadyUnpinnedFails(t *testing.T) {
	disk := newFakeDisk()
	pool := New(4, 2, disk)

	pageID, guard := pool.NewPage()
	guard.Drop()

	err := pool.UnpinPage(pageID, false)
	require.ErrorIs(t, err, ErrAlreadyUnpinned)
}

func TestPinnedFrameSurvivesEviction(t *testing.T) {
	disk := newFakeDisk()
	pool := New(2, 2, disk)

	_, pinned := pool.NewPage()
	require.NotNil(t, pinned) // never dropped: stays pinned

	_, g2 := pool.NewPage()
	g2.Drop()

	// Pool at capacity with one pinned, one evictable frame. A third
	// NewPage must evict the unpinned one, not the pinned one.
	id3, g3 := pool.NewPage()
	require.NotNil(t, g3)
	g3.Drop()
	_ = id3

	pinned.Drop()
}
