package pageguard

import (
	"testing"

	"coredb/storage/page"

	"github.com/stretchr/testify/require"
)

// fakePool records the pageID/isDirty of every UnpinPage call, letting
// a test assert on exactly what a guard's Drop reports to its pool.
type fakePool struct {
	calls []unpinCall
}

type unpinCall struct {
	pageID  int64
	isDirty bool
}

func (p *fakePool) UnpinPage(pageID int64, isDirty bool) error {
	p.calls = append(p.calls, unpinCall{pageID, isDirty})
	return nil
}

func newTestPage(id int64) *page.Page {
	pg := page.New()
	pg.ID = id
	return pg
}

func TestBasicDropUnpinsWithoutDirtying(t *testing.T) {
	pool := &fakePool{}
	g := NewBasic(pool, newTestPage(5))

	g.Drop()
	require.Equal(t, []unpinCall{{5, false}}, pool.calls)
}

func TestBasicSetDirtyCarriesIntoDrop(t *testing.T) {
	pool := &fakePool{}
	g := NewBasic(pool, newTestPage(5))
	g.SetDirty()

	g.Drop()
	require.Equal(t, []unpinCall{{5, true}}, pool.calls)
}

func TestBasicDropIsIdempotent(t *testing.T) {
	pool := &fakePool{}
	g := NewBasic(pool, newTestPage(5))

	g.Drop()
	g.Drop()
	require.Len(t, pool.calls, 1, "a second Drop must not unpin a second time")
}

func TestReadDropUnpinsAndReleasesLatch(t *testing.T) {
	pool := &fakePool{}
	pg := newTestPage(9)
	g := NewRead(pool, pg)

	g.Drop()
	require.Equal(t, []unpinCall{{9, false}}, pool.calls)

	// The shared latch must be released: a writer can now acquire it.
	acquired := make(chan struct{})
	go func() {
		pg.Lock()
		pg.Unlock()
		close(acquired)
	}()
	<-acquired
}

func TestWriteDropUnpinsDirtyAndReleasesLatch(t *testing.T) {
	pool := &fakePool{}
	pg := newTestPage(9)
	g := NewWrite(pool, pg)

	g.Drop()
	require.Equal(t, []unpinCall{{9, true}}, pool.calls, "a write guard always reports dirty on Drop")

	acquired := make(chan struct{})
	go func() {
		pg.Lock()
		pg.Unlock()
		close(acquired)
	}()
	<-acquired
}

func TestUpgradeReadConsumesBasicAndHoldsSameLatch(t *testing.T) {
	pool := &fakePool{}
	pg := newTestPage(1)
	basic := NewBasic(pool, pg)

	read := basic.UpgradeRead()
	require.Empty(t, pool.calls, "upgrading must not unpin the original guard")

	read.Drop()
	require.Equal(t, []unpinCall{{1, false}}, pool.calls)
}

func TestUpgradeWriteConsumesBasicAndHoldsSameLatch(t *testing.T) {
	pool := &fakePool{}
	pg := newTestPage(1)
	basic := NewBasic(pool, pg)

	write := basic.UpgradeWrite()
	require.Empty(t, pool.calls)

	write.Drop()
	require.Equal(t, []unpinCall{{1, true}}, pool.calls)
}

func TestUpgradeReadTwiceOnSameBasicPanics(t *testing.T) {
	pool := &fakePool{}
	basic := NewBasic(pool, newTestPage(1))
	basic.UpgradeRead()

	require.Panics(t, func() { basic.UpgradeRead() })
}

func TestDataReflectsUnderlyingPageBytes(t *testing.T) {
	pool := &fakePool{}
	pg := newTestPage(2)
	g := NewWrite(pool, pg)
	defer g.Drop()

	g.Data()[0] = 0x42
	require.Equal(t, byte(0x42), pg.Data[0])
}
