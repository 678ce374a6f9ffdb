package diskmanager

import (
	"path/filepath"
	"testing"

	"coredb/storage/page"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	path := filepath.Join(t.TempDir(), "coredb.dat")
	m, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestWriteThenReadPageRoundTrip(t *testing.T) {
	m := newTestManager(t)

	src := make([]byte, page.Size)
	for i := range src {
		src[i] = byte(i % 251)
	}
	require.NoError(t, m.WritePage(3, src))

	dst := make([]byte, page.Size)
	require.NoError(t, m.ReadPage(3, dst))
	require.Equal(t, src, dst)
}

func TestReadPageNeverWrittenYieldsZeroes(t *testing.T) {
	m := newTestManager(t)

	dst := make([]byte, page.Size)
	for i := range dst {
		dst[i] = 0xAA
	}
	require.NoError(t, m.ReadPage(42, dst))
	for _, b := range dst {
		require.Equal(t, byte(0), b)
	}
}

func TestReadPageWrongBufferSizePanics(t *testing.T) {
	m := newTestManager(t)
	require.Panics(t, func() { m.ReadPage(0, make([]byte, page.Size-1)) })
}

func TestWritePageWrongBufferSizePanics(t *testing.T) {
	m := newTestManager(t)
	require.Panics(t, func() { m.WritePage(0, make([]byte, page.Size+1)) })
}

func TestStatsCountsReadsAndWrites(t *testing.T) {
	m := newTestManager(t)

	buf := make([]byte, page.Size)
	require.NoError(t, m.WritePage(0, buf))
	require.NoError(t, m.WritePage(1, buf))
	require.NoError(t, m.ReadPage(0, buf))

	reads, writes := m.Stats()
	require.Equal(t, int64(1), reads)
	require.Equal(t, int64(2), writes)
}

func TestDistinctPagesLandAtDistinctOffsets(t *testing.T) {
	m := newTestManager(t)

	a := make([]byte, page.Size)
	a[0] = 1
	b := make([]byte, page.Size)
	b[0] = 2
	require.NoError(t, m.WritePage(0, a))
	require.NoError(t, m.WritePage(1, b))

	got := make([]byte, page.Size)
	require.NoError(t, m.ReadPage(0, got))
	require.Equal(t, byte(1), got[0])
	require.NoError(t, m.ReadPage(1, got))
	require.Equal(t, byte(2), got[0])
}
