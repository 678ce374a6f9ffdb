package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvictInfiniteBeatsFinite(t *testing.T) {
	r := New(4, 2)

	// Frame 0: two accesses, finite K-distance.
	r.RecordAccess(0)
	r.RecordAccess(0)
	r.SetEvictable(0, true)

	// Frame 1: one access, still infinite (< k history entries).
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	frame, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, frame, "frame with infinite backward k-distance should be evicted first")
}

func TestEvictOldestAmongInfinite(t *testing.T) {
	r := New(4, 2)

	r.RecordAccess(0) // earliest
	r.RecordAccess(1)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	frame, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, frame)
}

func TestEvictLargestFiniteKDistance(t *testing.T) {
	r := New(4, 2)

	r.RecordAccess(0)
	r.RecordAccess(0) // frame 0's last access at clock=2

	r.RecordAccess(1)
	r.RecordAccess(1) // frame 1's last access at clock=4, but we interleave
	r.RecordAccess(0)
	r.RecordAccess(1)

	r.SetEvictable(0, true)
	r.SetEvictable(1, true)

	// Frame 0's 2nd-most-recent access is older than frame 1's, so it
	// has the larger backward k-distance and should be evicted.
	frame, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, frame)
}

func TestPinnedFrameNotEvictable(t *testing.T) {
	r := New(2, 2)

	r.RecordAccess(0)
	r.SetEvictable(0, false)

	_, ok := r.Evict()
	require.False(t, ok)
}

func TestSizeTracksEvictableCount(t *testing.T) {
	r := New(4, 2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	require.Equal(t, 0, r.Size())

	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())
	r.SetEvictable(1, true)
	require.Equal(t, 2, r.Size())

	r.SetEvictable(0, false)
	require.Equal(t, 1, r.Size())
}

func TestRemovePinnedFramePanics(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0)
	r.SetEvictable(0, false)

	require.Panics(t, func() { r.Remove(0) })
}
