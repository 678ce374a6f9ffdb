package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPageIsInvalidAndZeroed(t *testing.T) {
	p := New()
	require.Equal(t, InvalidID, p.ID)
	require.Len(t, p.Data, Size)
	require.False(t, p.IsDirty)
	require.Equal(t, int32(0), p.PinCount)
}

func TestResetClearsContentAndMetadata(t *testing.T) {
	p := New()
	p.ID = 7
	p.IsDirty = true
	p.PinCount = 3
	for i := range p.Data {
		p.Data[i] = 0xFF
	}

	p.Reset()

	require.Equal(t, InvalidID, p.ID)
	require.False(t, p.IsDirty)
	require.Equal(t, int32(0), p.PinCount)
	for _, b := range p.Data {
		require.Equal(t, byte(0), b)
	}
}

func TestLatchExcludesConcurrentWriters(t *testing.T) {
	p := New()
	p.Lock()
	locked := make(chan struct{})
	go func() {
		p.Lock()
		close(locked)
		p.Unlock()
	}()

	select {
	case <-locked:
		t.Fatal("second Lock acquired the latch while the first still held it")
	default:
	}
	p.Unlock()
	<-locked
}

func TestRLockAllowsConcurrentReaders(t *testing.T) {
	p := New()
	p.RLock()
	defer p.RUnlock()

	done := make(chan struct{})
	go func() {
		p.RLock()
		p.RUnlock()
		close(done)
	}()
	<-done
}
