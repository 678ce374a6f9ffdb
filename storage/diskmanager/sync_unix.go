//go:build unix

package diskmanager

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncPage flushes a just-written page past the OS page cache using
// fdatasync, so a flush the buffer pool believes durable actually is —
// unlike file.Sync() (fsync), it skips flushing metadata the read path
// does not need.
func syncPage(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
