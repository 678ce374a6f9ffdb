//go:build !unix

package diskmanager

import "os"

// syncPage falls back to file.Sync on platforms without fdatasync.
func syncPage(f *os.File) error {
	return f.Sync()
}
