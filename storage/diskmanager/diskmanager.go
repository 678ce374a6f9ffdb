// Package diskmanager reads and writes a page by id against a flat
// backing file, where page N lives at byte offset N * page.Size. It
// owns the os.File handle directly; the page-id space is a single flat
// sequence, with exactly one heap/index file abstraction layered on
// top (storage/bufferpool).
package diskmanager

import (
	"fmt"
	"os"
	"sync"

	"coredb/storage/page"

	"github.com/sirupsen/logrus"
)

// Manager serializes page-sized reads and writes against a single
// backing file. It does not buffer anything and does not order
// concurrent calls relative to each other beyond what the OS
// guarantees for ReadAt/WriteAt on distinct offsets — ordering across
// concurrent callers is storage/diskscheduler's job, one layer up.
type Manager struct {
	mu   sync.Mutex
	file *os.File

	numWrites int64
	numReads  int64
}

// Open opens (creating if necessary) the flat page file at path.
func Open(path string) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diskmanager: open %s: %w", path, err)
	}
	return &Manager{file: f}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file.Close()
}

// ReadPage fills dst (len must be page.Size) with the bytes of pageID.
// Reading a page past the current end of file is not an error — it
// yields a zeroed page, matching a freshly allocated page_id that has
// never been written.
func (m *Manager) ReadPage(pageID int64, dst []byte) error {
	if len(dst) != page.Size {
		panic(fmt.Sprintf("diskmanager: ReadPage buffer has len %d, want %d", len(dst), page.Size))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	offset := pageID * page.Size
	n, err := m.file.ReadAt(dst, offset)
	m.numReads++
	if err != nil {
		if n == 0 {
			// Page never written: present as zeroed, not an error.
			for i := range dst {
				dst[i] = 0
			}
			return nil
		}
		return fmt.Errorf("diskmanager: read page %d: %w", pageID, err)
	}
	logrus.WithFields(logrus.Fields{"page_id": pageID, "bytes": n}).Trace("diskmanager: read")
	return nil
}

// WritePage writes src (len must be page.Size) to pageID's offset.
func (m *Manager) WritePage(pageID int64, src []byte) error {
	if len(src) != page.Size {
		panic(fmt.Sprintf("diskmanager: WritePage buffer has len %d, want %d", len(src), page.Size))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	offset := pageID * page.Size
	if _, err := m.file.WriteAt(src, offset); err != nil {
		return fmt.Errorf("diskmanager: write page %d: %w", pageID, err)
	}
	m.numWrites++
	logrus.WithFields(logrus.Fields{"page_id": pageID}).Trace("diskmanager: wrote")
	return syncPage(m.file)
}

func (m *Manager) Stats() (reads, writes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numReads, m.numWrites
}
