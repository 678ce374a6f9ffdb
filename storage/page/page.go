// Package page defines the fixed-size in-memory page and the
// read-write latch that guards its bytes. Frames in the buffer pool
// each hold exactly one Page; page-guards (storage/pageguard) acquire
// the latch and the pin that make a Page safe to read or mutate.
package page

import "sync"

const (
	// Size is the fixed page size used by the disk manager, the
	// buffer pool, and every structured page view (header, directory,
	// bucket, table). 4 KiB.
	Size = 4096

	// InvalidID marks "no page" — an empty directory slot, an unset
	// bucket pointer, or a not-yet-allocated page.
	InvalidID int64 = -1
)

// Page is a frame's fixed-size byte buffer plus the metadata the
// buffer pool and its guards need to track it: an id, a dirty flag, a
// pin count, and a reader-writer latch over Data.
//
// Page does not know whether its bytes are a header, directory,
// bucket, or table page — that structure is imposed by typed views
// (storage/bufferpool's callers cast Data through the page type's
// accessor methods): raw memory plus a cast, not a tagged union.
type Page struct {
	ID       int64
	Data     []byte
	IsDirty  bool
	PinCount int32

	latch sync.RWMutex
}

// New allocates a page's backing storage. Pages are recycled by frame,
// never freed individually, so allocation only happens once per frame
// for the buffer pool's lifetime.
func New() *Page {
	return &Page{ID: InvalidID, Data: make([]byte, Size)}
}

// Reset zeroes a page's content and metadata for reuse in a fresh
// frame. Callers must hold the buffer pool's mutex.
func (p *Page) Reset() {
	p.ID = InvalidID
	p.IsDirty = false
	p.PinCount = 0
	for i := range p.Data {
		p.Data[i] = 0
	}
}

func (p *Page) RLock()   { p.latch.RLock() }
func (p *Page) RUnlock() { p.latch.RUnlock() }
func (p *Page) Lock()    { p.latch.Lock() }
func (p *Page) Unlock()  { p.latch.Unlock() }
