// Package pageguard implements a small capability lattice over a
// pinned page: Basic (pin only), Read (pin + shared latch), Write
// (pin + exclusive latch). Guards are scoped, single-use owners of a
// pin and, for Read/Write, a latch; Drop releases them exactly once.
// Go has no destructors, so "released on destruction" becomes
// "released exactly once by an explicit Drop, called via defer" —
// callers are expected to `defer guard.Drop()` immediately after
// acquiring one.
//
// Drop unpins (and, for Read/Write, unlatches first); UpgradeRead/
// UpgradeWrite consume a BasicGuard and hand back the stronger guard
// latched.
package pageguard

import (
	"fmt"
	"sync/atomic"

	"coredb/storage/page"
)

// Pool is the subset of storage/bufferpool.Pool a guard needs to
// release its pin. Declaring it here (rather than importing
// bufferpool) keeps bufferpool free to import pageguard for its
// Fetch*/New*Guarded convenience constructors without a cycle.
type Pool interface {
	UnpinPage(pageID int64, isDirty bool) error
}

// Basic owns a pin on a page but no latch. Its zero value is not
// valid; obtain one from a Pool's New*/Fetch* methods.
type Basic struct {
	pool    Pool
	pg      *page.Page
	dirty   bool
	dropped int32
}

func NewBasic(pool Pool, pg *page.Page) *Basic {
	return &Basic{pool: pool, pg: pg}
}

func (g *Basic) PageID() int64   { return g.pg.ID }
func (g *Basic) Data() []byte    { return g.pg.Data }
func (g *Basic) SetDirty()       { g.dirty = true }
func (g *Basic) Page() *page.Page { return g.pg }

// Drop releases the pin exactly once. A second call is a no-op, so
// callers may safely `defer g.Drop()` even after an earlier explicit
// Drop (e.g. one taken before an UpgradeRead/UpgradeWrite call).
func (g *Basic) Drop() {
	if !atomic.CompareAndSwapInt32(&g.dropped, 0, 1) {
		return
	}
	if err := g.pool.UnpinPage(g.pg.ID, g.dirty); err != nil {
		panic(fmt.Sprintf("pageguard: unpin page %d: %v", g.pg.ID, err))
	}
}

// UpgradeRead consumes g and returns a Read guard holding the same
// pin plus a freshly acquired shared latch. g must not be used again.
func (g *Basic) UpgradeRead() *Read {
	g.pg.RLock()
	dropped := atomic.SwapInt32(&g.dropped, 1)
	if dropped != 0 {
		panic("pageguard: UpgradeRead called on an already-dropped guard")
	}
	return &Read{pool: g.pool, pg: g.pg}
}

// UpgradeWrite consumes g and returns a Write guard holding the same
// pin plus a freshly acquired exclusive latch.
func (g *Basic) UpgradeWrite() *Write {
	g.pg.Lock()
	dropped := atomic.SwapInt32(&g.dropped, 1)
	if dropped != 0 {
		panic("pageguard: UpgradeWrite called on an already-dropped guard")
	}
	return &Write{pool: g.pool, pg: g.pg}
}

// Read owns a pin and a shared latch.
type Read struct {
	pool    Pool
	pg      *page.Page
	dropped int32
}

func NewRead(pool Pool, pg *page.Page) *Read {
	pg.RLock()
	return &Read{pool: pool, pg: pg}
}

func (g *Read) PageID() int64    { return g.pg.ID }
func (g *Read) Data() []byte     { return g.pg.Data }
func (g *Read) Page() *page.Page { return g.pg }

func (g *Read) Drop() {
	if !atomic.CompareAndSwapInt32(&g.dropped, 0, 1) {
		return
	}
	g.pg.RUnlock()
	if err := g.pool.UnpinPage(g.pg.ID, false); err != nil {
		panic(fmt.Sprintf("pageguard: unpin page %d: %v", g.pg.ID, err))
	}
}

// Write owns a pin and an exclusive latch. Writes through Data() mark
// the page dirty on Drop unconditionally — a write guard exists to
// mutate the page, so treating any write-guarded access as dirtying
// is simpler than tracking whether a mutation actually happened.
type Write struct {
	pool    Pool
	pg      *page.Page
	dropped int32
}

func NewWrite(pool Pool, pg *page.Page) *Write {
	pg.Lock()
	return &Write{pool: pool, pg: pg}
}

func (g *Write) PageID() int64    { return g.pg.ID }
func (g *Write) Data() []byte     { return g.pg.Data }
func (g *Write) Page() *page.Page { return g.pg }

// Drop releases the exclusive latch, then the pin, marking the page
// dirty. If g is being moved on top of an existing Write guard (i.e.
// the caller is about to acquire a new write guard on the same page
// through the same guard variable), Drop the old one first — this
// package makes that the caller's responsibility, since Go assignment
// has no move hook to intercept.
func (g *Write) Drop() {
	if !atomic.CompareAndSwapInt32(&g.dropped, 0, 1) {
		return
	}
	g.pg.Unlock()
	if err := g.pool.UnpinPage(g.pg.ID, true); err != nil {
		panic(fmt.Sprintf("pageguard: unpin page %d: %v", g.pg.ID, err))
	}
}
