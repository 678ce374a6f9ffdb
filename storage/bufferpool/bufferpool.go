// Package bufferpool implements a fixed-capacity, in-memory cache of
// disk pages with pin-count discipline, delegating eviction ranking to
// storage/replacer and I/O to storage/diskscheduler. It is a single
// mutex guarding a map-based page table, with structured logging
// rather than ad hoc prints.
package bufferpool

import (
	"errors"
	"fmt"
	"sync"

	"coredb/storage/page"
	"coredb/storage/pageguard"
	"coredb/storage/replacer"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Disk is the subset of storage/diskscheduler.Scheduler the pool
// needs. An interface here lets tests substitute a fake scheduler.
type Disk interface {
	ReadPage(pageID int64, dst []byte) error
	WritePage(pageID int64, src []byte) error
}

var (
	// ErrNotResident is returned by operations that require a page
	// already be in the pool (UnpinPage, FlushPage no-ops silently
	// instead — see FlushPage's doc comment for why the two differ).
	ErrNotResident = errors.New("bufferpool: page not resident")
	// ErrAlreadyUnpinned signals a second unpin without an intervening
	// pin.
	ErrAlreadyUnpinned = errors.New("bufferpool: page already unpinned")
)

// Pool is the fixed-capacity page cache. Every exported method
// acquires mu. Go's sync.Mutex is not reentrant, so internal helpers
// that already hold the lock are unexported and never call back into
// the exported, locking API.
type Pool struct {
	mu sync.Mutex

	frames   []*page.Page
	freeList []int         // free frame ids
	pageTbl  map[int64]int // page id -> frame id

	nextPageID int64
	disk       Disk
	replacer   *replacer.LRUK

	// second-level read cache: bytes of pages recently evicted from
	// the pool, admitted here on flush so a page bounced out under
	// memory pressure can sometimes skip the disk round trip on
	// re-fetch. Nil disables the cache (e.g. in unit tests that don't
	// care about the optimization).
	hotCache *ristretto.Cache[int64, []byte]
}

// New constructs a pool with room for capacity pages, using k as the
// LRU-K replacer's K parameter.
func New(capacity int, k int, disk Disk) *Pool {
	frames := make([]*page.Page, capacity)
	freeList := make([]int, capacity)
	for i := 0; i < capacity; i++ {
		frames[i] = page.New()
		freeList[i] = i
	}

	hotCache, err := ristretto.NewCache(&ristretto.Config[int64, []byte]{
		NumCounters: int64(capacity) * 10,
		MaxCost:     int64(capacity) * page.Size * 4,
		BufferItems: 64,
	})
	if err != nil {
		// Cache construction failing means the process is misconfigured
		// (bad NumCounters/MaxCost), not a runtime condition callers
		// can recover from — the second-level cache is an optimization,
		// so degrade to "disabled" rather than fail pool construction.
		logrus.WithError(err).Warn("bufferpool: second-level cache disabled")
		hotCache = nil
	}

	return &Pool{
		frames:     frames,
		freeList:   freeList,
		pageTbl:    make(map[int64]int, capacity),
		nextPageID: 1,
		disk:       disk,
		replacer:   replacer.New(capacity, k),
		hotCache:   hotCache,
	}
}

func (p *Pool) Capacity() int { return len(p.frames) }

// NewPage allocates a fresh page id and pins it into a frame, zeroed.
// Returns (0, nil) when no frame is obtainable — a full pool, not a
// failure.
func (p *Pool) NewPage() (int64, *pageguard.Basic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.obtainFrame()
	if !ok {
		return 0, nil
	}
	pageID := p.nextPageID
	p.nextPageID++

	fr := p.frames[frameID]
	fr.Reset()
	fr.ID = pageID
	fr.PinCount = 1
	p.pageTbl[pageID] = frameID

	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)

	logrus.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("bufferpool: new page")
	return pageID, pageguard.NewBasic(p, fr)
}

// FetchPage returns a pinned guard over pageID, loading it from the
// second-level cache or disk if it is not resident. Returns nil when
// no frame is obtainable.
func (p *Pool) FetchPage(pageID int64) *pageguard.Basic {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frameID, ok := p.pageTbl[pageID]; ok {
		fr := p.frames[frameID]
		fr.PinCount++
		p.replacer.RecordAccess(frameID)
		p.replacer.SetEvictable(frameID, false)
		logrus.WithFields(logrus.Fields{"page_id": pageID}).Trace("bufferpool: hit")
		return pageguard.NewBasic(p, fr)
	}

	frameID, ok := p.obtainFrame()
	if !ok {
		return nil
	}
	fr := p.frames[frameID]
	fr.Reset()
	fr.ID = pageID

	if !p.loadFromHotCache(pageID, fr) {
		if err := p.disk.ReadPage(pageID, fr.Data); err != nil {
			logrus.WithFields(logrus.Fields{"page_id": pageID}).WithError(err).Error("bufferpool: read failed")
			p.freeList = append(p.freeList, frameID)
			fr.Reset()
			return nil
		}
	}

	fr.PinCount = 1
	p.pageTbl[pageID] = frameID
	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)
	logrus.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("bufferpool: miss, loaded")
	return pageguard.NewBasic(p, fr)
}

// FetchPageRead / FetchPageWrite fetch and latch in one step.
func (p *Pool) FetchPageRead(pageID int64) *pageguard.Read {
	basic := p.FetchPage(pageID)
	if basic == nil {
		return nil
	}
	return basic.UpgradeRead()
}

func (p *Pool) FetchPageWrite(pageID int64) *pageguard.Write {
	basic := p.FetchPage(pageID)
	if basic == nil {
		return nil
	}
	return basic.UpgradeWrite()
}

// NewPageGuarded is NewPage's guard-returning convenience form.
func (p *Pool) NewPageGuarded() (int64, *pageguard.Basic) {
	return p.NewPage()
}

// UnpinPage ORs in the dirty flag and decrements the pin count,
// marking the frame evictable once it reaches zero. Returns
// ErrNotResident or ErrAlreadyUnpinned.
func (p *Pool) UnpinPage(pageID int64, isDirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.pageTbl[pageID]
	if !ok {
		return fmt.Errorf("%w: page %d", ErrNotResident, pageID)
	}
	fr := p.frames[frameID]
	if fr.PinCount == 0 {
		return fmt.Errorf("%w: page %d", ErrAlreadyUnpinned, pageID)
	}
	fr.IsDirty = fr.IsDirty || isDirty
	fr.PinCount--
	if fr.PinCount == 0 {
		p.replacer.SetEvictable(frameID, true)
	}
	return nil
}

// FlushPage synchronously writes pageID's current content and clears
// its dirty flag. It is a no-op — not an error — if pageID is not
// resident, so a caller that merely suspects a page is cached can
// flush it unconditionally without handling an error on every call.
func (p *Pool) FlushPage(pageID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(pageID)
}

func (p *Pool) flushLocked(pageID int64) error {
	frameID, ok := p.pageTbl[pageID]
	if !ok {
		return nil
	}
	fr := p.frames[frameID]
	if err := p.disk.WritePage(pageID, fr.Data); err != nil {
		return fmt.Errorf("bufferpool: flush page %d: %w", pageID, err)
	}
	fr.IsDirty = false
	p.admitToHotCache(pageID, fr.Data)
	return nil
}

// FlushAllPages flushes every resident page. The pool mutex is held
// for the entire iteration rather than released between pages, so no
// concurrent NewPage/FetchPage can observe a partially-flushed pool.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for pageID := range p.pageTbl {
		if err := p.flushLocked(pageID); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes pageID from the pool and recycles its frame.
// Refuses (returns false) if the page is pinned.
func (p *Pool) DeletePage(pageID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.pageTbl[pageID]
	if !ok {
		return true
	}
	fr := p.frames[frameID]
	if fr.PinCount != 0 {
		return false
	}

	delete(p.pageTbl, pageID)
	p.replacer.SetEvictable(frameID, true)
	p.replacer.Remove(frameID)
	fr.Reset()
	p.freeList = append(p.freeList, frameID)
	if p.hotCache != nil {
		p.hotCache.Del(pageID)
	}
	logrus.WithFields(logrus.Fields{"page_id": pageID}).Debug("bufferpool: deleted")
	return true
}

// Stats reports a human-readable snapshot of pool occupancy.
func (p *Pool) Stats() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	resident := len(p.pageTbl)
	pinned := 0
	for _, fr := range p.frames {
		if fr.PinCount > 0 {
			pinned++
		}
	}
	bytes := uint64(resident) * page.Size
	return fmt.Sprintf("resident=%d/%d pinned=%d size=%s",
		resident, len(p.frames), pinned, humanize.Bytes(bytes))
}

// obtainFrame returns a frame id from the free list, or by evicting,
// flushing it first if dirty. Callers must hold mu.
func (p *Pool) obtainFrame() (int, bool) {
	if n := len(p.freeList); n > 0 {
		id := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return id, true
	}
	frameID, ok := p.replacer.Evict()
	if !ok {
		return 0, false
	}
	fr := p.frames[frameID]
	if fr.ID != page.InvalidID {
		if fr.IsDirty {
			if err := p.flushLocked(fr.ID); err != nil {
				logrus.WithError(err).Error("bufferpool: flush-on-evict failed")
			}
		}
		delete(p.pageTbl, fr.ID)
	}
	return frameID, true
}

func (p *Pool) admitToHotCache(pageID int64, data []byte) {
	if p.hotCache == nil {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	p.hotCache.Set(pageID, cp, int64(len(cp)))
}

func (p *Pool) loadFromHotCache(pageID int64, fr *page.Page) bool {
	if p.hotCache == nil {
		return false
	}
	data, ok := p.hotCache.Get(pageID)
	if !ok {
		return false
	}
	copy(fr.Data, data)
	logrus.WithFields(logrus.Fields{"page_id": pageID}).Trace("bufferpool: served from second-level cache")
	return true
}
