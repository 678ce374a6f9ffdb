// Package diskscheduler serializes physical I/O so callers observe a
// linear order of requests. A single worker goroutine drains a
// request channel FIFO and dispatches each request to the disk
// manager; Schedule enqueues and returns immediately, and the
// request's completion channel fires exactly once when the I/O
// finishes (or fails).
//
// The background worker is started in the constructor and runs until
// a nil-Request shutdown sentinel is enqueued behind it, so it drains
// everything queued ahead of the shutdown signal first.
package diskscheduler

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DiskIO is the subset of storage/diskmanager.Manager the scheduler
// needs — kept as an interface so tests can swap in a fake that
// injects I/O failures.
type DiskIO interface {
	ReadPage(pageID int64, dst []byte) error
	WritePage(pageID int64, src []byte) error
}

// Request describes one page-sized read or write. Done receives
// exactly one value: nil on success, or the I/O error.
type Request struct {
	IsWrite bool
	Data    []byte
	PageID  int64
	Done    chan error
}

// Scheduler owns the one worker goroutine that serializes all disk
// I/O. The queue itself is a buffered channel; Go's channel semantics
// already give Schedule thread-safe enqueue with FIFO delivery, so no
// additional queue type is needed.
type Scheduler struct {
	disk  DiskIO
	queue chan *Request // nil *Request is the shutdown sentinel
	done  chan struct{}
	once  sync.Once
}

// New starts the worker goroutine immediately.
func New(disk DiskIO) *Scheduler {
	s := &Scheduler{
		disk:  disk,
		queue: make(chan *Request, 128),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// Schedule enqueues req and returns immediately.
func (s *Scheduler) Schedule(req *Request) {
	s.queue <- req
}

// ReadPage is a blocking convenience wrapper: schedule a read and wait
// for its completion signal.
func (s *Scheduler) ReadPage(pageID int64, dst []byte) error {
	done := make(chan error, 1)
	s.Schedule(&Request{IsWrite: false, Data: dst, PageID: pageID, Done: done})
	return <-done
}

// WritePage is the write-side equivalent of ReadPage.
func (s *Scheduler) WritePage(pageID int64, src []byte) error {
	done := make(chan error, 1)
	s.Schedule(&Request{IsWrite: true, Data: src, PageID: pageID, Done: done})
	return <-done
}

func (s *Scheduler) worker() {
	defer close(s.done)
	for req := range s.queue {
		if req == nil {
			// Shutdown sentinel.
			return
		}
		var err error
		if req.IsWrite {
			err = s.disk.WritePage(req.PageID, req.Data)
		} else {
			err = s.disk.ReadPage(req.PageID, req.Data)
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"page_id": req.PageID, "is_write": req.IsWrite}).
				Warn("diskscheduler: request failed")
		}
		req.Done <- err
	}
}

// Shutdown enqueues the sentinel and waits for in-flight requests
// queued before it to drain. Idempotent — a second call is a no-op.
func (s *Scheduler) Shutdown() {
	s.once.Do(func() {
		s.queue <- nil
		<-s.done
	})
}
