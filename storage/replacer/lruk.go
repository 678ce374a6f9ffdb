// Package replacer implements the LRU-K eviction policy: rank
// evictable frames by "backward K-distance," the age of a frame's
// K-th-most-recent access, with frames that have fewer than K recorded
// accesses treated as having infinite backward K-distance (ties broken
// by classical LRU — earliest access wins).
package replacer

import "fmt"

// node tracks one frame's access history, capped at the last K
// timestamps (oldest first), and whether it is currently a candidate
// for eviction.
type node struct {
	history    []int64 // oldest first, len <= k
	evictable  bool
}

// LRUK selects an eviction victim among the frames marked evictable.
// It tracks history for every frame that has ever been accessed, not
// only frame ids currently resident — history for an evicted frame
// is dropped to bound memory, matching the Evict contract below.
type LRUK struct {
	k        int
	capacity int

	clock int64 // monotonic access counter
	nodes map[int]*node
	size  int // count of evictable frames
}

// New constructs a replacer tracking up to capacity frame ids (valid
// range [0, capacity)) with K-distance parameter k.
func New(capacity, k int) *LRUK {
	return &LRUK{
		k:        k,
		capacity: capacity,
		nodes:    make(map[int]*node),
	}
}

func (r *LRUK) checkFrame(frameID int) {
	if frameID < 0 || frameID >= r.capacity {
		panic(fmt.Sprintf("replacer: frame id %d out of range [0, %d)", frameID, r.capacity))
	}
}

// RecordAccess appends the current timestamp to frameID's history,
// trimming to the last k entries.
func (r *LRUK) RecordAccess(frameID int) {
	r.checkFrame(frameID)
	r.clock++
	n, ok := r.nodes[frameID]
	if !ok {
		n = &node{}
		r.nodes[frameID] = n
	}
	n.history = append(n.history, r.clock)
	if len(n.history) > r.k {
		n.history = n.history[len(n.history)-r.k:]
	}
}

// SetEvictable flips frameID's evictable flag, maintaining Size()'s
// invariant that it equals the count of evictable frames.
func (r *LRUK) SetEvictable(frameID int, evictable bool) {
	r.checkFrame(frameID)
	n, ok := r.nodes[frameID]
	if !ok {
		// A frame with no recorded access has no backward distance to
		// rank it by; record a first access so it can still be tracked.
		n = &node{}
		r.nodes[frameID] = n
		r.clock++
		n.history = append(n.history, r.clock)
	}
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.size++
	} else {
		r.size--
	}
}

// Evict selects the evictable frame with the largest backward
// K-distance (infinite beats any finite distance; among infinite
// frames, the one with the oldest single access wins), removes its
// history, and returns its id. Returns (0, false) if no frame is
// evictable.
func (r *LRUK) Evict() (int, bool) {
	bestFrame := -1
	var bestKDist int64 = -1
	var bestEarliest int64 = -1 // for infinite-distance tie-break (classical LRU)
	bestInfinite := false

	for frameID, n := range r.nodes {
		if !n.evictable {
			continue
		}
		infinite := len(n.history) < r.k
		switch {
		case infinite && !bestInfinite:
			// First infinite-distance candidate always beats any
			// finite-distance candidate seen so far.
			bestFrame, bestInfinite, bestEarliest = frameID, true, n.history[0]
		case infinite && bestInfinite:
			if earliest := n.history[0]; bestFrame == -1 || earliest < bestEarliest {
				bestFrame, bestEarliest = frameID, earliest
			}
		case !infinite && bestInfinite:
			// An infinite-distance frame already found; finite ones can't win.
		default:
			kDist := r.clock - n.history[0] // age of the k-th-most-recent access
			if bestFrame == -1 || kDist > bestKDist {
				bestFrame, bestKDist = frameID, kDist
			}
		}
	}

	if bestFrame == -1 {
		return 0, false
	}
	delete(r.nodes, bestFrame)
	r.size--
	return bestFrame, true
}

// Remove unconditionally drops frameID's tracked history. It panics
// if the frame is currently non-evictable — removing a pinned frame's
// history would be a caller bug (the buffer pool never evicts a
// pinned frame).
func (r *LRUK) Remove(frameID int) {
	r.checkFrame(frameID)
	n, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if !n.evictable {
		panic(fmt.Sprintf("replacer: Remove called on non-evictable frame %d", frameID))
	}
	delete(r.nodes, frameID)
	r.size--
}

// Size returns the number of frames currently evictable.
func (r *LRUK) Size() int { return r.size }
