package heap

import (
	"encoding/binary"
	"fmt"

	"coredb/storage/page"
)

// Table page layout, a slotted page:
//
//	header (16 bytes):
//	  next_page_id int64   [0:8)
//	  num_slots    uint16  [8:10)
//	  free_offset  uint16  [10:12) -- next free byte of the payload area
//	  reserved           [12:16)
//	payload area: grows upward from offset 16.
//	slot directory: grows downward from the end of the page; slot i's
//	record occupies [pageSize - (i+1)*slotSize, pageSize - i*slotSize).
const (
	headerSize = 16
	slotSize   = 24
)

type tablePage struct {
	data []byte
}

func newTablePage(data []byte) tablePage {
	return tablePage{data: data}
}

func (p tablePage) init() {
	p.setNextPageID(page.InvalidID)
	p.setNumSlots(0)
	p.setFreeOffset(headerSize)
}

func (p tablePage) nextPageID() int64 {
	return int64(binary.LittleEndian.Uint64(p.data[0:8]))
}

func (p tablePage) setNextPageID(id int64) {
	binary.LittleEndian.PutUint64(p.data[0:8], uint64(id))
}

func (p tablePage) numSlots() int {
	return int(binary.LittleEndian.Uint16(p.data[8:10]))
}

func (p tablePage) setNumSlots(n int) {
	binary.LittleEndian.PutUint16(p.data[8:10], uint16(n))
}

func (p tablePage) freeOffset() int {
	return int(binary.LittleEndian.Uint16(p.data[10:12]))
}

func (p tablePage) setFreeOffset(off int) {
	binary.LittleEndian.PutUint16(p.data[10:12], uint16(off))
}

// slotRecordOffset returns the byte offset of slot i's directory
// entry (not the payload it points to).
func (p tablePage) slotRecordOffset(i int) int {
	return len(p.data) - (i+1)*slotSize
}

type slot struct {
	payloadOffset int
	capacity      int
	actualLen     int
	meta          Meta
}

func (p tablePage) getSlot(i int) slot {
	off := p.slotRecordOffset(i)
	b := p.data[off : off+slotSize]
	return slot{
		payloadOffset: int(binary.LittleEndian.Uint16(b[0:2])),
		capacity:      int(binary.LittleEndian.Uint16(b[2:4])),
		actualLen:     int(binary.LittleEndian.Uint16(b[4:6])),
		meta: Meta{
			TS:        binary.LittleEndian.Uint64(b[8:16]),
			IsDeleted: b[16] != 0,
		},
	}
}

func (p tablePage) setSlot(i int, s slot) {
	off := p.slotRecordOffset(i)
	b := p.data[off : off+slotSize]
	binary.LittleEndian.PutUint16(b[0:2], uint16(s.payloadOffset))
	binary.LittleEndian.PutUint16(b[2:4], uint16(s.capacity))
	binary.LittleEndian.PutUint16(b[4:6], uint16(s.actualLen))
	binary.LittleEndian.PutUint64(b[8:16], s.meta.TS)
	if s.meta.IsDeleted {
		b[16] = 1
	} else {
		b[16] = 0
	}
}

// freeSpace returns the number of unused bytes between the payload
// area's high-water mark and the start of the slot directory.
func (p tablePage) freeSpace() int {
	dirStart := len(p.data) - p.numSlots()*slotSize
	return dirStart - p.freeOffset()
}

// canInsert reports whether a payload of length n plus one new slot
// record fits in the remaining free space.
func (p tablePage) canInsert(n int) bool {
	return p.freeSpace() >= n+slotSize
}

// insert appends data as a new slot, returning the new slot index.
// Caller must have checked canInsert.
func (p tablePage) insert(data []byte, meta Meta) int {
	off := p.freeOffset()
	copy(p.data[off:off+len(data)], data)
	p.setFreeOffset(off + len(data))

	idx := p.numSlots()
	p.setSlot(idx, slot{payloadOffset: off, capacity: len(data), actualLen: len(data), meta: meta})
	p.setNumSlots(idx + 1)
	return idx
}

func (p tablePage) getTuple(i int) (Meta, []byte) {
	s := p.getSlot(i)
	data := make([]byte, s.actualLen)
	copy(data, p.data[s.payloadOffset:s.payloadOffset+s.actualLen])
	return s.meta, data
}

// updateInPlace overwrites slot i's payload and meta. Returns an
// error if data is larger than the slot's original reservation — a
// slotted page never grows a payload past its first-insert capacity.
func (p tablePage) updateInPlace(i int, data []byte, meta Meta) error {
	s := p.getSlot(i)
	if len(data) > s.capacity {
		return fmt.Errorf("heap: tuple grew from %d to %d bytes, exceeds slot reservation", s.capacity, len(data))
	}
	copy(p.data[s.payloadOffset:s.payloadOffset+len(data)], data)
	s.actualLen = len(data)
	s.meta = meta
	p.setSlot(i, s)
	return nil
}

func (p tablePage) updateMeta(i int, meta Meta) {
	s := p.getSlot(i)
	s.meta = meta
	p.setSlot(i, s)
}
