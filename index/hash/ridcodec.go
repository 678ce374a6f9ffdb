package hash

import "coredb/heap"

// RIDCodec encodes a heap.RID as page_id (int64) followed by slot
// (uint32) — the index's usual value type for a secondary index over
// table rows.
var RIDCodec = Codec[heap.RID]{
	Size: 12,
	Encode: func(r heap.RID, dst []byte) {
		u := uint64(r.PageID)
		for i := 0; i < 8; i++ {
			dst[i] = byte(u >> (8 * i))
		}
		s := r.Slot
		for i := 0; i < 4; i++ {
			dst[8+i] = byte(s >> (8 * i))
		}
	},
	Decode: func(src []byte) heap.RID {
		var u uint64
		for i := 0; i < 8; i++ {
			u |= uint64(src[i]) << (8 * i)
		}
		var s uint32
		for i := 0; i < 4; i++ {
			s |= uint32(src[8+i]) << (8 * i)
		}
		return heap.RID{PageID: int64(u), Slot: s}
	},
}
