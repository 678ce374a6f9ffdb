package hash

import (
	"encoding/binary"

	"coredb/storage/page"
)

// headerPage selects a directory page via the top maxDepth bits of a
// key's hash. Layout:
//
//	max_depth uint32   [0:4)
//	reserved           [4:8)
//	directory_page_ids[2^max_depth] int64, starting at [8:...)
type headerPage struct{ data []byte }

func newHeaderPage(data []byte) headerPage { return headerPage{data: data} }

func (h headerPage) init(maxDepth uint32) {
	binary.LittleEndian.PutUint32(h.data[0:4], maxDepth)
	n := 1 << maxDepth
	for i := 0; i < n; i++ {
		h.setDirectoryPageID(i, page.InvalidID)
	}
}

func (h headerPage) maxDepth() uint32 {
	return binary.LittleEndian.Uint32(h.data[0:4])
}

func (h headerPage) directoryPageID(idx int) int64 {
	off := 8 + idx*8
	return int64(binary.LittleEndian.Uint64(h.data[off : off+8]))
}

func (h headerPage) setDirectoryPageID(idx int, id int64) {
	off := 8 + idx*8
	binary.LittleEndian.PutUint64(h.data[off:off+8], uint64(id))
}

// hashToDirectoryIndex takes the top maxDepth bits of a 32-bit hash.
func (h headerPage) hashToDirectoryIndex(hash uint32) int {
	md := h.maxDepth()
	if md == 0 {
		return 0
	}
	return int(hash >> (32 - md))
}
