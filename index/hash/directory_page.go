package hash

import (
	"encoding/binary"

	"coredb/storage/page"
)

// directoryPage supports global_depth <= max_depth, 2^global_depth
// slots each carrying a local_depth <= global_depth and a bucket page
// id. Layout:
//
//	max_depth    uint32 [0:4)
//	global_depth uint32 [4:8)
//	local_depths[2^max_depth] uint8, starting at [8:...)
//	bucket_page_ids[2^max_depth] int64, 8-byte aligned after local_depths
type directoryPage struct{ data []byte }

func newDirectoryPage(data []byte) directoryPage { return directoryPage{data: data} }

func align8(n int) int { return (n + 7) &^ 7 }

func (d directoryPage) localDepthsOffset() int { return 8 }

func (d directoryPage) bucketIDsOffset() int {
	maxSlots := 1 << d.maxDepth()
	return align8(d.localDepthsOffset() + maxSlots)
}

func (d directoryPage) init(maxDepth uint32) {
	binary.LittleEndian.PutUint32(d.data[0:4], maxDepth)
	binary.LittleEndian.PutUint32(d.data[4:8], 0)
	n := 1 << maxDepth
	ldOff := d.localDepthsOffset()
	for i := 0; i < n; i++ {
		d.data[ldOff+i] = 0
	}
	for i := 0; i < n; i++ {
		d.setBucketPageID(i, page.InvalidID)
	}
}

func (d directoryPage) maxDepth() uint32    { return binary.LittleEndian.Uint32(d.data[0:4]) }
func (d directoryPage) globalDepth() uint32 { return binary.LittleEndian.Uint32(d.data[4:8]) }
func (d directoryPage) setGlobalDepth(v uint32) {
	binary.LittleEndian.PutUint32(d.data[4:8], v)
}

func (d directoryPage) size() int { return 1 << d.globalDepth() }

func (d directoryPage) localDepth(idx int) uint8 {
	return d.data[d.localDepthsOffset()+idx]
}

func (d directoryPage) setLocalDepth(idx int, v uint8) {
	d.data[d.localDepthsOffset()+idx] = v
}

func (d directoryPage) bucketPageID(idx int) int64 {
	off := d.bucketIDsOffset() + idx*8
	return int64(binary.LittleEndian.Uint64(d.data[off : off+8]))
}

func (d directoryPage) setBucketPageID(idx int, id int64) {
	off := d.bucketIDsOffset() + idx*8
	binary.LittleEndian.PutUint64(d.data[off:off+8], uint64(id))
}

func (d directoryPage) globalDepthMask() uint32 {
	return (uint32(1) << d.globalDepth()) - 1
}

func (d directoryPage) localDepthMask(idx int) uint32 {
	return (uint32(1) << d.localDepth(idx)) - 1
}

func (d directoryPage) hashToBucketIndex(hash uint32) int {
	return int(hash & d.globalDepthMask())
}

// splitImageIndex returns the slot paired with idx by flipping the
// bit at local_depth(idx)-1 — the target of a bucket merge. Bit 0 is
// the hash's low bit, matching hashToBucketIndex's low-bit masking and
// splitBucket's redistribution bit (1 << old local_depth, i.e. new
// local_depth - 1).
func (d directoryPage) splitImageIndex(idx int) int {
	return idx ^ (1 << (uint32(d.localDepth(idx)) - 1))
}

// incrGlobalDepth doubles the slot array by duplicating it.
func (d directoryPage) incrGlobalDepth() {
	gd := d.globalDepth()
	n := 1 << gd
	for i := 0; i < n; i++ {
		d.setLocalDepth(n+i, d.localDepth(i))
		d.setBucketPageID(n+i, d.bucketPageID(i))
	}
	d.setGlobalDepth(gd + 1)
}

// decrGlobalDepth drops the upper half of the slot array.
func (d directoryPage) decrGlobalDepth() {
	gd := d.globalDepth()
	n := 1 << (gd - 1)
	for i := n; i < 1<<gd; i++ {
		d.setLocalDepth(i, 0)
		d.setBucketPageID(i, page.InvalidID)
	}
	d.setGlobalDepth(gd - 1)
}

// canShrink reports whether every slot's local depth is strictly less
// than the global depth, i.e. no slot still needs the top bit.
func (d directoryPage) canShrink() bool {
	n := d.size()
	gd := d.globalDepth()
	for i := 0; i < n; i++ {
		if uint32(d.localDepth(i)) == gd {
			return false
		}
	}
	return true
}
