package hash

import "encoding/binary"

// bucketPage stores up to maxSize (key_bytes, value_bytes) entries.
// Layout:
//
//	size     uint32 [0:4)
//	max_size uint32 [4:8)
//	entries[max_size] = (key[keySize], value[valSize]), starting at [8:...)
//
// bucketPage operates on already-encoded key/value bytes; the codec
// layer (table.go) is responsible for Encode/Decode, keeping this type
// free of generic parameters (Go methods can't introduce new type
// parameters beyond their receiver's).
type bucketPage struct {
	data             []byte
	keySize, valSize int
}

func newBucketPage(data []byte, keySize, valSize int) bucketPage {
	return bucketPage{data: data, keySize: keySize, valSize: valSize}
}

func (b bucketPage) entrySize() int { return b.keySize + b.valSize }

// derivedMaxSize returns how many entries fit in the page given the
// bucket's entry size — the default bucket_max_size when none is
// given explicitly.
func (b bucketPage) derivedMaxSize() int {
	return (len(b.data) - 8) / b.entrySize()
}

func (b bucketPage) init(maxSize int) {
	if maxSize <= 0 || maxSize > b.derivedMaxSize() {
		maxSize = b.derivedMaxSize()
	}
	binary.LittleEndian.PutUint32(b.data[0:4], 0)
	binary.LittleEndian.PutUint32(b.data[4:8], uint32(maxSize))
}

func (b bucketPage) size() int    { return int(binary.LittleEndian.Uint32(b.data[0:4])) }
func (b bucketPage) maxSize() int { return int(binary.LittleEndian.Uint32(b.data[4:8])) }

func (b bucketPage) setSize(n int) { binary.LittleEndian.PutUint32(b.data[0:4], uint32(n)) }

func (b bucketPage) entryOffset(i int) int { return 8 + i*b.entrySize() }

func (b bucketPage) keyAt(i int) []byte {
	off := b.entryOffset(i)
	return b.data[off : off+b.keySize]
}

func (b bucketPage) valueAt(i int) []byte {
	off := b.entryOffset(i) + b.keySize
	return b.data[off : off+b.valSize]
}

func (b bucketPage) setEntry(i int, key, value []byte) {
	off := b.entryOffset(i)
	copy(b.data[off:off+b.keySize], key)
	copy(b.data[off+b.keySize:off+b.entrySize()], value)
}

// lookup linearly scans for key, comparing via eq. Returns the
// matching value bytes and true, or nil/false.
func (b bucketPage) lookup(key []byte, eq func(a, b []byte) bool) ([]byte, bool) {
	n := b.size()
	for i := 0; i < n; i++ {
		if eq(b.keyAt(i), key) {
			v := make([]byte, b.valSize)
			copy(v, b.valueAt(i))
			return v, true
		}
	}
	return nil, false
}

// insert appends (key, value) if there is room. Returns false if full.
func (b bucketPage) insert(key, value []byte) bool {
	n := b.size()
	if n >= b.maxSize() {
		return false
	}
	b.setEntry(n, key, value)
	b.setSize(n + 1)
	return true
}

// removeAt deletes entry i, shifting later entries down to keep the
// array dense. Split's cleanup pass calls this in a loop to drain
// entries that moved to the image bucket.
func (b bucketPage) removeAt(i int) {
	n := b.size()
	for j := i; j < n-1; j++ {
		copy(b.data[b.entryOffset(j):b.entryOffset(j)+b.entrySize()],
			b.data[b.entryOffset(j+1):b.entryOffset(j+1)+b.entrySize()])
	}
	b.setSize(n - 1)
}

// remove deletes the first entry matching key, reporting whether one
// was found.
func (b bucketPage) remove(key []byte, eq func(a, b []byte) bool) bool {
	n := b.size()
	for i := 0; i < n; i++ {
		if eq(b.keyAt(i), key) {
			b.removeAt(i)
			return true
		}
	}
	return false
}
