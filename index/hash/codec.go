// Package hash is a persistent, on-disk, dynamically-splitting
// extendible hash index whose header, directory, and bucket pages
// live inside the buffer pool. Table is generic over (K, V) with a
// caller-supplied Codec and Comparator: Go generics plus an explicit
// Codec stand in for a C++-style template instantiation, so the same
// split/merge/shrink machinery serves any key and value type that can
// encode to a fixed-width byte representation. Page ids throughout are
// 8 bytes, matching the buffer pool's int64 page ids everywhere else.
package hash

import "github.com/cespare/xxhash/v2"

// Codec describes how to turn a Go value into its fixed-width on-disk
// representation and back. Size must be constant for all values of T
// — bucket pages are a flat array of (key, value) pairs, so a
// variable-width encoding would make bucket capacity unknowable.
type Codec[T any] struct {
	Size   int
	Encode func(T, []byte)
	Decode func([]byte) T
}

// Comparator orders two keys for equality testing (duplicate rejection)
// and is also used, via Codec+Comparator together, anywhere the index
// needs to tell two keys apart.
type Comparator[K any] func(a, b K) int

// Hash hashes a key's encoded bytes with xxhash — a fast,
// non-cryptographic hash well suited to hashing short fixed-width
// keys, the same choice ristretto's own internals make.
func Hash[K any](codec Codec[K], key K) uint32 {
	buf := make([]byte, codec.Size)
	codec.Encode(key, buf)
	return uint32(xxhash.Sum64(buf))
}

// Int64Codec is a ready-made Codec for int64 keys or values.
var Int64Codec = Codec[int64]{
	Size: 8,
	Encode: func(v int64, dst []byte) {
		u := uint64(v)
		for i := 0; i < 8; i++ {
			dst[i] = byte(u >> (8 * i))
		}
	},
	Decode: func(src []byte) int64 {
		var u uint64
		for i := 0; i < 8; i++ {
			u |= uint64(src[i]) << (8 * i)
		}
		return int64(u)
	},
}

// CompareInt64 is Int64Codec's natural comparator.
func CompareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
