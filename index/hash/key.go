package hash

import (
	"bytes"

	"coredb/types"
)

// KeySize bounds an index key's encoded width: a fixed-width,
// zero-padded byte array standing in for an arbitrary tuple projection
// so the key type stays comparable and fixed-size on disk. 64 bytes
// comfortably covers the narrow
// single/composite-integer and short-varchar keys this index serves;
// wider keys are a configuration error, not a runtime one, so
// BuildKey panics rather than silently truncating.
const KeySize = 64

// Key is a fixed-width encoded index key. It is a plain byte array
// (not a slice) so it satisfies Go's comparable constraint and can
// serve directly as K in Table[K, V].
type Key [KeySize]byte

// BuildKey encodes a key tuple (as produced by types.Tuple.KeyFromTuple)
// into a zero-padded Key.
func BuildKey(t types.Tuple) Key {
	enc := t.Encode()
	if len(enc) > KeySize {
		panic("hash: encoded key exceeds KeySize")
	}
	var k Key
	copy(k[:], enc)
	return k
}

// KeyCodec is the Codec for Key — a straight fixed-width byte copy.
var KeyCodec = Codec[Key]{
	Size: KeySize,
	Encode: func(k Key, dst []byte) {
		copy(dst, k[:])
	},
	Decode: func(src []byte) Key {
		var k Key
		copy(k[:], src)
		return k
	},
}

// CompareKey orders two Keys lexicographically by their raw bytes.
// This does not follow the underlying tuple's own column-wise ordering
// (types.Value encodes integers little-endian), so it is only a valid
// equality test, which is all CompareKey is used for here —
// duplicate-key rejection, not range queries.
func CompareKey(a, b Key) int {
	return bytes.Compare(a[:], b[:])
}
