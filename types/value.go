// Package types holds the row-encoding primitives shared by the heap,
// the hash index, and the executor pipeline: typed values, columns,
// schemas, and the tuple byte encoding built from them.
package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TypeID identifies the runtime type carried by a Value.
type TypeID uint8

const (
	TypeInvalid TypeID = iota
	TypeInteger
	TypeVarchar
	TypeBoolean
)

func (t TypeID) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeVarchar:
		return "VARCHAR"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "INVALID"
	}
}

// Value is a tagged union over the small set of column types the engine
// supports. A Value never mutates in place — operations return a new
// Value — so tuples built from them can be shared across undo logs
// without aliasing surprises.
type Value struct {
	typeID  TypeID
	isNull  bool
	integer int64
	varchar string
	boolean bool
}

func NewInteger(v int64) Value  { return Value{typeID: TypeInteger, integer: v} }
func NewVarchar(v string) Value { return Value{typeID: TypeVarchar, varchar: v} }
func NewBoolean(v bool) Value   { return Value{typeID: TypeBoolean, boolean: v} }

func NewNull(t TypeID) Value { return Value{typeID: t, isNull: true} }

func (v Value) TypeID() TypeID { return v.typeID }
func (v Value) IsNull() bool   { return v.isNull }

func (v Value) AsInteger() int64 {
	if v.typeID != TypeInteger {
		panic(fmt.Sprintf("types: AsInteger on a %s value", v.typeID))
	}
	return v.integer
}

func (v Value) AsVarchar() string {
	if v.typeID != TypeVarchar {
		panic(fmt.Sprintf("types: AsVarchar on a %s value", v.typeID))
	}
	return v.varchar
}

func (v Value) AsBoolean() bool {
	if v.typeID != TypeBoolean {
		panic(fmt.Sprintf("types: AsBoolean on a %s value", v.typeID))
	}
	return v.boolean
}

// Compare orders two values of the same TypeID. NULL sorts before any
// non-NULL value of the same type; two NULLs compare equal. Comparing
// across TypeIDs is a validation error (caller/planner bug), so it
// panics rather than returning a sentinel.
func (v Value) Compare(other Value) int {
	if v.typeID != other.typeID {
		panic(fmt.Sprintf("types: comparing %s with %s", v.typeID, other.typeID))
	}
	switch {
	case v.isNull && other.isNull:
		return 0
	case v.isNull:
		return -1
	case other.isNull:
		return 1
	}
	switch v.typeID {
	case TypeInteger:
		switch {
		case v.integer < other.integer:
			return -1
		case v.integer > other.integer:
			return 1
		default:
			return 0
		}
	case TypeVarchar:
		return bytes.Compare([]byte(v.varchar), []byte(other.varchar))
	case TypeBoolean:
		if v.boolean == other.boolean {
			return 0
		}
		if !v.boolean {
			return -1
		}
		return 1
	default:
		panic(fmt.Sprintf("types: comparing invalid values"))
	}
}

func (v Value) Equal(other Value) bool { return v.typeID == other.typeID && v.Compare(other) == 0 }

func (v Value) String() string {
	if v.isNull {
		return "NULL"
	}
	switch v.typeID {
	case TypeInteger:
		return fmt.Sprintf("%d", v.integer)
	case TypeVarchar:
		return v.varchar
	case TypeBoolean:
		return fmt.Sprintf("%t", v.boolean)
	default:
		return "<invalid>"
	}
}

// encode appends the wire form of v: a null byte, then for non-null
// values a type-specific payload. Varchar is length-prefixed so
// sequential decode knows where the next column begins.
func (v Value) encode(buf *bytes.Buffer) {
	if v.isNull {
		buf.WriteByte(1)
		return
	}
	buf.WriteByte(0)
	switch v.typeID {
	case TypeInteger:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.integer))
		buf.Write(tmp[:])
	case TypeVarchar:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(v.varchar)))
		buf.Write(tmp[:])
		buf.WriteString(v.varchar)
	case TypeBoolean:
		if v.boolean {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	default:
		panic("types: encode of invalid value")
	}
}

// decodeValue reads one Value of the given type starting at data[0],
// returning the value and the number of bytes consumed.
func decodeValue(t TypeID, data []byte) (Value, int) {
	if len(data) < 1 {
		panic("types: short buffer decoding value null-flag")
	}
	if data[0] == 1 {
		return NewNull(t), 1
	}
	data = data[1:]
	switch t {
	case TypeInteger:
		return NewInteger(int64(binary.LittleEndian.Uint64(data[:8]))), 1 + 8
	case TypeVarchar:
		n := binary.LittleEndian.Uint32(data[:4])
		s := string(data[4 : 4+n])
		return NewVarchar(s), 1 + 4 + int(n)
	case TypeBoolean:
		return NewBoolean(data[0] != 0), 1 + 1
	default:
		panic(fmt.Sprintf("types: decode of invalid type %s", t))
	}
}
