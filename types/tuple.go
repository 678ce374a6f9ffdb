package types

import "bytes"

// Tuple is a schema-tagged, byte-encoded row. The encoding is a flat
// concatenation of column encodings in schema order; Tuple itself
// keeps the decoded values around too, since nearly every caller
// (comparators, aggregation keys, undo-log reconstruction) wants
// column access rather than raw bytes — the bytes only matter when a
// tuple is written into a heap page.
type Tuple struct {
	values []Value
}

func NewTuple(values []Value) Tuple {
	cp := make([]Value, len(values))
	copy(cp, values)
	return Tuple{values: cp}
}

func (t Tuple) NumValues() int { return len(t.values) }

func (t Tuple) Value(i int) Value { return t.values[i] }

func (t Tuple) Values() []Value {
	cp := make([]Value, len(t.values))
	copy(cp, t.values)
	return cp
}

// Encode serializes t's values in order, assuming t's values align
// positionally with schema's columns.
func (t Tuple) Encode() []byte {
	var buf bytes.Buffer
	for _, v := range t.values {
		v.encode(&buf)
	}
	return buf.Bytes()
}

// DecodeTuple decodes a Tuple encoded against schema.
func DecodeTuple(schema *Schema, data []byte) Tuple {
	values := make([]Value, len(schema.Columns))
	off := 0
	for i, col := range schema.Columns {
		v, n := decodeValue(col.TypeID, data[off:])
		values[i] = v
		off += n
	}
	return Tuple{values: values}
}

// KeyFromTuple projects the columns named by keyAttrs (indices into
// tupleSchema) into a new Tuple encoded against keySchema — the
// projection an index maintains as its key, refreshed on every insert,
// update, or delete that touches an indexed column.
func (t Tuple) KeyFromTuple(keyAttrs []int) Tuple {
	values := make([]Value, len(keyAttrs))
	for i, a := range keyAttrs {
		values[i] = t.values[a]
	}
	return Tuple{values: values}
}

func (t Tuple) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, v := range t.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte(')')
	return buf.String()
}
