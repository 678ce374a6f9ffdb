package types

// Column is one named, typed field of a Schema.
type Column struct {
	Name   string
	TypeID TypeID
}

// Schema is an ordered list of columns. Tuple encode/decode and the
// undo log's modified_fields bitset are both indexed positionally
// against a Schema, so column order is part of a table's identity.
type Schema struct {
	Columns []Column
}

func NewSchema(columns []Column) *Schema {
	return &Schema{Columns: columns}
}

func (s *Schema) ColumnCount() int { return len(s.Columns) }

func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Project returns a new Schema containing only the columns at attrs,
// in the order given — used to build the schema a partial UndoLog
// tuple is encoded against, covering just the columns an update
// actually modified.
func (s *Schema) Project(attrs []int) *Schema {
	cols := make([]Column, len(attrs))
	for i, a := range attrs {
		cols[i] = s.Columns[a]
	}
	return NewSchema(cols)
}
