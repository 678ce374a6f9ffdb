package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func accountTupleSchema() *Schema {
	return NewSchema([]Column{
		{Name: "id", TypeID: TypeInteger},
		{Name: "name", TypeID: TypeVarchar},
		{Name: "balance", TypeID: TypeInteger},
	})
}

func TestTupleNumValuesAndValue(t *testing.T) {
	tup := NewTuple([]Value{NewInteger(1), NewVarchar("bob"), NewInteger(500)})
	require.Equal(t, 3, tup.NumValues())
	require.Equal(t, int64(1), tup.Value(0).AsInteger())
	require.Equal(t, "bob", tup.Value(1).AsVarchar())
	require.Equal(t, int64(500), tup.Value(2).AsInteger())
}

func TestTupleValuesReturnsACopy(t *testing.T) {
	tup := NewTuple([]Value{NewInteger(1)})
	vals := tup.Values()
	vals[0] = NewInteger(999)
	require.Equal(t, int64(1), tup.Value(0).AsInteger(), "mutating the slice from Values must not affect the tuple")
}

func TestTupleEncodeDecodeRoundTrip(t *testing.T) {
	schema := accountTupleSchema()
	tup := NewTuple([]Value{NewInteger(1), NewVarchar("bob"), NewInteger(500)})

	decoded := DecodeTuple(schema, tup.Encode())
	require.Equal(t, tup.NumValues(), decoded.NumValues())
	for i := 0; i < tup.NumValues(); i++ {
		require.True(t, tup.Value(i).Equal(decoded.Value(i)))
	}
}

func TestKeyFromTupleProjectsNamedColumns(t *testing.T) {
	tup := NewTuple([]Value{NewInteger(1), NewVarchar("bob"), NewInteger(500)})

	key := tup.KeyFromTuple([]int{2, 0})
	require.Equal(t, 2, key.NumValues())
	require.Equal(t, int64(500), key.Value(0).AsInteger())
	require.Equal(t, int64(1), key.Value(1).AsInteger())
}

func TestTupleString(t *testing.T) {
	tup := NewTuple([]Value{NewInteger(1), NewVarchar("bob")})
	require.Equal(t, "(1, bob)", tup.String())
}

func TestSchemaColumnIndex(t *testing.T) {
	schema := accountTupleSchema()
	require.Equal(t, 0, schema.ColumnIndex("id"))
	require.Equal(t, 2, schema.ColumnIndex("balance"))
	require.Equal(t, -1, schema.ColumnIndex("missing"))
}

func TestSchemaProject(t *testing.T) {
	schema := accountTupleSchema()
	projected := schema.Project([]int{2, 1})
	require.Equal(t, 2, projected.ColumnCount())
	require.Equal(t, "balance", projected.Columns[0].Name)
	require.Equal(t, "name", projected.Columns[1].Name)
}
