package exec

import (
	"testing"

	"coredb/types"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, e Executor) []int64 {
	require.NoError(t, e.Init())
	out := []int64{}
	for {
		row, _, ok, err := e.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, row.Value(0).AsInteger())
	}
	return out
}

func TestSortAscending(t *testing.T) {
	rows := []int64{5, 1, 4, 2, 3}
	child := newSliceExecutor(intRows(rows)...)
	sorted := NewSort(child, []OrderByExpr{{Col: 0, Order: Asc}})
	require.Equal(t, []int64{1, 2, 3, 4, 5}, drain(t, sorted))
}

func TestSortDescending(t *testing.T) {
	rows := []int64{5, 1, 4, 2, 3}
	child := newSliceExecutor(intRows(rows)...)
	sorted := NewSort(child, []OrderByExpr{{Col: 0, Order: Desc}})
	require.Equal(t, []int64{5, 4, 3, 2, 1}, drain(t, sorted))
}

// TestTopNEquivalentToLimitOfSort asserts that TopN(orderBy, n)
// produces exactly the first n rows of Sort(orderBy), for both orders
// and across an n larger than the input.
func TestTopNEquivalentToLimitOfSort(t *testing.T) {
	values := []int64{9, 2, 7, 4, 1, 8, 3, 6, 5}

	for _, ob := range []OrderByExpr{{Col: 0, Order: Asc}, {Col: 0, Order: Desc}} {
		for _, n := range []int{0, 1, 3, len(values), len(values) + 5} {
			sortChild := newSliceExecutor(intRows(values)...)
			sorted := drain(t, NewSort(sortChild, []OrderByExpr{ob}))
			want := sorted
			if n < len(want) {
				want = want[:n]
			}

			topNChild := newSliceExecutor(intRows(values)...)
			got := drain(t, NewTopN(topNChild, []OrderByExpr{ob}, n))
			require.Equal(t, want, got, "order=%v n=%d", ob.Order, n)
		}
	}
}

func intRows(vs []int64) []types.Tuple {
	rows := make([]types.Tuple, len(vs))
	for i, v := range vs {
		rows[i] = intRow(v)
	}
	return rows
}
