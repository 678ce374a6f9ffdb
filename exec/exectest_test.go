package exec

import (
	"coredb/heap"
	"coredb/types"
)

// sliceExecutor is a trivial Executor yielding a fixed slice of tuples,
// used across this package's tests in place of a real SeqScan/IndexScan
// child.
type sliceExecutor struct {
	rows []types.Tuple
	pos  int
}

func newSliceExecutor(rows ...types.Tuple) *sliceExecutor {
	return &sliceExecutor{rows: rows}
}

func (s *sliceExecutor) Init() error { s.pos = 0; return nil }

func (s *sliceExecutor) Next() (types.Tuple, heap.RID, bool, error) {
	if s.pos >= len(s.rows) {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	t := s.rows[s.pos]
	s.pos++
	return t, heap.RID{}, true, nil
}

func intRow(vs ...int64) types.Tuple {
	values := make([]types.Value, len(vs))
	for i, v := range vs {
		values[i] = types.NewInteger(v)
	}
	return types.NewTuple(values)
}
