package exec

import (
	"coredb/heap"
	"coredb/types"
)

// JoinType selects INNER or LEFT join semantics.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

// NestedLoopJoin materializes both children at Init (memory
// permitting) and joins rows passing predicate. For LEFT, every
// unmatched left tuple is emitted once with NULL-filled right columns,
// typed against rightSchema.
type NestedLoopJoin struct {
	left, right Executor
	joinType    JoinType
	predicate   func(left, right types.Tuple) bool
	rightSchema *types.Schema

	results []types.Tuple
	pos     int
}

func NewNestedLoopJoin(left, right Executor, joinType JoinType, rightSchema *types.Schema, predicate func(left, right types.Tuple) bool) *NestedLoopJoin {
	return &NestedLoopJoin{left: left, right: right, joinType: joinType, rightSchema: rightSchema, predicate: predicate}
}

func drainAll(e Executor) ([]types.Tuple, error) {
	var out []types.Tuple
	for {
		tuple, _, ok, err := e.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tuple)
	}
}

func (j *NestedLoopJoin) Init() error {
	if err := j.left.Init(); err != nil {
		return err
	}
	if err := j.right.Init(); err != nil {
		return err
	}
	leftRows, err := drainAll(j.left)
	if err != nil {
		return err
	}
	rightRows, err := drainAll(j.right)
	if err != nil {
		return err
	}

	j.results = j.results[:0]
	for _, l := range leftRows {
		matched := false
		for _, r := range rightRows {
			if j.predicate(l, r) {
				matched = true
				j.results = append(j.results, concatTuples(l, r))
			}
		}
		if !matched && j.joinType == LeftJoin {
			cols := j.rightSchema.Columns
			nulls := make([]types.Value, len(cols))
			for i, c := range cols {
				nulls[i] = types.NewNull(c.TypeID)
			}
			j.results = append(j.results, concatTuples(l, types.NewTuple(nulls)))
		}
	}
	j.pos = 0
	return nil
}

func (j *NestedLoopJoin) Next() (types.Tuple, heap.RID, bool, error) {
	if j.pos >= len(j.results) {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	t := j.results[j.pos]
	j.pos++
	return t, heap.RID{}, true, nil
}

func concatTuples(a, b types.Tuple) types.Tuple {
	values := make([]types.Value, 0, a.NumValues()+b.NumValues())
	values = append(values, a.Values()...)
	values = append(values, b.Values()...)
	return types.NewTuple(values)
}
