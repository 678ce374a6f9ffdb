package exec

import (
	"coredb/heap"
	"coredb/types"
)

// AggregateType selects which aggregate function combine() applies:
// COUNT_STAR, COUNT, SUM, MIN, MAX.
type AggregateType int

const (
	CountStar AggregateType = iota
	Count
	Sum
	Min
	Max
)

// AggregateExpr is one aggregate computed per group: Type selects the
// function, Col selects the child's output column it reads (ignored
// for CountStar).
type AggregateExpr struct {
	Type AggregateType
	Col  int
}

type aggState struct {
	count   int64
	sawAny  bool
	integer int64
}

func newAggState() aggState { return aggState{} }

func (s *aggState) combine(t AggregateType, v types.Value) {
	switch t {
	case CountStar:
		s.count++
		s.sawAny = true
	case Count:
		if !v.IsNull() {
			s.count++
		}
		s.sawAny = true
	case Sum:
		if !v.IsNull() {
			if !s.sawAny {
				s.integer = 0
			}
			s.integer += v.AsInteger()
			s.sawAny = true
		}
	case Min:
		if !v.IsNull() {
			if !s.sawAny || v.AsInteger() < s.integer {
				s.integer = v.AsInteger()
			}
			s.sawAny = true
		}
	case Max:
		if !v.IsNull() {
			if !s.sawAny || v.AsInteger() > s.integer {
				s.integer = v.AsInteger()
			}
			s.sawAny = true
		}
	}
}

func (s aggState) result(t AggregateType) types.Value {
	switch t {
	case CountStar, Count:
		return types.NewInteger(s.count)
	case Sum, Min, Max:
		if !s.sawAny {
			return types.NewNull(types.TypeInteger)
		}
		return types.NewInteger(s.integer)
	default:
		return types.NewNull(types.TypeInteger)
	}
}

// Aggregation groups child's output by groupBy (expressions evaluated
// against the child's output tuple, here simplified to column
// indices) and computes aggs per group. For empty input with no
// group-by clause it yields exactly one row of initial aggregate
// values. COUNT/SUM ignore NULL inputs; SUM/MIN/MAX over all-NULL
// input (or no input) yield NULL.
type Aggregation struct {
	child   Executor
	groupBy []int
	aggs    []AggregateExpr

	keys    [][]types.Value
	results [][]aggState
	pos     int
}

func NewAggregation(child Executor, groupBy []int, aggs []AggregateExpr) *Aggregation {
	return &Aggregation{child: child, groupBy: groupBy, aggs: aggs}
}

func (a *Aggregation) Init() error {
	if err := a.child.Init(); err != nil {
		return err
	}

	type group struct {
		key    []types.Value
		states []aggState
	}
	var groups []group
	find := func(key []types.Value) *group {
		for i := range groups {
			if sameKey(groups[i].key, key) {
				return &groups[i]
			}
		}
		return nil
	}

	for {
		tuple, _, ok, err := a.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key := make([]types.Value, len(a.groupBy))
		for i, col := range a.groupBy {
			key[i] = tuple.Value(col)
		}
		g := find(key)
		if g == nil {
			states := make([]aggState, len(a.aggs))
			for i := range states {
				states[i] = newAggState()
			}
			groups = append(groups, group{key: key, states: states})
			g = &groups[len(groups)-1]
		}
		for i, expr := range a.aggs {
			var v types.Value
			if expr.Type != CountStar {
				v = tuple.Value(expr.Col)
			}
			g.states[i].combine(expr.Type, v)
		}
	}

	if len(groups) == 0 && len(a.groupBy) == 0 {
		states := make([]aggState, len(a.aggs))
		for i := range states {
			states[i] = newAggState()
		}
		groups = append(groups, group{states: states})
	}

	a.keys = make([][]types.Value, len(groups))
	a.results = make([][]aggState, len(groups))
	for i, g := range groups {
		a.keys[i] = g.key
		a.results[i] = g.states
	}
	a.pos = 0
	return nil
}

func (a *Aggregation) Next() (types.Tuple, heap.RID, bool, error) {
	if a.pos >= len(a.results) {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	key := a.keys[a.pos]
	states := a.results[a.pos]
	a.pos++

	values := make([]types.Value, 0, len(key)+len(a.aggs))
	values = append(values, key...)
	for i, expr := range a.aggs {
		values = append(values, states[i].result(expr.Type))
	}
	return types.NewTuple(values), heap.RID{}, true, nil
}

func sameKey(a, b []types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
