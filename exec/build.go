package exec

import (
	"fmt"

	"coredb/heap"
	"coredb/optimizer"
	"coredb/types"
)

// Filter wraps child, yielding only rows predicate accepts — used to
// execute an optimizer.Plan Filter node the optimizer did not merge
// into its child: a Filter over a SeqScan that already carries its own
// predicate, or over any child that is not a SeqScan.
type Filter struct {
	child     Executor
	predicate func(types.Tuple) bool
}

func NewFilter(child Executor, predicate func(types.Tuple) bool) *Filter {
	return &Filter{child: child, predicate: predicate}
}

func (f *Filter) Init() error { return f.child.Init() }

func (f *Filter) Next() (types.Tuple, heap.RID, bool, error) {
	for {
		tuple, rid, ok, err := f.child.Next()
		if err != nil || !ok {
			return tuple, rid, ok, err
		}
		if f.predicate(tuple) {
			return tuple, rid, true, nil
		}
	}
}

// Build lowers an optimized optimizer.Plan into an executor tree,
// resolving table/index names through ctx.Catalog. Run optimizer.
// Optimize on the plan before calling Build so SeqScan→IndexScan and
// Sort+Limit→TopN have already taken effect.
func Build(ctx *Context, p *optimizer.Plan) (Executor, error) {
	if p == nil {
		return nil, fmt.Errorf("exec: nil plan")
	}

	switch p.Kind {
	case optimizer.KindSeqScan:
		table, ok := ctx.Catalog.GetTableByName(p.TableName)
		if !ok {
			return nil, fmt.Errorf("exec: unknown table %q", p.TableName)
		}
		var filter func(types.Tuple) bool
		if p.Filter != nil {
			f := *p.Filter
			filter = func(t types.Tuple) bool { return t.Value(f.Col).Equal(f.Const) }
		}
		return NewSeqScan(ctx, table, filter), nil

	case optimizer.KindIndexScan:
		table, ok := ctx.Catalog.GetTableByName(p.TableName)
		if !ok {
			return nil, fmt.Errorf("exec: unknown table %q", p.TableName)
		}
		index, ok := ctx.Catalog.GetIndexByName(p.IndexName)
		if !ok {
			return nil, fmt.Errorf("exec: unknown index %q", p.IndexName)
		}
		probeKey := types.NewTuple([]types.Value{p.Filter.Const})
		return NewIndexScan(ctx, table, index, probeKey), nil

	case optimizer.KindFilter:
		child, err := Build(ctx, p.Child)
		if err != nil {
			return nil, err
		}
		f := *p.Filter
		return NewFilter(child, func(t types.Tuple) bool { return t.Value(f.Col).Equal(f.Const) }), nil

	case optimizer.KindSort:
		child, err := Build(ctx, p.Child)
		if err != nil {
			return nil, err
		}
		return NewSort(child, convertOrderBy(p.OrderBy)), nil

	case optimizer.KindTopN:
		child, err := Build(ctx, p.Child)
		if err != nil {
			return nil, err
		}
		return NewTopN(child, convertOrderBy(p.OrderBy), p.Limit), nil

	default:
		return nil, fmt.Errorf("exec: unsupported plan kind %d", p.Kind)
	}
}

func convertOrderBy(terms []optimizer.OrderByTerm) []OrderByExpr {
	out := make([]OrderByExpr, len(terms))
	for i, t := range terms {
		ord := Asc
		if t.Order == 1 {
			ord = Desc
		}
		out[i] = OrderByExpr{Col: t.Col, Order: ord}
	}
	return out
}
