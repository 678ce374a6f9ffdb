package exec

import (
	"coredb/catalog"
	"coredb/heap"
	"coredb/types"
)

// Delete tombstones every row child yields via runMutation's two-phase
// write-write-conflict-checked protocol, writing a null-filled tuple
// and marking TupleMeta.IsDeleted.
type Delete struct {
	ctx   *Context
	table *catalog.TableInfo
	child Executor

	done bool
}

func NewDelete(ctx *Context, table *catalog.TableInfo, child Executor) *Delete {
	return &Delete{ctx: ctx, table: table, child: child}
}

func (d *Delete) Init() error {
	d.done = false
	return d.child.Init()
}

func (d *Delete) Next() (types.Tuple, heap.RID, bool, error) {
	if d.done {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	d.done = true

	nullRow := func(old types.Tuple) types.Tuple {
		values := make([]types.Value, old.NumValues())
		for i := range values {
			values[i] = types.NewNull(old.Value(i).TypeID())
		}
		return types.NewTuple(values)
	}

	count, err := runMutation(d.ctx, d.table, d.child, nullRow, true)
	if err != nil {
		return types.Tuple{}, heap.RID{}, false, err
	}
	return types.NewTuple([]types.Value{types.NewInteger(count)}), heap.RID{}, true, nil
}
