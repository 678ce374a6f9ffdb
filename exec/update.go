package exec

import (
	"coredb/catalog"
	"coredb/heap"
	"coredb/types"
)

// Update applies set to every row child yields, via runMutation's
// two-phase write-write-conflict-checked protocol.
type Update struct {
	ctx   *Context
	table *catalog.TableInfo
	child Executor
	set   func(types.Tuple) types.Tuple

	done bool
}

func NewUpdate(ctx *Context, table *catalog.TableInfo, child Executor, set func(types.Tuple) types.Tuple) *Update {
	return &Update{ctx: ctx, table: table, child: child, set: set}
}

func (u *Update) Init() error {
	u.done = false
	return u.child.Init()
}

func (u *Update) Next() (types.Tuple, heap.RID, bool, error) {
	if u.done {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	u.done = true

	count, err := runMutation(u.ctx, u.table, u.child, u.set, false)
	if err != nil {
		return types.Tuple{}, heap.RID{}, false, err
	}
	return types.NewTuple([]types.Value{types.NewInteger(count)}), heap.RID{}, true, nil
}
