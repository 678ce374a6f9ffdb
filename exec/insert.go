package exec

import (
	"fmt"

	"coredb/catalog"
	"coredb/heap"
	"coredb/index/hash"
	"coredb/txn"
	"coredb/types"

	"github.com/sirupsen/logrus"
)

// Insert drains child, inserting every tuple it yields into table with
// ts = the running transaction's id, maintaining every index on table
// and recording each new RID in the transaction's write set. Returns a
// single one-column row holding the affected-row count on its first
// Next call.
type Insert struct {
	ctx   *Context
	table *catalog.TableInfo
	child Executor

	done bool
}

func NewInsert(ctx *Context, table *catalog.TableInfo, child Executor) *Insert {
	return &Insert{ctx: ctx, table: table, child: child}
}

func (ins *Insert) Init() error {
	ins.done = false
	return ins.child.Init()
}

func (ins *Insert) Next() (types.Tuple, heap.RID, bool, error) {
	if ins.done {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	ins.done = true

	var count int64
	indexes := ins.ctx.Catalog.GetIndexesForTable(ins.table.OID)
	txnID := ins.ctx.Txn.ID()

	for {
		tuple, _, ok, err := ins.child.Next()
		if err != nil {
			return types.Tuple{}, heap.RID{}, false, err
		}
		if !ok {
			break
		}

		data := tuple.Encode()
		rid, err := ins.table.Heap.InsertTuple(heap.Meta{TS: txnID, IsDeleted: false}, data)
		if err != nil {
			return types.Tuple{}, heap.RID{}, false, fmt.Errorf("exec: insert into %s: %w", ins.table.Name, err)
		}

		for _, idx := range indexes {
			key := tuple.KeyFromTuple(idx.KeyAttrs)
			if !idx.Index.Insert(hash.BuildKey(key), rid) {
				logrus.WithFields(logrus.Fields{"index": idx.Name, "rid": rid.String()}).
					Warn("exec: index insert rejected (duplicate key)")
			}
		}

		log := txn.UndoLog{
			IsDeleted:      true,
			TS:             txnID,
			ModifiedFields: make([]bool, ins.table.Schema.ColumnCount()),
		}
		link := ins.ctx.Txn.AppendUndoLog(log)
		ins.table.Versions.SetHead(rid, link)
		ins.ctx.Txn.RecordWrite(ins.table.OID, rid)

		count++
	}

	return types.NewTuple([]types.Value{types.NewInteger(count)}), heap.RID{}, true, nil
}
