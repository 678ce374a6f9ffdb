package exec

import (
	"coredb/catalog"
	"coredb/heap"
	"coredb/txn"
	"coredb/types"
)

// resolveVisible applies MVCC visibility resolution to one heap row,
// using ctx's transaction id/read timestamp and table's version-chain
// head/owning-transaction lookups to walk undo logs on demand.
func resolveVisible(ctx *Context, table *catalog.TableInfo, rid heap.RID, meta heap.Meta, data []byte) (types.Tuple, bool) {
	baseTuple := types.DecodeTuple(table.Schema, data)
	head := table.Versions.Head(rid)
	next := func(link txn.UndoLink) (txn.UndoLog, bool) {
		owner, err := ctx.TxnMgr.Lookup(link.PrevTxnID)
		if err != nil {
			return txn.UndoLog{}, false
		}
		return owner.UndoLogAt(link.PrevLogIdx)
	}
	return txn.ReconstructVersion(meta, baseTuple, ctx.Txn.ID(), ctx.Txn.ReadTS(), next, head)
}
