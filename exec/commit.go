package exec

import "fmt"

// CommitTransaction commits ctx.Txn, supplying Manager.Commit's apply
// hook: rewrite every row in the transaction's write set to carry
// ts = commit_ts, once a commit timestamp has been allocated but
// before it is published to the watermark. verify is forwarded
// unchanged for SERIALIZABLE's read-write-cycle check — the caller
// assembles its own verification closure rather than the transaction
// manager tracking a generic dependency graph (see DESIGN.md).
func CommitTransaction(ctx *Context, verify func() bool) (uint64, error) {
	apply := func(commitTS uint64) error {
		for tableOID, rids := range ctx.Txn.WriteSet() {
			table, ok := ctx.Catalog.GetTable(tableOID)
			if !ok {
				return fmt.Errorf("exec: commit: unknown table oid %d", tableOID)
			}
			for _, rid := range rids {
				meta, _, err := table.Heap.GetTuple(rid)
				if err != nil {
					return fmt.Errorf("exec: commit: read row %s: %w", rid, err)
				}
				meta.TS = commitTS
				if err := table.Heap.UpdateTupleMeta(meta, rid); err != nil {
					return fmt.Errorf("exec: commit: rewrite row %s: %w", rid, err)
				}
			}
		}
		return nil
	}

	return ctx.TxnMgr.Commit(ctx.Txn, verify, apply)
}
