package txn

import (
	"fmt"
	"io"

	"coredb/heap"
	"coredb/types"
)

// DumpVersionChain walks every RID in table and prints its base tuple
// plus full undo chain to w, a debugging aid for verifying MVCC
// transcripts by hand. schema describes the table's rows; versions
// supplies each row's chain head.
func DumpVersionChain(w io.Writer, label string, table *heap.Table, mgr *Manager, schema *types.Schema, versions *VersionMap) {
	fmt.Fprintf(w, "=== %s ===\n", label)
	it := table.MakeIterator()
	for {
		rid, meta, data, ok := it.Next()
		if !ok {
			break
		}
		tuple := types.DecodeTuple(schema, data)
		fmt.Fprintf(w, "RID=%s ts=%s del=%t tuple=%s\n", rid, tsLabel(meta.TS), meta.IsDeleted, tuple)

		link := versions.Head(rid)
		for link.Valid() {
			owner, err := mgr.Lookup(link.PrevTxnID)
			if err != nil {
				fmt.Fprintf(w, "  -> <missing txn %d>\n", link.PrevTxnID)
				break
			}
			log, ok := owner.UndoLogAt(link.PrevLogIdx)
			if !ok {
				fmt.Fprintf(w, "  -> <missing log %d@%d>\n", link.PrevLogIdx, link.PrevTxnID)
				break
			}
			fmt.Fprintf(w, "  -> txn=%d ts=%d del=%t fields=%v tuple=%s state=%s\n",
				link.PrevTxnID, log.TS, log.IsDeleted, log.ModifiedFields, log.PartialTuple, owner.State())
			link = log.Prev
		}
	}
}

func tsLabel(ts uint64) string {
	if ts >= StartID {
		return fmt.Sprintf("txn%d", ts-StartID)
	}
	return fmt.Sprintf("%d", ts)
}
