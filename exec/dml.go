package exec

import (
	"fmt"

	"coredb/catalog"
	"coredb/heap"
	"coredb/index/hash"
	"coredb/txn"
	"coredb/types"
)

// mutator computes a row's new value given its current value. Delete
// uses a mutator that returns an all-NULL tuple of the same schema.
type mutator func(old types.Tuple) types.Tuple

// runMutation is the shared Update/Delete two-phase protocol: drain
// child collecting target RIDs, re-check each for a write-write
// conflict, then apply mutate and extend or create the row's undo log
// entry. markDeleted sets the new TupleMeta's IsDeleted flag (true for
// Delete, false for Update).
func runMutation(ctx *Context, table *catalog.TableInfo, child Executor, mutate mutator, markDeleted bool) (int64, error) {
	type survivor struct {
		rid      heap.RID
		oldMeta  heap.Meta
		oldTuple types.Tuple
	}
	var survivors []survivor

	for {
		_, rid, ok, err := child.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}

		meta, data, err := table.Heap.GetTuple(rid)
		if err != nil {
			return 0, fmt.Errorf("exec: read row %s: %w", rid, err)
		}
		if meta.IsDeleted {
			continue
		}
		if txn.IsWriteWriteConflict(meta, ctx.Txn.ID(), ctx.Txn.ReadTS()) {
			ctx.Txn.SetTainted()
			return 0, &ConflictError{TxnID: ctx.Txn.ID(), RID: rid}
		}

		survivors = append(survivors, survivor{
			rid:      rid,
			oldMeta:  meta,
			oldTuple: types.DecodeTuple(table.Schema, data),
		})
	}

	indexes := ctx.Catalog.GetIndexesForTable(table.OID)
	txnID := ctx.Txn.ID()
	numCols := table.Schema.ColumnCount()
	var count int64

	for _, s := range survivors {
		newTuple := mutate(s.oldTuple)
		newMeta := heap.Meta{TS: txnID, IsDeleted: markDeleted}

		if err := table.Heap.UpdateTupleInPlace(newMeta, newTuple.Encode(), s.rid); err != nil {
			return 0, fmt.Errorf("exec: update row %s: %w", s.rid, err)
		}

		for _, idx := range indexes {
			oldKey := hash.BuildKey(s.oldTuple.KeyFromTuple(idx.KeyAttrs))
			newKey := hash.BuildKey(newTuple.KeyFromTuple(idx.KeyAttrs))
			if oldKey != newKey {
				idx.Index.Remove(oldKey)
				idx.Index.Insert(newKey, s.rid)
			}
		}

		installUndoLog(ctx, table, s.rid, s.oldMeta, s.oldTuple, newTuple, numCols)
		ctx.Txn.RecordWrite(table.OID, s.rid)
		count++
	}

	return count, nil
}

// installUndoLog extends the current transaction's own earlier log for
// rid (if base_meta.ts already equals this transaction's id) or
// chains a fresh one onto the previous head.
func installUndoLog(ctx *Context, table *catalog.TableInfo, rid heap.RID, oldMeta heap.Meta, oldTuple, newTuple types.Tuple, numCols int) {
	head := table.Versions.Head(rid)

	if oldMeta.TS == ctx.Txn.ID() && head.Valid() && head.PrevTxnID == ctx.Txn.ID() {
		existing, ok := ctx.Txn.UndoLogAt(head.PrevLogIdx)
		if ok {
			merged := mergeUndoLog(existing, oldTuple, newTuple, numCols)
			ctx.Txn.ReplaceUndoLogAt(head.PrevLogIdx, merged)
			return
		}
	}

	mask := make([]bool, numCols)
	var values []types.Value
	for i := 0; i < numCols; i++ {
		mask[i] = true
		values = append(values, oldTuple.Value(i))
	}
	log := txn.UndoLog{
		IsDeleted:      false,
		TS:             oldMeta.TS,
		ModifiedFields: mask,
		PartialTuple:   types.NewTuple(values),
		Prev:           head,
	}
	link := ctx.Txn.AppendUndoLog(log)
	table.Versions.SetHead(rid, link)
}

// mergeUndoLog widens existing's ModifiedFields to also cover any
// column that changed between oldTuple and newTuple, preserving
// existing's already-recorded pre-image values (the true original,
// since no one else may write a row this transaction already owns)
// and sourcing newly-covered columns' pre-images from oldTuple (still
// the true original for columns this transaction had not yet touched).
func mergeUndoLog(existing txn.UndoLog, oldTuple, newTuple types.Tuple, numCols int) txn.UndoLog {
	mask := make([]bool, numCols)
	copy(mask, existing.ModifiedFields)
	for i := 0; i < numCols; i++ {
		if !oldTuple.Value(i).Equal(newTuple.Value(i)) {
			mask[i] = true
		}
	}

	var values []types.Value
	existingIdx := 0
	for i := 0; i < numCols; i++ {
		hadExisting := i < len(existing.ModifiedFields) && existing.ModifiedFields[i]
		if mask[i] {
			if hadExisting {
				values = append(values, existing.PartialTuple.Value(existingIdx))
			} else {
				values = append(values, oldTuple.Value(i))
			}
		}
		if hadExisting {
			existingIdx++
		}
	}

	return txn.UndoLog{
		IsDeleted:      existing.IsDeleted,
		TS:             existing.TS,
		ModifiedFields: mask,
		PartialTuple:   types.NewTuple(values),
		Prev:           existing.Prev,
	}
}
