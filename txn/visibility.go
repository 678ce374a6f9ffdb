package txn

import (
	"coredb/heap"
	"coredb/types"
)

// ReconstructVersion is the per-row visibility resolution shared by
// SeqScan and IndexScan. Given a row's base meta/tuple as read from
// the heap and a chain-walk function returning successive undo logs
// from the row's head link, it returns the version visible to a
// transaction reading at readTS (ok is false if no visible version
// exists).
//
// Logs are collected from the head while log.TS > readTS &&
// log.TS != txnID, stopping at the first log that fails that test,
// then applied head-to-tail over the base tuple column-wise under
// each log's modified_fields mask.
func ReconstructVersion(
	baseMeta heap.Meta,
	baseTuple types.Tuple,
	txnID uint64,
	readTS uint64,
	next func(UndoLink) (UndoLog, bool),
	head UndoLink,
) (types.Tuple, bool) {
	if baseMeta.TS <= readTS || baseMeta.TS == txnID {
		if baseMeta.IsDeleted {
			return types.Tuple{}, false
		}
		return baseTuple, true
	}

	var logs []UndoLog
	link := head
	for link.Valid() {
		log, ok := next(link)
		if !ok {
			break
		}
		logs = append(logs, log)
		if !(log.TS > readTS && log.TS != txnID) {
			break
		}
		link = log.Prev
	}

	if len(logs) == 0 {
		return types.Tuple{}, false
	}
	lastLog := logs[len(logs)-1]
	if !(lastLog.TS <= readTS || lastLog.TS == txnID) {
		return types.Tuple{}, false
	}

	values := baseTuple.Values()
	isDeleted := baseMeta.IsDeleted
	for i := len(logs) - 1; i >= 0; i-- {
		log := logs[i]
		isDeleted = log.IsDeleted
		applyLog(values, log)
	}
	if isDeleted {
		return types.Tuple{}, false
	}
	return types.NewTuple(values), true
}

// applyLog overwrites values at the columns log.ModifiedFields marks
// from log.PartialTuple, which carries one value per set bit in
// positional order.
func applyLog(values []types.Value, log UndoLog) {
	j := 0
	for i, set := range log.ModifiedFields {
		if set {
			values[i] = log.PartialTuple.Value(j)
			j++
		}
	}
}

// IsWriteWriteConflict reports whether another live writer (not this
// transaction) already holds the row, or a commit younger than this
// transaction's snapshot has.
func IsWriteWriteConflict(baseMeta heap.Meta, txnID, readTS uint64) bool {
	return (baseMeta.TS >= StartID || baseMeta.TS > readTS) && baseMeta.TS != txnID
}
