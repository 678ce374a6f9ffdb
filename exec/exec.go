// Package exec is a pull-based executor pipeline where every node
// exposes Init/Next and returns one tuple per call. SeqScan/IndexScan
// resolve MVCC visibility; Insert/Update/Delete are the write path and
// the transaction's sole write-write conflict detectors;
// Aggregation/NestedLoopJoin/Sort/TopN round out the pipeline. A
// Context struct is threaded through construction rather than relying
// on package globals, and executors are plain structs implementing a
// shared interface rather than an interpreter over an AST.
package exec

import (
	"errors"
	"fmt"

	"coredb/catalog"
	"coredb/heap"
	"coredb/txn"
	"coredb/types"
)

// Executor is the pull-based node contract every plan node implements.
// Next returns ok=false (and a zero error) once the node is exhausted;
// a non-nil error is a genuine execution failure the caller must
// propagate (typically aborting the owning transaction).
type Executor interface {
	Init() error
	Next() (types.Tuple, heap.RID, bool, error)
}

// ErrWriteWriteConflict is the sentinel for a detected write-write
// conflict: the transaction must abort, never commit.
var ErrWriteWriteConflict = errors.New("exec: write-write conflict")

// ConflictError wraps ErrWriteWriteConflict with the offending
// transaction and row, so callers can log or report specifics while
// still matching the sentinel via errors.Is.
type ConflictError struct {
	TxnID uint64
	RID   heap.RID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("exec: txn %d conflicts on row %s: %v", e.TxnID, e.RID, ErrWriteWriteConflict)
}

func (e *ConflictError) Unwrap() error { return ErrWriteWriteConflict }

// Context carries the handles every executor needs: the running
// transaction and manager that interpret visibility and record
// conflicts, and the catalog used to resolve table/index references
// baked into the plan at construction time.
type Context struct {
	Txn     *txn.Transaction
	TxnMgr  *txn.Manager
	Catalog *catalog.Catalog
}
