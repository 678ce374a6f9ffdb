package txn

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTainted is returned by Commit when the transaction was already
	// marked TAINTED by a write-write conflict before Commit was ever
	// called.
	ErrTainted = errors.New("txn: transaction is tainted")
	// ErrSerializationFailure is returned when SERIALIZABLE verification
	// rejects the commit.
	ErrSerializationFailure = errors.New("txn: serialization verification failed")
	// ErrNotFound is returned by Manager.Lookup for an unknown txn id.
	ErrNotFound = errors.New("txn: transaction not found")
)

// Manager owns the commit timestamp sequence, the global transaction
// map, and the watermark those pieces feed. Begin/Commit/Abort always
// take the commit mutex before touching the transaction map mutex, so
// a commit in progress never observes a half-registered transaction.
type Manager struct {
	txnMapMu sync.RWMutex
	txnMap   map[uint64]*Transaction

	commitMu     sync.Mutex
	lastCommitTS uint64

	nextTxnID atomic.Uint64

	Watermark *Watermark
}

func NewManager() *Manager {
	return &Manager{
		txnMap:    make(map[uint64]*Transaction),
		Watermark: NewWatermark(0),
	}
}

// Begin assigns a fresh txn id, snapshots the last commit timestamp as
// read_ts, registers that read_ts with the watermark, and publishes
// the transaction into the global map.
func (m *Manager) Begin(isolation IsolationLevel) *Transaction {
	id := StartID + m.nextTxnID.Add(1)

	m.commitMu.Lock()
	readTS := m.lastCommitTS
	m.commitMu.Unlock()

	t := newTransaction(id, readTS, isolation)
	m.Watermark.AddTxn(readTS)

	m.txnMapMu.Lock()
	m.txnMap[id] = t
	m.txnMapMu.Unlock()

	logrus.WithFields(logrus.Fields{"txn_id": id, "read_ts": readTS}).Debug("txn: begin")
	return t
}

// Lookup returns the transaction registered under id.
func (m *Manager) Lookup(id uint64) (*Transaction, error) {
	m.txnMapMu.RLock()
	defer m.txnMapMu.RUnlock()
	t, ok := m.txnMap[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// Commit assigns a commit timestamp and finalizes t. verify (when
// non-nil and t is SERIALIZABLE) re-scans the write set for
// read-write cycles; apply performs the domain-specific "rewrite every
// row in the write set to carry ts = commit_ts" step, since Manager
// has no heap/catalog access of its own. Both run with the commit
// mutex held, so the commit timestamp is allocated, the rewrite
// happens, and only then is it published to the watermark.
func (m *Manager) Commit(t *Transaction, verify func() bool, apply func(commitTS uint64) error) (uint64, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if t.State() == Tainted {
		m.abortLocked(t)
		return 0, ErrTainted
	}

	commitTS := m.lastCommitTS + 1

	if t.IsolationLevel() == Serializable && verify != nil && !verify() {
		m.abortLocked(t)
		return 0, ErrSerializationFailure
	}

	if apply != nil {
		if err := apply(commitTS); err != nil {
			m.abortLocked(t)
			return 0, err
		}
	}

	m.lastCommitTS = commitTS
	t.setCommitTS(commitTS)
	t.setState(Committed)
	m.Watermark.UpdateCommitTS(commitTS)
	m.Watermark.RemoveTxn(t.ReadTS())

	logrus.WithFields(logrus.Fields{"txn_id": t.ID(), "commit_ts": commitTS}).Debug("txn: committed")
	return commitTS, nil
}

// Abort marks t ABORTED and retires its read_ts from the watermark.
// Writes are never physically rolled back: readers skip versions
// authored by an aborted transaction by consulting its State.
func (m *Manager) Abort(t *Transaction) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	m.abortLocked(t)
}

func (m *Manager) abortLocked(t *Transaction) {
	t.setState(Aborted)
	m.Watermark.RemoveTxn(t.ReadTS())
	logrus.WithFields(logrus.Fields{"txn_id": t.ID()}).Debug("txn: aborted")
}

// RunGC drops transactions from the map once they are terminal and
// unreachable by any present or future reader: a committed
// transaction once its commit_ts falls below the watermark, an
// aborted one once its own read_ts does (aborted writes carry ts ==
// txn_id, always >= StartID, so no reader ever resolves to them
// directly — once the watermark has passed the aborting transaction's
// own snapshot, nothing can still be walking its chain links either).
func (m *Manager) RunGC() {
	watermark := m.Watermark.Watermark()

	m.txnMapMu.Lock()
	defer m.txnMapMu.Unlock()
	for id, t := range m.txnMap {
		switch t.State() {
		case Committed:
			if t.CommitTS() < watermark {
				delete(m.txnMap, id)
			}
		case Aborted:
			if t.ReadTS() < watermark {
				delete(m.txnMap, id)
			}
		}
	}
}
