// Command coredbd wires together the storage engine's services —
// buffer pool, disk scheduler, catalog, transaction manager — and runs
// a short self-check transaction against a demo table. There is no SQL
// front end here; callers drive the engine through the catalog/exec Go
// API directly.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"coredb/catalog"
	"coredb/config"
	"coredb/exec"
	"coredb/heap"
	"coredb/optimizer"
	"coredb/storage/bufferpool"
	"coredb/storage/diskmanager"
	"coredb/storage/diskscheduler"
	"coredb/txn"
	"coredb/types"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Default()
	if path := os.Getenv("COREDB_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			logrus.WithError(err).Fatal("coredbd: load config")
		}
		cfg = loaded
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("coredbd: create data dir")
	}

	disk, err := diskmanager.Open(filepath.Join(cfg.DataDir, "coredb.db"))
	if err != nil {
		logrus.WithError(err).Fatal("coredbd: open disk manager")
	}
	defer disk.Close()

	scheduler := diskscheduler.New(disk)
	defer scheduler.Shutdown()

	bpm := bufferpool.New(cfg.BufferPoolCapacity, cfg.ReplacerK, scheduler)
	cat := catalog.New(bpm)
	txnMgr := txn.NewManager()

	schema := types.NewSchema([]types.Column{
		{Name: "id", TypeID: types.TypeInteger},
		{Name: "name", TypeID: types.TypeVarchar},
		{Name: "balance", TypeID: types.TypeInteger},
	})

	table, err := cat.CreateTable("accounts", schema)
	if err != nil {
		logrus.WithError(err).Fatal("coredbd: create table")
	}
	if _, err := cat.CreateIndex("accounts_id_idx", table.OID, []int{0},
		uint32(cfg.HeaderMaxDepth), uint32(cfg.DirectoryMaxDepth), cfg.BucketMaxSize); err != nil {
		logrus.WithError(err).Fatal("coredbd: create index")
	}

	t1 := txnMgr.Begin(txn.SnapshotIsolation)
	ctx1 := &exec.Context{Txn: t1, TxnMgr: txnMgr, Catalog: cat}

	seed := [][3]any{
		{int64(1), "Alice", int64(100)},
		{int64(2), "Bob", int64(50)},
		{int64(3), "Carol", int64(75)},
	}
	rows := make([]types.Tuple, len(seed))
	for i, r := range seed {
		rows[i] = types.NewTuple([]types.Value{
			types.NewInteger(r[0].(int64)),
			types.NewVarchar(r[1].(string)),
			types.NewInteger(r[2].(int64)),
		})
	}

	ins := exec.NewInsert(ctx1, table, &memoryFeed{rows: rows})
	if err := ins.Init(); err != nil {
		logrus.WithError(err).Fatal("coredbd: init insert")
	}
	result, _, _, err := ins.Next()
	if err != nil {
		logrus.WithError(err).Fatal("coredbd: seed insert")
	}
	logrus.WithField("inserted", result.Value(0).AsInteger()).Info("coredbd: seeded accounts")

	if _, err := exec.CommitTransaction(ctx1, nil); err != nil {
		logrus.WithError(err).Fatal("coredbd: commit seed")
	}

	t2 := txnMgr.Begin(txn.SnapshotIsolation)
	ctx2 := &exec.Context{Txn: t2, TxnMgr: txnMgr, Catalog: cat}

	plan := optimizer.Optimize(optimizer.SeqScan("accounts", &optimizer.ColConstPredicate{
		Col: 0, Const: types.NewInteger(2),
	}), cat)

	scan, err := exec.Build(ctx2, plan)
	if err != nil {
		logrus.WithError(err).Fatal("coredbd: build plan")
	}
	if err := scan.Init(); err != nil {
		logrus.WithError(err).Fatal("coredbd: init scan")
	}
	for {
		tuple, _, ok, err := scan.Next()
		if err != nil {
			logrus.WithError(err).Fatal("coredbd: scan")
		}
		if !ok {
			break
		}
		fmt.Printf("row: %s\n", tuple)
	}
	txnMgr.Abort(t2) // read-only transaction, nothing to commit

	fmt.Println(bpm.Stats())
}

// memoryFeed is a trivial Executor yielding a fixed slice of tuples,
// standing in for what a VALUES clause or a real parser's literal
// list would produce.
type memoryFeed struct {
	rows []types.Tuple
	pos  int
}

func (m *memoryFeed) Init() error { m.pos = 0; return nil }

func (m *memoryFeed) Next() (types.Tuple, heap.RID, bool, error) {
	if m.pos >= len(m.rows) {
		return types.Tuple{}, heap.RID{}, false, nil
	}
	t := m.rows[m.pos]
	m.pos++
	return t, heap.RID{}, true, nil
}
