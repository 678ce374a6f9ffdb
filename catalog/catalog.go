// Package catalog is the table_oid/index_oid directory: the minimum
// bookkeeping the executor pipeline needs to resolve a table or index
// by name or id, built around a single RWMutex-guarded struct with
// name and oid maps kept in sync.
package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"coredb/heap"
	"coredb/index/hash"
	"coredb/storage/bufferpool"
	"coredb/txn"
	"coredb/types"
)

// TableInfo is the directory entry for one table.
type TableInfo struct {
	OID      int64
	Name     string
	Schema   *types.Schema
	Heap     *heap.Table
	Versions *txn.VersionMap
}

// IndexInfo is the directory entry for one hash index over a table.
type IndexInfo struct {
	OID       int64
	Name      string
	TableOID  int64
	KeyAttrs  []int
	KeySchema *types.Schema
	Index     *hash.Table[hash.Key, heap.RID]
}

// Catalog is the process-wide table/index directory. One Catalog
// backs one buffer pool; all tables it creates share that pool.
type Catalog struct {
	mu sync.RWMutex

	bpm *bufferpool.Pool

	tables       map[int64]*TableInfo
	tablesByName map[string]int64
	nextTableOID atomic.Int64

	indexes         map[int64]*IndexInfo
	indexesByTable  map[int64][]int64
	indexesByName   map[string]int64
	nextIndexOID    atomic.Int64
}

func New(bpm *bufferpool.Pool) *Catalog {
	return &Catalog{
		bpm:            bpm,
		tables:         make(map[int64]*TableInfo),
		tablesByName:   make(map[string]int64),
		indexes:        make(map[int64]*IndexInfo),
		indexesByTable: make(map[int64][]int64),
		indexesByName:  make(map[string]int64),
	}
}

// CreateTable allocates a fresh heap table backed by the catalog's
// buffer pool and registers it under name.
func (c *Catalog) CreateTable(name string, schema *types.Schema) (*TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tablesByName[name]; exists {
		return nil, fmt.Errorf("catalog: table %q already exists", name)
	}

	ht, err := heap.NewTable(c.bpm)
	if err != nil {
		return nil, fmt.Errorf("catalog: create table %q: %w", name, err)
	}

	oid := c.nextTableOID.Add(1)
	info := &TableInfo{
		OID:      oid,
		Name:     name,
		Schema:   schema,
		Heap:     ht,
		Versions: txn.NewVersionMap(),
	}
	c.tables[oid] = info
	c.tablesByName[name] = oid
	return info, nil
}

func (c *Catalog) GetTable(oid int64) (*TableInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tables[oid]
	return info, ok
}

func (c *Catalog) GetTableByName(name string) (*TableInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	oid, ok := c.tablesByName[name]
	if !ok {
		return nil, false
	}
	return c.tables[oid], true
}

// CreateIndex builds a hash index over tableOID's columns at keyAttrs
// and registers it under name. headerMaxDepth/directoryMaxDepth/
// bucketMaxSize of 0 select defaults appropriate for small test
// fixtures; production callers should size these from config.
func (c *Catalog) CreateIndex(name string, tableOID int64, keyAttrs []int,
	headerMaxDepth, directoryMaxDepth uint32, bucketMaxSize int) (*IndexInfo, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.indexesByName[name]; exists {
		return nil, fmt.Errorf("catalog: index %q already exists", name)
	}
	table, ok := c.tables[tableOID]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown table oid %d", tableOID)
	}

	if headerMaxDepth == 0 {
		headerMaxDepth = 2
	}
	if directoryMaxDepth == 0 {
		directoryMaxDepth = 9
	}

	ht, err := hash.New[hash.Key, heap.RID](c.bpm, hash.KeyCodec, hash.RIDCodec, hash.CompareKey,
		headerMaxDepth, directoryMaxDepth, bucketMaxSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: create index %q: %w", name, err)
	}

	oid := c.nextIndexOID.Add(1)
	info := &IndexInfo{
		OID:       oid,
		Name:      name,
		TableOID:  tableOID,
		KeyAttrs:  keyAttrs,
		KeySchema: table.Schema.Project(keyAttrs),
		Index:     ht,
	}
	c.indexes[oid] = info
	c.indexesByName[name] = oid
	c.indexesByTable[tableOID] = append(c.indexesByTable[tableOID], oid)
	return info, nil
}

func (c *Catalog) GetIndex(oid int64) (*IndexInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.indexes[oid]
	return info, ok
}

func (c *Catalog) GetIndexByName(name string) (*IndexInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	oid, ok := c.indexesByName[name]
	if !ok {
		return nil, false
	}
	return c.indexes[oid], true
}

// GetIndexesForTable returns every index registered over tableOID.
func (c *Catalog) GetIndexesForTable(tableOID int64) []*IndexInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	oids := c.indexesByTable[tableOID]
	out := make([]*IndexInfo, 0, len(oids))
	for _, oid := range oids {
		out = append(out, c.indexes[oid])
	}
	return out
}
