// Package optimizer applies three boundary rewrite rules over a small
// plan-node IR: Merge FilterScan, SeqScan→IndexScan, and
// Sort+Limit→TopN. There is no SQL parser in this module; callers
// build a Plan tree directly and hand it to Optimize before executing
// it. This is plan rewriting on the boundary, not a cost-based
// optimizer — there is no cost model or join reordering here.
package optimizer

import "coredb/types"

// Plan is a node in the unoptimized or optimized logical plan tree.
// Which of its fields are meaningful is selected by Kind — a small,
// closed set of node kinds stands in for a proper sum type since Go
// has none.
type Plan struct {
	Kind Kind

	// SeqScan / IndexScan
	TableName string
	Filter    *ColConstPredicate // equality predicate, nil if none
	IndexName string             // set once rewritten to IndexScan

	// Filter / Sort / Limit / TopN
	Child *Plan

	// Sort / TopN
	OrderBy []OrderByTerm
	Limit   int // TopN's N, or Limit's row cap before merging into Sort
}

type Kind int

const (
	KindSeqScan Kind = iota
	KindIndexScan
	KindFilter
	KindSort
	KindLimit
	KindTopN
)

// ColConstPredicate models the only predicate shape the
// SeqScan→IndexScan rule considers: `col = const`.
type ColConstPredicate struct {
	Col   int
	Const types.Value
}

type OrderByTerm struct {
	Col   int
	Order int // 0 = ASC/DEFAULT, 1 = DESC — mirrors exec.Order without importing exec
}

func SeqScan(table string, filter *ColConstPredicate) *Plan {
	return &Plan{Kind: KindSeqScan, TableName: table, Filter: filter}
}

func FilterNode(child *Plan, filter *ColConstPredicate) *Plan {
	return &Plan{Kind: KindFilter, Child: child, Filter: filter}
}

func SortNode(child *Plan, orderBy []OrderByTerm) *Plan {
	return &Plan{Kind: KindSort, Child: child, OrderBy: orderBy}
}

func LimitNode(child *Plan, n int) *Plan {
	return &Plan{Kind: KindLimit, Child: child, Limit: n}
}
