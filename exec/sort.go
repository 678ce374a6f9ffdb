package exec

import (
	"container/heap"
	"sort"

	coreheap "coredb/heap"
	"coredb/types"
)

// Order is a sort direction; the zero value is ASC (the default when
// no direction is specified).
type Order int

const (
	Asc Order = iota
	Desc
)

// OrderByExpr is one (column, direction) pair; Sort/TopN build a
// stable comparator from a sequence of these.
type OrderByExpr struct {
	Col   int
	Order Order
}

func compareRows(a, b types.Tuple, orderBy []OrderByExpr) int {
	for _, ob := range orderBy {
		c := a.Value(ob.Col).Compare(b.Value(ob.Col))
		if ob.Order == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort materializes child's output and applies a stable sort built
// from orderBy.
type Sort struct {
	child   Executor
	orderBy []OrderByExpr

	rows []types.Tuple
	pos  int
}

func NewSort(child Executor, orderBy []OrderByExpr) *Sort {
	return &Sort{child: child, orderBy: orderBy}
}

func (s *Sort) Init() error {
	if err := s.child.Init(); err != nil {
		return err
	}
	rows, err := drainAll(s.child)
	if err != nil {
		return err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(rows[i], rows[j], s.orderBy) < 0
	})
	s.rows = rows
	s.pos = 0
	return nil
}

func (s *Sort) Next() (types.Tuple, coreheap.RID, bool, error) {
	if s.pos >= len(s.rows) {
		return types.Tuple{}, coreheap.RID{}, false, nil
	}
	t := s.rows[s.pos]
	s.pos++
	return t, coreheap.RID{}, true, nil
}

// topNHeap is a container/heap max-heap over child rows under orderBy,
// with the comparator inverted so the N smallest rows survive at the
// cost of evicting the current worst element.
type topNHeap struct {
	rows    []types.Tuple
	orderBy []OrderByExpr
}

func (h topNHeap) Len() int { return len(h.rows) }
func (h topNHeap) Less(i, j int) bool {
	return compareRows(h.rows[i], h.rows[j], h.orderBy) > 0
}
func (h topNHeap) Swap(i, j int) { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }
func (h *topNHeap) Push(x any)   { h.rows = append(h.rows, x.(types.Tuple)) }
func (h *topNHeap) Pop() any {
	old := h.rows
	n := len(old)
	v := old[n-1]
	h.rows = old[:n-1]
	return v
}

// TopN keeps a bounded max-heap of size n, yielding the n smallest
// rows under orderBy in ascending sorted order. The optimizer rewrites
// Sort+Limit pairs into this node.
type TopN struct {
	child   Executor
	orderBy []OrderByExpr
	n       int

	rows []types.Tuple
	pos  int
}

func NewTopN(child Executor, orderBy []OrderByExpr, n int) *TopN {
	return &TopN{child: child, orderBy: orderBy, n: n}
}

func (t *TopN) Init() error {
	if err := t.child.Init(); err != nil {
		return err
	}

	h := &topNHeap{orderBy: t.orderBy}
	for {
		tuple, _, ok, err := t.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if t.n <= 0 {
			continue
		}
		if h.Len() < t.n {
			heap.Push(h, tuple)
			continue
		}
		if compareRows(tuple, h.rows[0], t.orderBy) < 0 {
			heap.Pop(h)
			heap.Push(h, tuple)
		}
	}

	rows := make([]types.Tuple, h.Len())
	copy(rows, h.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(rows[i], rows[j], t.orderBy) < 0
	})
	t.rows = rows
	t.pos = 0
	return nil
}

func (t *TopN) Next() (types.Tuple, coreheap.RID, bool, error) {
	if t.pos >= len(t.rows) {
		return types.Tuple{}, coreheap.RID{}, false, nil
	}
	row := t.rows[t.pos]
	t.pos++
	return row, coreheap.RID{}, true, nil
}
