package optimizer

import "coredb/catalog"

// Optimize applies three rewrite rules bottom-up:
//
//  1. Merge FilterScan: Filter(SeqScan) -> SeqScan(filter) when the
//     SeqScan underneath has no predicate of its own.
//  2. SeqScan→IndexScan: if the SeqScan's filter is `col = const` and
//     col is the sole column of some hash index on the table, rewrite
//     to an IndexScan over that index.
//  3. Sort+Limit→TopN: a Limit directly above a Sort becomes a single
//     TopN node carrying the sort's order-by and the limit's count.
func Optimize(p *Plan, cat *catalog.Catalog) *Plan {
	if p == nil {
		return nil
	}
	p.Child = Optimize(p.Child, cat)

	p = mergeFilterScan(p)
	p = seqScanToIndexScan(p, cat)
	p = sortLimitToTopN(p)
	return p
}

func mergeFilterScan(p *Plan) *Plan {
	if p.Kind != KindFilter || p.Child == nil || p.Child.Kind != KindSeqScan || p.Child.Filter != nil {
		return p
	}
	return SeqScan(p.Child.TableName, p.Filter)
}

func seqScanToIndexScan(p *Plan, cat *catalog.Catalog) *Plan {
	if p.Kind != KindSeqScan || p.Filter == nil || cat == nil {
		return p
	}
	table, ok := cat.GetTableByName(p.TableName)
	if !ok {
		return p
	}
	for _, idx := range cat.GetIndexesForTable(table.OID) {
		if len(idx.KeyAttrs) == 1 && idx.KeyAttrs[0] == p.Filter.Col {
			return &Plan{
				Kind:      KindIndexScan,
				TableName: p.TableName,
				IndexName: idx.Name,
				Filter:    p.Filter,
			}
		}
	}
	return p
}

func sortLimitToTopN(p *Plan) *Plan {
	if p.Kind != KindLimit || p.Child == nil || p.Child.Kind != KindSort {
		return p
	}
	return &Plan{Kind: KindTopN, Child: p.Child.Child, OrderBy: p.Child.OrderBy, Limit: p.Limit}
}
