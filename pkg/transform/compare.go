package transform

import (
	"github.com/vizcli/viz/pkg/table"
)

// bSuffix disambiguates the second table's columns whose names collide with
// the first table's.
const bSuffix = "_b"

// diffSuffix names the computed difference columns.
const diffSuffix = "_diff"

// Compare joins two tables with a full outer join on joinKey and appends a
// difference column for every non-key column that is numeric in both tables.
//
// Output column order: all of a's columns, then b's non-key columns (renamed
// with a "_b" suffix when the name collides with one of a's), then one
// "<col>_diff" column per shared numeric column, holding a minus b. A diff
// cell is null whenever either side of the join is missing; an unmatched key
// appears exactly once with nulls on the absent side, so the output has one
// row per key in the union of both tables (plus one row per extra duplicate
// match). Keys are matched on their canonical string rendering, consistent
// with the filter and facet coercion policy.
func Compare(a, b *table.Table, joinKey string) (*table.Table, error) {
	aKey, err := a.Column(joinKey)
	if err != nil {
		return nil, err
	}
	bKey, err := b.Column(joinKey)
	if err != nil {
		return nil, err
	}

	// Rows of b indexed by canonical key.
	bByKey := make(map[string][]int, b.NumRows())
	bKeyOrder := make([]string, 0, b.NumRows())
	for i := range b.NumRows() {
		k := bKey.Value(i).String()
		if _, seen := bByKey[k]; !seen {
			bKeyOrder = append(bKeyOrder, k)
		}
		bByKey[k] = append(bByKey[k], i)
	}

	type pair struct {
		aRow int // -1 when the key exists only in b
		bRow int // -1 when the key exists only in a
	}
	var pairs []pair
	matched := make(map[string]bool, len(bByKey))
	for i := range a.NumRows() {
		k := aKey.Value(i).String()
		if rows, ok := bByKey[k]; ok {
			matched[k] = true
			for _, j := range rows {
				pairs = append(pairs, pair{aRow: i, bRow: j})
			}
		} else {
			pairs = append(pairs, pair{aRow: i, bRow: -1})
		}
	}
	for _, k := range bKeyOrder {
		if matched[k] {
			continue
		}
		for _, j := range bByKey[k] {
			pairs = append(pairs, pair{aRow: -1, bRow: j})
		}
	}

	var cols []table.Column

	// a's columns, with the key coalesced from whichever side is present.
	for i := range a.NumCols() {
		src := a.ColumnAt(i)
		values := make([]table.Value, len(pairs))
		for p, pr := range pairs {
			switch {
			case pr.aRow >= 0:
				values[p] = src.Value(pr.aRow)
			case src.Name() == joinKey:
				values[p] = bKey.Value(pr.bRow)
			default:
				values[p] = table.Null()
			}
		}
		cols = append(cols, table.FromValues(src.Name(), values))
	}

	// b's non-key columns, suffixed on collision.
	for i := range b.NumCols() {
		src := b.ColumnAt(i)
		if src.Name() == joinKey {
			continue
		}
		name := src.Name()
		if a.HasColumn(name) {
			name += bSuffix
		}
		values := make([]table.Value, len(pairs))
		for p, pr := range pairs {
			if pr.bRow >= 0 {
				values[p] = src.Value(pr.bRow)
			} else {
				values[p] = table.Null()
			}
		}
		cols = append(cols, table.FromValues(name, values))
	}

	// Difference columns for columns numeric on both sides, in a's order.
	for i := range a.NumCols() {
		aCol := a.ColumnAt(i)
		if aCol.Name() == joinKey || aCol.Kind() != table.KindNumber {
			continue
		}
		bCol, err := b.Column(aCol.Name())
		if err != nil || bCol.Kind() != table.KindNumber {
			continue
		}
		values := make([]table.Value, len(pairs))
		for p, pr := range pairs {
			values[p] = diffValue(aCol, bCol, pr.aRow, pr.bRow)
		}
		cols = append(cols, table.FromValues(aCol.Name()+diffSuffix, values))
	}

	return table.New(cols...)
}

// diffValue computes a-b for one row pair, null when either side is missing.
func diffValue(aCol, bCol table.Column, aRow, bRow int) table.Value {
	if aRow < 0 || bRow < 0 {
		return table.Null()
	}
	av, aOK := aCol.Value(aRow).Num()
	bv, bOK := bCol.Value(bRow).Num()
	if !aOK || !bOK {
		return table.Null()
	}
	return table.NumberValue(av - bv)
}
