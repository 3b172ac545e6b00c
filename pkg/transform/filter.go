package transform

import (
	"github.com/vizcli/viz/pkg/table"
)

// Filter keeps the rows whose cell in column, canonically stringified, is a
// member of values. Row order is preserved and no deduplication happens.
// Fails with COLUMN_NOT_FOUND if the column is absent.
func Filter(t *table.Table, column string, values []string) (*table.Table, error) {
	return selectRows(t, column, values, true)
}

// Exclude drops the rows whose cell in column, canonically stringified, is a
// member of values. Filter and Exclude with the same arguments partition the
// table's rows into two disjoint sets whose union is the input.
func Exclude(t *table.Table, column string, values []string) (*table.Table, error) {
	return selectRows(t, column, values, false)
}

func selectRows(t *table.Table, column string, values []string, keep bool) (*table.Table, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}

	var indices []int
	for i := range t.NumRows() {
		if set[col.Value(i).String()] == keep {
			indices = append(indices, i)
		}
	}
	return t.TakeRows(indices), nil
}
