package transform

import (
	"slices"
	"strings"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// DropColumns removes the named columns from the table. If any name is
// absent it fails with COLUMNS_NOT_FOUND listing every missing name, not
// just the first, and the input table is left untouched.
func DropColumns(t *table.Table, columns []string) (*table.Table, error) {
	var missing []string
	for _, name := range columns {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeColumnsNotFound,
			"columns not found: %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(t.Names(), ", "))
	}

	keep := complement(t.Names(), columns)
	cols := make([]table.Column, 0, len(keep))
	for i := range t.NumCols() {
		c := t.ColumnAt(i)
		if slices.Contains(keep, c.Name()) {
			cols = append(cols, c)
		}
	}
	return table.New(cols...)
}
