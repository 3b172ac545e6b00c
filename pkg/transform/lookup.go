package transform

import (
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// ApplyLookup replaces the cells of sourceColumn with the labels a lookup
// table maps their values to.
//
// The lookup table is read as a code→label mapping (codeColumn→labelColumn);
// matching is done on the canonical string rendering of both sides. Rows
// whose source value has no matching code keep their original value: a
// lookup miss is a graceful fallback, not an error. Duplicate codes carrying
// the same label collapse silently; duplicate codes with conflicting labels
// fail with AMBIGUOUS_LOOKUP_MAPPING.
//
// The output preserves the source table's row count, row order, and column
// order; the lookup table's columns never appear in the output.
func ApplyLookup(t, lookup *table.Table, sourceColumn, codeColumn, labelColumn string) (*table.Table, error) {
	src, err := t.Column(sourceColumn)
	if err != nil {
		return nil, err
	}
	codes, err := lookup.Column(codeColumn)
	if err != nil {
		return nil, err
	}
	labels, err := lookup.Column(labelColumn)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]table.Value, lookup.NumRows())
	for i := range lookup.NumRows() {
		code := codes.Value(i).String()
		label := labels.Value(i)
		if prev, ok := mapping[code]; ok {
			if prev.String() != label.String() {
				return nil, errors.New(errors.ErrCodeAmbiguousLookupMapping,
					"lookup code %q maps to both %q and %q", code, prev.String(), label.String())
			}
			continue
		}
		mapping[code] = label
	}

	values := make([]table.Value, t.NumRows())
	for i := range t.NumRows() {
		orig := src.Value(i)
		if label, ok := mapping[orig.String()]; ok {
			values[i] = label
		} else {
			values[i] = orig
		}
	}
	replaced := table.FromValues(sourceColumn, values)

	cols := make([]table.Column, t.NumCols())
	for i := range t.NumCols() {
		c := t.ColumnAt(i)
		if c.Name() == sourceColumn {
			cols[i] = replaced
		} else {
			cols[i] = c
		}
	}
	return table.New(cols...)
}
