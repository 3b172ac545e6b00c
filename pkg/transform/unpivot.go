// Package transform implements the pure tabular transformations of the
// pipeline: wide-to-long unpivot, code-to-label lookup, row filtering and
// exclusion, column dropping, and two-table comparison.
//
// Every function validates its own preconditions and fails with a coded
// error identifying the offending column or parameter before touching any
// data; no partial results are ever returned. All functions return new
// tables and never mutate their inputs.
package transform

import (
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// Default names for the two columns unpivot synthesizes.
const (
	DefaultVariableName = "variable"
	DefaultValueName    = "value"
)

// UnpivotOptions selects which columns become value columns.
//
// The two selection modes are mutually exclusive in the sense that at least
// one must be chosen: providing neither IDColumns nor ValueStart fails with
// AMBIGUOUS_UNPIVOT_SPEC. When ValueStart is set, value columns are taken
// from the index range [ValueStart, ValueEnd) over the table's column order
// (ValueEnd defaults to the column count); IDColumns, if also given, still
// names the identifier set, otherwise every remaining column is an
// identifier.
type UnpivotOptions struct {
	IDColumns    []string `json:"id_columns,omitempty"`
	ValueStart   *int     `json:"value_start,omitempty"`
	ValueEnd     *int     `json:"value_end,omitempty"`
	VariableName string   `json:"variable_name,omitempty"`
	ValueName    string   `json:"value_name,omitempty"`
}

// Unpivot reshapes wide-format columns into long-format rows.
//
// For each input row and each value column, the output carries the
// identifier cells unchanged, the value column's name under VariableName,
// and that cell's value under ValueName. Output rows are grouped by original
// row, then by value-column order, so the result is deterministic for
// identical input. Output row count = input rows × value columns.
func Unpivot(t *table.Table, opts UnpivotOptions) (*table.Table, error) {
	varName := opts.VariableName
	if varName == "" {
		varName = DefaultVariableName
	}
	valName := opts.ValueName
	if valName == "" {
		valName = DefaultValueName
	}

	idCols, valueCols, err := splitColumns(t, opts)
	if err != nil {
		return nil, err
	}

	rows := t.NumRows()
	outRows := rows * len(valueCols)

	outCols := make([]table.Column, 0, len(idCols)+2)
	for _, name := range idCols {
		src, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]table.Value, 0, outRows)
		for r := range rows {
			for range valueCols {
				values = append(values, src.Value(r))
			}
		}
		outCols = append(outCols, table.FromValues(name, values))
	}

	variables := make([]string, 0, outRows)
	values := make([]table.Value, 0, outRows)
	valueSrcs := make([]table.Column, len(valueCols))
	for i, name := range valueCols {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		valueSrcs[i] = c
	}
	for r := range rows {
		for i, name := range valueCols {
			variables = append(variables, name)
			values = append(values, valueSrcs[i].Value(r))
		}
	}
	outCols = append(outCols, table.StringColumn(varName, variables, nil))
	outCols = append(outCols, table.FromValues(valName, values))

	return table.New(outCols...)
}

// splitColumns partitions the table's columns into identifier and value sets
// according to the selected mode. The partition is exhaustive in identifier
// mode; in index mode with explicit IDColumns, columns in neither set are
// dropped, matching the combined-mode behavior of the original tool.
func splitColumns(t *table.Table, opts UnpivotOptions) (idCols, valueCols []string, err error) {
	all := t.Names()
	hasIDs := len(opts.IDColumns) > 0
	hasStart := opts.ValueStart != nil

	if !hasIDs && !hasStart {
		return nil, nil, errors.New(errors.ErrCodeAmbiguousUnpivotSpec,
			"must provide either id columns or a value column start index")
	}

	if hasStart {
		start := *opts.ValueStart
		end := len(all)
		if opts.ValueEnd != nil {
			end = *opts.ValueEnd
		}
		if start < 0 || end > len(all) {
			return nil, nil, errors.New(errors.ErrCodeIndexOutOfRange,
				"column indices [%d, %d) out of range: table has %d columns", start, end, len(all))
		}
		if start >= end {
			return nil, nil, errors.New(errors.ErrCodeIndexOutOfRange,
				"value column start %d must be less than end %d", start, end)
		}
		valueCols = all[start:end]
		if hasIDs {
			idCols = opts.IDColumns
			if err := t.Require(idCols...); err != nil {
				return nil, nil, err
			}
		} else {
			idCols = complement(all, valueCols)
		}
		return idCols, valueCols, nil
	}

	idCols = opts.IDColumns
	if err := t.Require(idCols...); err != nil {
		return nil, nil, err
	}
	valueCols = complement(all, idCols)
	return idCols, valueCols, nil
}

// complement returns the names in all that are not in exclude, preserving
// table order.
func complement(all, exclude []string) []string {
	drop := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		drop[name] = true
	}
	var rest []string
	for _, name := range all {
		if !drop[name] {
			rest = append(rest, name)
		}
	}
	return rest
}
