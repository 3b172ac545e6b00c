// Package table provides the in-memory columnar table used by every
// transformation and chart assembly step.
//
// A Table is an ordered sequence of named, typed columns sharing a common row
// count. Column order is significant (index-based unpivot depends on it) and
// column names are unique and case-sensitive. Tables are immutable value
// types: every transformation returns a new table, and no in-place mutation
// is observable to callers.
//
// # Value coercion
//
// All membership comparisons (filter, exclude, facet keys) operate on the
// canonical string rendering of a cell, produced by [Value.String]. The
// canonical rendering formats integral floats without a trailing ".0", so a
// CSV cell "1" and a Parquet float 1.0 compare equal.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vizcli/viz/pkg/errors"
)

// Kind identifies the type of a column or value.
type Kind int

// Column kinds.
const (
	KindNumber Kind = iota // float64 storage
	KindString
	KindBool
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// =============================================================================
// Value - Single Cell
// =============================================================================

// Value is a single cell: a typed payload plus a null flag. Values are
// comparable and safe to use as map keys; all null values compare equal.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	null bool
}

// NumberValue creates a numeric value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// String creates a string value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// Bool creates a boolean value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Null creates the null value. All nulls are equal regardless of the column
// kind they came from.
func Null() Value { return Value{null: true} }

// Kind returns the value's kind. Meaningless for nulls.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.null }

// Num returns the numeric payload and whether the value is a non-null number.
func (v Value) Num() (float64, bool) {
	return v.num, !v.null && v.kind == KindNumber
}

// Bool returns the boolean payload and whether the value is a non-null bool.
func (v Value) Bool() (bool, bool) {
	return v.b, !v.null && v.kind == KindBool
}

// String returns the canonical string rendering of the value.
//
// Numbers use the shortest decimal representation, with integral floats
// rendered without a trailing ".0" (1.0 → "1"). Bools render as
// "true"/"false". Null renders as the empty string.
func (v Value) String() string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// formatNumber renders a float using the canonical policy: integral values
// in plain decimal notation, everything else via shortest-round-trip
// formatting.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Native returns the value as a plain Go value suitable for JSON encoding:
// float64, string, bool, or nil for null.
func (v Value) Native() any {
	if v.null {
		return nil
	}
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return v.str
	}
}

// =============================================================================
// Column - Named Typed Vector
// =============================================================================

// Column is a named, typed vector of cells with an optional null mask.
// Columns are immutable once handed to a Table.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	bools []bool
	valid []bool // nil means all cells valid
}

// NumberColumn creates a numeric column. valid may be nil when every cell is
// present; otherwise it must match len(values).
func NumberColumn(name string, values []float64, valid []bool) Column {
	return Column{name: name, kind: KindNumber, nums: values, valid: valid}
}

// StringColumn creates a string column.
func StringColumn(name string, values []string, valid []bool) Column {
	return Column{name: name, kind: KindString, strs: values, valid: valid}
}

// BoolColumn creates a boolean column.
func BoolColumn(name string, values []bool, valid []bool) Column {
	return Column{name: name, kind: KindBool, bools: values, valid: valid}
}

// FromValues creates a column from a slice of cell values, inferring the
// column kind. If all non-null values share a kind, that kind is used;
// mixed-kind inputs (which arise when unpivot merges value columns of
// different types) fall back to a string column holding canonical renderings.
func FromValues(name string, values []Value) Column {
	kind, mixed := inferKind(values)
	n := len(values)
	valid := make([]bool, n)
	allValid := true
	for i, v := range values {
		valid[i] = !v.IsNull()
		if v.IsNull() {
			allValid = false
		}
	}
	if allValid {
		valid = nil
	}

	if mixed || kind == KindString {
		strs := make([]string, n)
		for i, v := range values {
			if !v.IsNull() {
				strs[i] = v.String()
			}
		}
		return StringColumn(name, strs, valid)
	}

	switch kind {
	case KindNumber:
		nums := make([]float64, n)
		for i, v := range values {
			nums[i], _ = v.Num()
		}
		return NumberColumn(name, nums, valid)
	case KindBool:
		bools := make([]bool, n)
		for i, v := range values {
			bools[i], _ = v.Bool()
		}
		return BoolColumn(name, bools, valid)
	default:
		// All-null input: an empty string column keeps the nulls.
		return StringColumn(name, make([]string, n), valid)
	}
}

// inferKind returns the common kind of the non-null values and whether the
// input mixes kinds. An all-null slice reports KindString without mixing.
func inferKind(values []Value) (Kind, bool) {
	kind := Kind(-1)
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if kind == Kind(-1) {
			kind = v.Kind()
			continue
		}
		if v.Kind() != kind {
			return KindString, true
		}
	}
	if kind == Kind(-1) {
		return KindString, false
	}
	return kind, false
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Kind returns the column kind.
func (c Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c Column) Len() int {
	switch c.kind {
	case KindNumber:
		return len(c.nums)
	case KindBool:
		return len(c.bools)
	default:
		return len(c.strs)
	}
}

// IsNull reports whether cell i is null.
func (c Column) IsNull(i int) bool {
	return c.valid != nil && !c.valid[i]
}

// Value returns cell i.
func (c Column) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	switch c.kind {
	case KindNumber:
		return NumberValue(c.nums[i])
	case KindBool:
		return BoolValue(c.bools[i])
	default:
		return StringValue(c.strs[i])
	}
}

// Renamed returns a copy of the column under a new name. The cell storage is
// shared, which is safe because columns are never mutated.
func (c Column) Renamed(name string) Column {
	c.name = name
	return c
}

// =============================================================================
// Table - Ordered Column Collection
// =============================================================================

// Table is an ordered, immutable collection of equally sized columns.
type Table struct {
	cols []Column
	rows int
}

// New creates a table from columns, validating that names are unique and all
// columns share the same length. An empty column list yields a 0×0 table.
func New(cols ...Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Name() == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "column name cannot be empty")
		}
		if seen[c.Name()] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate column name %q", c.Name())
		}
		seen[c.Name()] = true
		if c.Len() != rows {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"column %q has %d rows, want %d", c.Name(), c.Len(), rows)
		}
	}
	return &Table{cols: cols, rows: rows}, nil
}

// MustNew is New for statically known-good inputs, such as tests.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// Column resolves a column by name. Resolution failure is a hard error,
// never a silent no-op.
func (t *Table) Column(name string) (Column, error) {
	for _, c := range t.cols {
		if c.Name() == name {
			return c, nil
		}
	}
	return Column{}, errors.New(errors.ErrCodeColumnNotFound,
		"column %q not found (available: %s)", name, strings.Join(t.Names(), ", "))
}

// ColumnAt returns the column at position i in table order.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// Require validates that every named column exists, reporting all missing
// names in one batched error.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return errors.New(errors.ErrCodeColumnNotFound,
			"column %q not found (available: %s)", missing[0], strings.Join(t.Names(), ", "))
	default:
		return errors.New(errors.ErrCodeColumnsNotFound,
			"columns not found: %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(t.Names(), ", "))
	}
}

// Value returns the cell at (row, column name).
func (t *Table) Value(row int, name string) (Value, error) {
	c, err := t.Column(name)
	if err != nil {
		return Value{}, err
	}
	return c.Value(row), nil
}

// TakeRows returns a new table containing the given row indices of every
// column, in the order provided.
func (t *Table) TakeRows(indices []int) *Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		values := make([]Value, len(indices))
		for j, idx := range indices {
			values[j] = c.Value(idx)
		}
		cols[i] = FromValues(c.Name(), values)
	}
	return &Table{cols: cols, rows: len(indices)}
}
