package transform

import (
	"testing"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

func intPtr(i int) *int { return &i }

// wideTable is a 2-row wide table: one id column, two value columns.
func wideTable(t *testing.T) *table.Table {
	t.Helper()
	return table.MustNew(
		table.StringColumn("region", []string{"north", "south"}, nil),
		table.NumberColumn("q1", []float64{10, 20}, nil),
		table.NumberColumn("q2", []float64{11, 21}, nil),
	)
}

func cell(t *testing.T, tbl *table.Table, row int, name string) string {
	t.Helper()
	v, err := tbl.Value(row, name)
	if err != nil {
		t.Fatal(err)
	}
	return v.String()
}

func TestUnpivotByIDColumns(t *testing.T) {
	out, err := Unpivot(wideTable(t), UnpivotOptions{IDColumns: []string{"region"}})
	if err != nil {
		t.Fatal(err)
	}

	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4 (2 rows x 2 value columns)", out.NumRows())
	}
	want := []string{"region", "variable", "value"}
	for i, name := range out.Names() {
		if name != want[i] {
			t.Fatalf("names = %v, want %v", out.Names(), want)
		}
	}

	// Grouped by original row, then value-column order.
	checks := []struct {
		row                     int
		region, variable, value string
	}{
		{0, "north", "q1", "10"},
		{1, "north", "q2", "11"},
		{2, "south", "q1", "20"},
		{3, "south", "q2", "21"},
	}
	for _, c := range checks {
		if got := cell(t, out, c.row, "region"); got != c.region {
			t.Errorf("row %d region = %q, want %q", c.row, got, c.region)
		}
		if got := cell(t, out, c.row, "variable"); got != c.variable {
			t.Errorf("row %d variable = %q, want %q", c.row, got, c.variable)
		}
		if got := cell(t, out, c.row, "value"); got != c.value {
			t.Errorf("row %d value = %q, want %q", c.row, got, c.value)
		}
	}
}

func TestUnpivotByIndexRange(t *testing.T) {
	out, err := Unpivot(wideTable(t), UnpivotOptions{
		ValueStart:   intPtr(1),
		ValueEnd:     intPtr(3),
		VariableName: "quarter",
		ValueName:    "units",
	})
	if err != nil {
		t.Fatal(err)
	}

	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", out.NumRows())
	}
	if !out.HasColumn("quarter") || !out.HasColumn("units") {
		t.Fatalf("custom column names missing: %v", out.Names())
	}
	if got := cell(t, out, 0, "quarter"); got != "q1" {
		t.Errorf("quarter[0] = %q, want q1", got)
	}
}

func TestUnpivotOpenEndedRange(t *testing.T) {
	out, err := Unpivot(wideTable(t), UnpivotOptions{ValueStart: intPtr(1)})
	if err != nil {
		t.Fatal(err)
	}
	// End defaults to the column count, so q1 and q2 are both values.
	if out.NumRows() != 4 {
		t.Errorf("rows = %d, want 4", out.NumRows())
	}
}

func TestUnpivotMixedValueKinds(t *testing.T) {
	tbl := table.MustNew(
		table.StringColumn("id", []string{"a"}, nil),
		table.NumberColumn("n", []float64{1}, nil),
		table.StringColumn("s", []string{"x"}, nil),
	)
	out, err := Unpivot(tbl, UnpivotOptions{IDColumns: []string{"id"}})
	if err != nil {
		t.Fatal(err)
	}
	val, _ := out.Column("value")
	if val.Kind() != table.KindString {
		t.Errorf("mixed value column kind = %s, want string", val.Kind())
	}
	if got := cell(t, out, 0, "value"); got != "1" {
		t.Errorf("value[0] = %q, want canonical %q", got, "1")
	}
}

func TestUnpivotErrors(t *testing.T) {
	tests := []struct {
		name string
		opts UnpivotOptions
		code errors.Code
	}{
		{"no selection mode", UnpivotOptions{}, errors.ErrCodeAmbiguousUnpivotSpec},
		{"negative start", UnpivotOptions{ValueStart: intPtr(-1)}, errors.ErrCodeIndexOutOfRange},
		{"end past column count", UnpivotOptions{ValueStart: intPtr(0), ValueEnd: intPtr(4)}, errors.ErrCodeIndexOutOfRange},
		{"empty range", UnpivotOptions{ValueStart: intPtr(2), ValueEnd: intPtr(2)}, errors.ErrCodeIndexOutOfRange},
		{"unknown id column", UnpivotOptions{IDColumns: []string{"nope"}}, errors.ErrCodeColumnNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpivot(wideTable(t), tt.opts)
			if errors.GetCode(err) != tt.code {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.code)
			}
		})
	}
}
