package transform

import (
	"testing"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

func TestCompare(t *testing.T) {
	a := table.MustNew(
		table.StringColumn("region", []string{"north", "south", "east"}, nil),
		table.NumberColumn("units", []float64{10, 20, 30}, nil),
	)
	b := table.MustNew(
		table.StringColumn("region", []string{"north", "south", "west"}, nil),
		table.NumberColumn("units", []float64{12, 18, 5}, nil),
	)

	out, err := Compare(a, b, "region")
	if err != nil {
		t.Fatal(err)
	}

	// One row per key in the union of both sides.
	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", out.NumRows())
	}
	want := []string{"region", "units", "units_b", "units_diff"}
	got := out.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}

	diff, _ := out.Column("units_diff")
	for i, w := range []float64{-2, 2} {
		if n, ok := diff.Value(i).Num(); !ok || n != w {
			t.Errorf("units_diff[%d] = %v, want %v", i, diff.Value(i), w)
		}
	}

	// east exists only in a: b side and diff are null, key is kept.
	if v, _ := out.Value(2, "region"); v.String() != "east" {
		t.Errorf("region[2] = %q, want east", v.String())
	}
	if v, _ := out.Value(2, "units_b"); !v.IsNull() {
		t.Errorf("units_b[2] = %v, want null", v)
	}
	if v, _ := out.Value(2, "units_diff"); !v.IsNull() {
		t.Errorf("units_diff[2] = %v, want null", v)
	}

	// west exists only in b: the key is coalesced from b.
	if v, _ := out.Value(3, "region"); v.String() != "west" {
		t.Errorf("region[3] = %q, want west", v.String())
	}
	if v, _ := out.Value(3, "units"); !v.IsNull() {
		t.Errorf("units[3] = %v, want null", v)
	}
	if v, _ := out.Value(3, "units_b"); v.String() != "5" {
		t.Errorf("units_b[3] = %q, want 5", v.String())
	}
}

func TestCompareNonCollidingColumns(t *testing.T) {
	a := table.MustNew(
		table.StringColumn("k", []string{"x"}, nil),
		table.NumberColumn("old", []float64{1}, nil),
	)
	b := table.MustNew(
		table.StringColumn("k", []string{"x"}, nil),
		table.NumberColumn("new", []float64{2}, nil),
	)

	out, err := Compare(a, b, "k")
	if err != nil {
		t.Fatal(err)
	}
	// No name collision means no suffix, and no shared numeric column means
	// no diff.
	want := []string{"k", "old", "new"}
	got := out.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestCompareDuplicateKeys(t *testing.T) {
	a := table.MustNew(
		table.StringColumn("k", []string{"x"}, nil),
		table.NumberColumn("v", []float64{1}, nil),
	)
	b := table.MustNew(
		table.StringColumn("k", []string{"x", "x"}, nil),
		table.NumberColumn("v", []float64{2, 3}, nil),
	)

	out, err := Compare(a, b, "k")
	if err != nil {
		t.Fatal(err)
	}
	// A duplicated match yields one row per b-side match.
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	diff, _ := out.Column("v_diff")
	for i, w := range []float64{-1, -2} {
		if n, _ := diff.Value(i).Num(); n != w {
			t.Errorf("v_diff[%d] = %v, want %v", i, n, w)
		}
	}
}

func TestCompareMissingKey(t *testing.T) {
	a := table.MustNew(table.StringColumn("k", []string{"x"}, nil))
	b := table.MustNew(table.StringColumn("other", []string{"x"}, nil))

	_, err := Compare(a, b, "k")
	if errors.GetCode(err) != errors.ErrCodeColumnNotFound {
		t.Errorf("code = %s, want COLUMN_NOT_FOUND", errors.GetCode(err))
	}
}
