package transform

import (
	"strings"
	"testing"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

func TestDropColumns(t *testing.T) {
	in := table.MustNew(
		table.StringColumn("a", []string{"x"}, nil),
		table.NumberColumn("b", []float64{1}, nil),
		table.NumberColumn("c", []float64{2}, nil),
	)

	out, err := DropColumns(in, []string{"b"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "c"}
	got := out.Names()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("names = %v, want %v", got, want)
	}

	// Input is untouched.
	if in.NumCols() != 3 {
		t.Errorf("input cols = %d, want 3", in.NumCols())
	}
}

func TestDropColumnsBatchedError(t *testing.T) {
	in := table.MustNew(table.StringColumn("a", []string{"x"}, nil))

	_, err := DropColumns(in, []string{"b", "a", "c"})
	if errors.GetCode(err) != errors.ErrCodeColumnsNotFound {
		t.Fatalf("code = %s, want COLUMNS_NOT_FOUND", errors.GetCode(err))
	}
	msg := err.Error()
	if !strings.Contains(msg, "b") || !strings.Contains(msg, "c") {
		t.Errorf("error should list every missing column: %s", msg)
	}
}
