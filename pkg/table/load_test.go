package table

import (
	"strings"
	"testing"

	"github.com/vizcli/viz/pkg/errors"
)

func TestLoadReaderDispatch(t *testing.T) {
	for _, hint := range []string{"data.txt", "data.xlsx", "data"} {
		_, err := LoadReader(strings.NewReader("a,b\n1,2\n"), hint)
		if errors.GetCode(err) != errors.ErrCodeUnsupportedFormat {
			t.Errorf("LoadReader(%q): code = %s, want UNSUPPORTED_FORMAT", hint, errors.GetCode(err))
		}
	}
}

func TestLoadReaderCaseInsensitiveSuffix(t *testing.T) {
	tbl, err := LoadReader(strings.NewReader("a\n1\n"), "DATA.CSV")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", tbl.NumRows())
	}
}

func TestReadCSV(t *testing.T) {
	csv := "region,units,active\nnorth,10,true\nsouth,,false\neast,7.5,true\n"
	tbl, err := LoadReader(strings.NewReader(csv), "sales.csv")
	if err != nil {
		t.Fatal(err)
	}

	if tbl.NumRows() != 3 || tbl.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", tbl.NumRows(), tbl.NumCols())
	}

	units, err := tbl.Column("units")
	if err != nil {
		t.Fatal(err)
	}
	if units.Kind() != KindNumber {
		t.Errorf("units kind = %s, want number", units.Kind())
	}
	if !units.IsNull(1) {
		t.Error("empty CSV cell should load as null")
	}
	if n, _ := units.Value(2).Num(); n != 7.5 {
		t.Errorf("units[2] = %v, want 7.5", n)
	}

	active, _ := tbl.Column("active")
	if active.Kind() != KindBool {
		t.Errorf("active kind = %s, want bool", active.Kind())
	}
}

func TestReadJSON(t *testing.T) {
	src := `[
		{"name": "a", "score": 1},
		{"name": "b", "score": 2.5, "extra": "late"},
		{"name": "c"}
	]`
	tbl, err := LoadReader(strings.NewReader(src), "rows.json")
	if err != nil {
		t.Fatal(err)
	}

	// Column order follows first appearance across rows.
	want := []string{"name", "score", "extra"}
	got := tbl.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}

	score, _ := tbl.Column("score")
	if score.Kind() != KindNumber {
		t.Errorf("score kind = %s, want number", score.Kind())
	}
	if !score.IsNull(2) {
		t.Error("missing key should backfill null")
	}

	extra, _ := tbl.Column("extra")
	if !extra.IsNull(0) {
		t.Error("rows before a key first appears should hold nulls")
	}
	if extra.Value(1).String() != "late" {
		t.Errorf("extra[1] = %q, want late", extra.Value(1).String())
	}
}

func TestReadJSONLateNumericKey(t *testing.T) {
	// A numeric key first seen after row 0 must backfill nulls, not zeros.
	tbl, err := LoadReader(strings.NewReader(`[{"a": 1}, {"a": 2, "b": 3}]`), "rows.json")
	if err != nil {
		t.Fatal(err)
	}

	b, err := tbl.Column("b")
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsNull(0) {
		t.Fatalf("b[0] = %q (IsNull=false), want null", b.Value(0).String())
	}
	if n, ok := b.Value(1).Num(); !ok || n != 3 {
		t.Errorf("b[1] = %v, want 3", b.Value(1))
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not an array", `{"a": 1}`},
		{"row not object", `[1, 2]`},
		{"nested value", `[{"a": {"b": 1}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.src), "rows.json")
			if errors.GetCode(err) != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

func TestCSVRoundtrip(t *testing.T) {
	tbl := MustNew(
		StringColumn("k", []string{"x", "y"}, nil),
		NumberColumn("v", []float64{1, 2}, nil),
	)

	var buf strings.Builder
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := LoadReader(strings.NewReader(buf.String()), "out.csv")
	if err != nil {
		t.Fatal(err)
	}
	if back.NumRows() != 2 || back.NumCols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", back.NumRows(), back.NumCols())
	}
	v, _ := back.Value(1, "v")
	if n, _ := v.Num(); n != 2 {
		t.Errorf("v[1] = %v, want 2", n)
	}
}
