package table

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/vizcli/viz/pkg/errors"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
		ok   bool
	}{
		{
			name: "empty table",
			cols: nil,
			ok:   true,
		},
		{
			name: "matching lengths",
			cols: []Column{
				StringColumn("a", []string{"x", "y"}, nil),
				NumberColumn("b", []float64{1, 2}, nil),
			},
			ok: true,
		},
		{
			name: "length mismatch",
			cols: []Column{
				StringColumn("a", []string{"x", "y"}, nil),
				NumberColumn("b", []float64{1}, nil),
			},
			ok: false,
		},
		{
			name: "duplicate name",
			cols: []Column{
				StringColumn("a", []string{"x"}, nil),
				NumberColumn("a", []float64{1}, nil),
			},
			ok: false,
		},
		{
			name: "empty name",
			cols: []Column{StringColumn("", []string{"x"}, nil)},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols...)
			if (err == nil) != tt.ok {
				t.Fatalf("New() err = %v, want ok = %v", err, tt.ok)
			}
			if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NumberValue(1.0), "1"},
		{NumberValue(-3), "-3"},
		{NumberValue(2.5), "2.5"},
		{NumberValue(1e15), "1e+15"},
		{NumberValue(math.Inf(1)), "+Inf"},
		{StringValue("hello"), "hello"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{Null(), ""},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFromValuesInference(t *testing.T) {
	t.Run("homogeneous numbers", func(t *testing.T) {
		c := FromValues("n", []Value{NumberValue(1), Null(), NumberValue(3)})
		if c.Kind() != KindNumber {
			t.Fatalf("kind = %s, want number", c.Kind())
		}
		if !c.IsNull(1) {
			t.Error("cell 1 should be null")
		}
	})

	t.Run("mixed kinds collapse to strings", func(t *testing.T) {
		c := FromValues("m", []Value{NumberValue(1), StringValue("x"), BoolValue(true)})
		if c.Kind() != KindString {
			t.Fatalf("kind = %s, want string", c.Kind())
		}
		if got := c.Value(0).String(); got != "1" {
			t.Errorf("cell 0 = %q, want canonical %q", got, "1")
		}
	})

	t.Run("all null", func(t *testing.T) {
		c := FromValues("n", []Value{Null(), Null()})
		if !c.IsNull(0) || !c.IsNull(1) {
			t.Error("all cells should stay null")
		}
	})
}

func TestRequire(t *testing.T) {
	tbl := MustNew(
		StringColumn("region", []string{"north"}, nil),
		NumberColumn("units", []float64{10}, nil),
	)

	if err := tbl.Require("region", "units"); err != nil {
		t.Fatalf("Require() = %v, want nil", err)
	}

	err := tbl.Require("nope")
	if errors.GetCode(err) != errors.ErrCodeColumnNotFound {
		t.Fatalf("single missing: code = %s, want COLUMN_NOT_FOUND", errors.GetCode(err))
	}

	err = tbl.Require("nope", "units", "missing")
	if errors.GetCode(err) != errors.ErrCodeColumnsNotFound {
		t.Fatalf("batched missing: code = %s, want COLUMNS_NOT_FOUND", errors.GetCode(err))
	}
	msg := err.Error()
	if !strings.Contains(msg, "nope") || !strings.Contains(msg, "missing") {
		t.Errorf("error should name every missing column: %s", msg)
	}
	if !strings.Contains(msg, "region") {
		t.Errorf("error should list available columns: %s", msg)
	}
}

func TestTakeRows(t *testing.T) {
	tbl := MustNew(
		StringColumn("k", []string{"a", "b", "c"}, nil),
		NumberColumn("v", []float64{1, 2, 3}, nil),
	)

	out := tbl.TakeRows([]int{2, 0})
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	v, _ := out.Value(0, "k")
	if v.String() != "c" {
		t.Errorf("row 0 = %q, want c", v.String())
	}
	v, _ = out.Value(1, "v")
	if n, _ := v.Num(); n != 1 {
		t.Errorf("row 1 v = %v, want 1", n)
	}

	// The source table is untouched.
	if tbl.NumRows() != 3 {
		t.Errorf("source rows = %d, want 3", tbl.NumRows())
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := MustNew(
		StringColumn("name", []string{"a", "b"}, nil),
		NumberColumn("score", []float64{1.0, 2.5}, []bool{true, false}),
	)

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := "name,score\na,1\nb,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV = %q, want %q", buf.String(), want)
	}
}
