package chart

import (
	"strings"
	"testing"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

func salesTable() *table.Table {
	return table.MustNew(
		table.StringColumn("region", []string{"north", "south", "north", "south"}, nil),
		table.StringColumn("product", []string{"widget", "widget", "gadget", "gadget"}, nil),
		table.NumberColumn("units", []float64{10, 20, 30, 40}, nil),
		table.NumberColumn("revenue", []float64{100, 200, 300, 400}, nil),
	)
}

func TestNewBar(t *testing.T) {
	spec, err := New(salesTable(), Options{Type: TypeBar, X: "region", Y: []string{"units"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Traces) != 1 {
		t.Fatalf("traces = %d, want 1", len(spec.Traces))
	}
	tr := spec.Traces[0]
	if tr.Type != "bar" || tr.Name != "units" {
		t.Errorf("trace = %s/%s, want bar/units", tr.Type, tr.Name)
	}
	if len(tr.X) != 4 || len(tr.Y) != 4 {
		t.Errorf("point counts = %d/%d, want 4/4", len(tr.X), len(tr.Y))
	}
	if spec.Layout.XAxis.Title.Text != "region" {
		t.Errorf("x axis title = %q, want region", spec.Layout.XAxis.Title.Text)
	}
}

func TestNewColorGrouping(t *testing.T) {
	spec, err := New(salesTable(), Options{
		Type: TypeBar, X: "region", Y: []string{"units"}, Color: "product",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Traces) != 2 {
		t.Fatalf("traces = %d, want 2 (one per product)", len(spec.Traces))
	}
	// Groups are sorted by canonical string.
	if spec.Traces[0].Name != "gadget" || spec.Traces[1].Name != "widget" {
		t.Errorf("trace names = %s, %s, want gadget, widget",
			spec.Traces[0].Name, spec.Traces[1].Name)
	}
	if spec.Layout.BarMode != "group" {
		t.Errorf("barmode = %q, want group", spec.Layout.BarMode)
	}
}

func TestNewMultipleY(t *testing.T) {
	spec, err := New(salesTable(), Options{
		Type: TypeLine, X: "region", Y: []string{"units", "revenue"}, Color: "product",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Traces) != 4 {
		t.Fatalf("traces = %d, want 4 (2 colors x 2 y columns)", len(spec.Traces))
	}
	// Multi-y names are disambiguated.
	if spec.Traces[0].Name != "gadget (units)" {
		t.Errorf("trace name = %q, want %q", spec.Traces[0].Name, "gadget (units)")
	}
	if spec.Traces[0].Type != "scatter" || spec.Traces[0].Mode != "lines" {
		t.Errorf("line trace = %s/%s, want scatter/lines", spec.Traces[0].Type, spec.Traces[0].Mode)
	}
	// Multiple y columns means no single y axis title.
	if spec.Layout.YAxis != nil {
		t.Error("y axis title should be unset for multiple y columns")
	}
}

func TestNewScatter(t *testing.T) {
	spec, err := New(salesTable(), Options{Type: TypeScatter, X: "units", Y: []string{"revenue"}})
	if err != nil {
		t.Fatal(err)
	}
	tr := spec.Traces[0]
	if tr.Type != "scatter" || tr.Mode != "markers" {
		t.Errorf("trace = %s/%s, want scatter/markers", tr.Type, tr.Mode)
	}
}

func TestNewHistogram(t *testing.T) {
	spec, err := New(salesTable(), Options{Type: TypeHistogram, X: "units"})
	if err != nil {
		t.Fatal(err)
	}
	tr := spec.Traces[0]
	if tr.Type != "histogram" {
		t.Fatalf("trace type = %s, want histogram", tr.Type)
	}
	if len(tr.Y) != 0 {
		t.Error("histogram traces carry no y data")
	}
}

func TestNewPie(t *testing.T) {
	spec, err := New(salesTable(), Options{Type: TypePie, X: "region", Y: []string{"units"}})
	if err != nil {
		t.Fatal(err)
	}
	tr := spec.Traces[0]
	if tr.Type != "pie" {
		t.Fatalf("trace type = %s, want pie", tr.Type)
	}
	if len(tr.Labels) != 4 || len(tr.Values) != 4 {
		t.Errorf("labels/values = %d/%d, want 4/4", len(tr.Labels), len(tr.Values))
	}
	if spec.Layout.XAxis != nil {
		t.Error("pie layout should carry no axes")
	}
}

func TestNewPieIgnoresColor(t *testing.T) {
	spec, err := New(salesTable(), Options{
		Type: TypePie, X: "region", Y: []string{"units"}, Color: "product",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Traces) != 1 {
		t.Errorf("traces = %d, want 1 (pie slices already split categorically)", len(spec.Traces))
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown type", Options{Type: "donut", X: "region"}, errors.ErrCodeUnsupportedChartType},
		{"missing x", Options{Type: TypeBar, X: "nope", Y: []string{"units"}}, errors.ErrCodeColumnNotFound},
		{"missing several", Options{Type: TypeBar, X: "nope", Y: []string{"gone"}}, errors.ErrCodeColumnsNotFound},
		{"missing facet", Options{Type: TypeBar, X: "region", Y: []string{"units"}, Facets: []string{"nope"}}, errors.ErrCodeColumnNotFound},
		{"bar without y", Options{Type: TypeBar, X: "region"}, errors.ErrCodeInvalidInput},
		{"line without y", Options{Type: TypeLine, X: "region"}, errors.ErrCodeInvalidInput},
		{"scatter without y", Options{Type: TypeScatter, X: "units"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(salesTable(), tt.opts)
			if errors.GetCode(err) != tt.code {
				t.Errorf("code = %s, want %s", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestSpecJSON(t *testing.T) {
	spec, err := New(salesTable(), Options{Type: TypeBar, X: "region", Y: []string{"units"}, Title: "Sales"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := spec.JSON()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"data":[`, `"type":"bar"`, `"title":{"text":"Sales"}`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}
