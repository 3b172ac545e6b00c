package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vizcli/viz/pkg/cache"
	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/transform"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const salesCSV = "region,product,units\nnorth,widget,10\nnorth,gadget,5\nsouth,widget,7\nsouth,gadget,12\n"

func TestExecuteChartHTML(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{
		Input:  writeCSV(t, "sales.csv", salesCSV),
		Chart:  &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}, Color: "product"},
		Logger: quietLogger(),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Format != "html" {
		t.Errorf("Format = %q, want html", result.Format)
	}
	if result.Spec == nil || len(result.Spec.Traces) != 2 {
		t.Fatalf("expected 2 traces (one per product), got %+v", result.Spec)
	}
	html := string(result.Artifact)
	if !strings.Contains(html, "Plotly.newPlot") {
		t.Error("artifact should embed a plotly bootstrap")
	}
	if !strings.Contains(html, "gadget") {
		t.Error("artifact should contain the trace names")
	}
	if result.Stats.Rows != 4 || result.Stats.Columns != 3 {
		t.Errorf("Stats = %+v, want 4 rows and 3 columns", result.Stats)
	}
}

func TestExecuteTransformOrder(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{
		Input:    writeCSV(t, "sales.csv", salesCSV),
		Filters:  []ValueSelector{{Column: "region", Values: []string{"north"}}},
		Excludes: []ValueSelector{{Column: "product", Values: []string{"gadget"}}},
		Chart:    &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}},
		Logger:   quietLogger(),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Stats.Rows != 1 {
		t.Errorf("Rows = %d, want 1 after filter and exclude", result.Stats.Rows)
	}
}

// TestExecuteUnpivotLine reshapes a wide per-year table into long format and
// draws one line per country.
func TestExecuteUnpivotLine(t *testing.T) {
	wide := "country,2021,2022,2023\nDE,1,2,3\nFR,4,5,6\n"
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{
		Input:   writeCSV(t, "gdp.csv", wide),
		Unpivot: &transform.UnpivotOptions{IDColumns: []string{"country"}, VariableName: "year"},
		Chart:   &chart.Options{Type: chart.TypeLine, X: "year", Y: []string{"value"}, Color: "country"},
		Logger:  quietLogger(),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Stats.Rows != 6 {
		t.Errorf("Rows = %d, want 6 (2 countries x 3 years)", result.Stats.Rows)
	}
	if len(result.Spec.Traces) != 2 {
		t.Fatalf("traces = %d, want one line per country", len(result.Spec.Traces))
	}
	if result.Spec.Traces[0].Name != "DE" || result.Spec.Traces[1].Name != "FR" {
		t.Errorf("trace names = %s, %s, want DE, FR",
			result.Spec.Traces[0].Name, result.Spec.Traces[1].Name)
	}
}

func TestExecuteLookup(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{
		Input: writeCSV(t, "sales.csv", salesCSV),
		Lookup: &LookupOptions{
			Path:         writeCSV(t, "regions.csv", "code,name\nnorth,Northern\nsouth,Southern\n"),
			SourceColumn: "region",
			CodeColumn:   "code",
			LabelColumn:  "name",
		},
		Chart:  &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}},
		Logger: quietLogger(),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	x, err := result.Table.Column("region")
	if err != nil {
		t.Fatal(err)
	}
	if x.Value(0).String() != "Northern" {
		t.Errorf("region[0] = %q, want Northern", x.Value(0).String())
	}
}

func TestExecuteNetwork(t *testing.T) {
	edges := "src,dst\na,b\nb,c\na,c\n"
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{
		Input:   writeCSV(t, "edges.csv", edges),
		Network: &NetworkOptions{SourceColumn: "src", TargetColumn: "dst", Layout: "circular"},
		Logger:  quietLogger(),
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.Spec == nil || result.Spec.Network == nil {
		t.Fatal("expected a network spec")
	}
	if got := len(result.Spec.Network.Labels); got != 3 {
		t.Errorf("node count = %d, want 3", got)
	}
}

func TestExecuteCacheHit(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, c, quietLogger())
	opts := Options{
		Input:  writeCSV(t, "sales.csv", salesCSV),
		Chart:  &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}},
		Logger: quietLogger(),
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should not hit the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if string(second.Artifact) != string(first.Artifact) {
		t.Error("cached artifact should match the original")
	}
}

func TestExecuteValidation(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	input := writeCSV(t, "sales.csv", salesCSV)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "missing input",
			opts: Options{Chart: &chart.Options{Type: chart.TypeBar, X: "region"}},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "chart and network together",
			opts: Options{
				Input:   input,
				Chart:   &chart.Options{Type: chart.TypeBar, X: "region"},
				Network: &NetworkOptions{SourceColumn: "a", TargetColumn: "b"},
			},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "bad output suffix fails before load",
			opts: Options{
				Input:  "does-not-exist.csv",
				Chart:  &chart.Options{Type: chart.TypeBar, X: "region"},
				Output: "out.docx",
			},
			code: errors.ErrCodeUnsupportedExportFormat,
		},
		{
			name: "unknown renderer",
			opts: Options{
				Input:    input,
				Chart:    &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}},
				Renderer: "gnuplot",
			},
			code: errors.ErrCodeUnknownRenderer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			_, err := runner.Execute(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}
