package chart

import (
	"fmt"
	"sort"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// Options parameterizes chart assembly.
type Options struct {
	Type  Type     `json:"type"`
	X     string   `json:"x"`
	Y     []string `json:"y,omitempty"`
	Title string   `json:"title,omitempty"`

	// Color groups rows into one trace per distinct value of this column.
	Color string `json:"color,omitempty"`

	// Facets partitions the chart by the composite key of these columns and
	// attaches a dropdown selector.
	Facets []string `json:"facets,omitempty"`
}

// New assembles a chart specification from a table.
//
// Without facets, it emits one trace per color group (or a single group when
// no color column is set). With facets, it emits the full facet × color
// trace matrix with pre-computed visibility and one dropdown button per
// facet key; pie charts instead use a single trace whose data each button
// rewrites, because pie geometry cannot be toggled by a visibility flag.
func New(t *table.Table, opts Options) (*Spec, error) {
	if err := validate(t, opts); err != nil {
		return nil, err
	}
	if len(opts.Facets) > 0 {
		return newFaceted(t, opts)
	}
	return newPlain(t, opts)
}

// validate checks the chart type and resolves every referenced column before
// any assembly work.
func validate(t *table.Table, opts Options) error {
	switch opts.Type {
	case TypeBar, TypeLine, TypeScatter, TypeHistogram, TypePie:
	default:
		return errors.New(errors.ErrCodeUnsupportedChartType,
			"unsupported chart type: %s (supported: bar, line, scatter, histogram, pie)", opts.Type)
	}

	// Histogram bins x alone and pie falls back to counting labels, but the
	// cartesian types would silently emit zero traces without a y column.
	switch opts.Type {
	case TypeBar, TypeLine, TypeScatter:
		if len(opts.Y) == 0 {
			return errors.New(errors.ErrCodeInvalidInput,
				"%s chart requires at least one y column", opts.Type)
		}
	}

	cols := []string{opts.X}
	cols = append(cols, yColumns(opts)...)
	if opts.Color != "" {
		cols = append(cols, opts.Color)
	}
	cols = append(cols, opts.Facets...)
	return t.Require(cols...)
}

// yColumns returns the y columns a chart type actually consumes: histogram
// bins x and ignores y entirely, scatter and pie use only the first.
func yColumns(opts Options) []string {
	switch opts.Type {
	case TypeHistogram:
		return nil
	case TypeScatter, TypePie:
		if len(opts.Y) > 0 {
			return opts.Y[:1]
		}
		return nil
	default:
		return opts.Y
	}
}

// newPlain builds the non-faceted trace set over all rows.
func newPlain(t *table.Table, opts Options) (*Spec, error) {
	rows := allRows(t.NumRows())
	traces, err := buildTraces(t, opts, rows, "", nil)
	if err != nil {
		return nil, err
	}

	spec := &Spec{Traces: traces, Layout: baseLayout(opts, len(traces))}
	if opts.Title != "" {
		spec.Layout.Title = &Title{Text: opts.Title}
	}
	return spec, nil
}

// buildTraces emits the traces for one row subset (the whole table, or one
// facet partition). Color groups are ordered by ascending canonical string;
// visible, when non-nil, overrides the default initial visibility.
func buildTraces(t *table.Table, opts Options, rows []int, facet string, visible *bool) ([]*Trace, error) {
	color := opts.Color
	if opts.Type == TypePie {
		// Pie slices already encode the categorical split; color grouping
		// does not apply.
		color = ""
	}
	groups, err := colorGroups(t, color, rows)
	if err != nil {
		return nil, err
	}

	var traces []*Trace
	for _, g := range groups {
		switch opts.Type {
		case TypePie:
			tr, err := pieTrace(t, opts, g.rows)
			if err != nil {
				return nil, err
			}
			tr.Name = g.name
			tr.Facet = facet
			tr.Visible = visible
			traces = append(traces, tr)
		case TypeHistogram:
			x, err := columnNatives(t, opts.X, g.rows)
			if err != nil {
				return nil, err
			}
			traces = append(traces, &Trace{
				Type:    "histogram",
				Name:    g.name,
				X:       x,
				Facet:   facet,
				Visible: visible,
			})
		default:
			x, err := columnNatives(t, opts.X, g.rows)
			if err != nil {
				return nil, err
			}
			for _, yCol := range yColumns(opts) {
				y, err := columnNatives(t, yCol, g.rows)
				if err != nil {
					return nil, err
				}
				traces = append(traces, &Trace{
					Type:    traceType(opts.Type),
					Mode:    traceMode(opts.Type),
					Name:    traceName(g.name, yCol, len(yColumns(opts))),
					X:       x,
					Y:       y,
					Facet:   facet,
					Visible: visible,
				})
			}
		}
	}
	return traces, nil
}

// pieTrace builds a single pie trace from the x (labels) and first y
// (values) columns over the given rows.
func pieTrace(t *table.Table, opts Options, rows []int) (*Trace, error) {
	labels, err := columnNatives(t, opts.X, rows)
	if err != nil {
		return nil, err
	}
	tr := &Trace{Type: "pie", Labels: labels}
	if ys := yColumns(opts); len(ys) > 0 {
		values, err := columnNatives(t, ys[0], rows)
		if err != nil {
			return nil, err
		}
		tr.Values = values
	}
	return tr, nil
}

// traceType maps a chart type to the plotly trace type.
func traceType(ct Type) string {
	switch ct {
	case TypeLine, TypeScatter:
		return "scatter"
	default:
		return string(ct)
	}
}

// traceMode returns the scatter mode for line and scatter charts.
func traceMode(ct Type) string {
	switch ct {
	case TypeLine:
		return "lines"
	case TypeScatter:
		return "markers"
	default:
		return ""
	}
}

// traceName names a trace from its color group and y column. A lone y
// column inside a color group keeps just the group name; multiple y columns
// get disambiguated.
func traceName(group, yCol string, yCount int) string {
	if group == "" {
		return yCol
	}
	if yCount > 1 {
		return fmt.Sprintf("%s (%s)", group, yCol)
	}
	return group
}

// baseLayout builds the layout shared by plain and faceted charts.
func baseLayout(opts Options, traceCount int) Layout {
	l := Layout{}
	if opts.Type == TypeBar && traceCount > 1 {
		l.BarMode = "group"
	}
	if opts.Type != TypePie {
		l.XAxis = &Axis{Title: &Title{Text: opts.X}}
		if ys := yColumns(opts); len(ys) == 1 {
			l.YAxis = &Axis{Title: &Title{Text: ys[0]}}
		}
	}
	return l
}

// =============================================================================
// Row Grouping
// =============================================================================

// group is one color partition of a row subset.
type group struct {
	name string
	rows []int
}

// colorGroups partitions rows by the canonical string of the color column,
// sorted ascending for deterministic trace order. An empty color column
// yields a single unnamed group.
func colorGroups(t *table.Table, color string, rows []int) ([]group, error) {
	if color == "" {
		return []group{{rows: rows}}, nil
	}
	col, err := t.Column(color)
	if err != nil {
		return nil, err
	}

	byValue := map[string][]int{}
	for _, r := range rows {
		k := col.Value(r).String()
		byValue[k] = append(byValue[k], r)
	}
	keys := make([]string, 0, len(byValue))
	for k := range byValue {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]group, len(keys))
	for i, k := range keys {
		groups[i] = group{name: k, rows: byValue[k]}
	}
	return groups, nil
}

// columnNatives extracts the native (JSON-ready) values of a column for the
// given rows.
func columnNatives(t *table.Table, name string, rows []int) ([]any, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = col.Value(r).Native()
	}
	return out, nil
}

// allRows returns [0, n).
func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
