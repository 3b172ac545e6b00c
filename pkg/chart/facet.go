package chart

import (
	"fmt"
	"sort"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// newFaceted builds the faceted chart: one dropdown button per composite
// facet key, with traces pre-partitioned per facet.
//
// Two variants share the dropdown plumbing:
//   - multi-trace toggle (bar, line, scatter, histogram): every facet's
//     traces exist up front and buttons flip a visibility vector;
//   - single-trace rewrite (pie): one trace holds the first facet's data and
//     buttons rewrite its labels/values, because hiding a pie trace leaves
//     nothing to render.
func newFaceted(t *table.Table, opts Options) (*Spec, error) {
	keys, partitions, err := facetPartitions(t, opts.Facets)
	if err != nil {
		return nil, err
	}

	if opts.Type == TypePie {
		return facetedPie(t, opts, keys, partitions)
	}
	return facetedMulti(t, opts, keys, partitions)
}

// facetPartitions splits the table's rows by the composite facet key and
// returns the distinct keys in ascending order. Every row belongs to exactly
// one key. Fails with EMPTY_FACET_SET when the table has no rows.
func facetPartitions(t *table.Table, facets []string) ([]string, map[string][]int, error) {
	cols := make([]table.Column, len(facets))
	for i, name := range facets {
		c, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = c
	}

	partitions := map[string][]int{}
	for r := range t.NumRows() {
		key := ""
		for i, c := range cols {
			if i > 0 {
				key += FacetSeparator
			}
			key += c.Value(r).String()
		}
		partitions[key] = append(partitions[key], r)
	}
	if len(partitions) == 0 {
		return nil, nil, errors.New(errors.ErrCodeEmptyFacetSet,
			"cannot facet an empty table")
	}

	keys := make([]string, 0, len(partitions))
	for k := range partitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, partitions, nil
}

// facetedMulti emits the facet × color trace matrix with only the first
// facet's block initially visible, plus one dropdown button per facet whose
// visibility vector lights up exactly that facet's contiguous block.
func facetedMulti(t *table.Table, opts Options, keys []string, partitions map[string][]int) (*Spec, error) {
	var traces []*Trace
	blocks := make([][2]int, len(keys)) // [start, end) trace indices per facet
	for i, key := range keys {
		visible := boolPtr(i == 0)
		start := len(traces)
		facetTraces, err := buildTraces(t, opts, partitions[key], key, visible)
		if err != nil {
			return nil, err
		}
		traces = append(traces, facetTraces...)
		blocks[i] = [2]int{start, len(traces)}
	}

	buttons := make([]Button, len(keys))
	for i, key := range keys {
		visibility := make([]bool, len(traces))
		for j := blocks[i][0]; j < blocks[i][1]; j++ {
			visibility[j] = true
		}
		buttons[i] = Button{
			Label:  key,
			Method: "update",
			Args: []any{
				map[string]any{"visible": visibility},
				map[string]any{"title": facetTitle(opts.Title, key)},
			},
		}
	}

	layout := baseLayout(opts, len(traces))
	layout.Title = &Title{Text: facetTitle(opts.Title, keys[0])}
	layout.UpdateMenus = []UpdateMenu{dropdown(buttons)}

	return &Spec{Traces: traces, Layout: layout, FacetKeys: keys}, nil
}

// facetedPie emits one pie trace holding the first facet's data; each button
// rewrites the trace's labels, values, and the title.
func facetedPie(t *table.Table, opts Options, keys []string, partitions map[string][]int) (*Spec, error) {
	first, err := pieTrace(t, opts, partitions[keys[0]])
	if err != nil {
		return nil, err
	}
	first.Facet = keys[0]

	buttons := make([]Button, len(keys))
	for i, key := range keys {
		tr, err := pieTrace(t, opts, partitions[key])
		if err != nil {
			return nil, err
		}
		buttons[i] = Button{
			Label:  key,
			Method: "update",
			Args: []any{
				// Per-trace data arrays: one inner slice for the lone trace.
				map[string]any{"labels": []any{tr.Labels}, "values": []any{tr.Values}},
				map[string]any{"title": facetTitle(opts.Title, key)},
			},
		}
	}

	layout := baseLayout(opts, 1)
	layout.Title = &Title{Text: facetTitle(opts.Title, keys[0])}
	layout.UpdateMenus = []UpdateMenu{dropdown(buttons)}

	return &Spec{Traces: []*Trace{first}, Layout: layout, FacetKeys: keys}, nil
}

// facetTitle combines the base title with the selected facet value.
func facetTitle(title, key string) string {
	if title == "" {
		return key
	}
	return fmt.Sprintf("%s - %s", title, key)
}

// dropdown places the facet selector above the top-left corner of the plot.
func dropdown(buttons []Button) UpdateMenu {
	return UpdateMenu{
		Buttons:    buttons,
		Direction:  "down",
		ShowActive: true,
		X:          0,
		XAnchor:    "left",
		Y:          1.15,
		YAnchor:    "top",
	}
}
