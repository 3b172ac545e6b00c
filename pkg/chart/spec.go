// Package chart assembles renderer-agnostic chart specifications from
// tables.
//
// A Spec is shaped like a plotly figure (traces plus a layout descriptor,
// including dropdown update menus for faceted charts) and marshals directly
// to plotly-compatible JSON, but the core never depends on a renderer:
// renderers consume the Spec structurally or as JSON.
package chart

import (
	"encoding/json"
)

// Type enumerates the supported chart types.
type Type string

// Supported chart types.
const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypeScatter   Type = "scatter"
	TypeHistogram Type = "histogram"
	TypePie       Type = "pie"
)

// Types lists the supported chart types in display order.
func Types() []Type {
	return []Type{TypeBar, TypeLine, TypeScatter, TypeHistogram, TypePie}
}

// FacetSeparator joins the values of multiple facet columns into one
// composite facet key.
const FacetSeparator = " | "

// =============================================================================
// Spec - Renderer-Agnostic Figure
// =============================================================================

// Spec is a complete chart specification: a set of traces plus a layout
// descriptor. It marshals to plotly figure JSON.
type Spec struct {
	Traces []*Trace `json:"data"`
	Layout Layout   `json:"layout"`

	// FacetKeys lists the distinct facet keys in dropdown order (ascending
	// lexicographic). Empty for non-faceted charts. Metadata only.
	FacetKeys []string `json:"-"`

	// Network carries the structural graph data when the spec was produced
	// by a network builder, so static renderers can re-render the graph
	// rather than reverse-engineering it from trace coordinates.
	Network *NetworkData `json:"-"`
}

// JSON returns the figure JSON handed to interactive renderers.
func (s *Spec) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// Trace is one renderable series.
type Trace struct {
	Type         string     `json:"type"`
	Name         string     `json:"name,omitempty"`
	Mode         string     `json:"mode,omitempty"`
	X            []any      `json:"x,omitempty"`
	Y            []any      `json:"y,omitempty"`
	Labels       []any      `json:"labels,omitempty"`
	Values       []any      `json:"values,omitempty"`
	Text         []string   `json:"text,omitempty"`
	TextPosition string     `json:"textposition,omitempty"`
	HoverInfo    string     `json:"hoverinfo,omitempty"`
	Visible      *bool      `json:"visible,omitempty"`
	Line         *LineStyle `json:"line,omitempty"`
	Marker       *Marker    `json:"marker,omitempty"`

	// Facet is the facet key this trace belongs to. Metadata only; empty
	// for non-faceted charts.
	Facet string `json:"-"`
}

// IsVisible reports the trace's initial visibility (plotly defaults to
// visible when the flag is unset).
func (t *Trace) IsVisible() bool {
	return t.Visible == nil || *t.Visible
}

// LineStyle styles a line trace.
type LineStyle struct {
	Width float64 `json:"width,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Marker styles a marker trace. Size and Color take either a scalar or one
// value per point.
type Marker struct {
	Size      any       `json:"size,omitempty"`
	Color     any       `json:"color,omitempty"`
	ShowScale bool      `json:"showscale,omitempty"`
	Scale     string    `json:"colorscale,omitempty"`
	Bar       *ColorBar `json:"colorbar,omitempty"`
}

// ColorBar describes the marker color legend.
type ColorBar struct {
	Thickness int    `json:"thickness,omitempty"`
	Title     string `json:"title,omitempty"`
	XAnchor   string `json:"xanchor,omitempty"`
}

// Layout is the figure-level descriptor.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	BarMode     string       `json:"barmode,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
}

// Title wraps a title string the way plotly layout JSON expects.
type Title struct {
	Text string `json:"text,omitempty"`
}

// Axis configures one cartesian axis.
type Axis struct {
	Title          *Title `json:"title,omitempty"`
	ShowGrid       *bool  `json:"showgrid,omitempty"`
	ZeroLine       *bool  `json:"zeroline,omitempty"`
	ShowTickLabels *bool  `json:"showticklabels,omitempty"`
}

// UpdateMenu is a dropdown control attached to the chart.
type UpdateMenu struct {
	Buttons    []Button `json:"buttons"`
	Direction  string   `json:"direction,omitempty"`
	ShowActive bool     `json:"showactive"`
	X          float64  `json:"x"`
	XAnchor    string   `json:"xanchor,omitempty"`
	Y          float64  `json:"y"`
	YAnchor    string   `json:"yanchor,omitempty"`
}

// Button is one dropdown entry. Args carries the plotly restyle/relayout
// payload: for multi-trace facets a visibility vector plus a title update,
// for pie facets a full labels/values rewrite.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// NetworkData is the structural graph behind a network spec: node labels,
// positions, degrees, and edges as index pairs into the node slices.
type NetworkData struct {
	Labels    []string
	Positions [][2]float64
	Degrees   []int
	Edges     [][2]int
}

func boolPtr(b bool) *bool { return &b }
