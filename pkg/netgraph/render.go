package netgraph

import (
	"github.com/vizcli/viz/pkg/chart"
)

// DefaultTitle is used when a network chart has no caller-supplied title.
const DefaultTitle = "Network Graph"

// RenderNetwork emits a renderable chart specification for a laid-out graph:
// one line trace drawing every edge (endpoint pairs separated by a path
// break) and one marker trace for the nodes, colored and sized by degree and
// labeled with each node's string form.
func RenderNetwork(g *Graph, positions Positions, title string) *chart.Spec {
	n := g.NodeCount()
	degrees := g.Degrees()

	edgeX := make([]any, 0, 3*g.EdgeCount())
	edgeY := make([]any, 0, 3*g.EdgeCount())
	for _, e := range g.Edges() {
		edgeX = append(edgeX, positions[e.U].X, positions[e.V].X, nil)
		edgeY = append(edgeY, positions[e.U].Y, positions[e.V].Y, nil)
	}
	edgeTrace := &chart.Trace{
		Type:      "scatter",
		Mode:      "lines",
		X:         edgeX,
		Y:         edgeY,
		HoverInfo: "none",
		Line:      &chart.LineStyle{Width: 1, Color: "#888"},
	}

	nodeX := make([]any, n)
	nodeY := make([]any, n)
	labels := make([]string, n)
	colors := make([]float64, n)
	sizes := make([]float64, n)
	for i := range n {
		nodeX[i] = positions[i].X
		nodeY[i] = positions[i].Y
		labels[i] = g.Label(i)
		colors[i] = float64(degrees[i])
		sizes[i] = nodeSize(degrees[i])
	}
	nodeTrace := &chart.Trace{
		Type:         "scatter",
		Mode:         "markers+text",
		X:            nodeX,
		Y:            nodeY,
		Text:         labels,
		TextPosition: "top center",
		HoverInfo:    "text",
		Marker: &chart.Marker{
			Size:      sizes,
			Color:     colors,
			ShowScale: true,
			Scale:     "Viridis",
			Bar: &chart.ColorBar{
				Thickness: 15,
				Title:     "Node Connections",
				XAnchor:   "left",
			},
		},
	}

	if title == "" {
		title = DefaultTitle
	}
	hidden := false
	off := false
	spec := &chart.Spec{
		Traces: []*chart.Trace{edgeTrace, nodeTrace},
		Layout: chart.Layout{
			Title:      &chart.Title{Text: title},
			ShowLegend: &hidden,
			HoverMode:  "closest",
			XAxis:      &chart.Axis{ShowGrid: &off, ZeroLine: &off, ShowTickLabels: &off},
			YAxis:      &chart.Axis{ShowGrid: &off, ZeroLine: &off, ShowTickLabels: &off},
		},
		Network: networkData(g, positions, degrees),
	}
	return spec
}

// nodeSize scales a marker with its degree, bottoming out at a readable
// minimum.
func nodeSize(degree int) float64 {
	return 12 + 3*float64(degree)
}

// networkData captures the structural graph for static renderers.
func networkData(g *Graph, positions Positions, degrees []int) *chart.NetworkData {
	nd := &chart.NetworkData{
		Labels:    make([]string, g.NodeCount()),
		Positions: make([][2]float64, g.NodeCount()),
		Degrees:   degrees,
		Edges:     make([][2]int, 0, g.EdgeCount()),
	}
	for i := range g.NodeCount() {
		nd.Labels[i] = g.Label(i)
		nd.Positions[i] = [2]float64{positions[i].X, positions[i].Y}
	}
	for _, e := range g.Edges() {
		nd.Edges = append(nd.Edges, [2]int{e.U, e.V})
	}
	return nd
}
