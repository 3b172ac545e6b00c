package svgchart

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
)

// renderNetwork draws a network spec through Graphviz. Node positions were
// already computed by the layout algorithm, so the DOT pins them with
// pos="x,y!" under the neato engine and Graphviz only draws.
func renderNetwork(spec *chart.Spec) ([]byte, error) {
	dot := networkDOT(spec.Network, title(spec))

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render network")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// networkDOT serializes the graph with pinned positions. Node IDs are index
// based because distinct node values can share a display label.
func networkDOT(nd *chart.NetworkData, title string) string {
	maxDegree := 0
	for _, d := range nd.Degrees {
		maxDegree = max(maxDegree, d)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fontsize=11, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("\n")

	for i, label := range nd.Labels {
		// Layout coordinates sit in [-1, 1]; scale to inches for neato.
		x := nd.Positions[i][0] * 4
		y := nd.Positions[i][1] * 4
		width := 0.4 + 0.1*float64(nd.Degrees[i])
		fill, font := degreeColor(nd.Degrees[i], maxDegree)
		fmt.Fprintf(&buf, "  n%d [label=%q, pos=\"%.4f,%.4f!\", width=%.2f, fillcolor=%q, fontcolor=%q];\n",
			i, label, x, y, width, fill, font)
	}

	buf.WriteString("\n")
	for _, e := range nd.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Viridis endpoints; node fill interpolates between them by relative degree.
var (
	viridisLow  = [3]int{0x44, 0x01, 0x54}
	viridisHigh = [3]int{0xfd, 0xe7, 0x25}
)

// degreeColor maps a degree onto the viridis ramp and picks a legible font
// color for the fill.
func degreeColor(degree, maxDegree int) (fill, font string) {
	t := 0.0
	if maxDegree > 0 {
		t = float64(degree) / float64(maxDegree)
	}
	var rgb [3]int
	for i := range rgb {
		rgb[i] = viridisLow[i] + int(t*float64(viridisHigh[i]-viridisLow[i]))
	}
	fill = fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	font = "white"
	if t > 0.5 {
		font = "black"
	}
	return fill, font
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz root element so the viewBox starts
// at the origin and the pixel size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
