// Package svgchart renders chart specifications to static SVG without a
// browser. Cartesian charts and pies are drawn directly; network specs are
// laid out through Graphviz with pinned node positions.
//
// The drawing covers the initially visible traces, so a faceted chart
// exports its first facet.
package svgchart

import (
	"bytes"
	"fmt"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/render"
)

// Renderer is the static SVG renderer registered under the name "svg".
type Renderer struct{}

// New creates the svg renderer.
func New() *Renderer { return &Renderer{} }

// Name implements render.Renderer.
func (r *Renderer) Name() string { return "svg" }

// ToHTML wraps the rendered SVG in a minimal standalone document.
func (r *Renderer) ToHTML(spec *chart.Spec) (string, error) {
	svg, err := RenderSVG(spec)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	buf.WriteString(escape(title(spec)))
	buf.WriteString("</title></head>\n<body>\n")
	buf.Write(svg)
	buf.WriteString("\n</body>\n</html>\n")
	return buf.String(), nil
}

// Render implements render.Renderer. PNG and PDF are produced from the SVG
// via rsvg-convert.
func (r *Renderer) Render(spec *chart.Spec, format render.Format) ([]byte, error) {
	switch format {
	case render.FormatHTML:
		html, err := r.ToHTML(spec)
		if err != nil {
			return nil, err
		}
		return []byte(html), nil
	case render.FormatSVG:
		return RenderSVG(spec)
	case render.FormatPNG:
		svg, err := RenderSVG(spec)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, 2.0)
	case render.FormatPDF:
		svg, err := RenderSVG(spec)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedExportFormat,
			"unsupported export format: %s", format)
	}
}

// RenderSVG draws a chart specification to SVG bytes.
func RenderSVG(spec *chart.Spec) ([]byte, error) {
	if spec.Network != nil {
		return renderNetwork(spec)
	}

	visible := visibleTraces(spec)
	if len(visible) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart has no visible traces")
	}
	if visible[0].Type == "pie" {
		return renderPie(spec, visible[0])
	}
	return renderCartesian(spec, visible)
}

// visibleTraces filters to the traces drawn in the initial view.
func visibleTraces(spec *chart.Spec) []*chart.Trace {
	out := make([]*chart.Trace, 0, len(spec.Traces))
	for _, tr := range spec.Traces {
		if tr.IsVisible() {
			out = append(out, tr)
		}
	}
	return out
}

// title extracts the layout title, if any.
func title(spec *chart.Spec) string {
	if spec.Layout.Title != nil {
		return spec.Layout.Title.Text
	}
	return ""
}

// escape makes a string safe inside SVG/XML text content and attributes.
func escape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// Default trace colors, matching the plotly qualitative cycle so static and
// interactive exports of the same chart agree.
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func traceColor(i int) string { return palette[i%len(palette)] }

func fmtF(v float64) string { return fmt.Sprintf("%.2f", v) }
