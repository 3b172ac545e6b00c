// Package plotly renders chart specifications as self-contained interactive
// HTML documents backed by plotly.js. Static formats are produced through
// the built-in SVG drawing plus rsvg-convert, so no headless browser is
// needed.
package plotly

import (
	"bytes"
	"fmt"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/render"
	"github.com/vizcli/viz/pkg/render/svgchart"
)

// CDN is the plotly.js bundle referenced by exported documents.
const CDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// Renderer is the interactive renderer registered under the name "plotly".
type Renderer struct{}

// New creates the plotly renderer.
func New() *Renderer { return &Renderer{} }

// Name implements render.Renderer.
func (r *Renderer) Name() string { return "plotly" }

// ToHTML embeds the figure JSON in a standalone document that loads
// plotly.js from the CDN. json.Marshal escapes angle brackets, so the
// payload is safe inside the script element.
func (r *Renderer) ToHTML(spec *chart.Spec) (string, error) {
	figure, err := spec.JSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "marshal figure")
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", escapeHTML(htmlTitle(spec)))
	fmt.Fprintf(&buf, "<script src=%q></script>\n", CDN)
	buf.WriteString("<style>html, body, #chart { margin: 0; height: 100%; }</style>\n")
	buf.WriteString("</head>\n<body>\n<div id=\"chart\"></div>\n<script>\n")
	fmt.Fprintf(&buf, "const figure = %s;\n", figure)
	buf.WriteString("Plotly.newPlot(\"chart\", figure.data, figure.layout, {responsive: true});\n")
	buf.WriteString("</script>\n</body>\n</html>\n")
	return buf.String(), nil
}

// Render implements render.Renderer.
func (r *Renderer) Render(spec *chart.Spec, format render.Format) ([]byte, error) {
	switch format {
	case render.FormatHTML:
		html, err := r.ToHTML(spec)
		if err != nil {
			return nil, err
		}
		return []byte(html), nil
	case render.FormatSVG:
		return svgchart.RenderSVG(spec)
	case render.FormatPNG:
		svg, err := svgchart.RenderSVG(spec)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, 2.0)
	case render.FormatPDF:
		svg, err := svgchart.RenderSVG(spec)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedExportFormat,
			"unsupported export format: %s", format)
	}
}

func htmlTitle(spec *chart.Spec) string {
	if spec.Layout.Title != nil && spec.Layout.Title.Text != "" {
		return spec.Layout.Title.Text
	}
	return "Chart"
}

func escapeHTML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
