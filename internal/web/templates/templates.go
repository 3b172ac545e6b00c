// Package templates holds the web UI pages. Each page type selects its
// template; Render dispatches on the value's type.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/vizcli/viz/pkg/chart"
)

//go:embed *.gohtml
var files embed.FS

var pages = template.Must(template.ParseFS(files, "*.gohtml"))

// IndexPage feeds the upload form.
type IndexPage struct {
	ChartTypes []chart.Type
	Layouts    []string
}

// ResultPage embeds the rendered figure and its download link.
type ResultPage struct {
	ArtifactURL string
	Rows        int
	Columns     int
	CacheHit    bool
}

// ComparePage shows a dataset comparison as a plain table. Rows is capped by
// the handler; TotalRows carries the uncapped count.
type ComparePage struct {
	Headers   []string
	Rows      [][]string
	TotalRows int
}

// ErrorPage shows a failed run.
type ErrorPage struct {
	Code    string
	Message string
}

// Render writes the page for the given value.
func Render(w io.Writer, page any) error {
	switch p := page.(type) {
	case IndexPage:
		return pages.ExecuteTemplate(w, "index.gohtml", p)
	case ResultPage:
		return pages.ExecuteTemplate(w, "result.gohtml", p)
	case ComparePage:
		return pages.ExecuteTemplate(w, "compare.gohtml", p)
	case ErrorPage:
		return pages.ExecuteTemplate(w, "error.gohtml", p)
	default:
		return fmt.Errorf("no template for %T", page)
	}
}
