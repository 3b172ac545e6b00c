// Package render defines the renderer capability interface, the export
// format set, and the construction-time renderer registry.
//
// The core depends only on the Renderer interface; concrete renderers live
// in subpackages and are wired into a Registry once at process start. Adding
// a renderer is a compile-time addition of a factory entry, never a runtime
// side effect.
package render

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
)

// Format is an export format.
type Format string

// Supported export formats.
const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatSVG  Format = "svg"
)

// Formats lists the supported export formats in display order.
func Formats() []Format {
	return []Format{FormatHTML, FormatPNG, FormatPDF, FormatSVG}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatHTML, FormatPNG, FormatPDF, FormatSVG:
		return Format(strings.ToLower(name)), nil
	default:
		return "", errors.New(errors.ErrCodeUnsupportedExportFormat,
			"unsupported export format: %s (supported: html, png, pdf, svg)", name)
	}
}

// FormatFromPath derives the export format from an output path's suffix.
// Unsupported suffixes fail before any rendering work occurs.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeUnsupportedExportFormat,
			"output path %q has no format suffix (supported: .html, .png, .pdf, .svg)", path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", errors.New(errors.ErrCodeUnsupportedExportFormat,
			"unsupported export format: .%s (supported: .html, .png, .pdf, .svg)", ext)
	}
	return f, nil
}

// Renderer turns chart specifications into export artifacts. Implementations
// must be stateless; a single value may serve concurrent callers.
type Renderer interface {
	// Name identifies the renderer in the registry.
	Name() string

	// ToHTML returns a self-contained HTML document for the spec.
	ToHTML(spec *chart.Spec) (string, error)

	// Render produces the artifact bytes for the given format.
	Render(spec *chart.Spec, format Format) ([]byte, error)
}

// Export renders the spec in the format implied by the output path's suffix
// and writes the artifact to that path.
func Export(r Renderer, spec *chart.Spec, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := r.Render(spec, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// =============================================================================
// Registry
// =============================================================================

// Registry maps renderer names to factories. It is built once at
// construction and never mutated afterwards.
type Registry struct {
	factories map[string]func() Renderer
}

// NewRegistry builds a registry from factories keyed by renderer name.
func NewRegistry(factories map[string]func() Renderer) *Registry {
	copied := make(map[string]func() Renderer, len(factories))
	for name, f := range factories {
		copied[name] = f
	}
	return &Registry{factories: copied}
}

// Lookup instantiates the named renderer.
func (r *Registry) Lookup(name string) (Renderer, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownRenderer,
			"unknown renderer: %s (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(), nil
}

// Names returns the registered renderer names, sorted for stable display.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
