// Package pipeline provides the core visualization pipeline.
//
// This package implements the complete load → transform → assemble → render
// pipeline shared by the CLI and the web server. Centralizing it keeps the
// two entry points behaviorally identical, including caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read tabular data (CSV, JSON, Parquet) into a table
//  2. Transform: Apply unpivot, lookup, filter, exclude, and drop in order
//  3. Assemble: Build a chart specification or a laid-out network graph
//  4. Render: Produce the artifact in the requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, cache, logger)
//	opts := pipeline.Options{
//	    Input: "sales.csv",
//	    Chart: &chart.Options{Type: chart.TypeBar, X: "region", Y: []string{"units"}},
//	    Output: "sales.html",
//	}
//	result, err := runner.Execute(ctx, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/netgraph"
	"github.com/vizcli/viz/pkg/render"
	"github.com/vizcli/viz/pkg/render/plotly"
	"github.com/vizcli/viz/pkg/render/svgchart"
	"github.com/vizcli/viz/pkg/table"
	"github.com/vizcli/viz/pkg/transform"
)

// DefaultRenderer is used when no renderer is named.
const DefaultRenderer = "plotly"

// DefaultRegistry wires up the built-in renderers. The registry is fixed at
// construction; there is no runtime registration.
func DefaultRegistry() *render.Registry {
	return render.NewRegistry(map[string]func() render.Renderer{
		"plotly": func() render.Renderer { return plotly.New() },
		"svg":    func() render.Renderer { return svgchart.New() },
	})
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// LookupOptions replaces codes in a source column with labels from a second
// table.
type LookupOptions struct {
	Path         string `json:"path"`
	SourceColumn string `json:"source_column"`
	CodeColumn   string `json:"code_column"`
	LabelColumn  string `json:"label_column"`

	// Bytes overrides Path with in-memory data (web uploads). Not serialized;
	// the cache key hashes it separately.
	Bytes []byte `json:"-"`
}

// ValueSelector names a column and the values to match in it.
type ValueSelector struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// NetworkOptions builds a network graph instead of a chart.
type NetworkOptions struct {
	SourceColumn string `json:"source_column"`
	TargetColumn string `json:"target_column"`
	WeightColumn string `json:"weight_column,omitempty"`
	WeightPolicy string `json:"weight_policy,omitempty"`
	Layout       string `json:"layout,omitempty"`
	Seed         uint64 `json:"seed,omitempty"`
	Title        string `json:"title,omitempty"`
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization, which also feeds the cache key.
type Options struct {
	// Input options. InputBytes overrides Input with in-memory data; the
	// format is then detected from InputName.
	Input      string `json:"input,omitempty"`
	InputName  string `json:"input_name,omitempty"`
	InputBytes []byte `json:"-"`

	// Transform options, applied in declaration order.
	Unpivot     *transform.UnpivotOptions `json:"unpivot,omitempty"`
	Lookup      *LookupOptions            `json:"lookup,omitempty"`
	Filters     []ValueSelector           `json:"filters,omitempty"`
	Excludes    []ValueSelector           `json:"excludes,omitempty"`
	DropColumns []string                  `json:"drop_columns,omitempty"`

	// Exactly one of Chart or Network selects the assembly stage.
	Chart   *chart.Options  `json:"chart,omitempty"`
	Network *NetworkOptions `json:"network,omitempty"`

	// Render options. An empty Output renders HTML in memory only.
	Renderer string `json:"renderer,omitempty"`
	Output   string `json:"output,omitempty"`
	NoCache  bool   `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults. Export
// format problems surface here, before any data is loaded.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Input == "" && len(o.InputBytes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if len(o.InputBytes) > 0 && o.InputName == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input_name is required with in-memory input")
	}
	if (o.Chart == nil) == (o.Network == nil) {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of chart or network is required")
	}
	if o.Lookup != nil {
		l := o.Lookup
		if (l.Path == "" && len(l.Bytes) == 0) || l.SourceColumn == "" || l.CodeColumn == "" || l.LabelColumn == "" {
			return errors.New(errors.ErrCodeInvalidInput,
				"lookup requires path, source_column, code_column, and label_column")
		}
	}
	if o.Network != nil {
		if o.Network.SourceColumn == "" || o.Network.TargetColumn == "" {
			return errors.New(errors.ErrCodeInvalidInput, "network requires source_column and target_column")
		}
		if _, err := netgraph.ParseWeightPolicy(o.Network.WeightPolicy); err != nil {
			return err
		}
		if o.Network.Seed == 0 {
			o.Network.Seed = netgraph.DefaultSeed
		}
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Output != "" {
		if _, err := render.FormatFromPath(o.Output); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Format returns the export format the run will produce.
func (o *Options) Format() render.Format {
	if o.Output == "" {
		return render.FormatHTML
	}
	f, err := render.FormatFromPath(o.Output)
	if err != nil {
		return render.FormatHTML
	}
	return f
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Table is the transformed table the figure was assembled from. Nil when
	// the artifact came from cache.
	Table *table.Table

	// Spec is the assembled chart specification. Nil on a cache hit.
	Spec *chart.Spec

	// Artifact holds the rendered output bytes.
	Artifact []byte

	// Format is the artifact's export format.
	Format render.Format

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the artifact was served from cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows          int
	Columns       int
	LoadTime      time.Duration
	TransformTime time.Duration
	AssembleTime  time.Duration
	RenderTime    time.Duration
}
