package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vizcli/viz/pkg/cache"
	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/netgraph"
	"github.com/vizcli/viz/pkg/render"
	"github.com/vizcli/viz/pkg/table"
	"github.com/vizcli/viz/pkg/transform"
)

// artifactTTL bounds how long cached artifacts stay valid.
const artifactTTL = 7 * 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the registry, cache, and logger - it
// doesn't store run results. Multiple goroutines can safely share one Runner
// with different options.
type Runner struct {
	Registry *render.Registry
	Cache    cache.Cache
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil registry uses DefaultRegistry, a nil
// cache disables caching, and a nil logger uses the package default.
func NewRunner(registry *render.Registry, c cache.Cache, logger *log.Logger) *Runner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: registry, Cache: c, Logger: logger}
}

// Execute runs the complete load → transform → assemble → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Renderer resolution happens before any data work so an unknown name
	// fails fast.
	renderer, err := r.Registry.Lookup(opts.Renderer)
	if err != nil {
		return nil, err
	}

	input, name, err := resolveInput(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Format: opts.Format()}

	key := r.artifactKey(input, opts)
	if !opts.NoCache {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			opts.Logger.Info("artifact cache hit", "key", key[:16])
			result.Artifact = data
			result.CacheHit = true
			if err := r.writeOutput(opts, data); err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	// Stage 1: Load
	loadStart := time.Now()
	t, err := table.LoadReader(bytes.NewReader(input), name)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	opts.Logger.Info("loaded table",
		"rows", t.NumRows(),
		"columns", t.NumCols(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Transform
	transformStart := time.Now()
	t, err = r.applyTransforms(t, opts)
	if err != nil {
		return nil, err
	}
	result.Table = t
	result.Stats.TransformTime = time.Since(transformStart)
	result.Stats.Rows = t.NumRows()
	result.Stats.Columns = t.NumCols()

	// Stage 3: Assemble
	assembleStart := time.Now()
	spec, err := r.assemble(t, opts)
	if err != nil {
		return nil, err
	}
	result.Spec = spec
	result.Stats.AssembleTime = time.Since(assembleStart)
	opts.Logger.Info("assembled figure",
		"traces", len(spec.Traces),
		"facets", len(spec.FacetKeys),
		"duration", result.Stats.AssembleTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifact, err := renderer.Render(spec, result.Format)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	opts.Logger.Info("rendered artifact",
		"renderer", renderer.Name(),
		"format", result.Format,
		"bytes", len(artifact),
		"duration", result.Stats.RenderTime)

	if !opts.NoCache {
		if err := r.Cache.Set(ctx, key, artifact, artifactTTL); err != nil {
			opts.Logger.Warn("artifact cache write failed", "err", err)
		}
	}
	if err := r.writeOutput(opts, artifact); err != nil {
		return nil, err
	}
	return result, nil
}

// applyTransforms runs the transform stages in their fixed order: unpivot,
// lookup, filter, exclude, drop.
func (r *Runner) applyTransforms(t *table.Table, opts Options) (*table.Table, error) {
	var err error
	if opts.Unpivot != nil {
		if t, err = transform.Unpivot(t, *opts.Unpivot); err != nil {
			return nil, err
		}
		opts.Logger.Debug("unpivoted", "rows", t.NumRows())
	}
	if opts.Lookup != nil {
		lookup, err := loadLookup(*opts.Lookup)
		if err != nil {
			return nil, err
		}
		l := opts.Lookup
		if t, err = transform.ApplyLookup(t, lookup, l.SourceColumn, l.CodeColumn, l.LabelColumn); err != nil {
			return nil, err
		}
		opts.Logger.Debug("applied lookup", "column", l.SourceColumn)
	}
	for _, f := range opts.Filters {
		if t, err = transform.Filter(t, f.Column, f.Values); err != nil {
			return nil, err
		}
	}
	for _, e := range opts.Excludes {
		if t, err = transform.Exclude(t, e.Column, e.Values); err != nil {
			return nil, err
		}
	}
	if len(opts.DropColumns) > 0 {
		if t, err = transform.DropColumns(t, opts.DropColumns); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// assemble builds the chart spec or the network spec from the final table.
func (r *Runner) assemble(t *table.Table, opts Options) (*chart.Spec, error) {
	if opts.Chart != nil {
		return chart.New(t, *opts.Chart)
	}

	n := opts.Network
	policy, err := netgraph.ParseWeightPolicy(n.WeightPolicy)
	if err != nil {
		return nil, err
	}
	g, err := netgraph.Build(t, n.SourceColumn, n.TargetColumn, n.WeightColumn, policy)
	if err != nil {
		return nil, err
	}
	positions := netgraph.Layout(g, n.Layout, n.Seed)
	opts.Logger.Debug("laid out graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"algorithm", n.Layout)
	return netgraph.RenderNetwork(g, positions, n.Title), nil
}

// artifactKey derives the cache key from the input bytes plus everything
// that influences the artifact, including the lookup table's content.
func (r *Runner) artifactKey(input []byte, opts Options) string {
	keyed := struct {
		Options
		LookupHash string        `json:"lookup_hash,omitempty"`
		Format     render.Format `json:"format"`
	}{Options: opts, Format: opts.Format()}

	if opts.Lookup != nil {
		if data, _, err := lookupBytes(*opts.Lookup); err == nil {
			keyed.LookupHash = cache.Hash(data)
		}
	}
	return cache.ArtifactKey(input, keyed)
}

// writeOutput persists the artifact when an output path was given.
func (r *Runner) writeOutput(opts Options, data []byte) error {
	if opts.Output == "" {
		return nil
	}
	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.Output)
	}
	return nil
}

// resolveInput returns the raw input bytes and the filename used for format
// detection.
func resolveInput(opts Options) ([]byte, string, error) {
	if len(opts.InputBytes) > 0 {
		return opts.InputBytes, opts.InputName, nil
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Input)
	}
	return data, opts.Input, nil
}

// lookupBytes returns the lookup table's raw bytes and filename.
func lookupBytes(l LookupOptions) ([]byte, string, error) {
	if len(l.Bytes) > 0 {
		return l.Bytes, l.Path, nil
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", l.Path)
	}
	return data, l.Path, nil
}

// loadLookup reads the lookup table.
func loadLookup(l LookupOptions) (*table.Table, error) {
	data, name, err := lookupBytes(l)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "lookup.csv"
	}
	return table.LoadReader(bytes.NewReader(data), name)
}
