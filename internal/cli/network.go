package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vizcli/viz/pkg/netgraph"
	"github.com/vizcli/viz/pkg/pipeline"
)

// networkCommand creates the network command.
func (c *CLI) networkCommand() *cobra.Command {
	var (
		source string
		target string
		weight string
		policy string
		layout string
		seed   uint64
		title  string

		unpivot unpivotFlags
		lookup  lookupFlags
		filters []string
		exclude []string
		drop    string

		renderer string
		output   string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "network [edge file]",
		Short: "Render a node-link network graph from an edge list",
		Long: `Render a node-link network graph from a CSV, JSON, or Parquet file where
each row is one edge.

Nodes are deduplicated by value; repeated edges between the same pair
collapse, combining weights per --weight-policy. Layouts are deterministic
for a fixed seed.

Available layouts: ` + strings.Join(netgraph.LayoutAlgorithms(), ", ") + `.`,
		Example: `  viz network edges.csv --source from --target to
  viz network edges.csv --source a --target b --weight km --layout kamada_kawai
  viz network edges.csv --source a --target b --seed 7 -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			opts := pipeline.Options{
				Input: input,
				Network: &pipeline.NetworkOptions{
					SourceColumn: source,
					TargetColumn: target,
					WeightColumn: weight,
					WeightPolicy: policy,
					Layout:       layout,
					Seed:         seedOrConfig(seed, c.Config.Seed),
					Title:        title,
				},
				Renderer: firstNonEmpty(renderer, c.Config.Renderer),
				Output:   output,
				NoCache:  noCache,
				Logger:   c.Logger,
			}
			if opts.Output == "" {
				opts.Output = defaultOutput(input)
			}

			var err error
			opts.Unpivot = unpivot.build()
			if opts.Lookup, err = lookup.build(); err != nil {
				return err
			}
			if opts.Filters, err = parseSelectors(filters); err != nil {
				return err
			}
			if opts.Excludes, err = parseSelectors(exclude); err != nil {
				return err
			}
			opts.DropColumns = parseList(drop)

			return c.runPipeline(cmd, opts, fmt.Sprintf("Laying out %s graph...", opts.Network.Layout))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source node column (required)")
	cmd.Flags().StringVar(&target, "target", "", "target node column (required)")
	cmd.Flags().StringVar(&weight, "weight", "", "edge weight column")
	cmd.Flags().StringVar(&policy, "weight-policy", "", "duplicate edge policy: last (default), first, sum, mean")
	cmd.Flags().StringVar(&layout, "layout", netgraph.LayoutSpring, "layout algorithm")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "layout random seed (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "graph title")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	addTransformFlags(cmd, &unpivot, &lookup, &filters, &exclude, &drop)

	cmd.Flags().StringVar(&renderer, "renderer", "", "renderer to use (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.html, .svg, .png, .pdf)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// seedOrConfig prefers the flag, then the config, then the library default.
func seedOrConfig(flag, cfg uint64) uint64 {
	if flag != 0 {
		return flag
	}
	if cfg != 0 {
		return cfg
	}
	return netgraph.DefaultSeed
}
