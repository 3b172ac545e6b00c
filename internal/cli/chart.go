package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/pipeline"
)

// chartCommand creates the chart command.
func (c *CLI) chartCommand() *cobra.Command {
	var (
		chartType string
		xColumn   string
		yColumns  string
		color     string
		facets    []string
		title     string

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
		Use:   "chart [data file]",
		Short: "Render a chart from a data file",
		Long: `Render a chart from a CSV, JSON, or Parquet file.

Transforms run before assembly, always in the same order: unpivot, lookup,
filter, exclude, drop. Faceting adds a dropdown that switches the chart
between facet values.

The output format follows the file suffix: .html (interactive), .svg, .png,
or .pdf. Without --output the chart is written next to the input as
<name>.html.`,
		Example: `  viz chart sales.csv --type bar --x region --y units
  viz chart wide.csv --type line --x year --y value --unpivot-ids country,year
  viz chart sales.csv --type bar --x region --y units --facet quarter -o report.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			opts := pipeline.Options{
				Input: input,
				Chart: &chart.Options{
					Type:   chart.Type(chartType),
					X:      xColumn,
					Y:      parseList(yColumns),
					Color:  color,
					Facets: splitFacets(facets),
					Title:  title,
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

			return c.runPipeline(cmd, opts, fmt.Sprintf("Rendering %s chart...", chartType))
		},
	}

	cmd.Flags().StringVarP(&chartType, "type", "t", "bar", "chart type: bar, line, scatter, histogram, pie")
	cmd.Flags().StringVarP(&xColumn, "x", "x", "", "x axis column (required)")
	cmd.Flags().StringVarP(&yColumns, "y", "y", "", "y column(s), comma-separated")
	cmd.Flags().StringVar(&color, "color", "", "column to split traces by")
	cmd.Flags().StringArrayVar(&facets, "facet", nil, "facet column (repeat or comma-separate for composite facets)")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	_ = cmd.MarkFlagRequired("x")

	addTransformFlags(cmd, &unpivot, &lookup, &filters, &exclude, &drop)

	cmd.Flags().StringVar(&renderer, "renderer", "", "renderer to use (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.html, .svg, .png, .pdf)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// addTransformFlags registers the transform flags shared by chart and network.
func addTransformFlags(cmd *cobra.Command, unpivot *unpivotFlags, lookup *lookupFlags, filters, exclude *[]string, drop *string) {
	cmd.Flags().StringVar(&unpivot.idColumns, "unpivot-ids", "", "unpivot: identifier columns to keep, comma-separated")
	cmd.Flags().IntVar(&unpivot.valueStart, "value-start", -1, "unpivot: first value column index")
	cmd.Flags().IntVar(&unpivot.valueEnd, "value-end", -1, "unpivot: value column end index (exclusive)")
	cmd.Flags().StringVar(&unpivot.varName, "var-name", "", "unpivot: name for the variable column")
	cmd.Flags().StringVar(&unpivot.valueName, "value-name", "", "unpivot: name for the value column")

	cmd.Flags().StringVar(&lookup.path, "lookup", "", "lookup table file")
	cmd.Flags().StringVar(&lookup.source, "lookup-source", "", "column whose codes are replaced")
	cmd.Flags().StringVar(&lookup.code, "lookup-code", "", "code column in the lookup table")
	cmd.Flags().StringVar(&lookup.label, "lookup-label", "", "label column in the lookup table")

	cmd.Flags().StringArrayVar(filters, "filter", nil, "keep rows matching COLUMN:V1,V2 (repeatable)")
	cmd.Flags().StringArrayVar(exclude, "exclude", nil, "drop rows matching COLUMN:V1,V2 (repeatable)")
	cmd.Flags().StringVar(drop, "drop", "", "columns to drop, comma-separated")
}

// runPipeline executes the pipeline with a spinner and prints the summary.
func (c *CLI) runPipeline(cmd *cobra.Command, opts pipeline.Options, message string) error {
	p := newProgress(c.Logger)
	spinner := newSpinner(cmd.Context(), message)
	spinner.Start()

	result, err := c.newRunner(opts.NoCache).Execute(cmd.Context(), opts)
	spinner.Stop()
	if err != nil {
		printError("%v", err)
		return err
	}

	p.done("Rendered " + string(result.Format))
	printSuccess("Wrote %s", opts.Output)
	printFile(opts.Output)
	if result.CacheHit {
		printDetail("served from cache")
	} else {
		printStats(result.Stats.Rows, result.Stats.Columns, false)
	}
	return nil
}

// splitFacets expands repeated and comma-separated facet flags.
func splitFacets(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, parseList(v)...)
	}
	return out
}

// defaultOutput places the artifact next to the input with an .html suffix.
func defaultOutput(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".html"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
