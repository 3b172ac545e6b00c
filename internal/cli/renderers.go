package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/netgraph"
	"github.com/vizcli/viz/pkg/pipeline"
	"github.com/vizcli/viz/pkg/render"
)

// renderersCommand creates the renderers listing command.
func (c *CLI) renderersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renderers",
		Short: "List available renderers, chart types, formats, and layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := pipeline.DefaultRegistry()

			fmt.Println(StyleTitle.Render("Renderers"))
			for _, name := range registry.Names() {
				marker := " "
				if name == c.Config.Renderer {
					marker = StyleHighlight.Render("*")
				}
				fmt.Printf("%s %s\n", marker, StyleValue.Render(name))
			}

			fmt.Println()
			fmt.Println(StyleTitle.Render("Chart types"))
			types := make([]string, 0, len(chart.Types()))
			for _, t := range chart.Types() {
				types = append(types, string(t))
			}
			printDetail("%s", strings.Join(types, ", "))

			fmt.Println()
			fmt.Println(StyleTitle.Render("Export formats"))
			formats := make([]string, 0, len(render.Formats()))
			for _, f := range render.Formats() {
				formats = append(formats, string(f))
			}
			printDetail("%s", strings.Join(formats, ", "))

			fmt.Println()
			fmt.Println(StyleTitle.Render("Network layouts"))
			printDetail("%s", strings.Join(netgraph.LayoutAlgorithms(), ", "))

			return nil
		},
	}
}
