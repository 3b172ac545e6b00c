package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglosstable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vizcli/viz/pkg/table"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [data file]",
		Short: "Preview a data file's columns and rows in the terminal",
		Long: `Load a CSV, JSON, or Parquet file and browse it interactively.

Use arrow keys or j/k to scroll, g/G to jump to the start or end, and q to
quit. With --plain the first rows are printed without the interactive view,
which also suits piping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := table.Load(args[0])
			if err != nil {
				return err
			}

			if plain {
				fmt.Println(renderWindow(t, 0, 20))
				printStats(t.NumRows(), t.NumCols(), false)
				return nil
			}

			model := newInspectModel(args[0], t)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print without the interactive view")
	return cmd
}

// =============================================================================
// InspectModel - Interactive table preview
// =============================================================================

// inspectModel is the bubbletea model for scrolling through a loaded table.
type inspectModel struct {
	path   string
	table  *table.Table
	offset int
	height int
}

func newInspectModel(path string, t *table.Table) inspectModel {
	return inspectModel{path: path, table: t, height: 15}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < m.maxOffset() {
				m.offset++
			}
		case "pgup":
			m.offset = max(0, m.offset-m.height)
		case "pgdown":
			m.offset = min(m.maxOffset(), m.offset+m.height)
		case "g":
			m.offset = 0
		case "G":
			m.offset = m.maxOffset()
		}
	case tea.WindowSizeMsg:
		m.height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.path))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d rows · %d columns", m.table.NumRows(), m.table.NumCols())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ scroll  g/G jump  q quit"))
	b.WriteString("\n\n")

	b.WriteString(renderWindow(m.table, m.offset, m.height))
	b.WriteString("\n")

	end := min(m.offset+m.height, m.table.NumRows())
	b.WriteString(StyleDim.Render(fmt.Sprintf("rows %d-%d of %d", m.offset+1, end, m.table.NumRows())))
	b.WriteString("\n")
	return b.String()
}

func (m inspectModel) maxOffset() int {
	return max(0, m.table.NumRows()-m.height)
}

// renderWindow draws rows [offset, offset+height) as a framed table with the
// column kind under each name.
func renderWindow(t *table.Table, offset, height int) string {
	names := t.Names()
	headers := make([]string, len(names))
	for i, name := range names {
		headers[i] = fmt.Sprintf("%s (%s)", name, t.ColumnAt(i).Kind())
	}

	end := min(offset+height, t.NumRows())
	data := make([][]string, 0, end-offset)
	for r := offset; r < end; r++ {
		row := make([]string, len(names))
		for i := range names {
			row[i] = t.ColumnAt(i).Value(r).String()
		}
		data = append(data, row)
	}

	return lipglosstable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lipglosstable.HeaderRow {
				return StyleHighlight
			}
			return StyleValue
		}).
		String()
}
