package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// tilesCommand creates the tiles command.
func (c *CLI) tilesCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List the tile set and check which masks it covers",
		Long: `List the project's tiles in priority order (last wins) and report every
adjacency mask no tile matches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(project)
			if err != nil {
				return err
			}
			ts := p.TileSet
			if ts == nil {
				ts = tiles.Default()
			}

			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render("Tile set "+ts.Name))
			fmt.Fprintln(cmd.OutOrStdout(), tileTable(ts))

			missing := ts.Coverage()
			if len(missing) == 0 {
				printSuccess("All %d masks covered", 1<<tiles.BitWidth)
				return nil
			}
			for _, m := range missing {
				printWarning("mask %0*b has no tile", tiles.BitWidth, m)
			}
			return ts.Validate()
		},
	}

	projectFlag(cmd, &project)
	return cmd
}

func tileTable(ts *tiles.TileSet) string {
	rows := make([][]string, len(ts.Tiles))
	for i, t := range ts.Tiles {
		rows[i] = []string{
			strconv.Itoa(i),
			t.Name,
			fmt.Sprintf("%0*b", tiles.BitWidth, t.CheckVector),
			strconv.Itoa(t.Rotations),
			t.VisualHandle(),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Tile", "Check", "Rotations", "Visual").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return StyleHighlight
			case col == 4:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
