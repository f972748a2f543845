package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var flags generateFlags
	var (
		seeds  string
		count  int
		start  uint64
		limit  int
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate one world per seed in parallel",
		Example: `  wrldbldr batch --count 8 --start 100 -o worlds
  wrldbldr batch --seeds 1,2,3 -f json,dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags.project)
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			list, err := seedList(seeds, start, count)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Generating %d worlds...", len(list)))
			spin.Start()
			prog := newProgress(c.Logger)
			results, err := runner.Batch(cmd.Context(), p, list, limit, opts)
			if err != nil {
				spin.StopWithError("Batch failed")
				return err
			}
			spin.Stop()
			prog.done("batch finished", "worlds", len(results))

			rows := make([][]string, 0, len(results))
			for _, res := range results {
				seed := res.Layout.Seed
				for _, format := range opts.Formats {
					path := filepath.Join(outDir, fmt.Sprintf("seed-%d.%s", seed, format))
					if err := writeArtifact(path, res.Artifacts[format]); err != nil {
						return err
					}
				}
				cached := iconFresh
				if res.CacheInfo.LayoutHit {
					cached = iconCached
				}
				rows = append(rows, []string{
					strconv.FormatUint(seed, 10),
					shortID(res.Layout.RunID),
					strconv.Itoa(len(res.Layout.Sections)),
					strconv.Itoa(res.Stats.Iterations),
					cached,
				})
			}

			printSuccess("Generated %d worlds in %s", len(results), StyleValue.Render(outDir))
			fmt.Fprintln(cmd.OutOrStdout(), batchTable(rows))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&seeds, "seeds", "", "comma-separated seeds (overrides --count and --start)")
	cmd.Flags().IntVarP(&count, "count", "n", 4, "number of consecutive seeds")
	cmd.Flags().Uint64Var(&start, "start", 1, "first seed when using --count")
	cmd.Flags().IntVarP(&limit, "jobs", "j", 0, "maximum parallel runs (default GOMAXPROCS)")
	cmd.Flags().StringVarP(&outDir, "output", "o", "worlds", "output directory")
	return cmd
}

// seedList parses an explicit seed list or expands start..start+count-1.
func seedList(seeds string, start uint64, count int) ([]uint64, error) {
	if seeds != "" {
		var out []uint64
		for _, s := range strings.Split(seeds, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			v, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, wberrors.Wrap(wberrors.ErrCodeInvalidInput, err, "invalid seed %q", s)
			}
			out = append(out, v)
		}
		if len(out) == 0 {
			return nil, wberrors.New(wberrors.ErrCodeInvalidInput, "no seeds given")
		}
		return out, nil
	}
	if count < 1 {
		return nil, wberrors.New(wberrors.ErrCodeInvalidInput, "count must be at least 1, got %d", count)
	}
	out := make([]uint64, count)
	for i := range out {
		out[i] = start + uint64(i)
	}
	return out, nil
}

func batchTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Seed", "Run", "Sections", "Iterations", "Cache").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 && rows[row][4] == iconCached {
				return styleCached
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
