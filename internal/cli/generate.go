package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/pipeline"
)

// generateFlags holds the flags shared by generate and batch.
type generateFlags struct {
	project  string
	formats  string
	seed     uint64
	detailed bool
	regions  bool
	noCache  bool
	refresh  bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	projectFlag(cmd, &f.project)
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats, comma-separated (json, dot, svg, png, pdf)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label sections with tile, rotation and mask")
	cmd.Flags().BoolVar(&f.regions, "regions", false, "outline sections in their region color")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "regenerate even when cached")
}

func (f *generateFlags) options() (pipeline.Options, error) {
	formats, err := pipeline.ParseFormats(f.formats)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Formats:  formats,
		Detailed: f.detailed,
		Regions:  f.regions,
		Refresh:  f.refresh,
	}, nil
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a world and write it in one or more formats",
		Long: `Generate a world from a project file and write each requested format to
<output>.<format>. Use --output - with a single format to write to stdout.`,
		Example: `  wrldbldr generate --seed 7 -f json,svg -o forest
  wrldbldr generate -c world.toml -f dot -o - | dot -Kneato -Tpng > world.png`,
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
			if cmd.Flags().Changed("seed") {
				opts.Seed = &flags.seed
			}
			if output == "-" && len(opts.Formats) != 1 {
				return wberrors.New(wberrors.ErrCodeInvalidInput, "--output - needs exactly one format")
			}

			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			res, err := runner.Execute(cmd.Context(), p, opts)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(res.Artifacts[opts.Formats[0]])
				return err
			}

			prog.done("generation finished", "run", res.Layout.RunID, "seed", res.Layout.Seed)
			printSuccess("Generated world %s", StyleHighlight.Render(shortID(res.Layout.RunID)))
			printWorldStats(len(res.Layout.Sections), len(res.Layout.Regions), res.CacheInfo.LayoutHit)
			for _, format := range opts.Formats {
				path := output + "." + format
				if err := writeArtifact(path, res.Artifacts[format]); err != nil {
					return err
				}
				printFile(path)
			}
			if !hasFormat(opts.Formats, pipeline.FormatSVG) {
				printRenderHint(res.Layout.Seed)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (overrides the project)")
	cmd.Flags().StringVarP(&output, "output", "o", "world", "output path without extension, or - for stdout")
	return cmd
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func hasFormat(formats []string, want string) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
