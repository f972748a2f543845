package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// matchCommand creates the match command.
func (c *CLI) matchCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "match MASK",
		Short: "Show which tile and rotation an adjacency mask maps to",
		Long: `Match a 3-bit adjacency mask against the project's tile set. Bit i is set
when slot i of a section has a neighbor. The mask accepts Go integer syntax,
so 7, 0b111 and 0x7 are equivalent, or a comma-separated list of occupied
slots (right, left, down).`,
		Example: `  wrldbldr match 0b011
  wrldbldr match right,down
  wrldbldr match 5 -c world.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseMask(args[0])
			if err != nil {
				return err
			}
			p, err := loadProject(project)
			if err != nil {
				return err
			}
			ts := p.TileSet
			if ts == nil {
				ts = tiles.Default()
			}

			m, err := ts.Match(mask)
			if err != nil {
				return err
			}
			printMatch(mask, m)
			return nil
		},
	}

	projectFlag(cmd, &project)
	return cmd
}

// parseMask reads a mask as an integer or as a list of slot names.
func parseMask(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err == nil && v >= 0 && v < 1<<tiles.BitWidth {
		return int(v), nil
	}
	if err != nil {
		if mask, ok := parseSlots(s); ok {
			return mask, nil
		}
	}
	return 0, wberrors.New(wberrors.ErrCodeInvalidInput,
		"mask must be an integer in [0, %d) or a list of slots, got %q", 1<<tiles.BitWidth, s)
}

func parseSlots(s string) (int, bool) {
	mask := 0
	for _, name := range strings.Split(s, ",") {
		d, err := world.ParseDirection(strings.TrimSpace(name))
		if err != nil {
			return 0, false
		}
		mask |= 1 << d
	}
	return mask, true
}

func slotList(dirs []world.Direction) string {
	if len(dirs) == 0 {
		return "none"
	}
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}
