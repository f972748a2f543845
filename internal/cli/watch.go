package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

const (
	defaultWatchInterval = 50 * time.Millisecond
	watchEventLines      = 6
	progressWidth        = 40
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		project  string
		seed     uint64
		interval time.Duration
		slice    time.Duration
		output   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate interactively, one time slice per frame",
		Long: `Run a generation in a terminal UI. Every frame steps the run by one time
slice, so a short --slice shows the growth section by section.`,
		Example: `  wrldbldr watch --slice 1ms --interval 30ms
  wrldbldr watch -c world.toml -o world.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(project)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				p = p.WithSeed(seed)
			}
			cfg, bp, ts, err := p.Build()
			if err != nil {
				return err
			}
			if slice > 0 {
				cfg.Timeout = slice
			}

			engineLog := c.Logger.With()
			engineLog.SetLevel(log.WarnLevel)
			events := &eventLog{}
			eng := gen.New(cfg, gen.WithLogger(engineLog), gen.WithObserver(events.observer()))

			run, err := eng.Start(cmd.Context(), bp)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(newWatchModel(cmd.Context(), run, events, interval), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				run.Abort()
				return err
			}
			m := final.(watchModel)
			if m.err != nil {
				return m.err
			}
			if !m.done {
				printWarning("Generation aborted")
				return nil
			}

			placements, err := tiles.Assign(run.World(), ts)
			if err != nil {
				return err
			}
			l := layout.Build(run.World(), bp, placements, layout.Meta{RunID: run.ID(), Seed: cfg.Seed, TileSet: ts.Name})
			printSuccess("Generated world %s in %s", StyleHighlight.Render(shortID(run.ID())), run.Elapsed().Round(time.Millisecond))
			printWorldStats(len(l.Sections), len(l.Regions), false)
			printRegions(l)
			if output != "" {
				if err := layout.WriteFile(l, output); err != nil {
					return err
				}
				printFile(output)
			}
			return nil
		},
	}

	projectFlag(cmd, &project)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (overrides the project)")
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "delay between frames")
	cmd.Flags().DurationVar(&slice, "slice", 0, "time budget per step (overrides the project timeout)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout JSON to this file")
	return cmd
}

// eventLog keeps the most recent lifecycle events for display.
type eventLog struct {
	lines []string
}

func (e *eventLog) observer() gen.Observer {
	return gen.EventFunc(func(ev gen.Event) {
		var line string
		switch ev.Kind {
		case gen.EventSectionPlaced:
			line = fmt.Sprintf("placed  #%d", ev.Section)
			if ev.Parent != 0 {
				line += fmt.Sprintf(" from #%d", ev.Parent)
			}
			if ev.Region == 0 {
				line += " (orphan)"
			}
		case gen.EventRegionStart, gen.EventRegionFinish:
			line = fmt.Sprintf("%s %d", ev.Kind, ev.Region)
		default:
			line = string(ev.Kind)
		}
		e.lines = append(e.lines, line)
		if len(e.lines) > watchEventLines {
			e.lines = e.lines[len(e.lines)-watchEventLines:]
		}
	})
}

type tickMsg time.Time

// watchModel drives a run from bubbletea's update loop: one Step per tick.
type watchModel struct {
	ctx      context.Context
	run      *gen.Run
	events   *eventLog
	interval time.Duration
	progress gen.Progress
	done     bool
	err      error
}

func newWatchModel(ctx context.Context, run *gen.Run, events *eventLog, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return watchModel{ctx: ctx, run: run, events: events, interval: interval, progress: run.Progress()}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.run.Abort()
			return m, tea.Quit
		}
	case tickMsg:
		done, err := m.run.Step(m.ctx)
		m.progress = m.run.Progress()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		if done {
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	p := m.progress

	b.WriteString(StyleTitle.Render("wrldbldr watch"))
	b.WriteString(StyleDim.Render("  run " + shortID(p.RunID) + "  q quit"))
	b.WriteString("\n\n")

	b.WriteString(progressBar(p.Owned, p.Target, progressWidth))
	b.WriteString(fmt.Sprintf(" %s/%d\n", StyleNumber.Render(fmt.Sprint(p.Owned)), p.Target))

	stats := fmt.Sprintf("region %d/%d · placed %d · frontier %d · iterations %d · slices %d",
		p.Region, p.Regions, p.Placed, p.Frontier, p.Iterations, p.Slices)
	b.WriteString(StyleDim.Render(stats))
	b.WriteString("\n\n")

	for _, line := range m.events.lines {
		b.WriteString("  " + StyleDim.Render(iconInfo) + " " + line + "\n")
	}
	return b.String()
}

func progressBar(n, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, n*width/total)
	}
	return StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
}

// printRegions lists every region of a layout with its fill and color.
func printRegions(l layout.Layout) {
	for _, r := range l.Regions {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("region %d", r.ID)
		}
		fmt.Fprintf(stdout, "  %s %s %s\n",
			swatch(regionColor(r.Color)),
			lipgloss.NewStyle().Width(16).Render(name),
			StyleDim.Render(fmt.Sprintf("%d/%d", r.Count, r.Target)))
	}
}

func regionColor(c string) string {
	if c == "" {
		return world.DefaultRegionColor
	}
	return c
}
