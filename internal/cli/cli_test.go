package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/wrldbldr/pkg/config"
	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestLoadProject(t *testing.T) {
	t.Setenv(projectEnv, "")
	p, err := loadProject("")
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}
	if p.Seed() != gen.DefaultSeed {
		t.Errorf("default seed = %d", p.Seed())
	}

	path := filepath.Join(t.TempDir(), "p.toml")
	if err := os.WriteFile(path, []byte("[generation]\nseed = 11\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(projectEnv, path)
	p, err = loadProject("")
	if err != nil {
		t.Fatalf("loadProject from env: %v", err)
	}
	if p.Seed() != 11 {
		t.Errorf("seed from env project = %d, want 11", p.Seed())
	}
}

func TestSeedList(t *testing.T) {
	got, err := seedList("3, 1,2", 0, 0)
	if err != nil || len(got) != 3 || got[0] != 3 || got[2] != 2 {
		t.Errorf("seedList(explicit) = %v, %v", got, err)
	}
	got, err = seedList("", 10, 3)
	if err != nil || len(got) != 3 || got[0] != 10 || got[2] != 12 {
		t.Errorf("seedList(range) = %v, %v", got, err)
	}
	if _, err := seedList("1,x", 0, 0); !wberrors.Is(err, wberrors.ErrCodeInvalidInput) {
		t.Errorf("bad seed: %v", err)
	}
	if _, err := seedList("", 0, 0); err == nil {
		t.Error("count 0 should fail")
	}
}

func TestParseMask(t *testing.T) {
	for in, want := range map[string]int{
		"0":           0,
		"7":           7,
		"0b101":       5,
		"0x3":         3,
		"right":       1,
		"left,down":   6,
		"Down, right": 5,
	} {
		got, err := parseMask(in)
		if err != nil || got != want {
			t.Errorf("parseMask(%q) = %d, %v", in, got, err)
		}
	}
	for _, in := range []string{"8", "-1", "abc", "right,up", ""} {
		if _, err := parseMask(in); err == nil {
			t.Errorf("parseMask(%q) should fail", in)
		}
	}
}

func TestSlotList(t *testing.T) {
	if got := slotList(nil); got != "none" {
		t.Errorf("slotList(nil) = %q", got)
	}
	if got := slotList([]world.Direction{world.Right, world.Down}); got != "right, down" {
		t.Errorf("slotList = %q", got)
	}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintMatch(t *testing.T) {
	out := captureStdout(t)
	m, err := config.Default().TileSet.Match(0b110)
	if err != nil {
		t.Fatal(err)
	}
	printMatch(0b110, m)
	for _, want := range []string{"110", "Corner", "120°", "left, down"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRenderHint(t *testing.T) {
	out := captureStdout(t)
	printRenderHint(9)
	if !strings.Contains(out.String(), "wrldbldr generate --seed 9 -f svg") {
		t.Errorf("hint = %q", out)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(projectEnv, "")
	prev := stdout
	stdout = io.Discard
	t.Cleanup(func() { stdout = prev })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommandStdout(t *testing.T) {
	out, err := runCLI(t, "generate", "--seed", "3", "-f", "json", "-o", "-")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	l, err := layout.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("stdout is not a layout: %v", err)
	}
	if l.Seed != 3 {
		t.Errorf("seed = %d, want 3", l.Seed)
	}
}

func TestGenerateCommandFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "world")
	if _, err := runCLI(t, "generate", "-f", "json,dot", "-o", base); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, ext := range []string{".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	if _, err := runCLI(t, "generate", "-f", "json,dot", "-o", "-"); !wberrors.Is(err, wberrors.ErrCodeInvalidInput) {
		t.Errorf("stdout with two formats: %v", err)
	}
	if _, err := runCLI(t, "generate", "-f", "gif"); !wberrors.Is(err, wberrors.ErrCodeInvalidInput) {
		t.Errorf("bad format: %v", err)
	}
}

func TestBatchCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "worlds")
	if _, err := runCLI(t, "batch", "--seeds", "4,5", "-o", dir); err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, name := range []string{"seed-4.json", "seed-5.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestMatchCommand(t *testing.T) {
	for _, arg := range []string{"7", "right,down"} {
		if _, err := runCLI(t, "match", arg); err != nil {
			t.Errorf("match %s: %v", arg, err)
		}
	}
	if _, err := runCLI(t, "match", "up"); !wberrors.Is(err, wberrors.ErrCodeInvalidInput) {
		t.Errorf("match up: %v", err)
	}
}

func TestTilesCommand(t *testing.T) {
	out, err := runCLI(t, "tiles")
	if err != nil {
		t.Fatalf("tiles: %v", err)
	}
	for _, name := range []string{"Block", "Wall", "Corner", "Space"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
}

func TestTilesCommandIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walls.yaml")
	data := "tileset:\n  name: walls\n  tiles:\n    - {name: Wall, check_vector: 1, rotations: 3}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "tiles", "-c", path); !wberrors.Is(err, wberrors.ErrCodeInvalidTileSet) {
		t.Errorf("incomplete tile set: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("completion script should mention the app name")
	}
}

func TestWatchModel(t *testing.T) {
	p := config.Default()
	cfg, bp, _, err := p.Build()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Timeout = time.Microsecond

	events := &eventLog{}
	eng := gen.New(cfg, gen.WithObserver(events.observer()))
	ctx := context.Background()
	run, err := eng.Start(ctx, bp)
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = newWatchModel(ctx, run, events, time.Millisecond)
	for i := 0; i < 100000; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(tickMsg(time.Now()))
		wm := m.(watchModel)
		if wm.err != nil {
			t.Fatalf("step: %v", wm.err)
		}
		if wm.done {
			if cmd == nil {
				t.Error("finished model should quit")
			}
			break
		}
	}

	wm := m.(watchModel)
	if !wm.done {
		t.Fatal("run did not finish")
	}
	if wm.progress.Owned != wm.progress.Target {
		t.Errorf("owned %d of %d", wm.progress.Owned, wm.progress.Target)
	}
	if len(events.lines) == 0 || len(events.lines) > watchEventLines {
		t.Errorf("event lines = %d", len(events.lines))
	}
	if view := wm.View(); !strings.Contains(view, "iterations") {
		t.Errorf("view = %q", view)
	}
}

func TestWatchModelQuit(t *testing.T) {
	cfg, bp, _, err := config.Default().Build()
	if err != nil {
		t.Fatal(err)
	}
	eng := gen.New(cfg)
	run, err := eng.Start(context.Background(), bp)
	if err != nil {
		t.Fatal(err)
	}
	m := newWatchModel(context.Background(), run, &eventLog{}, 0)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c should quit")
	}
	if !wberrors.Is(run.Err(), wberrors.ErrCodeCanceled) {
		t.Errorf("run err = %v, want CANCELED", run.Err())
	}
	if eng.Active() {
		t.Error("aborted run should release the engine")
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(5, 10, 10); strings.Count(got, "█") != 5 {
		t.Errorf("half bar = %q", got)
	}
	if got := progressBar(0, 0, 4); strings.Count(got, "░") != 4 {
		t.Errorf("empty bar = %q", got)
	}
}
