package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

const tomlProject = `
[generation]
seed = 7
timeout = "50ms"
scale = 2.0

[blueprint]
name = "world"
target = 10

[[blueprint.children]]
name = "forest"
target = 40
color = "#22aa22"

[[blueprint.children]]
name = "lake"
target = 5

[tileset]
name = "custom"

[[tileset.tiles]]
name = "Block"
check_vector = 0
rotations = 1

[[tileset.tiles]]
name = "Space"
check_vector = 7
rotations = 1
`

const yamlProject = `
generation:
  seed: 7
  timeout: 50ms
  scale: 2
blueprint:
  name: world
  target: 10
  children:
    - name: forest
      target: 40
      color: "#22aa22"
    - name: lake
      target: 5
tileset:
  name: custom
  tiles:
    - {name: Block, check_vector: 0, rotations: 1}
    - {name: Space, check_vector: 7, rotations: 1}
`

const jsonProject = `{
  "generation": {"seed": 7, "timeout": "50ms", "scale": 2},
  "blueprint": {"name": "world", "target": 10, "children": [
    {"name": "forest", "target": 40, "color": "#22aa22"},
    {"name": "lake", "target": 5}
  ]},
  "tileset": {"name": "custom", "tiles": [
    {"name": "Block", "check_vector": 0, "rotations": 1},
    {"name": "Space", "check_vector": 7, "rotations": 1}
  ]}
}`

func TestParseFormats(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatTOML, tomlProject},
		{FormatYAML, yamlProject},
		{FormatJSON, jsonProject},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			p, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			cfg, bp, ts, err := p.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if cfg.Seed != 7 || cfg.Scale != 2 || cfg.Timeout != 50*time.Millisecond {
				t.Errorf("config = %+v", cfg)
			}
			if cfg.StallLimit != gen.DefaultStallLimit {
				t.Errorf("StallLimit = %d, want default", cfg.StallLimit)
			}

			root := bp.Root()
			if root.Name() != "world" || root.TargetSize() != 10 || root.ChildCount() != 2 {
				t.Fatalf("root = %q/%d/%d", root.Name(), root.TargetSize(), root.ChildCount())
			}
			if c := root.Child(0); c.Name() != "forest" || c.Color() != "#22aa22" {
				t.Errorf("child 0 = %q %q", c.Name(), c.Color())
			}
			if c := root.Child(1); c.Color() != world.DefaultRegionColor {
				t.Errorf("child 1 color = %q, want default", c.Color())
			}
			if got := bp.FullTargetSize(); got != 55 {
				t.Errorf("FullTargetSize = %d, want 55", got)
			}

			if ts.Name != "custom" || len(ts.Tiles) != 2 {
				t.Errorf("tileset = %+v", ts)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	p, err := Parse([]byte(""), FormatTOML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, bp, ts, err := p.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := gen.DefaultConfig()
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
	if bp.Root().TargetSize() != world.DefaultTargetSize || bp.Root().ChildCount() != 0 {
		t.Errorf("default blueprint = %d/%d", bp.Root().TargetSize(), bp.Root().ChildCount())
	}
	if len(ts.Tiles) != len(tiles.Default().Tiles) {
		t.Errorf("default tileset has %d tiles", len(ts.Tiles))
	}
}

func TestSeedZeroIsKept(t *testing.T) {
	p, err := Parse([]byte("[generation]\nseed = 0\n"), FormatTOML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Seed() != 0 {
		t.Errorf("Seed = %d, want 0", p.Seed())
	}
}

func TestWithSeed(t *testing.T) {
	p := Default()
	q := p.WithSeed(99)
	if q.Seed() != 99 {
		t.Errorf("Seed = %d, want 99", q.Seed())
	}
	if p.Seed() != gen.DefaultSeed {
		t.Errorf("original seed changed to %d", p.Seed())
	}
}

func TestNewBlueprintIsFresh(t *testing.T) {
	p := Default()
	a, err := p.NewBlueprint()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.NewBlueprint()
	if err != nil {
		t.Fatal(err)
	}
	if a.Root() == b.Root() || a.Root().ID() == b.Root().ID() {
		t.Error("NewBlueprint should build new regions on every call")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code wberrors.Code
	}{
		{"bad syntax", "[generation", wberrors.ErrCodeInvalidFormat},
		{"bad timeout", "[generation]\ntimeout = \"soon\"\n", wberrors.ErrCodeInvalidInput},
		{"negative scale", "[generation]\nscale = -1.0\n", wberrors.ErrCodeInvalidInput},
		{"negative target", "[blueprint]\ntarget = -1\n", wberrors.ErrCodeInvalidBlueprint},
		{"bad color", "[blueprint]\ntarget = 1\ncolor = \"red\"\n", wberrors.ErrCodeInvalidInput},
		{"bad child", "[blueprint]\ntarget = 1\n[[blueprint.children]]\ntarget = -3\n", wberrors.ErrCodeInvalidBlueprint},
		{"huge target", "[blueprint]\ntarget = 1099511627776\n", wberrors.ErrCodeInvalidBlueprint},
		{"over max sections", "[generation]\nmax_sections = 10\n[blueprint]\ntarget = 6\n[[blueprint.children]]\ntarget = 5\n", wberrors.ErrCodeInvalidBlueprint},
		{"max sections too large", "[generation]\nmax_sections = 1099511627776\n", wberrors.ErrCodeInvalidInput},
		{"bad tile", "[[tileset.tiles]]\nname = \"X\"\ncheck_vector = 9\nrotations = 1\n", wberrors.ErrCodeInvalidTileSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.data), FormatTOML)
			if err == nil {
				err = p.Validate()
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if got := wberrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestHugeTargetJSON(t *testing.T) {
	p, err := Parse([]byte(`{"blueprint":{"target":1099511627776}}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, _, err := p.Build(); !wberrors.Is(err, wberrors.ErrCodeInvalidBlueprint) {
		t.Errorf("Build err = %v, want INVALID_BLUEPRINT", err)
	}
}

func TestBlueprintAtMaxSections(t *testing.T) {
	p := Default()
	p.Generation.MaxSections = 10
	p.Blueprint = &RegionSpec{Target: 5, Children: []RegionSpec{{Target: 5}}}
	bp, err := p.NewBlueprint()
	if err != nil {
		t.Fatalf("NewBlueprint: %v", err)
	}
	if bp.FullTargetSize() != 10 {
		t.Errorf("FullTargetSize = %d, want 10", bp.FullTargetSize())
	}
}

func TestMaxDepth(t *testing.T) {
	spec := RegionSpec{Target: 1}
	for i := 0; i < MaxDepth+1; i++ {
		spec = RegionSpec{Target: 1, Children: []RegionSpec{spec}}
	}
	p := &Project{Blueprint: &spec}
	if _, err := p.NewBlueprint(); !wberrors.Is(err, wberrors.ErrCodeInvalidBlueprint) {
		t.Errorf("deep tree: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yml")
	if err := os.WriteFile(path, []byte(yamlProject), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Blueprint.Name != "world" {
		t.Errorf("Blueprint.Name = %q", p.Blueprint.Name)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !wberrors.Is(err, wberrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "world.ini")); !wberrors.Is(err, wberrors.ErrCodeUnsupported) {
		t.Errorf("unknown extension: %v", err)
	}
}

func TestFormatFromContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want Format
		ok   bool
	}{
		{"", FormatJSON, true},
		{"application/json; charset=utf-8", FormatJSON, true},
		{"application/toml", FormatTOML, true},
		{"application/yaml", FormatYAML, true},
		{"text/x-yaml", FormatYAML, true},
		{"text/plain", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromContentType(tt.ct)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFromContentType(%q) = %q, %v", tt.ct, got, err)
		}
	}
}
