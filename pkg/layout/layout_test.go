package layout

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// buildSample builds origin -> right -> (flipped) down chain owned by a
// two-level blueprint.
func buildSample(t *testing.T) (Layout, *world.Blueprint) {
	t.Helper()
	child := world.NewRegion(1)
	child.SetName("cellar")
	root := world.NewRegion(2, child)
	bp := world.NewBlueprint(root)

	w := world.New(2)
	origin, _, err := w.CreateIn(root, world.Vec2{}, false, world.Start)
	if err != nil {
		t.Fatal(err)
	}
	right, err := origin.AddAdjacent(world.Right, world.Normal)
	if err != nil {
		t.Fatal(err)
	}
	root.AddSection(right)
	down, err := right.AddAdjacent(world.Down, world.End)
	if err != nil {
		t.Fatal(err)
	}
	child.AddSection(down)

	placements, err := tiles.Assign(w, tiles.Default())
	if err != nil {
		t.Fatal(err)
	}
	return Build(w, bp, placements, Meta{RunID: "run-1", Seed: 9, TileSet: "default"}), bp
}

func TestBuild(t *testing.T) {
	l, bp := buildSample(t)

	if l.RunID != "run-1" || l.Seed != 9 || l.Scale != 2 {
		t.Errorf("metadata = %q %d %g", l.RunID, l.Seed, l.Scale)
	}
	if len(l.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(l.Sections))
	}
	if math.Abs(l.Width-3) > 1e-9 || l.MinX != 0 {
		t.Errorf("bounds = min %g width %g", l.MinX, l.Width)
	}

	origin := l.Sections[0]
	if origin.Archetype != world.Start || origin.Adjacent[world.Right] != 2 || origin.Mask != 0b001 {
		t.Errorf("origin = %+v", origin)
	}
	if origin.Tile != "Wall" || origin.Rotation != 0 {
		t.Errorf("origin tile = %s@%g", origin.Tile, origin.Rotation)
	}
	if mid := l.Sections[1]; mid.Mask != 0b101 || mid.Tile != "Corner" || !mid.Flipped {
		t.Errorf("middle = %+v", mid)
	}

	if len(l.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(l.Regions))
	}
	cellar := l.Regions[1]
	if cellar.Name != "cellar" || cellar.Parent != int64(bp.Root().ID()) || cellar.Count != 1 {
		t.Errorf("child region = %+v", cellar)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEdges(t *testing.T) {
	l, _ := buildSample(t)
	edges := l.Edges()
	want := []Edge{
		{From: 1, To: 2, Slot: world.Right},
		{From: 2, To: 3, Slot: world.Down},
	}
	if len(edges) != len(want) {
		t.Fatalf("Edges = %v", edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, edges[i], want[i])
		}
	}
	if got := l.TileCounts(); got["Wall"] != 2 || got["Corner"] != 1 {
		t.Errorf("TileCounts = %v", got)
	}
}

func TestRoundTripFile(t *testing.T) {
	l, _ := buildSample(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteFile(l, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"archetype": "start"`) {
		t.Errorf("archetype not written as text:\n%s", data)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Sections) != 3 || got.Sections[2].Archetype != world.End {
		t.Errorf("read back %+v", got.Sections)
	}
	if s, ok := got.Section(2); !ok || s.Tile != "Corner" {
		t.Errorf("Section(2) = %+v, %t", s, ok)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !wberrors.Is(err, wberrors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestUnmarshalRejectsBrokenLayouts(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"NotJSON", `{`},
		{"Asymmetric", `{"sections":[{"id":1,"adjacent":[2,0,0],"mask":1},{"id":2,"adjacent":[0,0,0],"mask":0}]}`},
		{"UnknownTarget", `{"sections":[{"id":1,"adjacent":[9,0,0],"mask":1}]}`},
		{"MaskMismatch", `{"sections":[{"id":1,"adjacent":[0,0,0],"mask":4}]}`},
		{"Duplicate", `{"sections":[{"id":1,"adjacent":[0,0,0]},{"id":1,"adjacent":[0,0,0]}]}`},
		{"OverTarget", `{"sections":[],"regions":[{"id":1,"target":1,"count":2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !wberrors.Is(err, wberrors.ErrCodeInvalidFormat) {
				t.Errorf("Unmarshal err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}
