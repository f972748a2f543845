package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

func sampleLayout() layout.Layout {
	return layout.Layout{
		Scale: 1,
		Sections: []layout.Section{
			{ID: 1, Archetype: world.Start, Region: 7, Adjacent: [3]uint64{2, 0, 0}, Mask: 0b001, Tile: "Wall"},
			{ID: 2, X: 1, Flipped: true, Region: 7, Adjacent: [3]uint64{1, 0, 0}, Mask: 0b001, Tile: "Wall"},
			{ID: 3, X: 5, Y: -2, Archetype: world.End},
		},
		Regions: []layout.Region{{ID: 7, Target: 2, Count: 2, Color: "#123456ff"}},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})

	for _, want := range []string{
		"graph G {",
		"layout=neato",
		`pos="0.000,0.000!"`,
		`pos="5.000,-2.000!"`,
		"1 -- 2",
		`fillcolor="#00b30080"`,
		"orientation=180",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
	if strings.Contains(dot, "2 -- 1") {
		t.Error("ToDOT() duplicated an undirected edge")
	}
	if strings.Contains(dot, "#123456ff") {
		t.Error("region colors should only appear with Options.Regions")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{Detailed: true, Regions: true})

	for _, want := range []string{"Wall 0°", "mask 001", "region 7", "start", `color="#123456ff"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestToDOT_Unowned(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})
	if !strings.Contains(dot, `3 [label="3", pos="5.000,-2.000!", fillcolor="#b3000080", style="filled,dashed"]`) {
		t.Errorf("unowned section not dashed:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleLayout(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`width="10" height="20"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
