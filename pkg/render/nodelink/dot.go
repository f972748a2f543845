package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/render"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

// Engine is the Graphviz layout engine used for section graphs.
const Engine = "neato"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes tile, rotation, mask and region in node labels.
	// When false, only the section handle is shown.
	Detailed bool

	// Regions outlines each section in its region's color.
	Regions bool
}

// ToDOT converts a layout to Graphviz DOT format. Node positions are pinned
// to the section centers, scaled to inches.
func ToDOT(l layout.Layout, opts Options) string {
	colors := make(map[int64]string, len(l.Regions))
	for _, r := range l.Regions {
		colors[r.ID] = r.Color
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", Engine)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=triangle, style=filled, fixedsize=true, width=0.6, height=0.6, fontsize=10, penwidth=2];\n")
	buf.WriteString("  edge [color=\"#555555\", penwidth=2];\n")
	buf.WriteString("\n")

	for _, s := range l.Sections {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(s, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(s.X), fmtCoord(s.Y)),
			fmt.Sprintf("fillcolor=%q", s.Archetype.Color()),
		}
		if s.Flipped {
			attrs = append(attrs, "orientation=180")
		}
		if c, ok := colors[s.Region]; ok && opts.Regions {
			attrs = append(attrs, fmt.Sprintf("color=%q", c))
		}
		if s.Region == 0 {
			attrs = append(attrs, "style=\"filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", s.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges() {
		fmt.Fprintf(&buf, "  %d -- %d [tooltip=%q];\n", e.From, e.To, e.Slot.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s layout.Section, detailed bool) string {
	id := strconv.FormatUint(s.ID, 10)
	if !detailed {
		return id
	}
	parts := []string{id}
	if s.Tile != "" {
		parts = append(parts, fmt.Sprintf("%s %g°", s.Tile, s.Rotation))
	}
	parts = append(parts, fmt.Sprintf("mask %03b", s.Mask))
	if s.Region != 0 {
		parts = append(parts, fmt.Sprintf("region %d", s.Region))
	}
	if s.Archetype != world.Normal {
		parts = append(parts, s.Archetype.String())
	}
	return strings.Join(parts, "\n")
}

// fmtCoord formats a world coordinate in inches at one inch per scale unit.
func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
