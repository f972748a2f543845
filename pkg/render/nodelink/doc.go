// Package nodelink renders generated layouts as node-link diagrams.
//
// # Overview
//
// Every section becomes a triangle pinned at its world position, pointing
// according to its flip state and filled with its archetype color. Edges
// follow adjacency links. Graphviz's neato engine keeps the pinned positions,
// so the picture shows the actual grid rather than a computed arrangement.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include tile, rotation, mask and region
//   - Regions: outline color follows the owning region's color
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
