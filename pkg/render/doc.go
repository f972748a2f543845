// Package render provides debug rendering for generated layouts.
//
// # Overview
//
// Rendering worlds for play is the job of a host substrate (see
// pkg/tiles.Substrate). This package only produces inspection output:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams of the section graph (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/wrldbldr/pkg/render/nodelink
package render
