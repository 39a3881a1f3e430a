// Package render turns resolved dependency graphs into Graphviz DOT text and
// rasterized SVG/PNG images.
//
// [ToDOT] produces a deterministic DOT document from a [resolve.Graph];
// [RenderSVG] and [RenderPNG] lay it out with the embedded Graphviz engine,
// so no external binary is required.
package render
