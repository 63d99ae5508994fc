// Package render draws graphs and their partitions.
//
// # Overview
//
// [ToDOT] produces Graphviz DOT source in which every vertex is filled with
// the colour of its cell, so an equitable partition or an orbit partition
// can be read off the picture. [RenderSVG] lays the DOT out in process with
// go-graphviz; [ToPDF] and [ToPNG] convert the SVG with rsvg-convert.
//
//	dot := render.ToDOT(g, render.Options{Partition: p})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # Canonical form
//
// With [Options.Labels] set, vertex v is drawn with the label Labels[v]
// instead of v. Passing a canonical labeling draws the graph with its
// canonical vertex names.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz]. PDF and PNG conversion
// requires librsvg (rsvg-convert) on the PATH.
package render
