package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

// Palette holds the fill colours assigned to cells in partition order. It
// wraps around when a partition has more cells.
var Palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// Options configures DOT generation.
type Options struct {
	// Partition colours vertices by cell. Nil draws every vertex white.
	Partition *partition.Partition
	// Labels renames vertices: v is drawn as Labels[v]. Nil keeps v.
	Labels []int
	// Title is drawn above the graph when non-empty.
	Title string
	// Layout picks the Graphviz engine attribute ("neato", "circo", ...).
	// Empty leaves the renderer default.
	Layout string
}

// ToDOT converts g to Graphviz DOT source. Edges of a weighted graph are
// labeled with their weight.
func ToDOT(g graph.Graph, opts Options) string {
	kind, arrow := "graph", "--"
	if g.Directed() {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Layout != "" {
		fmt.Fprintf(&buf, "  layout=%q;\n", opts.Layout)
	}
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	colours := cellColours(g.Order(), opts.Partition)
	for v := range g.Order() {
		attrs := []string{fmt.Sprintf("label=%q", label(v, opts.Labels))}
		if colours != nil {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", colours[v]))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	wg, weighted := graph.WeightsOf(g)
	for u := range g.Order() {
		for _, v := range g.Neighbors(u) {
			if !g.Directed() && v < u {
				continue
			}
			if weighted {
				fmt.Fprintf(&buf, "  %d %s %d [label=%q];\n", u, arrow, v, strconv.Itoa(wg.Weight(u, v)))
				continue
			}
			fmt.Fprintf(&buf, "  %d %s %d;\n", u, arrow, v)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(v int, labels []int) string {
	if v < len(labels) {
		return strconv.Itoa(labels[v])
	}
	return strconv.Itoa(v)
}

// cellColours maps each vertex to the colour of its cell, or returns nil
// when p does not cover the graph.
func cellColours(n int, p *partition.Partition) []string {
	if p == nil || p.Len() != n {
		return nil
	}
	colours := make([]string, n)
	for k, cell := range p.CellSets() {
		for _, v := range cell {
			colours[v] = Palette[k%len(Palette)]
		}
	}
	return colours
}
