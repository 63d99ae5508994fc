package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
)

// ReadDIMACS decodes one graph in DIMACS form. "p edge" declares an
// undirected graph with "e" lines, "p arc" a digraph with "a" lines.
// Vertices are 1-based in the file and 0-based in the result. The declared
// edge count is not enforced.
func ReadDIMACS(r io.Reader) (*graph.Adjacency, error) {
	var (
		g    *graph.Adjacency
		kind string
		line int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] == "c" {
			continue
		}
		switch fields[0] {
		case "p":
			if g != nil {
				return nil, formatError(line, "duplicate problem line")
			}
			if len(fields) != 4 || (fields[1] != "edge" && fields[1] != "arc") {
				return nil, formatError(line, "expected \"p edge n m\" or \"p arc n m\"")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, formatError(line, "vertex count %q", fields[2])
			}
			if err := errs.ValidateOrder(n); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", line)
			}
			kind = fields[1]
			g = graph.MustNew(n, kind == "arc")
		case "e", "a":
			if g == nil {
				return nil, formatError(line, "%s line before problem line", fields[0])
			}
			if (fields[0] == "a") != (kind == "arc") {
				return nil, formatError(line, "%q line in a %q problem", fields[0], kind)
			}
			if len(fields) != 3 {
				return nil, formatError(line, "expected \"%s u v\"", fields[0])
			}
			u, err1 := strconv.Atoi(fields[1])
			v, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				return nil, formatError(line, "vertices must be integers")
			}
			if err := g.AddEdge(u-1, v-1); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", line)
			}
		default:
			return nil, formatError(line, "unknown line type %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read dimacs")
	}
	if g == nil {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "missing problem line")
	}
	return g, nil
}

// WriteDIMACS encodes g in DIMACS form.
func WriteDIMACS(w io.Writer, g *graph.Adjacency) error {
	bw := bufio.NewWriter(w)
	kind, tag := "edge", "e"
	if g.Directed() {
		kind, tag = "arc", "a"
	}
	edges := g.Edges()
	fmt.Fprintf(bw, "p %s %d %d\n", kind, g.Order(), len(edges))
	for _, e := range edges {
		fmt.Fprintf(bw, "%s %d %d\n", tag, e.From+1, e.To+1)
	}
	return bw.Flush()
}
