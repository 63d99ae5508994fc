package io

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
)

// ReadEdgeList decodes a batch of edge-list graphs. It does not close r.
func ReadEdgeList(r io.Reader) ([]*graph.Adjacency, error) {
	var (
		gs   []*graph.Adjacency
		cur  *graph.Adjacency
		line int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			cur = nil
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if cur == nil {
			g, err := readHeader(line, fields)
			if err != nil {
				return nil, err
			}
			cur = g
			gs = append(gs, g)
			continue
		}

		if len(fields) != 2 {
			return nil, formatError(line, "expected \"u v\", got %q", text)
		}
		u, err1 := strconv.Atoi(fields[0])
		v, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, formatError(line, "vertices must be integers: %q", text)
		}
		if err := cur.AddEdge(u, v); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read edge list")
	}
	return gs, nil
}

func readHeader(line int, fields []string) (*graph.Adjacency, error) {
	if len(fields) > 2 {
		return nil, formatError(line, "expected vertex count, got %q", strings.Join(fields, " "))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, formatError(line, "expected vertex count, got %q", fields[0])
	}
	if err := errs.ValidateOrder(n); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", line)
	}
	directed := false
	if len(fields) == 2 {
		switch fields[1] {
		case "directed":
			directed = true
		case "undirected":
		default:
			return nil, formatError(line, "expected \"directed\" or \"undirected\", got %q", fields[1])
		}
	}
	return graph.MustNew(n, directed), nil
}

// WriteEdgeList encodes graphs in edge-list form, separated by blank lines.
func WriteEdgeList(w io.Writer, gs ...*graph.Adjacency) error {
	bw := bufio.NewWriter(w)
	for i, g := range gs {
		if i > 0 {
			bw.WriteByte('\n')
		}
		bw.WriteString(strconv.Itoa(g.Order()))
		if g.Directed() {
			bw.WriteString(" directed")
		}
		bw.WriteByte('\n')
		for _, e := range g.Edges() {
			bw.WriteString(strconv.Itoa(e.From))
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(e.To))
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
