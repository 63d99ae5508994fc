package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	errs "github.com/matzehuels/canonic/pkg/errors"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

var listLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Punct", Pattern: `[:;,|\[\]]`},
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

// listBlock is one graph in neighbor-list form.
type listBlock struct {
	Lines []*listLine `parser:"@@*"`
	Cells *cellList   `parser:"@@?"`
}

type listLine struct {
	Pos       lexer.Position
	Vertex    int             `parser:"@Int ':'"`
	Neighbors []*listNeighbor `parser:"@@* ';'"`
}

// listNeighbor is a neighbor with an optional edge weight: "3" or "3,2".
type listNeighbor struct {
	Vertex int  `parser:"@Int"`
	Weight *int `parser:"( ',' @Int )?"`
}

// cellList is a partition in printer form: "[ 0 2 | 1 ]".
type cellList struct {
	Pos   lexer.Position
	Cells []*cellExpr `parser:"'[' ( @@ ( '|' @@ )* )? ']'"`
}

type cellExpr struct {
	Runs []*vertexRun `parser:"@@+"`
}

// vertexRun is a single vertex or an inclusive range "a:b".
type vertexRun struct {
	From int  `parser:"@Int"`
	To   *int `parser:"( ':' @Int )?"`
}

var (
	listParser = participle.MustBuild[listBlock](
		participle.Lexer(listLexer),
		participle.Elide("comment", "whitespace"),
	)
	cellParser = participle.MustBuild[cellList](
		participle.Lexer(listLexer),
		participle.Elide("comment", "whitespace"),
	)
)

// ReadList decodes a batch of neighbor-list graphs. The vertex count of each
// graph is one more than the largest vertex it mentions. For undirected
// graphs every listed neighbor becomes an edge. A neighbor written "v,w"
// sets the weight of its edge to w; listing the edge again without a weight
// keeps it.
func ReadList(r io.Reader, directed bool) ([]Instance, error) {
	var insts []Instance
	err := splitBlocks(r, func(start int, block string) error {
		parsed, err := listParser.ParseString("", block)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "graph at line %d", start)
		}
		if len(parsed.Lines) == 0 && parsed.Cells == nil {
			return nil
		}
		inst, err := parsed.instance(directed, start)
		if err != nil {
			return fmt.Errorf("graph at line %d: %w", start, err)
		}
		insts = append(insts, inst)
		return nil
	})
	return insts, err
}

func (b *listBlock) instance(directed bool, start int) (Instance, error) {
	n := 0
	for _, l := range b.Lines {
		n = max(n, l.Vertex+1)
		for _, nb := range l.Neighbors {
			n = max(n, nb.Vertex+1)
		}
	}
	if err := errs.ValidateOrder(n); err != nil {
		return Instance{}, err
	}
	g := graph.MustNew(n, directed)
	for _, l := range b.Lines {
		for _, nb := range l.Neighbors {
			var err error
			if nb.Weight != nil {
				err = g.AddWeightedEdge(l.Vertex, nb.Vertex, *nb.Weight)
			} else {
				err = g.AddEdge(l.Vertex, nb.Vertex)
			}
			if err != nil {
				return Instance{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", start+l.Pos.Line-1)
			}
		}
	}

	inst := Instance{Graph: g}
	if b.Cells != nil {
		p, err := b.Cells.partition(n)
		if err != nil {
			return Instance{}, err
		}
		inst.Partition = p
	}
	return inst, nil
}

// ParsePartition reads a partition of [0, n) in printer form.
func ParsePartition(s string, n int) (*partition.Partition, error) {
	parsed, err := cellParser.ParseString("", s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPartition, err, "parse partition %q", s)
	}
	return parsed.partition(n)
}

func (c *cellList) partition(n int) (*partition.Partition, error) {
	cells := make([][]int, len(c.Cells))
	for i, cell := range c.Cells {
		for _, r := range cell.Runs {
			to := r.From
			if r.To != nil {
				to = *r.To
			}
			if to < r.From {
				return nil, errs.New(errs.ErrCodeInvalidPartition, "empty range %d:%d", r.From, to)
			}
			for v := r.From; v <= to; v++ {
				cells[i] = append(cells[i], v)
			}
		}
	}
	p, err := partition.FromCells(n, cells)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPartition, err, "partition of %d vertices", n)
	}
	return p, nil
}

// WriteList encodes instances in neighbor-list form. Neighbors across an arc
// whose weight is not [graph.DefaultWeight] are written "v,w". A partition
// line follows a graph whose instance carries one.
func WriteList(w io.Writer, insts ...Instance) error {
	bw := bufio.NewWriter(w)
	for i, inst := range insts {
		if i > 0 {
			bw.WriteByte('\n')
		}
		g := inst.Graph
		for u := 0; u < g.Order(); u++ {
			bw.WriteString(strconv.Itoa(u))
			bw.WriteString(" : ")
			for _, v := range g.Neighbors(u) {
				bw.WriteString(strconv.Itoa(v))
				if w := g.Weight(u, v); w != graph.DefaultWeight {
					bw.WriteByte(',')
					bw.WriteString(strconv.Itoa(w))
				}
				bw.WriteByte(' ')
			}
			bw.WriteString(";\n")
		}
		if inst.Partition != nil {
			bw.WriteString(inst.Partition.String())
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// splitBlocks calls fn with each run of non-blank lines and the line number
// it starts on.
func splitBlocks(r io.Reader, fn func(start int, block string) error) error {
	var (
		b     strings.Builder
		line  int
		start int
	)
	flush := func() error {
		if b.Len() == 0 {
			return nil
		}
		defer b.Reset()
		return fn(start, b.String())
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		if b.Len() == 0 {
			start = line
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "read list")
	}
	return flush()
}
