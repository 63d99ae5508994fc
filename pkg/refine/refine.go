// Package refine computes equitable refinements of ordered partitions.
//
// An ordered partition is equitable with respect to a graph when any two
// vertices in the same cell have the same number of neighbors in every
// cell. [Equitable] refines a partition to the coarsest equitable partition
// finer than it (color refinement), splitting cells by neighbor counts
// against a worklist of splitter cells.
//
// On a [graph.Weighted] graph the neighbors in a cell are counted per arc
// weight, so two vertices stay together only when they reach every cell
// through the same multiset of weights.
//
// # Processing order
//
// The worklist is drained in generations. During a generation every
// splitter contributes one component to every vertex's count vector,
// indexed by the splitter's cell index, and only then are the touched cells
// split. Because no split happens while counts are being taken, the order
// in which a generation's splitters and touched cells are visited cannot
// change the outcome: the resulting cells and their order are the same for
// any visiting order. [Equitable.Order] may permute each generation to
// exercise this.
//
// # Trace
//
// Each call returns a [Trace] recording, per generation, where cells split
// and into what sizes. The trace depends only on the graph structure and
// the input partition up to relabeling, so the search uses it as a cheap
// invariant to compare sibling branches before they reach a leaf.
package refine

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

var (
	// ErrOrderMismatch is returned when the graph and the partition cover a
	// different number of vertices.
	ErrOrderMismatch = errors.New("graph order does not match partition size")

	// ErrCellOutOfRange is returned when an active cell index is not the
	// start of a cell.
	ErrCellOutOfRange = partition.ErrCellOutOfRange
)

// Refiner refines a partition in place with respect to a graph. active
// lists the cell indices whose neighborhoods may cause further splits; nil
// means every cell.
type Refiner interface {
	Refine(g graph.Graph, p *partition.Partition, active []int) (Trace, error)
}

// Func adapts a function to the [Refiner] interface.
type Func func(g graph.Graph, p *partition.Partition, active []int) (Trace, error)

// Refine calls f.
func (f Func) Refine(g graph.Graph, p *partition.Partition, active []int) (Trace, error) {
	return f(g, p, active)
}

// Equitable is the color-refinement [Refiner]. The zero value splits by
// ascending neighbor count.
type Equitable struct {
	// Descending orders fragments by decreasing neighbor count instead.
	// Both orders yield the same cells; only their order differs.
	Descending bool

	// Order, if set, may permute the cell indices of each generation before
	// they are processed. It must not add or drop entries.
	Order func(cells []int)

	// Observe, if set, is called after every generation with the
	// generation number (from 1) and the partition at that point.
	Observe func(generation int, p *partition.Partition)
}

// entry is one component of a vertex's count vector: the number of arcs of
// one weight from the vertex into the splitter cell and from the cell into
// the vertex.
type entry struct {
	splitter int
	weight   int
	out, in  int
}

// Refine implements [Refiner].
func (r Equitable) Refine(g graph.Graph, p *partition.Partition, active []int) (Trace, error) {
	n := p.Len()
	if g.Order() != n {
		return Trace{}, fmt.Errorf("graph %d, partition %d: %w", g.Order(), n, ErrOrderMismatch)
	}

	var batch []int
	if active == nil {
		batch = p.Cells()
	} else {
		batch = slices.Clone(active)
		slices.Sort(batch)
		batch = slices.Compact(batch)
		for _, i := range batch {
			if !p.IsCell(i) {
				return Trace{}, fmt.Errorf("active cell %d: %w", i, ErrCellOutOfRange)
			}
		}
	}

	weight := func(u, v int) int { return graph.DefaultWeight }
	if wg, ok := graph.WeightsOf(g); ok {
		weight = wg.Weight
	}

	counts := make([][]entry, n)
	var touchedVertices []int
	var trace Trace

	for len(batch) > 0 && !p.IsDiscrete() {
		if r.Order != nil {
			r.Order(batch)
		}

		// Count arcs between every vertex and every splitter cell.
		for _, s := range batch {
			for _, w := range p.CellAt(s) {
				for _, u := range g.InNeighbors(w) {
					touchedVertices = bump(counts, touchedVertices, u, s, weight(u, w), true)
				}
				if g.Directed() {
					for _, u := range g.Neighbors(w) {
						touchedVertices = bump(counts, touchedVertices, u, s, weight(w, u), false)
					}
				}
			}
		}

		var touched []int
		for _, u := range touchedVertices {
			slices.SortFunc(counts[u], compareKeys)
			touched = append(touched, p.CellOf(u))
		}
		slices.Sort(touched)
		touched = slices.Compact(touched)
		if r.Order != nil {
			r.Order(touched)
		}

		compare := func(a, b int) int { return compareCounts(counts[a], counts[b]) }
		if r.Descending {
			compare = func(a, b int) int { return compareCounts(counts[b], counts[a]) }
		}

		var gen Generation
		var next []int
		for _, d := range touched {
			size := p.CellSize(d)
			k, err := p.SplitFunc(d, compare)
			if err != nil {
				return trace, err
			}
			if k == 1 {
				continue
			}
			ev := Split{Cell: d, Sizes: make([]int, 0, k)}
			for f := d; f < d+size; f = p.Next(f) {
				ev.Sizes = append(ev.Sizes, p.CellSize(f))
				next = append(next, f)
			}
			gen.Splits = append(gen.Splits, ev)
		}

		for _, u := range touchedVertices {
			counts[u] = counts[u][:0]
		}
		touchedVertices = touchedVertices[:0]

		if len(gen.Splits) == 0 {
			break
		}
		slices.SortFunc(gen.Splits, func(a, b Split) int { return cmp.Compare(a.Cell, b.Cell) })
		gen.Cells = p.NumCells()
		trace.Generations = append(trace.Generations, gen)
		if r.Observe != nil {
			r.Observe(len(trace.Generations), p)
		}

		slices.Sort(next)
		batch = next
	}

	trace.Cells = p.NumCells()
	return trace, nil
}

// bump increments u's count of arcs of weight w against splitter s. Counts
// for one splitter are taken contiguously, so its components are the last
// ones of the vector.
func bump(counts [][]entry, touched []int, u, s, w int, out bool) []int {
	c := counts[u]
	if len(c) == 0 {
		touched = append(touched, u)
	}
	i := len(c) - 1
	for i >= 0 && c[i].splitter == s && c[i].weight != w {
		i--
	}
	if i < 0 || c[i].splitter != s {
		c = append(c, entry{splitter: s, weight: w})
		i = len(c) - 1
	}
	if out {
		c[i].out++
	} else {
		c[i].in++
	}
	counts[u] = c
	return touched
}

// compareKeys orders components by splitter, then by weight.
func compareKeys(a, b entry) int {
	if c := cmp.Compare(a.splitter, b.splitter); c != 0 {
		return c
	}
	return cmp.Compare(a.weight, b.weight)
}

// compareCounts compares two sparse count vectors as dense vectors indexed
// by (splitter, weight), with absent components counting as zero.
func compareCounts(a, b []entry) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var x, y entry
		switch {
		case j == len(b) || (i < len(a) && compareKeys(a[i], b[j]) < 0):
			x = a[i]
			i++
		case i == len(a) || compareKeys(b[j], a[i]) < 0:
			y = b[j]
			j++
		default:
			x, y = a[i], b[j]
			i++
			j++
		}
		if c := cmp.Compare(x.out, y.out); c != 0 {
			return c
		}
		if c := cmp.Compare(x.in, y.in); c != 0 {
			return c
		}
	}
	return 0
}

// Compute returns the coarsest equitable partition refining initial. A nil
// initial partition stands for the unit partition. initial is not modified.
func Compute(g graph.Graph, initial *partition.Partition) (*partition.Partition, error) {
	return ComputeWith(Equitable{}, g, initial)
}

// ComputeWith is like [Compute] with an explicit refiner.
func ComputeWith(r Refiner, g graph.Graph, initial *partition.Partition) (*partition.Partition, error) {
	var p *partition.Partition
	if initial == nil {
		p = partition.Initial(g.Order())
	} else {
		p = initial.Clone()
	}
	if _, err := r.Refine(g, p, nil); err != nil {
		return nil, err
	}
	return p, nil
}
