// Package partition implements ordered partitions of a vertex set and the
// nest used to undo changes to them during backtracking search.
//
// A [Partition] stores its vertices in one flat array. Each cell is a
// contiguous run of that array and is addressed by its start offset, the
// "cell index". Splitting a cell never moves vertices outside it, so the
// index of the first fragment is the index of the original cell and the
// other fragments get the offsets at which they begin.
//
//	p := partition.Initial(4)          // [ 0:3 ]
//	p.Individualize(2)                 // [ 2 | 0 1 3 ]
//	p.CellOf(0)                        // 1
//
// The order of cells is significant and defines the vertex ordering once the
// partition is discrete. The order within a cell is only meaningful after a
// split or individualization placed vertices there.
package partition

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/canonic/pkg/graph"
)

var (
	// ErrCellOutOfRange is returned by [Split] and
	// [Partition.SplitFunc] when the index is not the start offset of a cell.
	ErrCellOutOfRange = errors.New("cell index out of range")

	// ErrVertexOutOfRange is returned when a vertex is not in [0, Len()).
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrSingletonCell is returned by [Partition.Individualize] when the
	// vertex already sits alone in its cell.
	ErrSingletonCell = errors.New("cell is already a singleton")

	// ErrNotCovering is returned by [FromCells] when the cells do not cover
	// [0, n) exactly once.
	ErrNotCovering = errors.New("cells must cover every vertex exactly once")

	// ErrEmptyCell is returned by [FromCells] for an empty cell.
	ErrEmptyCell = errors.New("cells must not be empty")
)

// Partition is an ordered partition of [0, n) into non-empty cells.
//
// All mutating methods work in place. A Partition is not safe for
// concurrent use.
type Partition struct {
	elements []int // vertices in partition order
	position []int // position[v] is the offset of v in elements
	start    []int // start[v] is the cell index of v
	size     []int // size[i] is the length of the cell starting at i
	cells    int

	journal *journal // non-nil while attached to a Nest
}

// Initial returns the unit partition of [0, n): one cell holding every
// vertex in identifier order.
func Initial(n int) *Partition {
	p := &Partition{
		elements: make([]int, n),
		position: make([]int, n),
		start:    make([]int, n),
		size:     make([]int, n),
	}
	for v := range n {
		p.elements[v] = v
		p.position[v] = v
	}
	if n > 0 {
		p.size[0] = n
		p.cells = 1
	}
	return p
}

// FromCells builds a partition with the given cells in the given order.
// The vertex order inside each cell is kept.
func FromCells(n int, cells [][]int) (*Partition, error) {
	p := &Partition{
		elements: make([]int, 0, n),
		position: make([]int, n),
		start:    make([]int, n),
		size:     make([]int, n),
	}
	seen := make([]bool, n)
	for _, cell := range cells {
		if len(cell) == 0 {
			return nil, ErrEmptyCell
		}
		s := len(p.elements)
		for _, v := range cell {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("vertex %d: %w", v, ErrVertexOutOfRange)
			}
			if seen[v] {
				return nil, fmt.Errorf("vertex %d repeated: %w", v, ErrNotCovering)
			}
			seen[v] = true
			p.position[v] = len(p.elements)
			p.start[v] = s
			p.elements = append(p.elements, v)
		}
		p.size[s] = len(cell)
		p.cells++
	}
	if len(p.elements) != n {
		return nil, fmt.Errorf("%d of %d vertices: %w", len(p.elements), n, ErrNotCovering)
	}
	return p, nil
}

// Len returns the number of vertices.
func (p *Partition) Len() int { return len(p.elements) }

// NumCells returns the number of cells.
func (p *Partition) NumCells() int { return p.cells }

// IsDiscrete reports whether every cell is a singleton.
func (p *Partition) IsDiscrete() bool { return p.cells == len(p.elements) }

// CellOf returns the index of the cell containing v.
func (p *Partition) CellOf(v int) int { return p.start[v] }

// IsCell reports whether i is the start offset of a cell.
func (p *Partition) IsCell(i int) bool {
	return i >= 0 && i < len(p.elements) && p.start[p.elements[i]] == i
}

// CellAt returns the vertices of the cell starting at offset i, in
// partition order, or nil when i is not a cell index. The slice aliases the
// partition and is only valid until the next mutation.
func (p *Partition) CellAt(i int) []int {
	if !p.IsCell(i) {
		return nil
	}
	return p.elements[i : i+p.size[i]]
}

// CellSize returns the length of the cell starting at i, or 0 when i is not
// a cell index.
func (p *Partition) CellSize(i int) int {
	if !p.IsCell(i) {
		return 0
	}
	return p.size[i]
}

// Next returns the index of the cell following the cell at i. It returns
// Len() after the last cell.
func (p *Partition) Next(i int) int { return i + p.size[i] }

// Cells returns the cell indices in partition order.
func (p *Partition) Cells() []int {
	out := make([]int, 0, p.cells)
	for i := 0; i < len(p.elements); i += p.size[i] {
		out = append(out, i)
	}
	return out
}

// Ordering returns a copy of the flat vertex array. For a discrete
// partition this is the vertex ordering the partition denotes.
func (p *Partition) Ordering() []int { return slices.Clone(p.elements) }

// Position returns the offset of v in the flat vertex array.
func (p *Partition) Position(v int) int { return p.position[v] }

// Split stably sorts the cell at index i by key and breaks it wherever the
// key changes. It returns the number of cells the original cell became (1
// when every vertex had the same key).
func Split[K cmp.Ordered](p *Partition, i int, key func(v int) K) (int, error) {
	return p.SplitFunc(i, func(a, b int) int { return cmp.Compare(key(a), key(b)) })
}

// SplitFunc is like [Split] with an explicit three-way comparison on
// vertices. Vertices comparing equal stay in their current relative order.
func (p *Partition) SplitFunc(i int, compare func(a, b int) int) (int, error) {
	if !p.IsCell(i) {
		return 0, fmt.Errorf("split %d: %w", i, ErrCellOutOfRange)
	}
	m := p.size[i]
	if m == 1 {
		return 1, nil
	}
	cell := p.elements[i : i+m]

	fragments := 1
	sorted := true
	for k := 1; k < m; k++ {
		switch c := compare(cell[k-1], cell[k]); {
		case c > 0:
			sorted = false
			fragments++
		case c < 0:
			fragments++
		}
	}
	if fragments == 1 {
		return 1, nil
	}

	p.record(i, cell)
	if !sorted {
		slices.SortStableFunc(cell, compare)
		fragments = 1
		for k := 1; k < m; k++ {
			if compare(cell[k-1], cell[k]) != 0 {
				fragments++
			}
		}
	}

	// Rewrite positions and cell boundaries for the reordered run.
	s := i
	for k := 0; k < m; k++ {
		v := cell[k]
		if k > 0 && compare(cell[k-1], v) != 0 {
			p.size[s] = i + k - s
			s = i + k
		}
		p.position[v] = i + k
		p.start[v] = s
	}
	p.size[s] = i + m - s
	p.cells += fragments - 1
	return fragments, nil
}

// Individualize moves v to the front of its cell and splits it off as a
// singleton cell. It returns the index of the remainder cell, which
// immediately follows v's new cell.
func (p *Partition) Individualize(v int) (int, error) {
	if v < 0 || v >= len(p.elements) {
		return 0, fmt.Errorf("individualize %d: %w", v, ErrVertexOutOfRange)
	}
	i := p.start[v]
	m := p.size[i]
	if m == 1 {
		return 0, fmt.Errorf("individualize %d: %w", v, ErrSingletonCell)
	}
	p.record(i, p.elements[i:i+m])

	// Swap v to the front of its cell.
	pos := p.position[v]
	u := p.elements[i]
	p.elements[i], p.elements[pos] = v, u
	p.position[v], p.position[u] = i, pos

	rest := i + 1
	p.size[i] = 1
	p.size[rest] = m - 1
	for _, w := range p.elements[rest : i+m] {
		p.start[w] = rest
	}
	p.cells++
	return rest, nil
}

// IsEquitable reports whether every two vertices in a common cell have the
// same number of neighbors in every cell. Directed graphs compare in- and
// out-neighbor counts separately, and weighted graphs count neighbors per
// arc weight.
func (p *Partition) IsEquitable(g graph.Graph) bool {
	if g.Order() != len(p.elements) {
		return false
	}
	weight := func(u, v int) int { return graph.DefaultWeight }
	if wg, ok := graph.WeightsOf(g); ok {
		weight = wg.Weight
	}
	type arcClass struct{ cell, weight int }
	out := make(map[arcClass]int)
	in := make(map[arcClass]int)
	profile := func(v int) {
		clear(out)
		clear(in)
		for _, w := range g.Neighbors(v) {
			out[arcClass{p.start[w], weight(v, w)}]++
		}
		if g.Directed() {
			for _, w := range g.InNeighbors(v) {
				in[arcClass{p.start[w], weight(w, v)}]++
			}
		}
	}
	for _, i := range p.Cells() {
		cell := p.CellAt(i)
		profile(cell[0])
		refOut, refIn := maps.Clone(out), maps.Clone(in)
		for _, v := range cell[1:] {
			profile(v)
			if !maps.Equal(refOut, out) || !maps.Equal(refIn, in) {
				return false
			}
		}
	}
	return true
}

// Clone returns an independent copy of p. The copy is not attached to any
// nest.
func (p *Partition) Clone() *Partition {
	return &Partition{
		elements: slices.Clone(p.elements),
		position: slices.Clone(p.position),
		start:    slices.Clone(p.start),
		size:     slices.Clone(p.size),
		cells:    p.cells,
	}
}

// Equal reports whether p and q have the same cells in the same order with
// the same vertex order inside each cell.
func (p *Partition) Equal(q *Partition) bool {
	if p.cells != q.cells || !slices.Equal(p.elements, q.elements) {
		return false
	}
	for _, i := range p.Cells() {
		if !q.IsCell(i) || q.size[i] != p.size[i] {
			return false
		}
	}
	return true
}

// SameCells reports whether p and q have the same cells in the same order,
// ignoring vertex order inside cells.
func (p *Partition) SameCells(q *Partition) bool {
	if p.cells != q.cells || len(p.elements) != len(q.elements) {
		return false
	}
	for v := range p.elements {
		if p.start[v] != q.start[v] {
			return false
		}
	}
	return true
}

// CellSets returns every cell as a sorted vertex list, in partition order.
func (p *Partition) CellSets() [][]int {
	out := make([][]int, 0, p.cells)
	for _, i := range p.Cells() {
		c := slices.Clone(p.CellAt(i))
		slices.Sort(c)
		out = append(out, c)
	}
	return out
}
