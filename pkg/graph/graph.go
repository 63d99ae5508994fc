package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// DefaultWeight is the weight of an arc added without one.
const DefaultWeight = 1

var (
	// ErrNegativeOrder is returned by [New] when the requested vertex count
	// is negative.
	ErrNegativeOrder = errors.New("graph order must not be negative")

	// ErrVertexOutOfRange is returned by [Adjacency.AddEdge] when an endpoint
	// is not in [0, Order()).
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrInvalidPermutation is returned by [Adjacency.Relabel] when the
	// mapping is not a bijection on [0, Order()).
	ErrInvalidPermutation = errors.New("invalid permutation")
)

// Graph is a read-only view over a fixed vertex set [0, Order()).
//
// Implementations must return neighbor lists in ascending order and must not
// mutate them between calls. Callers must not modify returned slices.
type Graph interface {
	// Order returns the number of vertices.
	Order() int
	// Directed reports whether the adjacency relation may be asymmetric.
	Directed() bool
	// Neighbors returns the out-neighbors of v.
	Neighbors(v int) []int
	// InNeighbors returns the in-neighbors of v. For undirected graphs this
	// equals Neighbors(v).
	InNeighbors(v int) []int
	// HasEdge reports whether the arc u -> v exists.
	HasEdge(u, v int) bool
}

// Weighted is a [Graph] whose arcs carry integer weights. Two vertices are
// only interchangeable when they also agree on the weights of their arcs.
type Weighted interface {
	Graph
	// Weight returns the weight of the arc u -> v. It is only meaningful
	// when HasEdge(u, v).
	Weight(u, v int) int
}

// WeightsOf returns g as a [Weighted] graph when it has an arc whose weight
// is not [DefaultWeight]. A graph whose arcs all weigh DefaultWeight is
// treated as unweighted, so it canonicalizes exactly like one.
func WeightsOf(g Graph) (Weighted, bool) {
	w, ok := g.(Weighted)
	if !ok {
		return nil, false
	}
	if h, ok := g.(interface{ HasWeights() bool }); ok && !h.HasWeights() {
		return nil, false
	}
	return w, true
}

// Edge is an arc between two vertices. For undirected graphs From <= To.
type Edge struct {
	From int
	To   int
}

// Adjacency is an adjacency-list graph with sorted neighbor lists.
//
// The zero value is an empty undirected graph with no vertices. Adjacency is
// not safe for concurrent mutation, but any number of goroutines may query a
// graph that is no longer being modified.
type Adjacency struct {
	directed bool
	out      [][]int
	in       [][]int      // nil for undirected graphs
	weights  map[Edge]int // arcs not weighing DefaultWeight, keyed like Edges
	edges    int
}

// New creates a graph with n isolated vertices.
func New(n int, directed bool) (*Adjacency, error) {
	if n < 0 {
		return nil, ErrNegativeOrder
	}
	g := &Adjacency{directed: directed, out: make([][]int, n)}
	if directed {
		g.in = make([][]int, n)
	}
	return g, nil
}

// MustNew is like [New] but panics on a negative order. It is intended for
// generators and tests with constant sizes.
func MustNew(n int, directed bool) *Adjacency {
	g, err := New(n, directed)
	if err != nil {
		panic(err)
	}
	return g
}

// Order returns the number of vertices.
func (g *Adjacency) Order() int { return len(g.out) }

// Directed reports whether g is a directed graph.
func (g *Adjacency) Directed() bool { return g.directed }

// EdgeCount returns the number of distinct edges (arcs for directed graphs).
func (g *Adjacency) EdgeCount() int { return g.edges }

// Neighbors returns the sorted out-neighbors of v.
func (g *Adjacency) Neighbors(v int) []int { return g.out[v] }

// InNeighbors returns the sorted in-neighbors of v.
func (g *Adjacency) InNeighbors(v int) []int {
	if !g.directed {
		return g.out[v]
	}
	return g.in[v]
}

// HasEdge reports whether the arc u -> v exists. Out-of-range vertices
// report false.
func (g *Adjacency) HasEdge(u, v int) bool {
	if !g.valid(u) || !g.valid(v) {
		return false
	}
	_, found := slices.BinarySearch(g.out[u], v)
	return found
}

// AddEdge inserts the edge u -> v (and v -> u when undirected). Inserting an
// existing edge is a no-op. Self loops are allowed.
func (g *Adjacency) AddEdge(u, v int) error {
	if !g.valid(u) || !g.valid(v) {
		return fmt.Errorf("edge %d-%d: %w", u, v, ErrVertexOutOfRange)
	}
	if !insertSorted(&g.out[u], v) {
		return nil
	}
	if g.directed {
		insertSorted(&g.in[v], u)
	} else if u != v {
		insertSorted(&g.out[v], u)
	}
	g.edges++
	return nil
}

// AddWeightedEdge is like [Adjacency.AddEdge] but also sets the weight of
// the edge, replacing any earlier one. Undirected edges weigh the same in
// both directions.
func (g *Adjacency) AddWeightedEdge(u, v, w int) error {
	if err := g.AddEdge(u, v); err != nil {
		return err
	}
	k := g.key(u, v)
	if w == DefaultWeight {
		delete(g.weights, k)
		return nil
	}
	if g.weights == nil {
		g.weights = make(map[Edge]int)
	}
	g.weights[k] = w
	return nil
}

// Weight returns the weight of the arc u -> v. Arcs added by
// [Adjacency.AddEdge] weigh [DefaultWeight].
func (g *Adjacency) Weight(u, v int) int {
	if w, ok := g.weights[g.key(u, v)]; ok {
		return w
	}
	return DefaultWeight
}

// HasWeights reports whether some arc weighs other than [DefaultWeight].
func (g *Adjacency) HasWeights() bool { return len(g.weights) > 0 }

// Edges returns every edge once, sorted by (From, To). Undirected edges are
// reported with From <= To.
func (g *Adjacency) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for u, nbrs := range g.out {
		for _, v := range nbrs {
			if !g.directed && v < u {
				continue
			}
			edges = append(edges, Edge{From: u, To: v})
		}
	}
	return edges
}

// Degree returns the out-degree of v.
func (g *Adjacency) Degree(v int) int { return len(g.out[v]) }

// Clone returns a deep copy of g.
func (g *Adjacency) Clone() *Adjacency {
	c := &Adjacency{directed: g.directed, edges: g.edges, out: cloneLists(g.out)}
	if g.directed {
		c.in = cloneLists(g.in)
	}
	if g.weights != nil {
		c.weights = maps.Clone(g.weights)
	}
	return c
}

// Relabel returns a copy of g in which vertex v is renamed p[v]. The arc
// u -> v of g becomes p[u] -> p[v] and keeps its weight.
func (g *Adjacency) Relabel(p []int) (*Adjacency, error) {
	n := g.Order()
	if len(p) != n {
		return nil, fmt.Errorf("length %d for order %d: %w", len(p), n, ErrInvalidPermutation)
	}
	seen := make([]bool, n)
	for _, x := range p {
		if x < 0 || x >= n || seen[x] {
			return nil, fmt.Errorf("image %d: %w", x, ErrInvalidPermutation)
		}
		seen[x] = true
	}
	h := MustNew(n, g.directed)
	for _, e := range g.Edges() {
		_ = h.AddWeightedEdge(p[e.From], p[e.To], g.Weight(e.From, e.To))
	}
	return h, nil
}

// Symmetrize returns the undirected closure of g: u-v is an edge whenever
// u -> v or v -> u is an arc of g. When both arcs exist the edge keeps the
// weight of the arc leaving the smaller vertex. An undirected graph is simply
// cloned.
func (g *Adjacency) Symmetrize() *Adjacency {
	if !g.directed {
		return g.Clone()
	}
	h := MustNew(g.Order(), false)
	for _, e := range g.Edges() {
		if h.HasEdge(e.From, e.To) {
			continue
		}
		_ = h.AddWeightedEdge(e.From, e.To, g.Weight(e.From, e.To))
	}
	return h
}

func (g *Adjacency) valid(v int) bool { return v >= 0 && v < len(g.out) }

// key returns the weights map key of the arc u -> v.
func (g *Adjacency) key(u, v int) Edge {
	if !g.directed && v < u {
		u, v = v, u
	}
	return Edge{From: u, To: v}
}

// insertSorted inserts x into the sorted list and reports whether it was
// absent.
func insertSorted(list *[]int, x int) bool {
	i, found := slices.BinarySearch(*list, x)
	if found {
		return false
	}
	*list = slices.Insert(*list, i, x)
	return true
}

func cloneLists(lists [][]int) [][]int {
	out := make([][]int, len(lists))
	for i, l := range lists {
		out[i] = slices.Clone(l)
	}
	return out
}

// Ensure Adjacency implements Graph and Weighted.
var (
	_ Graph    = (*Adjacency)(nil)
	_ Weighted = (*Adjacency)(nil)
)
