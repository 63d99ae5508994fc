// Package builder constructs well-known graph families.
//
// Every constructor is deterministic: vertices are numbered 0..n-1 in a fixed
// order and edges are inserted in a fixed order, so two calls with the same
// arguments produce identical graphs. [Random] is deterministic for a given
// *rand.Rand seed.
//
// The families double as test fixtures with known automorphism group sizes:
//
//	Empty(n)             n!
//	Path(n)              2 (n >= 2)
//	Cycle(n)             2n
//	Complete(n)          n!
//	Star(n)              (n-1)!
//	Wheel(n)             2(n-1) (n >= 5)
//	CompleteBipartite    a!b! (2a!a! when a == b)
//	Hypercube(d)         2^d d!
//	Petersen()           120
//	Grid(r, c)           4 (r != c), 8 (r == c)
package builder

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/matzehuels/canonic/pkg/graph"
)

var (
	// ErrInvalidSize is returned when a size parameter is below the minimum
	// for the family (for example a cycle with fewer than 3 vertices).
	ErrInvalidSize = errors.New("invalid graph size")

	// ErrUnknownFamily is returned by [ByName] for an unrecognized family.
	ErrUnknownFamily = errors.New("unknown graph family")
)

// Families lists the names accepted by [ByName], in display order.
var Families = []string{
	"empty", "null", "path", "directed_path", "cycle", "directed_cycle",
	"complete", "star", "wheel", "hypercube", "petersen", "grid",
}

// ByName builds the named family with size n. For "grid" the graph is n x n;
// for "hypercube" n is the dimension; "petersen" ignores n.
func ByName(name string, n int) (*graph.Adjacency, error) {
	switch strings.ToLower(name) {
	case "empty", "null":
		return Empty(n)
	case "path":
		return Path(n)
	case "directed_path":
		return DirectedPath(n)
	case "cycle":
		return Cycle(n)
	case "directed_cycle":
		return DirectedCycle(n)
	case "complete":
		return Complete(n)
	case "star":
		return Star(n)
	case "wheel":
		return Wheel(n)
	case "hypercube":
		return Hypercube(n)
	case "petersen":
		return Petersen(), nil
	case "grid":
		return Grid(n, n)
	}
	return nil, fmt.Errorf("%q (known: %s): %w", name, strings.Join(Families, ", "), ErrUnknownFamily)
}

// Empty returns n isolated vertices.
func Empty(n int) (*graph.Adjacency, error) {
	if n < 0 {
		return nil, sizeError("Empty", n, 0)
	}
	return graph.MustNew(n, false), nil
}

// Path returns the path 0-1-...-(n-1).
func Path(n int) (*graph.Adjacency, error) {
	return path("Path", n, false)
}

// DirectedPath returns the directed path 0->1->...->(n-1).
func DirectedPath(n int) (*graph.Adjacency, error) {
	return path("DirectedPath", n, true)
}

func path(method string, n int, directed bool) (*graph.Adjacency, error) {
	if n < 1 {
		return nil, sizeError(method, n, 1)
	}
	g := graph.MustNew(n, directed)
	for i := 0; i+1 < n; i++ {
		_ = g.AddEdge(i, i+1)
	}
	return g, nil
}

// Cycle returns the cycle C_n with edges i-(i+1 mod n).
func Cycle(n int) (*graph.Adjacency, error) {
	return cycle("Cycle", n, false)
}

// DirectedCycle returns the directed cycle with arcs i->(i+1 mod n).
func DirectedCycle(n int) (*graph.Adjacency, error) {
	return cycle("DirectedCycle", n, true)
}

func cycle(method string, n int, directed bool) (*graph.Adjacency, error) {
	if n < 3 {
		return nil, sizeError(method, n, 3)
	}
	g := graph.MustNew(n, directed)
	for i := 0; i < n; i++ {
		_ = g.AddEdge(i, (i+1)%n)
	}
	return g, nil
}

// Complete returns K_n.
func Complete(n int) (*graph.Adjacency, error) {
	if n < 0 {
		return nil, sizeError("Complete", n, 0)
	}
	g := graph.MustNew(n, false)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			_ = g.AddEdge(u, v)
		}
	}
	return g, nil
}

// Star returns the star with center 0 and leaves 1..n-1.
func Star(n int) (*graph.Adjacency, error) {
	if n < 2 {
		return nil, sizeError("Star", n, 2)
	}
	g := graph.MustNew(n, false)
	for v := 1; v < n; v++ {
		_ = g.AddEdge(0, v)
	}
	return g, nil
}

// Wheel returns the wheel with hub 0 and rim 1..n-1.
func Wheel(n int) (*graph.Adjacency, error) {
	if n < 4 {
		return nil, sizeError("Wheel", n, 4)
	}
	g := graph.MustNew(n, false)
	rim := n - 1
	for i := 0; i < rim; i++ {
		_ = g.AddEdge(0, i+1)
		_ = g.AddEdge(i+1, (i+1)%rim+1)
	}
	return g, nil
}

// CompleteBipartite returns K_{a,b} with parts 0..a-1 and a..a+b-1.
func CompleteBipartite(a, b int) (*graph.Adjacency, error) {
	if a < 1 || b < 1 {
		return nil, fmt.Errorf("CompleteBipartite: a=%d b=%d: %w", a, b, ErrInvalidSize)
	}
	g := graph.MustNew(a+b, false)
	for u := 0; u < a; u++ {
		for v := a; v < a+b; v++ {
			_ = g.AddEdge(u, v)
		}
	}
	return g, nil
}

// Hypercube returns Q_d: vertices are d-bit words, adjacent when they differ
// in exactly one bit.
func Hypercube(d int) (*graph.Adjacency, error) {
	if d < 0 || d > 16 {
		return nil, fmt.Errorf("Hypercube: d=%d not in [0, 16]: %w", d, ErrInvalidSize)
	}
	n := 1 << d
	g := graph.MustNew(n, false)
	for u := 0; u < n; u++ {
		for b := 0; b < d; b++ {
			if v := u ^ (1 << b); u < v {
				_ = g.AddEdge(u, v)
			}
		}
	}
	return g, nil
}

// Petersen returns the Petersen graph: outer 5-cycle 0..4, inner pentagram
// 5..9, spokes i-(i+5).
func Petersen() *graph.Adjacency {
	g := graph.MustNew(10, false)
	for i := 0; i < 5; i++ {
		_ = g.AddEdge(i, (i+1)%5)
		_ = g.AddEdge(i, i+5)
		_ = g.AddEdge(i+5, (i+2)%5+5)
	}
	return g
}

// Grid returns the r x c grid graph; vertex (i, j) is numbered i*c + j.
func Grid(r, c int) (*graph.Adjacency, error) {
	if r < 1 || c < 1 {
		return nil, fmt.Errorf("Grid: %dx%d: %w", r, c, ErrInvalidSize)
	}
	g := graph.MustNew(r*c, false)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := i*c + j
			if j+1 < c {
				_ = g.AddEdge(v, v+1)
			}
			if i+1 < r {
				_ = g.AddEdge(v, v+c)
			}
		}
	}
	return g, nil
}

// Random returns an Erdős–Rényi graph G(n, p) drawn from rng.
func Random(n int, p float64, directed bool, rng *rand.Rand) (*graph.Adjacency, error) {
	if n < 0 || p < 0 || p > 1 {
		return nil, fmt.Errorf("Random: n=%d p=%g: %w", n, p, ErrInvalidSize)
	}
	g := graph.MustNew(n, directed)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u == v || (!directed && v < u) {
				continue
			}
			if rng.Float64() < p {
				_ = g.AddEdge(u, v)
			}
		}
	}
	return g, nil
}

// Shuffle returns a uniformly random permutation of [0, n) drawn from rng,
// suitable for [graph.Adjacency.Relabel].
func Shuffle(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	rng.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return slices.Clip(p)
}

func sizeError(method string, n, least int) error {
	return fmt.Errorf("%s: n=%d < min=%d: %w", method, n, least, ErrInvalidSize)
}
