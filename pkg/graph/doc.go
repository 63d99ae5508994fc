// Package graph provides the read-only graph view consumed by the refinement
// and search packages, and a concrete adjacency-list implementation.
//
// # Graph View
//
// The core algorithms only borrow a graph through the [Graph] interface:
//
//	type Graph interface {
//	    Order() int
//	    Directed() bool
//	    Neighbors(v int) []int
//	    InNeighbors(v int) []int
//	    HasEdge(u, v int) bool
//	}
//
// Vertices are the integers [0, Order()). Neighbor queries must be stable and
// side-effect free: the search calls them many times and assumes the answer
// never changes while a search is running.
//
// # Adjacency
//
// [Adjacency] is the implementation used throughout canonic. Build one with
// [New] and [Adjacency.AddEdge]:
//
//	g, _ := graph.New(4, false)
//	_ = g.AddEdge(0, 1)
//	_ = g.AddEdge(1, 2)
//
// Undirected graphs store every edge in both directions, so Neighbors and
// InNeighbors return the same slice. Directed graphs keep separate out- and
// in-neighbor lists; the refiner counts both.
//
// # Weights
//
// Arcs may carry integer weights through [Adjacency.AddWeightedEdge]. The
// refiner, certificates and automorphism checks consult them through the
// [Weighted] view, obtained with [WeightsOf]. Arcs added by AddEdge weigh
// [DefaultWeight], and a graph with no other weight is handled exactly like
// an unweighted one.
//
// [Adjacency.Relabel] applies a vertex permutation and is the basis for the
// canonical-form stability tests: relabeling a graph must not change its
// canonical certificate.
package graph
