package search

import (
	"context"
	"fmt"

	"github.com/matzehuels/canonic/pkg/cert"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/perm"
	"github.com/matzehuels/canonic/pkg/refine"
)

// Result is the outcome of a completed search.
type Result struct {
	// CanonicalOrdering lists the vertices of the canonical leaf in position
	// order: CanonicalOrdering[i] is the vertex relabeled to i.
	CanonicalOrdering []int

	// Certificate is the adjacency matrix of the graph under the canonical
	// relabeling. Isomorphic graphs have equal certificates.
	Certificate cert.Certificate

	// Traces are the refinement traces along the path to the canonical leaf,
	// starting with the root refinement.
	Traces []refine.Trace

	// Automorphisms is the full automorphism group, sorted, with the
	// identity first.
	Automorphisms []perm.Permutation

	// Orbits partitions the vertices under Automorphisms.
	Orbits [][]int

	GroupSize int
	Stats     Stats
}

// Labeling returns the canonical relabeling as a permutation: vertex v maps
// to its position in CanonicalOrdering.
func (r *Result) Labeling() perm.Permutation {
	return perm.Permutation(r.CanonicalOrdering).Inverse()
}

// CanonicalGraph returns the graph with vertices relabeled canonically.
func (r *Result) CanonicalGraph() *graph.Adjacency {
	return r.Certificate.Graph()
}

// Generators returns the non-identity automorphisms.
func (r *Result) Generators() []perm.Permutation {
	var gens []perm.Permutation
	for _, p := range r.Automorphisms {
		if !p.IsIdentity() {
			gens = append(gens, p)
		}
	}
	return gens
}

// Isomorphic reports whether g and h are isomorphic. When they are, the
// returned permutation maps every vertex of g to its image in h.
func Isomorphic(g, h graph.Graph) (bool, perm.Permutation, error) {
	var c Controller
	return c.Isomorphic(context.Background(), g, h)
}

// Isomorphic canonicalizes both graphs with c and compares certificates.
func (c *Controller) Isomorphic(ctx context.Context, g, h graph.Graph) (bool, perm.Permutation, error) {
	if g.Order() != h.Order() || g.Directed() != h.Directed() {
		return false, nil, nil
	}
	rg, err := c.Run(ctx, g, nil)
	if err != nil {
		return false, nil, fmt.Errorf("canonicalize first graph: %w", err)
	}
	rh, err := c.Run(ctx, h, nil)
	if err != nil {
		return false, nil, fmt.Errorf("canonicalize second graph: %w", err)
	}
	if !rg.Certificate.Equal(rh.Certificate) {
		return false, nil, nil
	}
	return true, perm.FromOrderings(rg.CanonicalOrdering, rh.CanonicalOrdering), nil
}
