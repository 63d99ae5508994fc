package pipeline

import (
	"time"

	"github.com/matzehuels/canonic/pkg/catalog"
	"github.com/matzehuels/canonic/pkg/cert"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/refine"
	"github.com/matzehuels/canonic/pkg/search"
)

// Stats contains timing and cache information for one operation.
type Stats struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	CacheHit bool          `json:"cache_hit" yaml:"cache_hit"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// CanonResult is the canonical form of a graph.
type CanonResult struct {
	Order    int  `json:"order" yaml:"order"`
	Directed bool `json:"directed" yaml:"directed"`
	Edges    int  `json:"edges" yaml:"edges"`

	// Hash identifies the isomorphism class.
	Hash string `json:"hash" yaml:"hash"`

	// CanonicalOrdering[i] is the vertex relabeled to i; Labeling is its
	// inverse.
	CanonicalOrdering []int `json:"canonical_ordering" yaml:"canonical_ordering"`
	Labeling          []int `json:"labeling" yaml:"labeling"`

	Generators [][]int        `json:"generators" yaml:"generators"`
	Orbits     [][]int        `json:"orbits" yaml:"orbits"`
	GroupSize  int            `json:"group_size" yaml:"group_size"`
	Traces     []refine.Trace `json:"traces" yaml:"traces"`
	Search     search.Stats   `json:"search" yaml:"search"`

	// Class is the catalog entry when the run was recorded.
	Class *catalog.Entry `json:"class,omitempty" yaml:"class,omitempty"`

	Stats Stats `json:"stats" yaml:"stats"`

	// Certificate is rebuilt from the ordering on a cache hit.
	Certificate cert.Certificate `json:"-" yaml:"-"`
}

// CanonicalGraph returns the graph relabeled canonically.
func (r *CanonResult) CanonicalGraph() *graph.Adjacency {
	return r.Certificate.Graph()
}

// Entry returns the catalog entry describing r's class.
func (r *CanonResult) Entry() catalog.Entry {
	return catalog.Entry{
		Hash:      r.Hash,
		Order:     r.Order,
		Directed:  r.Directed,
		Edges:     r.Edges,
		GroupSize: r.GroupSize,
		Orbits:    r.Orbits,
	}
}

func newCanonResult(g graph.Graph, edges int, res *search.Result) *CanonResult {
	gens := res.Generators()
	out := &CanonResult{
		Order:             g.Order(),
		Directed:          g.Directed(),
		Edges:             edges,
		Hash:              res.Certificate.Hash(),
		CanonicalOrdering: res.CanonicalOrdering,
		Labeling:          res.Labeling(),
		Generators:        make([][]int, len(gens)),
		Orbits:            res.Orbits,
		GroupSize:         res.GroupSize,
		Traces:            res.Traces,
		Search:            res.Stats,
		Certificate:       res.Certificate,
	}
	for i, p := range gens {
		out.Generators[i] = p
	}
	return out
}

// RefineResult is the equitable refinement of an initial partition.
type RefineResult struct {
	Order     int          `json:"order" yaml:"order"`
	Partition string       `json:"partition" yaml:"partition"`
	Cells     [][]int      `json:"cells" yaml:"cells"`
	NumCells  int          `json:"num_cells" yaml:"num_cells"`
	Discrete  bool         `json:"discrete" yaml:"discrete"`
	Trace     refine.Trace `json:"trace" yaml:"trace"`
	Stats     Stats        `json:"stats" yaml:"stats"`
}

// CompareResult reports whether two graphs are isomorphic.
type CompareResult struct {
	Isomorphic bool `json:"isomorphic" yaml:"isomorphic"`
	// Mapping sends every vertex of the first graph to its image in the
	// second. Nil when the graphs differ.
	Mapping []int  `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	HashG   string `json:"hash_g,omitempty" yaml:"hash_g,omitempty"`
	HashH   string `json:"hash_h,omitempty" yaml:"hash_h,omitempty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Stats   Stats  `json:"stats" yaml:"stats"`
}
