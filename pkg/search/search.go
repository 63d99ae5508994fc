// Package search implements individualization-refinement: a depth-first
// search over ordered partitions whose leaves are vertex orderings of a
// graph.
//
// Starting from the equitable refinement of the initial partition, the
// search repeatedly picks the first non-singleton cell in partition order,
// individualizes each of its vertices in turn, refines, and recurses. Each
// leaf is a discrete partition. Leaves are ranked by their key: the
// sequence of refinement traces along the path from the root, then the
// certificate of the leaf. The least key is the canonical labeling. Every
// leaf whose key equals the least one yields an automorphism: both
// orderings relabel the graph onto the same matrix.
//
// # Pruning
//
// The traces along a path are a prefix of the key of every leaf below it.
// When that prefix already compares greater than the best leaf's, no leaf
// below can become canonical or be equivalent to the canonical leaf, and
// the subtree is skipped. Pruning never changes the result; disabling it
// only costs time.
//
// # Usage
//
//	res, err := search.Run(g)
//	fmt.Println(res.CanonicalOrdering, res.GroupSize)
//
// A [Controller] carries options such as a node budget and progress
// callbacks:
//
//	c := &search.Controller{MaxNodes: 1e6, Progress: func(s search.Stats) { ... }}
//	res, err := c.Run(ctx, g, nil)
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/matzehuels/canonic/pkg/cert"
	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
	"github.com/matzehuels/canonic/pkg/perm"
	"github.com/matzehuels/canonic/pkg/refine"
)

var (
	// ErrBudgetExceeded is returned when the search visits more than
	// [Controller.MaxNodes] nodes.
	ErrBudgetExceeded = errors.New("search node budget exceeded")

	// ErrOrderMismatch is returned when the initial partition does not cover
	// the graph's vertices.
	ErrOrderMismatch = errors.New("initial partition does not match graph order")
)

// DefaultProgressInterval is the number of nodes between Progress calls
// when [Controller.ProgressInterval] is zero.
const DefaultProgressInterval = 1000

// Stats counts the work done by one search.
type Stats struct {
	Nodes         int `json:"nodes" yaml:"nodes"`
	Leaves        int `json:"leaves" yaml:"leaves"`
	Pruned        int `json:"pruned" yaml:"pruned"`
	Automorphisms int `json:"automorphisms" yaml:"automorphisms"`
	MaxDepth      int `json:"max_depth" yaml:"max_depth"`
}

// LevelInfo describes one depth of the search tree.
type LevelInfo struct {
	Depth      int // 0 is the root
	Visits     int // nodes visited at this depth
	TargetSize int // largest target cell chosen at this depth
}

// DebugInfo is reported once when a search finishes.
type DebugInfo struct {
	Stats    Stats
	Levels   []LevelInfo
	Duration time.Duration
}

// Controller configures individualization-refinement searches. The zero
// value is ready to use. A Controller holds no per-search state, so one
// value may run any number of searches, concurrently if its callbacks
// allow it.
type Controller struct {
	// Refiner refines partitions after each individualization. Nil means
	// refine.Equitable{}.
	Refiner refine.Refiner

	// DisablePruning visits every node of the search tree.
	DisablePruning bool

	// MaxNodes aborts the search with ErrBudgetExceeded after this many
	// nodes. Zero means no limit.
	MaxNodes int

	// Timeout bounds the search duration. Zero means no limit.
	Timeout time.Duration

	// ProgressInterval is the number of nodes between Progress calls.
	ProgressInterval int

	// Progress, if set, is called periodically and whenever a new best leaf
	// is found.
	Progress func(Stats)

	// Debug, if set, is called once after a successful search.
	Debug func(DebugInfo)
}

// Run searches g with the default options.
func Run(g graph.Graph) (*Result, error) {
	var c Controller
	return c.Run(context.Background(), g, nil)
}

// Run searches g starting from initial, or from the unit partition when
// initial is nil. Automorphisms then preserve the initial cells. initial is
// not modified.
//
// The context and the node budget are checked between individualizations.
func (c *Controller) Run(ctx context.Context, g graph.Graph, initial *partition.Partition) (*Result, error) {
	start := time.Now()
	n := g.Order()

	var p *partition.Partition
	if initial == nil {
		p = partition.Initial(n)
	} else {
		if initial.Len() != n {
			return nil, fmt.Errorf("partition of %d for %d vertices: %w", initial.Len(), n, ErrOrderMismatch)
		}
		p = initial.Clone()
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	s := &state{
		ctx:      ctx,
		g:        g,
		refiner:  c.Refiner,
		prune:    !c.DisablePruning,
		maxNodes: c.MaxNodes,
		interval: c.ProgressInterval,
		progress: c.Progress,
		auts:     redblacktree.NewWith(comparePermutations),
	}
	if s.refiner == nil {
		s.refiner = refine.Equitable{}
	}
	if s.interval <= 0 {
		s.interval = DefaultProgressInterval
	}

	root, err := s.refiner.Refine(g, p, nil)
	if err != nil {
		return nil, fmt.Errorf("refine root: %w", err)
	}
	s.nest = partition.NewNest(p)
	defer s.nest.Detach()
	s.path = append(s.path, root.Code())
	s.traces = append(s.traces, root)

	if err := s.visit(0); err != nil {
		return nil, err
	}

	res := s.result()
	if c.Debug != nil {
		c.Debug(DebugInfo{Stats: res.Stats, Levels: s.levels, Duration: time.Since(start)})
	}
	return res, nil
}

// leaf is the best leaf seen so far.
type leaf struct {
	path     [][]int
	traces   []refine.Trace
	cert     cert.Certificate
	ordering []int
}

// state is the mutable context of one search. Nothing in it is shared with
// other searches.
type state struct {
	ctx      context.Context
	g        graph.Graph
	refiner  refine.Refiner
	prune    bool
	maxNodes int
	interval int
	progress func(Stats)

	nest   *partition.Nest
	path   [][]int        // trace codes from the root to the current node
	traces []refine.Trace // traces matching path
	best   *leaf
	auts   *redblacktree.Tree // perm.Permutation set
	stats  Stats
	levels []LevelInfo
}

func (s *state) visit(depth int) error {
	s.stats.Nodes++
	s.stats.MaxDepth = max(s.stats.MaxDepth, depth)
	if err := s.checkLimits(); err != nil {
		return err
	}
	if s.progress != nil && s.stats.Nodes%s.interval == 0 {
		s.progress(s.snapshot())
	}

	if s.prune && s.best != nil && comparePrefix(s.path, s.best.path) > 0 {
		s.stats.Pruned++
		return nil
	}

	p := s.nest.Top()
	if p.IsDiscrete() {
		return s.atLeaf(p)
	}

	target := firstNonSingleton(p)
	s.recordLevel(depth, p.CellSize(target))
	vertices := slices.Clone(p.CellAt(target))
	for _, v := range vertices {
		if err := s.checkLimits(); err != nil {
			return err
		}
		var tr refine.Trace
		_, err := s.nest.Push(func(p *partition.Partition) error {
			rest, err := p.Individualize(v)
			if err != nil {
				return err
			}
			tr, err = s.refiner.Refine(s.g, p, []int{p.CellOf(v), rest})
			return err
		})
		if err != nil {
			return fmt.Errorf("individualize %d at depth %d: %w", v, depth, err)
		}

		s.path = append(s.path, tr.Code())
		s.traces = append(s.traces, tr)
		err = s.visit(depth + 1)
		s.path = s.path[:len(s.path)-1]
		s.traces = s.traces[:len(s.traces)-1]

		if perr := s.nest.Pop(); perr != nil {
			return errors.Join(err, perr)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *state) atLeaf(p *partition.Partition) error {
	s.stats.Leaves++
	c, err := cert.Of(s.g, p)
	if err != nil {
		return err
	}
	ordering := p.Ordering()

	cmp := 1
	if s.best == nil {
		cmp = -1
	} else if cmp = comparePrefix(s.path, s.best.path); cmp == 0 {
		cmp = cert.Compare(c, s.best.cert)
	}

	switch {
	case cmp < 0:
		s.best = &leaf{
			path:     clonePath(s.path),
			traces:   slices.Clone(s.traces),
			cert:     c,
			ordering: ordering,
		}
		s.auts.Clear()
		s.auts.Put(perm.Identity(len(ordering)), nil)
		if s.progress != nil {
			s.progress(s.snapshot())
		}
	case cmp == 0:
		s.auts.Put(perm.FromOrderings(s.best.ordering, ordering), nil)
	}
	return nil
}

func (s *state) checkLimits() error {
	if s.maxNodes > 0 && s.stats.Nodes > s.maxNodes {
		return fmt.Errorf("%d nodes: %w", s.maxNodes, ErrBudgetExceeded)
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (s *state) snapshot() Stats {
	st := s.stats
	st.Automorphisms = s.auts.Size()
	return st
}

func (s *state) recordLevel(depth, target int) {
	for len(s.levels) <= depth {
		s.levels = append(s.levels, LevelInfo{Depth: len(s.levels)})
	}
	l := &s.levels[depth]
	l.Visits++
	l.TargetSize = max(l.TargetSize, target)
}

func (s *state) result() *Result {
	auts := make([]perm.Permutation, 0, s.auts.Size())
	it := s.auts.Iterator()
	for it.Next() {
		auts = append(auts, it.Key().(perm.Permutation))
	}
	n := s.g.Order()
	stats := s.snapshot()
	return &Result{
		CanonicalOrdering: s.best.ordering,
		Certificate:       s.best.cert,
		Traces:            s.best.traces,
		Automorphisms:     auts,
		Orbits:            perm.Orbits(n, auts),
		GroupSize:         len(auts),
		Stats:             stats,
	}
}

// firstNonSingleton returns the index of the first cell with more than one
// vertex. The partition must not be discrete.
func firstNonSingleton(p *partition.Partition) int {
	for i := 0; i < p.Len(); i = p.Next(i) {
		if p.CellSize(i) > 1 {
			return i
		}
	}
	return -1
}

// comparePrefix compares two trace paths position by position. When one is
// a prefix of the other, the longer path is greater only if the shorter is
// the best path; a prefix of the best path is not yet distinguishable.
func comparePrefix(path, best [][]int) int {
	for i := 0; i < len(path) && i < len(best); i++ {
		if c := slices.Compare(path[i], best[i]); c != 0 {
			return c
		}
	}
	if len(path) > len(best) {
		return 1
	}
	return 0
}

func comparePermutations(a, b any) int {
	return perm.Compare(a.(perm.Permutation), b.(perm.Permutation))
}

func clonePath(path [][]int) [][]int {
	out := make([][]int, len(path))
	copy(out, path)
	return out
}
