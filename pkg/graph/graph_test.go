package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	if _, err := New(-1, false); !errors.Is(err, ErrNegativeOrder) {
		t.Fatalf("New(-1) error = %v, want ErrNegativeOrder", err)
	}
	g, err := New(0, true)
	if err != nil {
		t.Fatalf("New(0): %v", err)
	}
	if g.Order() != 0 || !g.Directed() {
		t.Errorf("got order %d directed %v", g.Order(), g.Directed())
	}
}

func TestAddEdgeUndirected(t *testing.T) {
	g := MustNew(4, false)
	for _, e := range [][2]int{{2, 0}, {0, 1}, {1, 0}, {3, 3}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}

	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3 (duplicate ignored)", got)
	}
	if got := g.Neighbors(0); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Neighbors(0) = %v, want [1 2]", got)
	}
	if got := g.InNeighbors(2); !slices.Equal(got, []int{0}) {
		t.Errorf("InNeighbors(2) = %v, want [0]", got)
	}
	if !g.HasEdge(2, 0) || !g.HasEdge(0, 2) {
		t.Error("undirected edge should be queryable both ways")
	}
	if !g.HasEdge(3, 3) {
		t.Error("self loop missing")
	}
	if g.HasEdge(1, 2) || g.HasEdge(-1, 0) || g.HasEdge(0, 9) {
		t.Error("unexpected edge")
	}

	want := []Edge{{0, 1}, {0, 2}, {3, 3}}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestAddEdgeDirected(t *testing.T) {
	g := MustNew(3, true)
	_ = g.AddEdge(0, 1)
	_ = g.AddEdge(2, 1)

	if g.HasEdge(1, 0) {
		t.Error("directed arc should not be symmetric")
	}
	if got := g.InNeighbors(1); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("InNeighbors(1) = %v, want [0 2]", got)
	}
	if got := g.Neighbors(1); len(got) != 0 {
		t.Errorf("Neighbors(1) = %v, want []", got)
	}
}

func TestAddEdgeOutOfRange(t *testing.T) {
	g := MustNew(2, false)
	tests := [][2]int{{-1, 0}, {0, 2}, {5, 5}}
	for _, e := range tests {
		if err := g.AddEdge(e[0], e[1]); !errors.Is(err, ErrVertexOutOfRange) {
			t.Errorf("AddEdge(%d, %d) error = %v, want ErrVertexOutOfRange", e[0], e[1], err)
		}
	}
}

func TestRelabel(t *testing.T) {
	g := MustNew(3, true)
	_ = g.AddEdge(0, 1)
	_ = g.AddEdge(1, 2)

	h, err := g.Relabel([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("Relabel: %v", err)
	}
	if !h.HasEdge(2, 0) || !h.HasEdge(0, 1) || h.EdgeCount() != 2 {
		t.Errorf("relabeled edges = %v", h.Edges())
	}

	for _, p := range [][]int{{0, 1}, {0, 0, 1}, {0, 1, 3}} {
		if _, err := g.Relabel(p); !errors.Is(err, ErrInvalidPermutation) {
			t.Errorf("Relabel(%v) error = %v, want ErrInvalidPermutation", p, err)
		}
	}
}

func TestSymmetrize(t *testing.T) {
	g := MustNew(3, true)
	_ = g.AddEdge(0, 1)
	_ = g.AddEdge(1, 0)
	_ = g.AddEdge(2, 1)

	h := g.Symmetrize()
	if h.Directed() {
		t.Fatal("Symmetrize should return an undirected graph")
	}
	want := []Edge{{0, 1}, {1, 2}}
	if got := h.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := MustNew(3, false)
	_ = g.AddEdge(0, 1)
	c := g.Clone()
	_ = c.AddEdge(1, 2)
	if g.HasEdge(1, 2) {
		t.Error("mutating clone changed original")
	}
	if c.EdgeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("edge counts: clone %d, original %d", c.EdgeCount(), g.EdgeCount())
	}
}

func TestWeightedEdges(t *testing.T) {
	g := MustNew(3, false)
	_ = g.AddWeightedEdge(0, 1, 0)
	_ = g.AddWeightedEdge(2, 1, 5)
	if err := g.AddWeightedEdge(0, 3, 2); !errors.Is(err, ErrVertexOutOfRange) {
		t.Errorf("AddWeightedEdge(0, 3) error = %v, want ErrVertexOutOfRange", err)
	}

	tests := []struct {
		u, v, want int
	}{
		{0, 1, 0},
		{1, 0, 0},
		{1, 2, 5},
		{2, 1, 5},
	}
	for _, tt := range tests {
		if got := g.Weight(tt.u, tt.v); got != tt.want {
			t.Errorf("Weight(%d, %d) = %d, want %d", tt.u, tt.v, got, tt.want)
		}
	}
	if !g.HasWeights() {
		t.Error("HasWeights() = false")
	}
	if _, ok := WeightsOf(g); !ok {
		t.Error("WeightsOf should accept a graph with weights")
	}

	// AddEdge on an existing edge keeps its weight.
	_ = g.AddEdge(1, 2)
	if got := g.Weight(1, 2); got != 5 {
		t.Errorf("Weight(1, 2) after AddEdge = %d, want 5", got)
	}

	// Resetting every weight to the default makes the graph unweighted.
	_ = g.AddWeightedEdge(0, 1, DefaultWeight)
	_ = g.AddWeightedEdge(1, 2, DefaultWeight)
	if g.HasWeights() {
		t.Error("HasWeights() = true after restoring default weights")
	}
	if _, ok := WeightsOf(g); ok {
		t.Error("WeightsOf should reject a graph whose arcs all weigh the default")
	}
}

func TestWeightedDirected(t *testing.T) {
	g := MustNew(2, true)
	_ = g.AddWeightedEdge(0, 1, 3)
	_ = g.AddWeightedEdge(1, 0, 4)
	if g.Weight(0, 1) != 3 || g.Weight(1, 0) != 4 {
		t.Errorf("arc weights = %d, %d, want 3, 4", g.Weight(0, 1), g.Weight(1, 0))
	}

	h := g.Symmetrize()
	if got := h.Weight(1, 0); got != 3 {
		t.Errorf("symmetrized weight = %d, want 3 (arc from smaller vertex)", got)
	}
}

func TestWeightsSurviveRelabelAndClone(t *testing.T) {
	g := MustNew(3, false)
	_ = g.AddWeightedEdge(0, 1, 7)
	_ = g.AddEdge(1, 2)

	h, err := g.Relabel([]int{2, 0, 1})
	if err != nil {
		t.Fatalf("Relabel: %v", err)
	}
	if h.Weight(2, 0) != 7 || h.Weight(0, 1) != DefaultWeight {
		t.Errorf("relabeled weights = %d, %d", h.Weight(2, 0), h.Weight(0, 1))
	}

	c := g.Clone()
	_ = c.AddWeightedEdge(0, 1, 9)
	if g.Weight(0, 1) != 7 {
		t.Error("mutating clone weight changed original")
	}
}
