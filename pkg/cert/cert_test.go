package cert

import (
	"errors"
	"testing"

	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

func path3() *graph.Adjacency {
	g := graph.MustNew(3, false)
	_ = g.AddEdge(0, 1)
	_ = g.AddEdge(1, 2)
	return g
}

func TestFromOrdering(t *testing.T) {
	g := path3()
	c, err := FromOrdering(g, []int{1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := "011\n100\n100\n"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if c.Edges() != 4 {
		t.Errorf("Edges() = %d, want 4 (both directions)", c.Edges())
	}
}

func TestOfRequiresDiscrete(t *testing.T) {
	if _, err := Of(path3(), partition.Initial(3)); !errors.Is(err, ErrNotDiscrete) {
		t.Errorf("error = %v, want ErrNotDiscrete", err)
	}
	p, _ := partition.FromCells(3, [][]int{{2}, {1}, {0}})
	c, err := Of(path3(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Adjacent(0, 1) || c.Adjacent(0, 2) {
		t.Errorf("unexpected matrix\n%s", c)
	}
}

func TestFromOrderingErrors(t *testing.T) {
	for _, ord := range [][]int{{0, 1}, {0, 0, 1}, {0, 1, 5}} {
		if _, err := FromOrdering(path3(), ord); !errors.Is(err, ErrOrderMismatch) {
			t.Errorf("FromOrdering(%v) error = %v, want ErrOrderMismatch", ord, err)
		}
	}
}

func TestCompare(t *testing.T) {
	g := path3()
	a, _ := FromOrdering(g, []int{0, 1, 2}) // 010 101 010
	b, _ := FromOrdering(g, []int{1, 0, 2}) // 011 100 100
	c, _ := FromOrdering(g, []int{2, 1, 0}) // 010 101 010

	if Compare(a, b) >= 0 {
		t.Errorf("Compare(a, b) = %d, want < 0", Compare(a, b))
	}
	if Compare(b, a) <= 0 {
		t.Errorf("Compare(b, a) = %d, want > 0", Compare(b, a))
	}
	if !a.Equal(c) {
		t.Error("reversal of P3 is an automorphism; certificates should match")
	}
	if a.Hash() != c.Hash() || a.Hash() == b.Hash() {
		t.Error("Hash should follow equality")
	}

	small, _ := FromOrdering(graph.MustNew(2, false), []int{0, 1})
	if Compare(small, a) >= 0 {
		t.Error("fewer vertices should order first")
	}
	d := graph.MustNew(3, true)
	dc, _ := FromOrdering(d, []int{0, 1, 2})
	empty, _ := FromOrdering(graph.MustNew(3, false), []int{0, 1, 2})
	if Compare(empty, dc) >= 0 {
		t.Error("undirected should order before directed")
	}
}

func TestWideRows(t *testing.T) {
	// More than 64 vertices spans several words per row.
	n := 130
	g := graph.MustNew(n, true)
	_ = g.AddEdge(0, 129)
	_ = g.AddEdge(129, 64)
	ord := make([]int, n)
	for i := range ord {
		ord[i] = i
	}
	c, err := FromOrdering(g, ord)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Adjacent(0, 129) || !c.Adjacent(129, 64) || c.Adjacent(129, 0) {
		t.Error("bit placement wrong across words")
	}
	h := c.Graph()
	if h.EdgeCount() != 2 || !h.HasEdge(0, 129) {
		t.Errorf("Graph() edges = %v", h.Edges())
	}
}

func TestZero(t *testing.T) {
	var c Certificate
	if !c.IsZero() {
		t.Error("zero value should report IsZero")
	}
	c0, _ := FromOrdering(graph.MustNew(0, false), nil)
	if c0.Order() != 0 || len(c0.Bytes()) != 9 {
		t.Errorf("empty certificate: order %d, %d bytes", c0.Order(), len(c0.Bytes()))
	}
}

func TestWeightedCertificates(t *testing.T) {
	g := graph.MustNew(3, false)
	_ = g.AddWeightedEdge(0, 1, 0)
	_ = g.AddWeightedEdge(1, 2, 1)

	// Reversing the path keeps the adjacency but swaps the weights.
	a, err := FromOrdering(g, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	b, err := FromOrdering(g, []int{2, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Weighted() || a.String() != b.String() {
		t.Fatalf("matrices differ: %q vs %q", a.String(), b.String())
	}
	if a.Equal(b) || a.Hash() == b.Hash() {
		t.Error("certificates with swapped weights should differ")
	}
	if Compare(a, b) != -Compare(b, a) {
		t.Error("Compare is not antisymmetric")
	}

	plain, _ := FromOrdering(path3(), []int{0, 1, 2})
	if plain.Weighted() || plain.Hash() == a.Hash() {
		t.Error("weighted and unweighted paths should not share a hash")
	}

	h := a.Graph()
	if h.Weight(0, 1) != 0 || h.Weight(1, 2) != 1 {
		t.Errorf("Graph() weights = %d, %d, want 0, 1", h.Weight(0, 1), h.Weight(1, 2))
	}
	if c, _ := FromOrdering(h, []int{0, 1, 2}); !c.Equal(a) {
		t.Error("rebuilding the graph changed its certificate")
	}
}
