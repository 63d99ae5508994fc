// Package perm provides permutations of [0, n), the automorphism check, and
// orbit computation.
//
// A [Permutation] p maps vertex v to p[v]. Composition follows function
// notation: Compose(p, q) applies q first, then p.
package perm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/canonic/pkg/graph"
)

// ErrInvalid is returned by [FromSlice] for a slice that is not a
// bijection on [0, len).
var ErrInvalid = errors.New("not a permutation")

// Permutation is a bijection on [0, len(p)).
type Permutation []int

// Identity returns the identity permutation on n points.
func Identity(n int) Permutation { return Seq(n) }

// FromSlice validates s and returns it as a Permutation.
func FromSlice(s []int) (Permutation, error) {
	seen := make([]bool, len(s))
	for _, x := range s {
		if x < 0 || x >= len(s) || seen[x] {
			return nil, fmt.Errorf("%v: %w", s, ErrInvalid)
		}
		seen[x] = true
	}
	return Permutation(slices.Clone(s)), nil
}

// FromOrderings returns the permutation mapping from[i] to to[i] for every
// position i. For two leaf orderings with equal certificates this is the
// automorphism carrying the first onto the second.
func FromOrderings(from, to []int) Permutation {
	p := make(Permutation, len(from))
	for i, v := range from {
		p[v] = to[i]
	}
	return p
}

// Apply returns p(v).
func (p Permutation) Apply(v int) int { return p[v] }

// Inverse returns p⁻¹.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for v, x := range p {
		inv[x] = v
	}
	return inv
}

// Compose returns p∘q, the permutation v -> p(q(v)).
func Compose(p, q Permutation) Permutation {
	r := make(Permutation, len(q))
	for v, x := range q {
		r[v] = p[x]
	}
	return r
}

// IsIdentity reports whether p fixes every point.
func (p Permutation) IsIdentity() bool {
	for v, x := range p {
		if v != x {
			return false
		}
	}
	return true
}

// Support returns the number of points p moves.
func (p Permutation) Support() int {
	n := 0
	for v, x := range p {
		if v != x {
			n++
		}
	}
	return n
}

// Compare orders permutations lexicographically by image sequence, so the
// identity is smallest.
func Compare(a, b Permutation) int { return slices.Compare(a, b) }

// Cycles returns the non-trivial cycles of p, each starting at its least
// point, ordered by that point.
func (p Permutation) Cycles() [][]int {
	seen := make([]bool, len(p))
	var cycles [][]int
	for v := range p {
		if seen[v] || p[v] == v {
			continue
		}
		var c []int
		for x := v; !seen[x]; x = p[x] {
			seen[x] = true
			c = append(c, x)
		}
		cycles = append(cycles, c)
	}
	return cycles
}

// String renders p in cycle notation, for example "(0 2)(1 3)". The
// identity renders as "()".
func (p Permutation) String() string {
	cycles := p.Cycles()
	if len(cycles) == 0 {
		return "()"
	}
	var b strings.Builder
	for _, c := range cycles {
		b.WriteByte('(')
		for i, v := range c {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// IsAutomorphism reports whether p preserves adjacency in g: u -> v is an
// arc exactly when p(u) -> p(v) is. On a weighted graph the two arcs must
// also weigh the same.
func IsAutomorphism(g graph.Graph, p Permutation) bool {
	n := g.Order()
	if len(p) != n {
		return false
	}
	wg, weighted := graph.WeightsOf(g)
	for u := 0; u < n; u++ {
		nbrs := g.Neighbors(u)
		if len(nbrs) != len(g.Neighbors(p[u])) {
			return false
		}
		for _, v := range nbrs {
			if !g.HasEdge(p[u], p[v]) {
				return false
			}
			if weighted && wg.Weight(u, v) != wg.Weight(p[u], p[v]) {
				return false
			}
		}
	}
	return true
}

// Orbits returns the orbits of the group generated by gens on n points.
// Each orbit is sorted and orbits are ordered by their least point.
func Orbits(n int, gens []Permutation) [][]int {
	parent := Seq(n)
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, g := range gens {
		for v, x := range g {
			a, b := find(v), find(x)
			switch {
			case a < b:
				parent[b] = a
			case b < a:
				parent[a] = b
			}
		}
	}

	index := make(map[int]int)
	var orbits [][]int
	for v := 0; v < n; v++ {
		r := find(v)
		k, ok := index[r]
		if !ok {
			k = len(orbits)
			index[r] = k
			orbits = append(orbits, nil)
		}
		orbits[k] = append(orbits[k], v)
	}
	return orbits
}
