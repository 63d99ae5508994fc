// Package cert builds comparable certificates of graphs under a vertex
// ordering.
//
// A [Certificate] is the adjacency matrix of the graph relabeled by a
// discrete partition: row i, column j is set when ordering[i] -> ordering[j]
// is an arc. Rows are packed into 64-bit words and compared
// lexicographically, which gives a total order on all certificates of the
// same graph. Two orderings with equal certificates relabel the graph onto
// the same adjacency structure, so composing one with the inverse of the
// other is an automorphism.
//
// Certificates of weighted graphs also list the weight of every set entry in
// row-major order, so equal certificates preserve weights as well.
package cert

import (
	"cmp"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/matzehuels/canonic/pkg/graph"
	"github.com/matzehuels/canonic/pkg/partition"
)

var (
	// ErrNotDiscrete is returned by [Of] for a partition with a cell of size
	// greater than one.
	ErrNotDiscrete = errors.New("partition is not discrete")

	// ErrOrderMismatch is returned when the ordering does not cover the
	// graph's vertices.
	ErrOrderMismatch = errors.New("ordering does not match graph order")
)

// Certificate is an immutable relabeled adjacency matrix.
type Certificate struct {
	n        int
	directed bool
	stride   int      // words per row
	words    []uint64 // n rows of stride words
	weights  []int    // weight per set entry in row-major order; nil if unweighted
}

// Of returns the certificate of g under the vertex ordering of the discrete
// partition p.
func Of(g graph.Graph, p *partition.Partition) (Certificate, error) {
	if !p.IsDiscrete() {
		return Certificate{}, ErrNotDiscrete
	}
	return FromOrdering(g, p.Ordering())
}

// FromOrdering returns the certificate of g when vertex ordering[i] is
// placed at position i.
func FromOrdering(g graph.Graph, ordering []int) (Certificate, error) {
	n := g.Order()
	if len(ordering) != n {
		return Certificate{}, fmt.Errorf("ordering of %d for %d vertices: %w", len(ordering), n, ErrOrderMismatch)
	}
	rank := make([]int, n)
	for i := range rank {
		rank[i] = -1
	}
	for i, v := range ordering {
		if v < 0 || v >= n || rank[v] >= 0 {
			return Certificate{}, fmt.Errorf("vertex %d: %w", v, ErrOrderMismatch)
		}
		rank[v] = i
	}

	c := Certificate{n: n, directed: g.Directed(), stride: (n + 63) / 64}
	c.words = make([]uint64, n*c.stride)
	wg, weighted := graph.WeightsOf(g)
	var (
		cols   []int
		weight []int // weight by column for the current row
	)
	if weighted {
		c.weights = make([]int, 0)
		weight = make([]int, n)
	}
	for i, v := range ordering {
		row := c.words[i*c.stride : (i+1)*c.stride]
		cols = cols[:0]
		for _, w := range g.Neighbors(v) {
			j := rank[w]
			row[j/64] |= 1 << (63 - uint(j%64))
			if weighted {
				weight[j] = wg.Weight(v, w)
				cols = append(cols, j)
			}
		}
		if weighted {
			slices.Sort(cols)
			for _, j := range cols {
				c.weights = append(c.weights, weight[j])
			}
		}
	}
	return c, nil
}

// Order returns the number of vertices.
func (c Certificate) Order() int { return c.n }

// Directed reports whether c was built from a directed graph.
func (c Certificate) Directed() bool { return c.directed }

// Weighted reports whether c carries arc weights.
func (c Certificate) Weighted() bool { return c.weights != nil }

// Adjacent reports whether position i is adjacent to position j.
func (c Certificate) Adjacent(i, j int) bool {
	return c.words[i*c.stride+j/64]&(1<<(63-uint(j%64))) != 0
}

// Edges returns the number of set entries.
func (c Certificate) Edges() int {
	total := 0
	for _, w := range c.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Compare orders certificates by vertex count, then undirected before
// directed, then row by row, then by weights. Bits are packed most
// significant first, so word order matches column order.
func Compare(a, b Certificate) int {
	if c := cmp.Compare(a.n, b.n); c != 0 {
		return c
	}
	if a.directed != b.directed {
		if a.directed {
			return 1
		}
		return -1
	}
	if c := slices.Compare(a.words, b.words); c != 0 {
		return c
	}
	return slices.Compare(a.weights, b.weights)
}

// Equal reports whether a and b are identical.
func (c Certificate) Equal(other Certificate) bool { return Compare(c, other) == 0 }

// IsZero reports whether c is the zero value, which denotes no certificate.
func (c Certificate) IsZero() bool { return c.words == nil && c.n == 0 && !c.directed }

// Bytes returns a stable binary encoding: a header of order and
// directedness followed by the row words in big-endian order, then the
// weights of a weighted certificate as 64-bit integers.
func (c Certificate) Bytes() []byte {
	buf := make([]byte, 0, 9+8*(len(c.words)+len(c.weights)))
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.n))
	if c.directed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	for _, w := range c.words {
		buf = binary.BigEndian.AppendUint64(buf, w)
	}
	for _, w := range c.weights {
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(w)))
	}
	return buf
}

// Hash returns the SHA-256 of [Certificate.Bytes] as 64 hex characters.
// Isomorphic graphs share a canonical certificate and therefore this hash.
func (c Certificate) Hash() string {
	sum := sha256.Sum256(c.Bytes())
	return hex.EncodeToString(sum[:])
}

// Graph rebuilds the relabeled graph the certificate describes: vertex i is
// the vertex at position i.
func (c Certificate) Graph() *graph.Adjacency {
	g := graph.MustNew(c.n, c.directed)
	k := 0
	for i := 0; i < c.n; i++ {
		for j := 0; j < c.n; j++ {
			if !c.Adjacent(i, j) {
				continue
			}
			if c.weights != nil {
				_ = g.AddWeightedEdge(i, j, c.weights[k])
				k++
			} else {
				_ = g.AddEdge(i, j)
			}
		}
	}
	return g
}

// String renders the matrix as rows of 0 and 1.
func (c Certificate) String() string {
	var b strings.Builder
	for i := 0; i < c.n; i++ {
		for j := 0; j < c.n; j++ {
			if c.Adjacent(i, j) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
