package refine

import (
	"fmt"
	"slices"
	"strings"
)

// Split records that the cell at index Cell broke into fragments of the
// given sizes, in partition order.
type Split struct {
	Cell  int   `json:"cell" yaml:"cell"`
	Sizes []int `json:"sizes" yaml:"sizes"`
}

// Generation is one round of the worklist: the splits it caused, ordered
// by cell index, and the cell count afterwards.
type Generation struct {
	Splits []Split `json:"splits" yaml:"splits"`
	Cells  int     `json:"cells" yaml:"cells"`
}

// Trace summarizes one refinement. Generations that split nothing are not
// recorded.
type Trace struct {
	Generations []Generation `json:"generations" yaml:"generations"`
	Cells       int          `json:"cells" yaml:"cells"`
}

// Code flattens t into an integer sequence. Two traces compare like their
// codes.
func (t Trace) Code() []int {
	var code []int
	for _, g := range t.Generations {
		code = append(code, len(g.Splits))
		for _, s := range g.Splits {
			code = append(code, s.Cell, len(s.Sizes))
			code = append(code, s.Sizes...)
		}
		code = append(code, g.Cells)
	}
	return append(code, -1, t.Cells)
}

// Compare orders traces lexicographically by their codes.
func Compare(a, b Trace) int {
	return slices.Compare(a.Code(), b.Code())
}

// Equal reports whether a and b record the same refinement.
func Equal(a, b Trace) bool { return Compare(a, b) == 0 }

// Splits returns the number of splits across all generations.
func (t Trace) Splits() int {
	n := 0
	for _, g := range t.Generations {
		n += len(g.Splits)
	}
	return n
}

// String renders one line per generation, for example
// "1: 0->[2 1] (2 cells)".
func (t Trace) String() string {
	var b strings.Builder
	for i, g := range t.Generations {
		fmt.Fprintf(&b, "%d:", i+1)
		for _, s := range g.Splits {
			fmt.Fprintf(&b, " %d->%v", s.Cell, s.Sizes)
		}
		fmt.Fprintf(&b, " (%d cells)\n", g.Cells)
	}
	return b.String()
}
