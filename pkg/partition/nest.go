package partition

import (
	"errors"
	"slices"
)

// ErrNestUnderflow is returned by [Nest.Pop] when no level is left to undo.
var ErrNestUnderflow = errors.New("pop on empty nest")

// Step mutates a partition, typically an individualization followed by a
// refinement. A Step that fails part way through is rolled back by
// [Nest.Push].
type Step func(p *Partition) error

// Individualization returns a Step that individualizes v.
func Individualization(v int) Step {
	return func(p *Partition) error {
		_, err := p.Individualize(v)
		return err
	}
}

// record is the state of one cell just before it was split. Undoing it
// restores the cell's vertex order and merges its fragments back.
type record struct {
	start int
	order []int
}

type journal struct {
	records []record
}

// Nest is a stack of partition states over a single [Partition].
//
// Each level holds the split records produced while its Step ran, so both
// pushing and popping cost time proportional to the cells that changed.
// A Nest owns its partition: mutating the partition outside a Step leaves
// changes that Pop cannot undo.
type Nest struct {
	p     *Partition
	j     journal
	marks []int // marks[d] is the record count before level d+1 was pushed
}

// NewNest attaches a nest to p. The partition at depth 0 is p's current
// state.
func NewNest(p *Partition) *Nest {
	n := &Nest{p: p}
	p.journal = &n.j
	return n
}

// Push applies step to the top partition and returns the new depth. If step
// fails, every change it made is undone and the depth is unchanged.
func (n *Nest) Push(step Step) (int, error) {
	mark := len(n.j.records)
	if step != nil {
		if err := step(n.p); err != nil {
			n.rollback(mark)
			return len(n.marks), err
		}
	}
	n.marks = append(n.marks, mark)
	return len(n.marks), nil
}

// Pop undoes the most recent Push, restoring the previous partition
// exactly, including the vertex order inside every cell.
func (n *Nest) Pop() error {
	if len(n.marks) == 0 {
		return ErrNestUnderflow
	}
	last := len(n.marks) - 1
	n.rollback(n.marks[last])
	n.marks = n.marks[:last]
	return nil
}

// Depth returns the number of levels pushed.
func (n *Nest) Depth() int { return len(n.marks) }

// Top returns the partition at the current depth. It is the same value for
// the lifetime of the nest.
func (n *Nest) Top() *Partition { return n.p }

// Changes returns the number of split records held across all levels.
func (n *Nest) Changes() int { return len(n.j.records) }

// Detach unwinds every level and releases the partition, which keeps its
// depth-0 state.
func (n *Nest) Detach() {
	n.rollback(0)
	n.marks = nil
	n.p.journal = nil
}

func (n *Nest) rollback(mark int) {
	for k := len(n.j.records) - 1; k >= mark; k-- {
		n.p.undo(n.j.records[k])
		n.j.records[k] = record{}
	}
	n.j.records = n.j.records[:mark]
}

func (p *Partition) record(i int, cell []int) {
	if p.journal == nil {
		return
	}
	p.journal.records = append(p.journal.records, record{start: i, order: slices.Clone(cell)})
}

// undo merges the fragments covering r's cell. Records are undone in
// reverse order, so the region holds exactly the fragments r produced.
func (p *Partition) undo(r record) {
	m := len(r.order)
	fragments := 0
	for k := r.start; k < r.start+m; k += p.size[k] {
		fragments++
	}
	copy(p.elements[r.start:], r.order)
	for k, v := range r.order {
		p.position[v] = r.start + k
		p.start[v] = r.start
	}
	p.size[r.start] = m
	p.cells -= fragments - 1
}
