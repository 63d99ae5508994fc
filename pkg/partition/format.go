package partition

import (
	"strconv"
	"strings"
)

// String renders p as "[ 0:2 | 4 | 3 5 ]": cells in partition order
// separated by "|", vertices inside a cell sorted ascending, and runs of at
// least three consecutive vertices compressed to "first:last". The empty
// partition renders as "[ ]".
func (p *Partition) String() string {
	var b strings.Builder
	b.WriteString("[ ")
	for k, cell := range p.CellSets() {
		if k > 0 {
			b.WriteString(" | ")
		}
		writeCompressed(&b, cell)
	}
	if p.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteByte(']')
	return b.String()
}

// writeCompressed writes a sorted vertex list with runs compressed.
func writeCompressed(b *strings.Builder, cell []int) {
	for i := 0; i < len(cell); {
		j := i
		for j+1 < len(cell) && cell[j+1] == cell[j]+1 {
			j++
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case j-i >= 2:
			b.WriteString(strconv.Itoa(cell[i]))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(cell[j]))
		case j == i+1:
			b.WriteString(strconv.Itoa(cell[i]))
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(cell[j]))
		default:
			b.WriteString(strconv.Itoa(cell[i]))
		}
		i = j + 1
	}
}
