package partition

import (
	"errors"
	"testing"
)

func TestNestPushPopRestoresExactState(t *testing.T) {
	p, _ := FromCells(6, [][]int{{5, 3, 1, 0, 4, 2}})
	n := NewNest(p)
	base := p.Clone()

	depth, err := n.Push(func(p *Partition) error {
		if _, err := p.Individualize(4); err != nil {
			return err
		}
		_, err := Split(p, 1, func(v int) int { return v % 3 })
		return err
	})
	if err != nil || depth != 1 {
		t.Fatalf("Push: depth=%d err=%v", depth, err)
	}
	level1 := p.Clone()

	depth, err = n.Push(Individualization(0))
	if err != nil || depth != 2 {
		t.Fatalf("Push: depth=%d err=%v", depth, err)
	}
	if p.Equal(level1) {
		t.Fatal("second push did not change the partition")
	}

	if err := n.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if !p.Equal(level1) {
		t.Errorf("after pop got %v, want %v", p.Ordering(), level1.Ordering())
	}
	if err := n.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if !p.Equal(base) {
		t.Errorf("after pop got %v, want %v", p.Ordering(), base.Ordering())
	}
	if n.Depth() != 0 || n.Changes() != 0 {
		t.Errorf("depth %d changes %d, want 0 0", n.Depth(), n.Changes())
	}
}

func TestNestUnderflow(t *testing.T) {
	n := NewNest(Initial(3))
	if err := n.Pop(); !errors.Is(err, ErrNestUnderflow) {
		t.Fatalf("Pop on empty nest error = %v, want ErrNestUnderflow", err)
	}
	_, _ = n.Push(nil)
	if err := n.Pop(); err != nil {
		t.Errorf("Pop after empty Push: %v", err)
	}
	if err := n.Pop(); !errors.Is(err, ErrNestUnderflow) {
		t.Errorf("second Pop error = %v, want ErrNestUnderflow", err)
	}
}

func TestNestFailedStepRollsBack(t *testing.T) {
	p := Initial(4)
	n := NewNest(p)
	base := p.Clone()

	_, err := n.Push(func(p *Partition) error {
		if _, err := p.Individualize(1); err != nil {
			return err
		}
		_, err := p.Individualize(1) // already a singleton
		return err
	})
	if !errors.Is(err, ErrSingletonCell) {
		t.Fatalf("Push error = %v, want ErrSingletonCell", err)
	}
	if n.Depth() != 0 {
		t.Errorf("Depth() = %d after failed push", n.Depth())
	}
	if !p.Equal(base) {
		t.Errorf("failed step left %s", p)
	}
}

func TestNestDeepBacktracking(t *testing.T) {
	p := Initial(5)
	n := NewNest(p)
	var snapshots []*Partition
	for _, v := range []int{3, 1, 4, 0} {
		snapshots = append(snapshots, p.Clone())
		if _, err := n.Push(Individualization(v)); err != nil {
			t.Fatalf("Push(%d): %v", v, err)
		}
	}
	if !p.IsDiscrete() {
		t.Fatalf("expected discrete, got %s", p)
	}
	for i := len(snapshots) - 1; i >= 0; i-- {
		if err := n.Pop(); err != nil {
			t.Fatal(err)
		}
		if !p.Equal(snapshots[i]) {
			t.Errorf("depth %d: got %v, want %v", i, p.Ordering(), snapshots[i].Ordering())
		}
	}
}

func TestNestDetach(t *testing.T) {
	p := Initial(3)
	n := NewNest(p)
	_, _ = n.Push(Individualization(2))
	n.Detach()
	if p.NumCells() != 1 || n.Depth() != 0 {
		t.Errorf("Detach left %s at depth %d", p, n.Depth())
	}
	// Mutations after detaching are not journaled.
	_, _ = p.Individualize(0)
	if n.Changes() != 0 {
		t.Errorf("Changes() = %d after detach", n.Changes())
	}
}
