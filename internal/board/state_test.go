package board

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskflow/internal/domain"
)

type fakePersister struct {
	mu   sync.Mutex
	reqs []domain.ReorderRequest
	err  error
}

func (f *fakePersister) PersistOrder(ctx context.Context, req domain.ReorderRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.err
}

func (f *fakePersister) calls() []domain.ReorderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ReorderRequest(nil), f.reqs...)
}

func testColumns() []domain.BoardColumn {
	return []domain.BoardColumn{
		{ID: "c1", Name: "Todo", Tasks: []domain.Task{
			{ID: "t1"}, {ID: "t2"}, {ID: "t3"},
		}},
		{ID: "c2", Name: "Done", Tasks: []domain.Task{
			{ID: "t4"},
		}},
	}
}

func taskIDs(c domain.BoardColumn) []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSameColumnMove(t *testing.T) {
	p := &fakePersister{}
	s := NewState("p1", testColumns(), p, nil)

	if !s.StartDrag("t3") {
		t.Fatal("StartDrag failed")
	}
	if s.Phase() != PhaseDragging {
		t.Fatalf("phase = %s, want dragging", s.Phase())
	}
	if !s.Drop(context.Background(), "c1", 0) {
		t.Fatal("Drop failed")
	}
	s.Wait()

	cols := s.Columns()
	if !equalIDs(taskIDs(cols[0]), []string{"t3", "t1", "t2"}) {
		t.Fatalf("c1 order = %v", taskIDs(cols[0]))
	}

	reqs := p.calls()
	if len(reqs) != 1 {
		t.Fatalf("persist calls = %d, want 1", len(reqs))
	}
	if !equalIDs(reqs[0].Columns[0].TaskIDs, []string{"t3", "t1", "t2"}) {
		t.Fatalf("persisted c1 = %v", reqs[0].Columns[0].TaskIDs)
	}
}

func TestCrossColumnMove(t *testing.T) {
	p := &fakePersister{}
	s := NewState("p1", testColumns(), p, nil)

	s.StartDrag("t1")
	if !s.Drop(context.Background(), "c2", 0) {
		t.Fatal("Drop failed")
	}
	s.Wait()

	cols := s.Columns()
	if !equalIDs(taskIDs(cols[0]), []string{"t2", "t3"}) {
		t.Fatalf("c1 order = %v", taskIDs(cols[0]))
	}
	if !equalIDs(taskIDs(cols[1]), []string{"t1", "t4"}) {
		t.Fatalf("c2 order = %v", taskIDs(cols[1]))
	}

	reqs := p.calls()
	if len(reqs) != 1 {
		t.Fatalf("persist calls = %d, want 1", len(reqs))
	}
	// the payload carries the full board, both columns included
	if len(reqs[0].Columns) != 2 {
		t.Fatalf("persisted columns = %d, want 2", len(reqs[0].Columns))
	}
}

func TestDropOnSourcePositionIsNoop(t *testing.T) {
	p := &fakePersister{}
	s := NewState("p1", testColumns(), p, nil)

	s.StartDrag("t2")
	if s.Drop(context.Background(), "c1", 1) {
		t.Fatal("expected no-op drop")
	}
	s.Wait()

	if len(p.calls()) != 0 {
		t.Fatal("no-op drop persisted")
	}
	if !equalIDs(taskIDs(s.Columns()[0]), []string{"t1", "t2", "t3"}) {
		t.Fatal("no-op drop mutated board")
	}
}

func TestPersistFailureKeepsLocalState(t *testing.T) {
	p := &fakePersister{err: errors.New("server unavailable")}
	var alerts []string
	var mu sync.Mutex
	s := NewState("p1", testColumns(), p, func(msg string) {
		mu.Lock()
		alerts = append(alerts, msg)
		mu.Unlock()
	})

	s.StartDrag("t3")
	s.Drop(context.Background(), "c1", 0)
	s.Wait()

	// the optimistic mutation is not reverted
	if !equalIDs(taskIDs(s.Columns()[0]), []string{"t3", "t1", "t2"}) {
		t.Fatalf("state reverted: %v", taskIDs(s.Columns()[0]))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(alerts) != 1 || alerts[0] != "server unavailable" {
		t.Fatalf("alerts = %v", alerts)
	}
}

func TestMilestoneFilterDisablesDrag(t *testing.T) {
	p := &fakePersister{}
	s := NewState("p1", testColumns(), p, nil)

	s.SetMilestoneFilter("m1")
	if s.DragEnabled() {
		t.Fatal("drag enabled under filter")
	}
	if s.StartDrag("t1") {
		t.Fatal("StartDrag succeeded under filter")
	}

	s.SetMilestoneFilter("")
	if !s.DragEnabled() {
		t.Fatal("drag still disabled after clearing filter")
	}
}

func TestDragUnknownTask(t *testing.T) {
	s := NewState("p1", testColumns(), &fakePersister{}, nil)
	if s.StartDrag("nope") {
		t.Fatal("StartDrag succeeded for unknown task")
	}
	if s.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", s.Phase())
	}
}
