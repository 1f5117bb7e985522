package board

import "testing"

func TestPositionFor(t *testing.T) {
	want := []int{100, 200, 300, 400, 500}
	for i, w := range want {
		if got := PositionFor(i); got != w {
			t.Fatalf("PositionFor(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestPositionGapLeavesRoomForInserts(t *testing.T) {
	// adjacent positions must leave at least one free integer between them
	if PositionFor(1)-PositionFor(0) < 2 {
		t.Fatalf("gap too small: %d", PositionFor(1)-PositionFor(0))
	}
}
