package timedomain

import (
	"testing"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

func blockAt(start, periodNanos int64, count int) *tstypes.CorrelatedBlock {
	return tstypes.NewCorrelatedBlock(tstypes.NewClockKey(start, periodNanos, count))
}

func TestProcessor_AllDisjoint(t *testing.T) {
	blocks := []*tstypes.CorrelatedBlock{
		blockAt(0, 1, 10),   // [0,9]
		blockAt(20, 1, 10),  // [20,29]
		blockAt(100, 1, 10), // [100,109]
	}
	p := New(false)
	disjoint, groups, err := p.Process(blocks)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(disjoint) != 3 || len(groups) != 0 {
		t.Fatalf("expected 3 disjoint blocks and no groups, got disjoint=%d groups=%d", len(disjoint), len(groups))
	}
}

func TestProcessor_OverlapFormsGroupWhenAllowed(t *testing.T) {
	blocks := []*tstypes.CorrelatedBlock{
		blockAt(0, 1, 10),  // [0,9]
		blockAt(5, 1, 10),  // [5,14] overlaps first
		blockAt(20, 1, 10), // [20,29] disjoint
	}
	p := New(true)
	disjoint, groups, err := p.Process(blocks)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(disjoint) != 1 {
		t.Fatalf("expected 1 disjoint block, got %d", len(disjoint))
	}
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected 1 group of 2 blocks, got %+v", groups)
	}
}

func TestProcessor_CollisionDisallowedFails(t *testing.T) {
	blocks := []*tstypes.CorrelatedBlock{
		blockAt(0, 1, 10), // [0,9]
		blockAt(5, 1, 10), // [5,14] overlaps
	}
	p := New(false)
	_, _, err := p.Process(blocks)
	if err == nil {
		t.Fatal("expected collision to fail when AllowDomainCollisions is false")
	}
	if !tstypes.IsKind(err, tstypes.KindRangeError) {
		t.Errorf("expected KindRangeError, got %v", err)
	}
}

func TestProcessor_TransitiveGroupMembership(t *testing.T) {
	// A intersects B, B intersects C, but A and C alone do not overlap;
	// the running union range still must merge them into one group.
	a := blockAt(0, 1, 10)  // [0,9]
	b := blockAt(8, 1, 10)  // [8,17] overlaps A
	c := blockAt(16, 1, 10) // [16,25] overlaps B's tail via the union range, not A directly

	p := New(true)
	disjoint, groups, err := p.Process([]*tstypes.CorrelatedBlock{a, b, c})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(disjoint) != 0 {
		t.Fatalf("expected no disjoint blocks, got %d", len(disjoint))
	}
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("expected one group of 3 transitively-linked blocks, got %+v", groups)
	}
}

func TestProcessor_EmptyInput(t *testing.T) {
	p := New(false)
	disjoint, groups, err := p.Process(nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(disjoint) != 0 || len(groups) != 0 {
		t.Fatalf("expected empty output for empty input, got disjoint=%d groups=%d", len(disjoint), len(groups))
	}
}
