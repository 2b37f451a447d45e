package tstypes

import "testing"

func TestNewDisjointBlock(t *testing.T) {
	key := NewClockKey(0, 1_000_000_000, 3)
	b := NewCorrelatedBlock(key)
	b.AddColumn(DataColumn{SourceName: "A", Type: TypeFloat64, Values: []any{1.0, 2.0, 3.0}})

	sb := NewDisjointBlock(b)
	if sb.SampleCount() != 3 {
		t.Fatalf("sampleCount = %d, want 3", sb.SampleCount())
	}
	vals, ok := sb.Values("A")
	if !ok || len(vals) != 3 {
		t.Fatalf("values(A) = %v, %v", vals, ok)
	}
	if _, ok := sb.Values("B"); ok {
		t.Fatal("expected B absent")
	}
}

func TestNewSuperDomainBlockUnionAndNulls(t *testing.T) {
	// Two colliding grids over [0,4]s: a 1s clock for A, a 2s clock for B.
	keyA := NewClockKey(0, 1_000_000_000, 5)
	blockA := NewCorrelatedBlock(keyA)
	blockA.AddColumn(DataColumn{SourceName: "A", Type: TypeFloat64, Values: []any{0.0, 1.0, 2.0, 3.0, 4.0}})

	keyB := NewClockKey(0, 2_000_000_000, 3)
	blockB := NewCorrelatedBlock(keyB)
	blockB.AddColumn(DataColumn{SourceName: "B", Type: TypeFloat64, Values: []any{10.0, 12.0, 14.0}})

	group := NewRawSuperDomainGroup(blockA)
	group.Add(blockB)

	sb := NewSuperDomainBlock(group)
	if sb.SampleCount() != 5 {
		t.Fatalf("sampleCount = %d, want 5", sb.SampleCount())
	}
	bVals, ok := sb.Values("B")
	if !ok {
		t.Fatal("expected B present")
	}
	if bVals[1] != nil || bVals[3] != nil {
		t.Fatalf("expected nulls at indices 1 and 3, got %v", bVals)
	}
	if bVals[0] != 10.0 || bVals[2] != 12.0 || bVals[4] != 14.0 {
		t.Fatalf("unexpected B values: %v", bVals)
	}
}

func TestSuperDomainBlockTypeConflictBecomesUnsupported(t *testing.T) {
	key := NewClockKey(0, 1_000_000_000, 2)
	b1 := NewCorrelatedBlock(key)
	b1.AddColumn(DataColumn{SourceName: "A", Type: TypeInt32, Values: []any{int32(1), int32(2)}})

	key2 := NewClockKey(0, 1_000_000_000, 2)
	b2 := NewCorrelatedBlock(key2)
	b2.AddColumn(DataColumn{SourceName: "A", Type: TypeFloat64, Values: []any{1.5, 2.5}})

	group := NewRawSuperDomainGroup(b1)
	group.Add(b2)
	sb := NewSuperDomainBlock(group)
	typ, ok := sb.SourceType("A")
	if !ok || typ != TypeUnsupported {
		t.Fatalf("SourceType(A) = %v, %v, want TypeUnsupported", typ, ok)
	}
}
