package assembler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func blockWithColumn(start, periodNanos int64, count int, source string, vals ...any) *tstypes.CorrelatedBlock {
	b := tstypes.NewCorrelatedBlock(tstypes.NewClockKey(start, periodNanos, count))
	b.AddColumn(tstypes.DataColumn{SourceName: source, Type: tstypes.TypeInt64, Values: vals})
	return b
}

func TestAssembler_DisjointBlocksBecomeDisjointSampledBlocks(t *testing.T) {
	b1 := blockWithColumn(0, 1, 2, "A", 1, 2)
	b2 := blockWithColumn(100, 1, 2, "A", 3, 4)

	a := New(Config{}, testLogger())
	agg, err := a.Assemble("req-1", []*tstypes.CorrelatedBlock{b1, b2}, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(agg.Blocks()) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(agg.Blocks()))
	}
	if agg.Blocks()[0].Kind() != tstypes.KindDisjoint {
		t.Errorf("expected KindDisjoint")
	}
	if err := agg.Verify(); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestAssembler_GroupBecomesSuperDomainBlock(t *testing.T) {
	b1 := blockWithColumn(0, 1, 2, "A", 1, 2)   // ts 0,1
	b2 := blockWithColumn(1, 1, 2, "B", 10, 11) // ts 1,2, overlaps b1 at ts=1

	a := New(Config{}, testLogger())
	agg, err := a.Assemble("req-2", nil, [][]*tstypes.CorrelatedBlock{{b1, b2}})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(agg.Blocks()) != 1 {
		t.Fatalf("expected 1 coalesced block, got %d", len(agg.Blocks()))
	}
	sb := agg.Blocks()[0]
	if sb.Kind() != tstypes.KindSuperDomain {
		t.Fatalf("expected KindSuperDomain")
	}
	if sb.SampleCount() != 3 {
		t.Fatalf("expected union of 3 distinct timestamps (0,1,2), got %d", sb.SampleCount())
	}
	valsA, ok := sb.Values("A")
	if !ok {
		t.Fatal("expected source A present")
	}
	if valsA[2] != nil {
		t.Errorf("expected null at ts=2 for source A (A has no sample there), got %v", valsA[2])
	}
}

func TestAssembler_SortedByStartTimeRegardlessOfInputOrder(t *testing.T) {
	late := blockWithColumn(500, 1, 1, "A", 1)
	early := blockWithColumn(0, 1, 1, "B", 2)

	a := New(Config{}, testLogger())
	agg, err := a.Assemble("req-3", []*tstypes.CorrelatedBlock{late, early}, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if agg.Blocks()[0].StartTime() != 0 || agg.Blocks()[1].StartTime() != 500 {
		t.Fatalf("expected output sorted by start time, got %+v", agg.Blocks())
	}
}

func TestAssembler_ParallelPathProducesSameResultAsSequential(t *testing.T) {
	var disjoint []*tstypes.CorrelatedBlock
	for i := 0; i < 20; i++ {
		disjoint = append(disjoint, blockWithColumn(int64(i)*1000, 1, 1, "A", i))
	}

	seq := New(Config{PivotSize: 0}, testLogger())
	par := New(Config{PivotSize: 5}, testLogger())

	aggSeq, err := seq.Assemble("req-seq", disjoint, nil)
	if err != nil {
		t.Fatalf("sequential assemble: %v", err)
	}
	aggPar, err := par.Assemble("req-par", disjoint, nil)
	if err != nil {
		t.Fatalf("parallel assemble: %v", err)
	}

	if len(aggSeq.Blocks()) != len(aggPar.Blocks()) {
		t.Fatalf("block count mismatch: seq=%d par=%d", len(aggSeq.Blocks()), len(aggPar.Blocks()))
	}
	for i := range aggSeq.Blocks() {
		if aggSeq.Blocks()[i].StartTime() != aggPar.Blocks()[i].StartTime() {
			t.Errorf("order mismatch at index %d: seq=%d par=%d",
				i, aggSeq.Blocks()[i].StartTime(), aggPar.Blocks()[i].StartTime())
		}
	}
}
