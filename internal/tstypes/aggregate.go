package tstypes

import (
	"fmt"
	"sort"
)

// SampledAggregate is the final product of one request: an ordered
// sequence of SampledBlocks with globally disjoint time ranges, plus
// request-scoped bookkeeping (source-name/type union, first/last
// timestamp, total sample count, and the caller's request id).
//
// Ownership: each request creates a fresh SampledAggregate; its blocks
// exclusively own their column storage.
type SampledAggregate struct {
	RequestID string

	blocks     []*SampledBlock
	sourceType map[string]SupportedType
	messageCnt int64
	byteCnt    int64
}

// NewSampledAggregate creates an empty aggregate for one request.
func NewSampledAggregate(requestID string) *SampledAggregate {
	return &SampledAggregate{
		RequestID:  requestID,
		sourceType: make(map[string]SupportedType),
	}
}

// AddBlock appends a SampledBlock and keeps the global source-name/type
// map up to date. It does not sort or check order: callers must add
// blocks in start-time order (the Assembler guarantees this as a
// post-step); use Verify to check the invariant holds.
func (a *SampledAggregate) AddBlock(b *SampledBlock) {
	b.requestID = a.RequestID
	a.blocks = append(a.blocks, b)
	for _, name := range b.SourceNames() {
		t, _ := b.SourceType(name)
		if existing, ok := a.sourceType[name]; ok && existing != t {
			a.sourceType[name] = TypeUnsupported
		} else if !ok {
			a.sourceType[name] = t
		}
	}
}

// SetMetrics records the processed message/byte counts for inspection.
func (a *SampledAggregate) SetMetrics(messages, bytes int64) {
	a.messageCnt = messages
	a.byteCnt = bytes
}

// MessageCount and ByteCount report the counters SetMetrics recorded.
func (a *SampledAggregate) MessageCount() int64 { return a.messageCnt }
func (a *SampledAggregate) ByteCount() int64    { return a.byteCnt }

// Blocks returns the ordered, pairwise-disjoint block sequence.
func (a *SampledAggregate) Blocks() []*SampledBlock {
	return a.blocks
}

// SourceNames returns the union of every source name across all blocks,
// sorted.
func (a *SampledAggregate) SourceNames() []string {
	names := make([]string, 0, len(a.sourceType))
	for n := range a.sourceType {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SourceType returns the recorded type for name (TypeUnsupported if a
// conflict was observed across blocks), and whether the source is known
// to this aggregate at all.
func (a *SampledAggregate) SourceType(name string) (SupportedType, bool) {
	t, ok := a.sourceType[name]
	return t, ok
}

// FirstTimestamp and LastTimestamp return the aggregate's overall time
// bounds. Both are zero-value (0, false) when the aggregate has no
// blocks.
func (a *SampledAggregate) FirstTimestamp() (int64, bool) {
	if len(a.blocks) == 0 {
		return 0, false
	}
	return a.blocks[0].StartTime(), true
}

func (a *SampledAggregate) LastTimestamp() (int64, bool) {
	if len(a.blocks) == 0 {
		return 0, false
	}
	return a.blocks[len(a.blocks)-1].EndTime(), true
}

// TotalSampleCount sums SampleCount() across every block.
func (a *SampledAggregate) TotalSampleCount() int {
	total := 0
	for _, b := range a.blocks {
		total += b.SampleCount()
	}
	return total
}

// Verify checks the aggregate's invariants: blocks strictly
// increasing in start time with pairwise-disjoint time ranges, and no
// source recorded as TypeUnsupported. Returns a *Error on the first
// violation; a TypeUnsupported source yields KindTypeConflict, anything
// else KindRangeError.
func (a *SampledAggregate) Verify() error {
	for i := 1; i < len(a.blocks); i++ {
		prev, cur := a.blocks[i-1], a.blocks[i]
		if cur.StartTime() <= prev.StartTime() {
			return NewError(KindRangeError, fmt.Sprintf("blocks out of order at index %d", i))
		}
		if prev.TimeRange().Intersects(cur.TimeRange()) {
			return NewError(KindRangeError, fmt.Sprintf("overlapping blocks at index %d", i))
		}
	}
	for name, t := range a.sourceType {
		if t == TypeUnsupported {
			return NewError(KindTypeConflict, fmt.Sprintf("source %q has conflicting types", name))
		}
	}
	return nil
}

// StaticView materializes the full table; DynamicView answers point reads
// lazily.
func (a *SampledAggregate) StaticView() *StaticTableView {
	return newStaticTableView(a)
}

func (a *SampledAggregate) DynamicView() *DynamicTableView {
	return newDynamicTableView(a)
}
