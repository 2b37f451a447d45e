package tstypes

import "sort"

// StaticTableView materializes one value-sequence per source across every
// block (with nil for gaps) plus the global timestamp sequence, in O(N*M)
// memory where N is total sample count and M is source count. Built once,
// read many times.
type StaticTableView struct {
	timestamps []int64
	sources    []string
	values     map[string][]any
}

func newStaticTableView(a *SampledAggregate) *StaticTableView {
	names := a.SourceNames()
	v := &StaticTableView{
		sources: names,
		values:  make(map[string][]any, len(names)),
	}
	total := a.TotalSampleCount()
	v.timestamps = make([]int64, 0, total)
	for _, n := range names {
		v.values[n] = make([]any, 0, total)
	}
	for _, b := range a.Blocks() {
		bts := b.Timestamps()
		v.timestamps = append(v.timestamps, bts...)
		for _, n := range names {
			seq, ok := b.Values(n)
			if !ok {
				seq = make([]any, len(bts))
			}
			v.values[n] = append(v.values[n], seq...)
		}
	}
	return v
}

// Timestamps returns the global, ascending timestamp sequence.
func (v *StaticTableView) Timestamps() []int64 { return v.timestamps }

// Sources returns the sorted source-name list.
func (v *StaticTableView) Sources() []string { return v.sources }

// Column returns the materialized value sequence for name, aligned to
// Timestamps().
func (v *StaticTableView) Column(name string) ([]any, bool) {
	seq, ok := v.values[name]
	return seq, ok
}

// Row returns one value per source, in Sources() order, at the given
// timestamp-sequence index.
func (v *StaticTableView) Row(index int) []any {
	out := make([]any, len(v.sources))
	for i, n := range v.sources {
		out[i] = v.values[n][index]
	}
	return out
}

// DynamicTableView answers valueAt(row, source) in O(log B + 1), where B
// is the block count, without materializing a full N*M table. It builds a
// small per-block offset index rather than flattening every value.
type DynamicTableView struct {
	agg     *SampledAggregate
	offsets []int // offsets[i] = first global row index of Blocks()[i]
	total   int
}

func newDynamicTableView(a *SampledAggregate) *DynamicTableView {
	v := &DynamicTableView{agg: a}
	offset := 0
	for _, b := range a.Blocks() {
		v.offsets = append(v.offsets, offset)
		offset += b.SampleCount()
	}
	v.total = offset
	return v
}

// RowCount is the aggregate's total sample count.
func (v *DynamicTableView) RowCount() int { return v.total }

// blockForRow maps a global row index to (block index, local index) via
// binary search over the per-block starting offsets.
func (v *DynamicTableView) blockForRow(row int) (blockIdx, localIdx int, ok bool) {
	if row < 0 || row >= v.total {
		return 0, 0, false
	}
	i := sort.Search(len(v.offsets), func(i int) bool { return v.offsets[i] > row }) - 1
	if i < 0 {
		return 0, 0, false
	}
	return i, row - v.offsets[i], true
}

// ValueAt returns the value for source at the given global row. ok is
// false only when the row is out of range or the source is unknown to
// the aggregate; a row where the source did not report yields (nil,
// true), matching the static view's null-for-gap convention.
func (v *DynamicTableView) ValueAt(row int, source string) (any, bool) {
	blockIdx, localIdx, ok := v.blockForRow(row)
	if !ok {
		return nil, false
	}
	if _, known := v.agg.SourceType(source); !known {
		return nil, false
	}
	seq, ok := v.agg.Blocks()[blockIdx].Values(source)
	if !ok || localIdx >= len(seq) {
		return nil, true
	}
	return seq[localIdx], true
}

// TimestampAt returns the timestamp of the given global row.
func (v *DynamicTableView) TimestampAt(row int) (int64, bool) {
	blockIdx, localIdx, ok := v.blockForRow(row)
	if !ok {
		return 0, false
	}
	ts := v.agg.Blocks()[blockIdx].Timestamps()
	if localIdx >= len(ts) {
		return 0, false
	}
	return ts[localIdx], true
}
