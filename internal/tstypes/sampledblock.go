package tstypes

import "sort"

// SampledBlockKind tags which construction path produced a SampledBlock.
// Both variants share the exact same accessor surface; Kind exists purely
// for diagnostics.
type SampledBlockKind uint8

const (
	KindDisjoint SampledBlockKind = iota
	KindSuperDomain
)

// SampledBlock is the coalesced output unit: a rectangular source x time
// view with nil standing in for "source did not report at this
// timestamp". timestamps and every values() sequence share one length,
// SampleCount.
type SampledBlock struct {
	kind        SampledBlockKind
	requestID   string
	startTime   int64
	endTime     int64
	timestamps  []int64
	sourceNames []string
	sourceType  map[string]SupportedType
	values      map[string][]any
}

// Kind reports whether this block came from one CorrelatedBlock
// (KindDisjoint) or a coalesced super-domain group (KindSuperDomain).
func (s *SampledBlock) Kind() SampledBlockKind { return s.kind }

// RequestID is the opaque id of the request that produced this block,
// copied down from the owning aggregate.
func (s *SampledBlock) RequestID() string { return s.requestID }

// StartTime is the first timestamp in the block.
func (s *SampledBlock) StartTime() int64 { return s.startTime }

// EndTime is the last timestamp in the block.
func (s *SampledBlock) EndTime() int64 { return s.endTime }

// TimeRange is the closed [StartTime, EndTime] interval.
func (s *SampledBlock) TimeRange() TimeInterval {
	return TimeInterval{Start: s.startTime, End: s.endTime}
}

// SampleCount is len(Timestamps()), and equal to every values() sequence
// length.
func (s *SampledBlock) SampleCount() int { return len(s.timestamps) }

// SourceNames returns every source name present anywhere in the block, in
// a stable, lexicographically-sorted order.
func (s *SampledBlock) SourceNames() []string {
	out := make([]string, len(s.sourceNames))
	copy(out, s.sourceNames)
	return out
}

// SourceType returns the supported type recorded for name, and whether
// the source is present at all in this block.
func (s *SampledBlock) SourceType(name string) (SupportedType, bool) {
	t, ok := s.sourceType[name]
	return t, ok
}

// Timestamps returns the block's timestamp sequence, ascending.
func (s *SampledBlock) Timestamps() []int64 {
	out := make([]int64, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// Values returns the value sequence for name, aligned to Timestamps();
// a nil entry at index i means the source did not report at
// Timestamps()[i]. The second return is false if name is absent.
func (s *SampledBlock) Values(name string) ([]any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// NewDisjointBlock materializes a single CorrelatedBlock's timing key into
// a timestamp sequence and gathers its columns, with nil standing in for
// sources not present in the block (there are none, by construction, but
// the accessor contract is uniform across both variants).
func NewDisjointBlock(b *CorrelatedBlock) *SampledBlock {
	ts := b.Key.Timestamps()
	sb := &SampledBlock{
		kind:        KindDisjoint,
		timestamps:  ts,
		sourceType:  make(map[string]SupportedType),
		values:      make(map[string][]any),
	}
	if len(ts) > 0 {
		sb.startTime = ts[0]
		sb.endTime = ts[len(ts)-1]
	}
	names := b.SourceNames()
	sort.Strings(names)
	sb.sourceNames = names
	for _, c := range b.Columns() {
		sb.sourceType[c.SourceName] = c.Type
		vals := make([]any, len(c.Values))
		copy(vals, c.Values)
		sb.values[c.SourceName] = vals
	}
	return sb
}

// NewSuperDomainBlock builds a SampledBlock from the sorted union of
// timestamps across every block in the group; each source present in any
// member block gets a value sequence of that same length, with nil at
// positions the source did not report.
func NewSuperDomainBlock(group *RawSuperDomainGroup) *SampledBlock {
	unionSet := make(map[int64]struct{})
	for _, b := range group.Blocks {
		for _, ts := range b.Key.Timestamps() {
			unionSet[ts] = struct{}{}
		}
	}
	union := make([]int64, 0, len(unionSet))
	for ts := range unionSet {
		union = append(union, ts)
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })

	index := make(map[int64]int, len(union))
	for i, ts := range union {
		index[ts] = i
	}

	sb := &SampledBlock{
		kind:       KindSuperDomain,
		timestamps: union,
		sourceType: make(map[string]SupportedType),
		values:     make(map[string][]any),
	}
	if len(union) > 0 {
		sb.startTime = union[0]
		sb.endTime = union[len(union)-1]
	}

	seenType := make(map[string]bool)
	nameSet := make(map[string]struct{})
	for _, b := range group.Blocks {
		bts := b.Key.Timestamps()
		for _, c := range b.Columns() {
			seq, ok := sb.values[c.SourceName]
			if !ok {
				seq = make([]any, len(union))
				sb.values[c.SourceName] = seq
				nameSet[c.SourceName] = struct{}{}
			}
			if !seenType[c.SourceName] {
				sb.sourceType[c.SourceName] = c.Type
				seenType[c.SourceName] = true
			} else if sb.sourceType[c.SourceName] != c.Type {
				sb.sourceType[c.SourceName] = TypeUnsupported
			}
			for i, v := range c.Values {
				seq[index[bts[i]]] = v
			}
		}
	}

	names := make([]string, 0, len(nameSet))
	for n := range nameSet {
		names = append(names, n)
	}
	sort.Strings(names)
	sb.sourceNames = names
	return sb
}
