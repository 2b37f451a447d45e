package tstypes

// RawSuperDomainGroup is a maximal run of start-time-ordered
// CorrelatedBlocks in which each block's closed time range intersects the
// union range of the blocks before it (two members need not overlap each
// other directly), produced by the TimeDomainProcessor. It
// is the raw input to the Assembler's super-domain coalescing; its own
// union-of-timestamps/per-source alignment is computed lazily by the
// Assembler rather than stored here, since not every caller needs it.
type RawSuperDomainGroup struct {
	Blocks         []*CorrelatedBlock
	UnionTimeRange TimeInterval
}

// NewRawSuperDomainGroup seeds a group with its first block.
func NewRawSuperDomainGroup(first *CorrelatedBlock) *RawSuperDomainGroup {
	return &RawSuperDomainGroup{
		Blocks:         []*CorrelatedBlock{first},
		UnionTimeRange: first.TimeRange(),
	}
}

// Add appends b to the group and extends UnionTimeRange.
func (g *RawSuperDomainGroup) Add(b *CorrelatedBlock) {
	g.Blocks = append(g.Blocks, b)
	g.UnionTimeRange = g.UnionTimeRange.Union(b.TimeRange())
}

// StartTime orders groups the same way single blocks are ordered: by the
// first block's start time (groups are built walking the start-time
// ordered block set, so Blocks[0] always carries the minimal start time).
func (g *RawSuperDomainGroup) StartTime() int64 {
	return g.Blocks[0].StartTime()
}
