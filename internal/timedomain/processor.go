// Package timedomain partitions a start-time-ordered sequence of
// CorrelatedBlocks into disjoint blocks and super-domain groups of blocks
// chained together by intersecting time ranges.
package timedomain

import (
	"fmt"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

// Processor walks a start-time-ordered block sequence and groups
// intersecting runs.
type Processor struct {
	// AllowDomainCollisions, when false, makes Process fail with a
	// KindRangeError as soon as any super-domain group of size >= 2 is
	// found.
	AllowDomainCollisions bool
}

// New builds a Processor with the given collision policy.
func New(allowDomainCollisions bool) *Processor {
	return &Processor{AllowDomainCollisions: allowDomainCollisions}
}

// Process partitions blocks (assumed already sorted by start time) into
// disjoint blocks and super-domain groups: a running group accumulates
// while each next block intersects the group's union range, and flushes
// when the chain breaks.
func (p *Processor) Process(blocks []*tstypes.CorrelatedBlock) (disjoint []*tstypes.CorrelatedBlock, groups [][]*tstypes.CorrelatedBlock, err error) {
	var run []*tstypes.CorrelatedBlock
	var runRange tstypes.TimeInterval

	flush := func() error {
		switch len(run) {
		case 0:
			return nil
		case 1:
			disjoint = append(disjoint, run[0])
		default:
			if !p.AllowDomainCollisions {
				return tstypes.NewError(tstypes.KindRangeError,
					fmt.Sprintf("domain collision across %d blocks starting at %d, collisions disallowed", len(run), run[0].StartTime()))
			}
			groups = append(groups, run)
		}
		return nil
	}

	for _, b := range blocks {
		if len(run) == 0 {
			run = []*tstypes.CorrelatedBlock{b}
			runRange = b.TimeRange()
			continue
		}
		if runRange.Intersects(b.TimeRange()) {
			run = append(run, b)
			runRange = runRange.Union(b.TimeRange())
			continue
		}
		if err := flush(); err != nil {
			return nil, nil, err
		}
		run = []*tstypes.CorrelatedBlock{b}
		runRange = b.TimeRange()
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}

	return disjoint, groups, nil
}
