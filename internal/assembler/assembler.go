// Package assembler builds a SampledAggregate from the disjoint blocks
// and super-domain groups the TimeDomainProcessor produces.
package assembler

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

// Config tunes the Assembler's block-building parallelism.
type Config struct {
	// PivotSize: sampled-block construction over a group's blocks runs in
	// parallel once block count exceeds this. 0 disables parallelism.
	PivotSize int
}

// Assembler turns (disjoint, groups) into one SampledAggregate.
type Assembler struct {
	cfg    Config
	logger *slog.Logger
}

// New builds an Assembler.
func New(cfg Config, logger *slog.Logger) *Assembler {
	return &Assembler{cfg: cfg, logger: logger}
}

// Assemble builds the request's SampledAggregate from the
// TimeDomainProcessor's output. disjoint blocks each become a
// SampledBlock.Disjoint; each group is coalesced into one
// SampledBlock.SuperDomain. The result is sorted by start time as a
// post-step, so block-building parallelism never affects final order.
func (a *Assembler) Assemble(requestID string, disjoint []*tstypes.CorrelatedBlock, groups [][]*tstypes.CorrelatedBlock) (*tstypes.SampledAggregate, error) {
	total := len(disjoint) + len(groups)
	blocks := make([]*tstypes.SampledBlock, total)

	parallel := a.cfg.PivotSize > 0 && total > a.cfg.PivotSize

	if !parallel {
		idx := 0
		for _, b := range disjoint {
			blocks[idx] = tstypes.NewDisjointBlock(b)
			idx++
		}
		for _, g := range groups {
			blocks[idx] = buildSuperDomain(g)
			idx++
		}
	} else {
		var wg sync.WaitGroup
		idx := 0
		for _, b := range disjoint {
			wg.Add(1)
			go func(slot int, b *tstypes.CorrelatedBlock) {
				defer wg.Done()
				blocks[slot] = tstypes.NewDisjointBlock(b)
			}(idx, b)
			idx++
		}
		for _, g := range groups {
			wg.Add(1)
			go func(slot int, g []*tstypes.CorrelatedBlock) {
				defer wg.Done()
				blocks[slot] = buildSuperDomain(g)
			}(idx, g)
			idx++
		}
		wg.Wait()
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].StartTime() < blocks[j].StartTime() })

	agg := tstypes.NewSampledAggregate(requestID)
	for _, b := range blocks {
		agg.AddBlock(b)
	}
	return agg, nil
}

func buildSuperDomain(group []*tstypes.CorrelatedBlock) *tstypes.SampledBlock {
	raw := tstypes.NewRawSuperDomainGroup(group[0])
	for _, b := range group[1:] {
		raw.Add(b)
	}
	return tstypes.NewSuperDomainBlock(raw)
}
