package engine

import (
	"time"

	"github.com/voltaicdb/tscore/internal/assembler"
	"github.com/voltaicdb/tscore/internal/correlator"
	"github.com/voltaicdb/tscore/internal/decomposer"
)

// Conservative defaults baked into the struct rather than read from a
// process-wide singleton.
const (
	defaultMaxStreams       = 4
	defaultTriggerDomain    = 0
	defaultMaxSourcesPerSub = 8
	defaultMaxDuration      = 60 * time.Second
	defaultCorrelatePivot   = 64
	defaultCorrelateThreads = 4
	defaultAssemblerPivot   = 8
	defaultBufferCapacity   = 0 // 0 => msgbuffer.AutoCapacity()
)

// engineConfig is the per-engine, mutable tuning surface driving every
// pipeline stage. There is exactly one instance per Engine; no
// process-wide configuration object exists.
type engineConfig struct {
	multiStream           bool
	maxStreams            int
	triggerDomain         float64
	maxSourcesPerSub      int
	maxDurationPerSub     time.Duration
	correlateMidStream    bool
	correlateConcurrency  bool
	correlatePivot        int
	correlateThreads      int
	allowDomainCollisions bool
	assemblerConcurrency  bool
	assemblerPivot        int
	errorChecking         bool
}

func defaultConfig() engineConfig {
	return engineConfig{
		multiStream:           true,
		maxStreams:            defaultMaxStreams,
		triggerDomain:         defaultTriggerDomain,
		maxSourcesPerSub:      defaultMaxSourcesPerSub,
		maxDurationPerSub:     defaultMaxDuration,
		correlateMidStream:    true,
		correlateConcurrency:  false,
		correlatePivot:        defaultCorrelatePivot,
		correlateThreads:      defaultCorrelateThreads,
		allowDomainCollisions: false,
		assemblerConcurrency:  false,
		assemblerPivot:        defaultAssemblerPivot,
		errorChecking:         true,
	}
}

func (c engineConfig) decomposerParams() decomposer.Params {
	return decomposer.Params{
		MaxStreams:        c.maxStreams,
		MaxSourcesPerSub:  c.maxSourcesPerSub,
		MaxDurationPerSub: c.maxDurationPerSub.Nanoseconds(),
		TriggerDomain:     c.triggerDomain,
		Disabled:          !c.multiStream,
	}
}

func (c engineConfig) correlatorConfig() correlator.Config {
	return correlator.Config{
		ConcurrencyEnabled: c.correlateConcurrency,
		PivotSize:          c.correlatePivot,
		MaxThreads:         c.correlateThreads,
		VerifyEnabled:      c.errorChecking,
	}
}

func (c engineConfig) assemblerConfig() assembler.Config {
	pivot := 0
	if c.assemblerConcurrency {
		pivot = c.assemblerPivot
	}
	return assembler.Config{PivotSize: pivot}
}
