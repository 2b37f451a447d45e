package config

import "github.com/voltaicdb/tscore/internal/engine"

// ToExternal converts a validated EngineConfig into the shape
// engine.Engine.ApplyConfig consumes. Call Validate first.
func (c EngineConfig) ToExternal() engine.ExternalConfig {
	return engine.ExternalConfig{
		MultiStream:           c.MultiStream,
		MaxStreams:            c.MaxStreams,
		TriggerDomain:         c.TriggerDomain,
		MaxSourcesPerSub:      c.MaxSourcesPerSub,
		MaxDurationPerSub:     c.MaxDurationRaw,
		CorrelateMidStream:    c.CorrelateMidStream,
		CorrelateConcurrency:  c.CorrelateConcurrency,
		CorrelatePivot:        c.CorrelatePivot,
		CorrelateThreads:      c.CorrelateThreads,
		AllowDomainCollisions: c.AllowDomainCollisions,
		AssemblerConcurrency:  c.AssemblerConcurrency,
		AssemblerPivot:        c.AssemblerPivot,
		ErrorChecking:         c.ErrorChecking,
		EnqueueRateLimit:      c.EnqueueRateLimit,
		BufferCapacity:        int(c.BufferCapacityRaw),
	}
}
