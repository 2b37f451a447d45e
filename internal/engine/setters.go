package engine

import (
	"time"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

// Mutation is rejected with KindInvalidState while a request is in
// flight; the protection covers the whole tuning surface, not just
// maxStreams.

func (e *Engine) SetMultiStream(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.multiStream = enabled
	e.rebuildStages()
	return nil
}

func (e *Engine) SetMaxStreams(n int) error {
	if n <= 0 {
		return tstypes.NewError(tstypes.KindInvalidState, "maxStreams must be > 0")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.maxStreams = n
	e.rebuildStages()
	return nil
}

func (e *Engine) SetTriggerDomain(v float64) error {
	if v < 0 {
		return tstypes.NewError(tstypes.KindInvalidState, "triggerDomain must be >= 0")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.triggerDomain = v
	e.rebuildStages()
	return nil
}

func (e *Engine) SetMaxSources(n int) error {
	if n <= 0 {
		return tstypes.NewError(tstypes.KindInvalidState, "maxSourcesPerSub must be > 0")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.maxSourcesPerSub = n
	e.rebuildStages()
	return nil
}

func (e *Engine) SetMaxDuration(d time.Duration) error {
	if d <= 0 {
		return tstypes.NewError(tstypes.KindInvalidState, "maxDurationPerSub must be > 0")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.maxDurationPerSub = d
	e.rebuildStages()
	return nil
}

func (e *Engine) SetCorrelateMidStream(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.correlateMidStream = enabled
	return nil
}

func (e *Engine) SetCorrelateConcurrency(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.correlateConcurrency = enabled
	e.rebuildStages()
	return nil
}

func (e *Engine) SetCorrelatePivot(n int) error {
	if n < 1 {
		return tstypes.NewError(tstypes.KindInvalidState, "correlatePivot must be >= 1")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.correlatePivot = n
	e.rebuildStages()
	return nil
}

func (e *Engine) SetCorrelateThreads(n int) error {
	if n < 1 {
		return tstypes.NewError(tstypes.KindInvalidState, "correlateThreads must be >= 1")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.correlateThreads = n
	e.rebuildStages()
	return nil
}

func (e *Engine) SetAllowDomainCollisions(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.allowDomainCollisions = enabled
	e.rebuildStages()
	return nil
}

func (e *Engine) SetAssemblerConcurrency(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.assemblerConcurrency = enabled
	e.rebuildStages()
	return nil
}

func (e *Engine) SetAssemblerPivot(n int) error {
	if n < 1 {
		return tstypes.NewError(tstypes.KindInvalidState, "assemblerPivot must be >= 1")
	}
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.assemblerPivot = n
	e.rebuildStages()
	return nil
}

func (e *Engine) SetErrorChecking(enabled bool) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg.errorChecking = enabled
	e.rebuildStages()
	return nil
}

// SetEnqueueRateLimit configures the MessageBuffer's token-bucket
// enqueue rate in messages/sec; 0 disables throttling.
func (e *Engine) SetEnqueueRateLimit(messagesPerSecond float64) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.enqueueRateLimit = messagesPerSecond
	return nil
}

// SetBufferCapacity pins the MessageBuffer's slot capacity; 0 restores
// auto-sizing via msgbuffer.AutoCapacity.
func (e *Engine) SetBufferCapacity(capacity int) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.bufferCapacity = capacity
	return nil
}

// ResetConfig restores every tuning knob to its default value.
func (e *Engine) ResetConfig() error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg = defaultConfig()
	e.enqueueRateLimit = 0
	e.bufferCapacity = 0
	e.rebuildStages()
	return nil
}

// ApplyConfig loads every tuning knob from a config.EngineConfig
// snapshot in one shot (used by cmd/tscore-demo after YAML load).
func (e *Engine) ApplyConfig(c ExternalConfig) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	if err := e.rejectIfProcessing(); err != nil {
		return err
	}
	e.cfg = engineConfig{
		multiStream:           c.MultiStream,
		maxStreams:            c.MaxStreams,
		triggerDomain:         c.TriggerDomain,
		maxSourcesPerSub:      c.MaxSourcesPerSub,
		maxDurationPerSub:     c.MaxDurationPerSub,
		correlateMidStream:    c.CorrelateMidStream,
		correlateConcurrency:  c.CorrelateConcurrency,
		correlatePivot:        c.CorrelatePivot,
		correlateThreads:      c.CorrelateThreads,
		allowDomainCollisions: c.AllowDomainCollisions,
		assemblerConcurrency:  c.AssemblerConcurrency,
		assemblerPivot:        c.AssemblerPivot,
		errorChecking:         c.ErrorChecking,
	}
	e.enqueueRateLimit = c.EnqueueRateLimit
	e.bufferCapacity = c.BufferCapacity
	e.rebuildStages()
	return nil
}

// ExternalConfig is the subset of config.EngineConfig the engine package
// consumes, decoupled from the config package's YAML-facing struct so
// engine never imports config; config converts into it via
// EngineConfig.ToExternal.
type ExternalConfig struct {
	MultiStream           bool
	MaxStreams            int
	TriggerDomain         float64
	MaxSourcesPerSub      int
	MaxDurationPerSub     time.Duration
	CorrelateMidStream    bool
	CorrelateConcurrency  bool
	CorrelatePivot        int
	CorrelateThreads      int
	AllowDomainCollisions bool
	AssemblerConcurrency  bool
	AssemblerPivot        int
	ErrorChecking         bool
	EnqueueRateLimit      float64
	BufferCapacity        int
}
