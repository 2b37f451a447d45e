// Package engine wires the Decomposer, Channel, MessageBuffer,
// Correlator, TimeDomainProcessor and Assembler into the request-level
// API.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/voltaicdb/tscore/internal/assembler"
	"github.com/voltaicdb/tscore/internal/correlator"
	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/msgbuffer"
	"github.com/voltaicdb/tscore/internal/timedomain"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// Request is one top-level data request: a request id, a set of sources,
// and a time range.
type Request struct {
	RequestID string
	Sources   []string
	TimeRange tstypes.TimeInterval
}

// Stats is a point-in-time snapshot of an engine's processing counters.
type Stats struct {
	ProcessedMessageCount int64
	ProcessedByteCount    int64
	DecomposedRequests    int
	RequestID             string
}

// Engine runs the full pipeline for one engine instance. Configuration
// is per-engine, not process-wide. Overlapping process calls on the same
// Engine serialize at the entry point; configuration setters are
// rejected with KindInvalidState while a request is in flight, rather
// than blocking on it.
type Engine struct {
	source msgbuffer.StreamSource
	logger *slog.Logger

	enqueueRateLimit float64
	bufferCapacity   int

	configMu sync.Mutex
	cfg      engineConfig

	processMu  sync.Mutex
	processing atomic.Bool

	decomposer *decomposer.Decomposer
	correlator *correlator.Correlator
	timeDomain *timedomain.Processor
	assembler  *assembler.Assembler

	statsMu          sync.Mutex
	lastMessageCount int64
	lastByteCount    int64
	lastDecomposed   []decomposer.Request
	lastRequestID    string
}

// New builds an Engine backed by source, with default configuration.
func New(source msgbuffer.StreamSource, logger *slog.Logger) *Engine {
	e := &Engine{
		source: source,
		logger: logger,
		cfg:    defaultConfig(),
	}
	e.rebuildStages()
	return e
}

// rebuildStages re-creates the stage objects that are derived from
// config; callers must hold configMu.
func (e *Engine) rebuildStages() {
	e.decomposer = decomposer.New()
	e.correlator = correlator.New(e.cfg.correlatorConfig(), e.logger)
	e.timeDomain = timedomain.New(e.cfg.allowDomainCollisions)
	e.assembler = assembler.New(e.cfg.assemblerConfig(), e.logger)
}

func (e *Engine) config() engineConfig {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	return e.cfg
}

// rejectIfProcessing is called by every setter; configuration mutation
// during an in-flight request is invalid-state, raised synchronously,
// not queued behind the in-flight request.
func (e *Engine) rejectIfProcessing() error {
	if e.processing.Load() {
		return tstypes.NewError(tstypes.KindInvalidState, "configuration cannot change while a request is in flight")
	}
	return nil
}

// ProcessRequest runs the decomposer, then recovery, correlation and
// assembly, serializing with any other in-flight call on this Engine.
func (e *Engine) ProcessRequest(ctx context.Context, req Request) (*tstypes.SampledAggregate, error) {
	cfg := e.config()
	subs := e.decomposer.Decompose(decomposer.Request{Sources: req.Sources, TimeRange: req.TimeRange}, cfg.decomposerParams())
	return e.processRequests(ctx, req.RequestID, subs, cfg)
}

// ProcessRequests runs recovery, correlation and assembly directly over
// an already-decomposed sub-request list, skipping decomposition.
func (e *Engine) ProcessRequests(ctx context.Context, requestID string, subs []decomposer.Request) (*tstypes.SampledAggregate, error) {
	return e.processRequests(ctx, requestID, subs, e.config())
}

func (e *Engine) processRequests(ctx context.Context, requestID string, subs []decomposer.Request, cfg engineConfig) (*tstypes.SampledAggregate, error) {
	e.processMu.Lock()
	defer e.processMu.Unlock()
	e.processing.Store(true)
	defer e.processing.Store(false)

	e.correlator.Reset()

	capacity := e.bufferCapacity
	if capacity <= 0 {
		capacity = msgbuffer.AutoCapacity()
	}
	buf := msgbuffer.New(capacity, e.enqueueRateLimit, e.logger)
	if err := buf.Activate(); err != nil {
		return nil, tstypes.Wrap(tstypes.KindBufferFailure, "activate message buffer", err)
	}

	channel := msgbuffer.NewChannel(e.source, cfg.maxStreams, e.logger)

	var (
		messages      []tstypes.ResponseMessage
		collectMu     sync.Mutex
		transferErrCh = make(chan error, 1)
	)

	drain := func() error {
		if cfg.correlateMidStream {
			return e.correlator.RunTransferTask(ctx, buf)
		}
		return e.collectIntoSlice(ctx, buf, &messages, &collectMu)
	}
	go func() {
		err := drain()
		if err != nil {
			// A dead drainer would leave enqueuers blocked on a full
			// buffer; force-close so the streams fail fast instead.
			buf.ShutdownNow()
		}
		transferErrCh <- err
	}()

	msgCount, recErr := channel.RecoverRequests(ctx, subs, buf)
	if recErr == nil {
		buf.Shutdown()
	}
	transferErr := <-transferErrCh

	// On a stream failure the buffer is force-closed, so the drainer exits
	// cleanly and recErr is the root cause; on a drainer failure the
	// streams die of the forced close, so transferErr is.
	if err := firstErr(transferErr, recErr); err != nil {
		e.correlator.Reset()
		return nil, canonicalize(err)
	}

	if !cfg.correlateMidStream {
		for _, m := range messages {
			if err := e.correlator.Process(m); err != nil {
				return nil, err
			}
		}
	}

	if err := e.correlator.Verify(); err != nil {
		return nil, err
	}

	blocks := e.correlator.Blocks()
	disjoint, groups, err := e.timeDomain.Process(blocks)
	if err != nil {
		return nil, err
	}

	agg, err := e.assembler.Assemble(requestID, disjoint, groups)
	if err != nil {
		return nil, err
	}

	byteCount := buf.Stats().TotalBytes
	agg.SetMetrics(int64(msgCount), byteCount)

	if cfg.errorChecking {
		if err := agg.Verify(); err != nil {
			return nil, err
		}
	}

	e.statsMu.Lock()
	e.lastMessageCount = int64(msgCount)
	e.lastByteCount = byteCount
	e.lastDecomposed = subs
	e.lastRequestID = requestID
	e.statsMu.Unlock()

	return agg, nil
}

// canonicalize maps context errors onto their canonical kinds so callers
// see deadline-exceeded and cancelled as distinct failures.
func canonicalize(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return tstypes.Wrap(tstypes.KindDeadlineExceeded, "request deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return tstypes.Wrap(tstypes.KindCancelled, "request cancelled", err)
	default:
		return err
	}
}

// collectIntoSlice drains buf into *out without correlating, used for
// post-stream correlation mode: the Correlator is only invoked after
// recovery completes, but the bounded buffer must still be drained
// concurrently with Channel.RecoverRequests or recovery would deadlock
// against a full buffer.
func (e *Engine) collectIntoSlice(ctx context.Context, buf *msgbuffer.MessageBuffer, out *[]tstypes.ResponseMessage, mu *sync.Mutex) error {
	for {
		msg, ok, err := buf.Dequeue(ctx)
		if err != nil {
			return tstypes.Wrap(tstypes.KindBufferFailure, "post-stream collection dequeue failed", err)
		}
		if !ok {
			return nil
		}
		mu.Lock()
		*out = append(*out, msg)
		mu.Unlock()
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the counters and bookkeeping from the most recently
// completed request.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return Stats{
		ProcessedMessageCount: e.lastMessageCount,
		ProcessedByteCount:    e.lastByteCount,
		DecomposedRequests:    len(e.lastDecomposed),
		RequestID:             e.lastRequestID,
	}
}

// GetProcessedMessageCount reports how many messages the last completed
// request consumed across all of its streams.
func (e *Engine) GetProcessedMessageCount() int64 { return e.Stats().ProcessedMessageCount }

// GetProcessedByteCount reports the total serialized size of those
// messages.
func (e *Engine) GetProcessedByteCount() int64 { return e.Stats().ProcessedByteCount }

// GetDecomposedRequests returns the sub-request list the last request was
// split into.
func (e *Engine) GetDecomposedRequests() []decomposer.Request {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.lastDecomposed
}

// GetRequestID returns the opaque request id of the last request.
func (e *Engine) GetRequestID() string { return e.Stats().RequestID }
