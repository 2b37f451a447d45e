// Package msgbuffer implements the bounded, blocking FIFO of decoded
// ResponseMessages that sits between the Channel's parallel streams and the
// Correlator, plus the Channel contract that drives it.
package msgbuffer

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

// State is one of the MessageBuffer's four lifecycle states.
type State int

const (
	StateIdle State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// maxEnqueueBurst caps the token-bucket burst so a single fast stream
// cannot reserve the whole capacity ahead of its siblings.
const maxEnqueueBurst = 256

// Stats is a snapshot of buffer occupancy and throughput counters.
type Stats struct {
	State         State
	Capacity      int
	InFlight      int
	TotalEnqueued int64
	TotalDrained  int64
	TotalBytes    int64
}

// MessageBuffer is a bounded blocking FIFO of ResponseMessage with an
// explicit idle/active/draining/closed lifecycle. Implemented
// as a guarded slice rather than a native channel: native channels cannot
// be safely closed while concurrent sends may still be in flight, and
// this buffer's draining/shutdownNow transitions need exactly that.
type MessageBuffer struct {
	capacity int
	logger   *slog.Logger
	limiter  *rate.Limiter

	mu    sync.Mutex
	cond  *sync.Cond
	state State
	queue []tstypes.ResponseMessage

	totalEnqueued int64
	totalDrained  int64
	totalBytes    int64
}

// New builds an idle MessageBuffer of the given capacity. If
// enqueueRateLimit is <= 0, enqueue is unthrottled.
func New(capacity int, enqueueRateLimit float64, logger *slog.Logger) *MessageBuffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &MessageBuffer{
		capacity: capacity,
		logger:   logger,
		state:    StateIdle,
		queue:    make([]tstypes.ResponseMessage, 0, capacity),
	}
	b.cond = sync.NewCond(&b.mu)
	if enqueueRateLimit > 0 {
		burst := maxEnqueueBurst
		if burst > capacity {
			burst = capacity
		}
		b.limiter = rate.NewLimiter(rate.Limit(enqueueRateLimit), burst)
	}
	return b
}

// Activate transitions idle -> active. Returns a KindInvalidState error if
// the buffer is not idle.
func (b *MessageBuffer) Activate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateIdle {
		return tstypes.NewError(tstypes.KindInvalidState,
			"activate: buffer must be idle, is "+b.state.String())
	}
	b.state = StateActive
	b.logger.Debug("message buffer activated", "capacity", b.capacity)
	return nil
}

// State reports the buffer's current lifecycle state.
func (b *MessageBuffer) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// watchCancel broadcasts on the buffer's condition variable when ctx is
// cancelled, waking any goroutine blocked in cond.Wait so it can recheck
// ctx.Err(). The returned stop func must be called once the caller's own
// wait loop exits, to release the watcher goroutine.
func (b *MessageBuffer) watchCancel(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.cond.Broadcast()
			b.mu.Unlock()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Enqueue blocks until there is room, the buffer closes, or ctx is
// cancelled, then appends msg. Returns an error if the buffer is not
// active or the context is cancelled first.
func (b *MessageBuffer) Enqueue(ctx context.Context, msg tstypes.ResponseMessage) error {
	if b.limiter != nil {
		if err := b.limiter.WaitN(ctx, 1); err != nil {
			return tstypes.Wrap(tstypes.KindCancelled, "enqueue: rate limiter wait", err)
		}
	}

	stop := b.watchCancel(ctx)
	defer stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	for b.state == StateActive && len(b.queue) >= b.capacity {
		if err := ctx.Err(); err != nil {
			return tstypes.Wrap(tstypes.KindCancelled, "enqueue: context cancelled", err)
		}
		b.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return tstypes.Wrap(tstypes.KindCancelled, "enqueue: context cancelled", err)
	}
	if b.state != StateActive {
		return tstypes.NewError(tstypes.KindInvalidState,
			"enqueue: buffer is not active, is "+b.state.String())
	}
	b.queue = append(b.queue, msg)
	b.totalEnqueued++
	b.totalBytes += msg.SizeBytes()
	b.cond.Broadcast()
	return nil
}

// Dequeue blocks until a message is available, the buffer is closed and
// empty, or ctx is cancelled. ok is false only when the buffer is closed
// and drained.
func (b *MessageBuffer) Dequeue(ctx context.Context) (msg tstypes.ResponseMessage, ok bool, err error) {
	stop := b.watchCancel(ctx)
	defer stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) == 0 && b.state != StateClosed {
		if cerr := ctx.Err(); cerr != nil {
			return nil, false, tstypes.Wrap(tstypes.KindCancelled, "dequeue: context cancelled", cerr)
		}
		b.cond.Wait()
	}
	if len(b.queue) == 0 {
		return nil, false, nil
	}
	m := b.queue[0]
	b.queue = b.queue[1:]
	b.totalDrained++
	if b.state == StateDraining && len(b.queue) == 0 {
		b.state = StateClosed
	}
	b.cond.Broadcast()
	return m, true, nil
}

// IsClosedAndEmpty reports whether the buffer has reached the closed
// state with nothing left to drain, the condition the Correlator's
// transfer task waits for.
func (b *MessageBuffer) IsClosedAndEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateClosed && len(b.queue) == 0
}

// Shutdown transitions active -> draining, blocks until every enqueued
// message has been dequeued, then -> closed. Safe to call once per
// activation.
func (b *MessageBuffer) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return
	}
	b.state = StateDraining
	if len(b.queue) == 0 {
		b.state = StateClosed
	}
	b.cond.Broadcast()
	for b.state != StateClosed {
		b.cond.Wait()
	}
}

// ShutdownNow forces closed from any state, discarding undelivered
// messages. Used on stream failure or cancellation.
func (b *MessageBuffer) ShutdownNow() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return
	}
	b.state = StateClosed
	b.queue = nil
	b.cond.Broadcast()
}

// Stats returns a snapshot of buffer occupancy and throughput.
func (b *MessageBuffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:         b.state,
		Capacity:      b.capacity,
		InFlight:      len(b.queue),
		TotalEnqueued: b.totalEnqueued,
		TotalDrained:  b.totalDrained,
		TotalBytes:    b.totalBytes,
	}
}
