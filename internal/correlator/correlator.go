// Package correlator groups a stream of ResponseMessages into
// CorrelatedBlocks keyed by TimingKey, in sequential or concurrent mode.
package correlator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/voltaicdb/tscore/internal/msgbuffer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// entry pairs a CorrelatedBlock with the mutex that serializes column
// appends to it under concurrent correlation.
type entry struct {
	mu    sync.Mutex
	block *tstypes.CorrelatedBlock
}

// Config tunes a Correlator's concurrency behavior.
type Config struct {
	// ConcurrencyEnabled switches the Correlator to its sharded,
	// lock-guarded insertion path and lets RunTransferTask run up to
	// MaxThreads concurrent drainers. When false the Correlator always
	// runs its unguarded sequential path with a single drainer.
	ConcurrencyEnabled bool
	// PivotSize is the distinct-key-count threshold past which
	// RunTransferTask escalates from a single drainer to the full
	// MaxThreads pool.
	PivotSize     int
	MaxThreads    int
	VerifyEnabled bool
}

// shardCount is the fixed number of mutex-guarded sub-maps the
// concurrent insertion path spreads keys across, selected by
// TimingKey.Hash() % shardCount.
const shardCount = 32

// shard is one mutex-guarded sub-map of the correlator's key->block
// table.
type shard struct {
	mu      sync.Mutex
	buckets map[uint64][]*entry
}

// Correlator accumulates CorrelatedBlocks from a push-model stream of
// ResponseMessages. Both concurrency modes share the same sharded
// storage; sequential mode simply skips acquiring the shard mutex,
// which is safe because it assumes a single caller. The mode is fixed by
// Config.ConcurrencyEnabled for the Correlator's lifetime; crossing the
// pivot only adds drainers in RunTransferTask.
type Correlator struct {
	cfg    Config
	logger *slog.Logger

	shards   [shardCount]*shard
	keyCount int64 // atomic: number of distinct keys seen
}

// New builds an empty Correlator.
func New(cfg Config, logger *slog.Logger) *Correlator {
	if cfg.MaxThreads < 1 {
		cfg.MaxThreads = 1
	}
	c := &Correlator{cfg: cfg, logger: logger}
	for i := range c.shards {
		c.shards[i] = &shard{buckets: make(map[uint64][]*entry)}
	}
	return c
}

// Reset discards all correlated state, returning the Correlator to a
// clean slate. Called at the start of every request.
func (c *Correlator) Reset() {
	for i := range c.shards {
		c.shards[i] = &shard{buckets: make(map[uint64][]*entry)}
	}
	atomic.StoreInt64(&c.keyCount, 0)
}

// concurrentPath reports whether the guarded insertion path should be
// used for the next Process call. Locking is always taken when
// concurrency is enabled at all: correctness requires it the moment
// RunTransferTask has more than one drainer goroutine calling Process.
// PivotSize instead gates when RunTransferTask starts those extra
// drainers, so a request whose correlated-key count never reaches
// PivotSize runs with a single drainer and pays no guarded-path
// contention in practice.
func (c *Correlator) concurrentPath() bool {
	return c.cfg.ConcurrencyEnabled
}

// Process applies the per-message correlation step
// for a single ResponseMessage: locate or create the block for its
// timing key, then append each column not already present under
// first-writer-wins. A message whose key describes no timestamps at all
// cannot be placed; with verification enabled, neither can one whose
// column lengths disagree with the key's sample count.
func (c *Correlator) Process(m tstypes.ResponseMessage) error {
	key := m.TimingKey()
	if key.Count() == 0 {
		return tstypes.NewError(tstypes.KindTimingMissing,
			"message carries neither a clock nor a timestamp list")
	}
	if c.cfg.VerifyEnabled {
		for _, col := range m.Columns() {
			if len(col.Values) != key.Count() {
				return tstypes.NewError(tstypes.KindSizeMismatch,
					fmt.Sprintf("column %q has length %d, want %d for key %s",
						col.SourceName, len(col.Values), key.Count(), key))
			}
		}
	}
	if c.concurrentPath() {
		return c.processConcurrent(m)
	}
	return c.processSequential(m)
}

// processSequential assumes a single caller and performs no locking.
func (c *Correlator) processSequential(m tstypes.ResponseMessage) error {
	key := m.TimingKey()
	h := key.Hash()
	sh := c.shards[h%shardCount]

	e, created := findOrCreateIn(sh.buckets, h, key)
	if created {
		atomic.AddInt64(&c.keyCount, 1)
	}
	applyColumns(e.block, m.Columns())
	return nil
}

// processConcurrent guards find-or-create within the key's shard mutex (a
// short critical section) and serializes per-block column appends with
// the entry's own mutex, so concurrent callers never race on the same
// block.
func (c *Correlator) processConcurrent(m tstypes.ResponseMessage) error {
	key := m.TimingKey()
	h := key.Hash()
	sh := c.shards[h%shardCount]

	sh.mu.Lock()
	e, created := findOrCreateIn(sh.buckets, h, key)
	if created {
		atomic.AddInt64(&c.keyCount, 1)
	}
	sh.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	applyColumns(e.block, m.Columns())
	return nil
}

// findOrCreateIn looks up key in buckets[h] or creates a new entry,
// reporting whether it created one. Callers hold whatever lock (if any)
// their mode requires before calling this.
func findOrCreateIn(buckets map[uint64][]*entry, h uint64, key tstypes.TimingKey) (e *entry, created bool) {
	for _, e := range buckets[h] {
		if e.block.Key.Equal(key) {
			return e, false
		}
	}
	e = &entry{block: tstypes.NewCorrelatedBlock(key)}
	buckets[h] = append(buckets[h], e)
	return e, true
}

// applyColumns appends each column not already present in b, under
// first-writer-wins.
func applyColumns(b *tstypes.CorrelatedBlock, cols []tstypes.DataColumn) {
	for _, col := range cols {
		if b.HasSource(col.SourceName) {
			continue
		}
		b.AddColumn(col)
	}
}

// Blocks returns every correlated block, ordered by start time.
func (c *Correlator) Blocks() []*tstypes.CorrelatedBlock {
	out := make([]*tstypes.CorrelatedBlock, 0, atomic.LoadInt64(&c.keyCount))
	for _, sh := range c.shards {
		sh.mu.Lock()
		for _, bucket := range sh.buckets {
			for _, e := range bucket {
				out = append(out, e.block)
			}
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime() < out[j].StartTime() })
	return out
}

// Verify checks every correlated block's invariants when
// Config.VerifyEnabled is set; a no-op otherwise. Returns the first
// violation found.
func (c *Correlator) Verify() error {
	if !c.cfg.VerifyEnabled {
		return nil
	}
	for _, b := range c.Blocks() {
		if err := b.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// RunTransferTask drains buf, applying Process to every message, until
// buf reports closed and empty or ctx is cancelled. It starts with a
// single drainer goroutine; when Config.ConcurrencyEnabled is set and
// the distinct-key count crosses PivotSize, the remaining MaxThreads-1
// drainers are started. Returns the first error from either a drainer
// or Process.
func (c *Correlator) RunTransferTask(ctx context.Context, buf *msgbuffer.MessageBuffer) error {
	maxWorkers := 1
	if c.cfg.ConcurrencyEnabled && c.cfg.MaxThreads > 1 {
		maxWorkers = c.cfg.MaxThreads
	}

	var wg sync.WaitGroup
	errCh := make(chan error, maxWorkers)
	var escalated atomic.Bool

	spawnRest := func() {
		if maxWorkers == 1 || !escalated.CompareAndSwap(false, true) {
			return
		}
		c.logger.Debug("correlator escalating to concurrent drain",
			"workers", maxWorkers, "keys", atomic.LoadInt64(&c.keyCount))
		for i := 1; i < maxWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errCh <- c.drainLoop(ctx, buf, nil)
			}()
		}
	}

	pivotCheck := func() {
		if atomic.LoadInt64(&c.keyCount) > int64(c.cfg.PivotSize) {
			spawnRest()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- c.drainLoop(ctx, buf, pivotCheck)
	}()
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// drainLoop dequeues until the buffer is closed and empty. afterEach, if
// non-nil, runs after every processed message; the first drainer uses it
// to watch the key count for pivot escalation.
func (c *Correlator) drainLoop(ctx context.Context, buf *msgbuffer.MessageBuffer, afterEach func()) error {
	for {
		msg, ok, err := buf.Dequeue(ctx)
		if err != nil {
			return tstypes.Wrap(tstypes.KindCorrelationFailure, "transfer task dequeue failed", err)
		}
		if !ok {
			return nil
		}
		if err := c.Process(msg); err != nil {
			return err
		}
		if afterEach != nil {
			afterEach()
		}
	}
}
