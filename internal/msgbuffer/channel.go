package msgbuffer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// MessageStream yields decoded ResponseMessages for one sub-request's
// server stream. Next returns io.EOF once the stream is exhausted. The
// concrete implementation (the wire codec, a test double, …) is an
// external collaborator the Channel never constructs itself.
type MessageStream interface {
	Next(ctx context.Context) (tstypes.ResponseMessage, error)
	Close() error
}

// StreamSource opens one MessageStream per decomposed sub-request. This is
// the seam between the core engine and whatever transport/codec decodes
// server frames; the wire format stays opaque to the core.
type StreamSource interface {
	OpenStream(ctx context.Context, sub decomposer.Request) (MessageStream, error)
}

// Channel drives up to maxStreams concurrent server streams and feeds
// their decoded messages into a MessageBuffer.
type Channel struct {
	source     StreamSource
	maxStreams int
	logger     *slog.Logger
}

// NewChannel builds a Channel backed by source, bounding concurrent
// streams to maxStreams.
func NewChannel(source StreamSource, maxStreams int, logger *slog.Logger) *Channel {
	if maxStreams < 1 {
		maxStreams = 1
	}
	return &Channel{source: source, maxStreams: maxStreams, logger: logger}
}

// RecoverRequests opens up to min(len(subs), maxStreams) concurrent
// streams, one per sub-request, enqueuing every decoded message to buf.
// It returns the total message count once all streams complete. On any
// stream failure it cancels the remaining streams, force-closes buf, and
// propagates a single failure to the caller.
func (c *Channel) RecoverRequests(ctx context.Context, subs []decomposer.Request, buf *MessageBuffer) (int, error) {
	if len(subs) == 0 {
		return 0, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, c.maxStreams)
	var wg sync.WaitGroup
	var messageCount int64
	var firstErr error
	var errOnce sync.Once

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
			buf.ShutdownNow()
		})
	}

	for i, sub := range subs {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, sub decomposer.Request) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := c.runStream(runCtx, idx, sub, buf)
			atomic.AddInt64(&messageCount, int64(n))
			if err != nil {
				fail(tstypes.Wrap(tstypes.KindStreamFailure, "stream failed", err))
			}
		}(i, sub)
	}

	wg.Wait()

	if firstErr != nil {
		return int(messageCount), firstErr
	}
	return int(messageCount), nil
}

// runStream consumes one sub-request's stream to completion, enqueuing
// each decoded message. Cancellation is cooperative: the flag is observed
// between frames and at every enqueue.
func (c *Channel) runStream(ctx context.Context, idx int, sub decomposer.Request, buf *MessageBuffer) (int, error) {
	stream, err := c.source.OpenStream(ctx, sub)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		msg, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			c.logger.Error("stream read failed", "stream_index", idx, "error", err)
			return count, err
		}

		if err := buf.Enqueue(ctx, msg); err != nil {
			return count, err
		}
		count++
	}
}
