package msgbuffer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/voltaicdb/tscore/internal/tstypes"
)

func newBufTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessage(ts int64) tstypes.Message {
	key := tstypes.NewClockKey(ts, 1, 1)
	return tstypes.NewMessage(key, nil, 8)
}

func TestMessageBuffer_ActivateFailsWhenNotIdle(t *testing.T) {
	b := New(4, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if err := b.Activate(); err == nil {
		t.Fatal("second activate should fail, buffer is no longer idle")
	} else if !tstypes.IsKind(err, tstypes.KindInvalidState) {
		t.Errorf("expected KindInvalidState, got %v", err)
	}
}

func TestMessageBuffer_EnqueueDequeueOrder(t *testing.T) {
	b := New(4, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		if err := b.Enqueue(ctx, testMessage(i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	for i := int64(0); i < 3; i++ {
		m, ok, err := b.Dequeue(ctx)
		if err != nil || !ok {
			t.Fatalf("dequeue %d: ok=%v err=%v", i, ok, err)
		}
		if m.TimingKey().StartTime() != i {
			t.Errorf("expected FIFO order, got start=%d at position %d", m.TimingKey().StartTime(), i)
		}
	}
}

func TestMessageBuffer_EnqueueBlocksWhenFull(t *testing.T) {
	b := New(1, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()

	if err := b.Enqueue(ctx, testMessage(0)); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	blocked := make(chan error, 1)
	go func() {
		blocked <- b.Enqueue(ctx, testMessage(1))
	}()

	select {
	case <-blocked:
		t.Fatal("enqueue should have blocked on a full buffer")
	case <-time.After(50 * time.Millisecond):
	}

	if _, _, err := b.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}

	select {
	case err := <-blocked:
		if err != nil {
			t.Fatalf("blocked enqueue returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue did not unblock after space freed")
	}
}

func TestMessageBuffer_ShutdownDrainsThenCloses(t *testing.T) {
	b := New(4, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()
	if err := b.Enqueue(ctx, testMessage(0)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		b.Shutdown()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if _, _, err := b.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete after draining")
	}

	if b.State() != StateClosed {
		t.Errorf("expected state closed after shutdown, got %v", b.State())
	}
	if !b.IsClosedAndEmpty() {
		t.Error("expected IsClosedAndEmpty true after shutdown")
	}

	if _, ok, err := b.Dequeue(ctx); ok || err != nil {
		t.Errorf("dequeue on closed empty buffer should return ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}

func TestMessageBuffer_ShutdownNowDiscardsPending(t *testing.T) {
	b := New(4, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	ctx := context.Background()
	if err := b.Enqueue(ctx, testMessage(0)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	b.ShutdownNow()

	if b.State() != StateClosed {
		t.Errorf("expected closed, got %v", b.State())
	}
	if _, ok, _ := b.Dequeue(ctx); ok {
		t.Error("expected pending message to be discarded by ShutdownNow")
	}
}

func TestMessageBuffer_EnqueueBeforeActivateFails(t *testing.T) {
	b := New(4, 0, newBufTestLogger())
	if err := b.Enqueue(context.Background(), testMessage(0)); err == nil {
		t.Fatal("expected enqueue on idle buffer to fail")
	} else if !tstypes.IsKind(err, tstypes.KindInvalidState) {
		t.Errorf("expected KindInvalidState, got %v", err)
	}
}

func TestMessageBuffer_EnqueueRespectsContextCancellation(t *testing.T) {
	b := New(1, 0, newBufTestLogger())
	if err := b.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := b.Enqueue(context.Background(), testMessage(0)); err != nil {
		t.Fatalf("fill buffer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Enqueue(ctx, testMessage(1))
	if err == nil {
		t.Fatal("expected enqueue to fail once context deadline passes")
	}
	if !tstypes.IsKind(err, tstypes.KindCancelled) {
		t.Errorf("expected KindCancelled, got %v", err)
	}
}
