package wire

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

func TestMessageRoundTrip_Clock(t *testing.T) {
	key := tstypes.NewClockKey(0, 1_000_000_000, 3)
	cols := []tstypes.DataColumn{
		{SourceName: "A", Type: tstypes.TypeFloat64, Values: []any{1.0, 2.0, 3.0}},
		{SourceName: "B", Type: tstypes.TypeInt32, Values: []any{int32(1), int32(2), int32(3)}},
	}
	msg := tstypes.NewMessage(key, cols, 0)

	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !got.TimingKey().Equal(key) {
		t.Fatalf("key mismatch: got %v want %v", got.TimingKey(), key)
	}
	if len(got.Columns()) != 2 {
		t.Fatalf("column count = %d, want 2", len(got.Columns()))
	}
	if got.Columns()[0].Values[1].(float64) != 2.0 {
		t.Fatalf("value mismatch: %v", got.Columns()[0].Values)
	}
}

func TestMessageRoundTrip_ExplicitList(t *testing.T) {
	key := tstypes.NewExplicitListKey([]int64{5, 1, 3})
	cols := []tstypes.DataColumn{
		{SourceName: "S", Type: tstypes.TypeString, Values: []any{"x", "y", "z"}},
	}
	msg := tstypes.NewMessage(key, cols, 0)

	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !got.TimingKey().Equal(key) {
		t.Fatalf("key mismatch: got %v want %v", got.TimingKey(), key)
	}
}

func TestReadMessage_EOFAtFrameBoundary(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ReadMessage(&buf); err != io.EOF {
		t.Fatalf("expected io.EOF on empty reader, got %v", err)
	}
}

func TestReadMessage_InvalidMagic(t *testing.T) {
	buf := bytes.NewBufferString("XXXX")
	if _, err := ReadMessage(buf); err != ErrInvalidMagic {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	sub := decomposer.Request{Sources: []string{"A", "B"}, TimeRange: tstypes.NewTimeInterval(0, 100)}
	var buf bytes.Buffer
	if err := WriteRequest(&buf, sub); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	got, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "A" || got.TimeRange.End != 100 {
		t.Fatalf("request mismatch: %+v", got)
	}
}

func TestMemoryDialerStreamSource(t *testing.T) {
	respond := func(sub decomposer.Request) ([]tstypes.ResponseMessage, error) {
		key := tstypes.NewClockKey(0, 1_000_000_000, 2)
		return []tstypes.ResponseMessage{
			tstypes.NewMessage(key, []tstypes.DataColumn{
				{SourceName: sub.Sources[0], Type: tstypes.TypeInt64, Values: []any{int64(1), int64(2)}},
			}, 0),
		}, nil
	}
	dialer := &MemoryDialer{Respond: respond}
	source := NewStreamSource(dialer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sub := decomposer.Request{Sources: []string{"A"}, TimeRange: tstypes.NewTimeInterval(0, 1)}
	stream, err := source.OpenStream(context.Background(), sub)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer stream.Close()

	msg, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Columns()[0].SourceName != "A" {
		t.Fatalf("unexpected column: %+v", msg.Columns()[0])
	}

	if _, err := stream.Next(context.Background()); err != io.EOF {
		t.Fatalf("expected io.EOF after single message, got %v", err)
	}
}
