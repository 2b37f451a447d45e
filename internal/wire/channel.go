package wire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/msgbuffer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// Dialer opens one transport connection per sub-request. A real
// deployment implements this over TLS+TCP; tests and cmd/tscore-demo
// may implement it over net.Pipe or any io.ReadWriteCloser.
type Dialer interface {
	Dial(ctx context.Context, sub decomposer.Request) (io.ReadWriteCloser, error)
}

// DialerFunc adapts a plain function to Dialer.
type DialerFunc func(ctx context.Context, sub decomposer.Request) (io.ReadWriteCloser, error)

func (f DialerFunc) Dial(ctx context.Context, sub decomposer.Request) (io.ReadWriteCloser, error) {
	return f(ctx, sub)
}

// StreamSource implements msgbuffer.StreamSource on top of this package's
// frame codec: each stream writes one request frame, then decodes
// ResponseMessage frames until the connection reports io.EOF.
type StreamSource struct {
	dialer Dialer
	logger *slog.Logger
}

// NewStreamSource builds a wire-backed StreamSource.
func NewStreamSource(dialer Dialer, logger *slog.Logger) *StreamSource {
	return &StreamSource{dialer: dialer, logger: logger}
}

func (s *StreamSource) OpenStream(ctx context.Context, sub decomposer.Request) (msgbuffer.MessageStream, error) {
	conn, err := s.dialer.Dial(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("dialing stream: %w", err)
	}
	if err := WriteRequest(conn, sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("writing request frame: %w", err)
	}
	return &frameStream{conn: conn, r: bufio.NewReader(conn), logger: s.logger}, nil
}

// frameStream adapts a connection's inbound frames to msgbuffer.MessageStream.
type frameStream struct {
	conn   io.Closer
	r      *bufio.Reader
	logger *slog.Logger
}

func (fs *frameStream) Next(ctx context.Context) (tstypes.ResponseMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msg, err := ReadMessage(fs.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decoding message frame: %w", err)
	}
	return msg, nil
}

func (fs *frameStream) Close() error {
	return fs.conn.Close()
}
