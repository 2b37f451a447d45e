package wire

import (
	"context"
	"io"
	"net"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// ResponderFunc produces the canned messages a demo/test server sends
// back for one decoded sub-request.
type ResponderFunc func(sub decomposer.Request) ([]tstypes.ResponseMessage, error)

// MemoryDialer is an in-process Dialer backed by net.Pipe: each Dial call
// spins up a goroutine that reads the request frame off one pipe end,
// looks up a canned response via Respond, and streams it back frame by
// frame. It never touches a socket, which makes it suitable for
// integration tests and cmd/tscore-demo without a real listener.
type MemoryDialer struct {
	Respond ResponderFunc
}

func (m *MemoryDialer) Dial(ctx context.Context, sub decomposer.Request) (io.ReadWriteCloser, error) {
	clientConn, serverConn := net.Pipe()

	go func() {
		defer serverConn.Close()

		req, err := ReadRequest(serverConn)
		if err != nil {
			return
		}
		msgs, err := m.Respond(req)
		if err != nil {
			return
		}
		for _, msg := range msgs {
			if err := WriteMessage(serverConn, msg); err != nil {
				return
			}
		}
	}()

	return clientConn, nil
}
