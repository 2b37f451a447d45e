// Package wire is a reference frame codec for tstypes.ResponseMessage:
// magic bytes, fixed binary headers, encoding/binary payloads. The core
// engine treats the wire format as an opaque external concern; this
// codec exists so cmd/tscore-demo and the integration tests have a
// runnable Channel to drive the engine with. Servers are free to speak
// any other format behind their own msgbuffer.StreamSource.
package wire

import "errors"

// MagicRequest identifies a sub-request descriptor frame (Client → Server).
var MagicRequest = [4]byte{'T', 'S', 'R', 'Q'}

// MagicMessage identifies a ResponseMessage frame (Server → Client).
var MagicMessage = [4]byte{'T', 'S', 'M', 'S'}

// FrameVersion is the current wire format version.
const FrameVersion byte = 0x01

// Key-kind tags on the wire, independent of tstypes.TimingKeyKind's
// in-memory representation.
const (
	wireKindClock        byte = 0x00
	wireKindExplicitList byte = 0x01
)

// Value-type tags on the wire, independent of tstypes.SupportedType's
// in-memory ordering.
const (
	wireTypeBool      byte = 0x00
	wireTypeByteArray byte = 0x01
	wireTypeInt32     byte = 0x02
	wireTypeInt64     byte = 0x03
	wireTypeFloat32   byte = 0x04
	wireTypeFloat64   byte = 0x05
	wireTypeString    byte = 0x06
)

var (
	ErrInvalidMagic       = errors.New("wire: invalid magic bytes")
	ErrInvalidVersion     = errors.New("wire: unsupported frame version")
	ErrUnsupportedType    = errors.New("wire: unsupported column type on wire")
	ErrValueCountMismatch = errors.New("wire: column value count does not match declared length")
)
