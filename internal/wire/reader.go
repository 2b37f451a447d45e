package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// ReadRequest reads a sub-request descriptor frame written by WriteRequest.
func ReadRequest(r io.Reader) (decomposer.Request, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return decomposer.Request{}, fmt.Errorf("reading request magic: %w", err)
	}
	if magic != MagicRequest {
		return decomposer.Request{}, ErrInvalidMagic
	}
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return decomposer.Request{}, fmt.Errorf("reading request version: %w", err)
	}
	if version[0] != FrameVersion {
		return decomposer.Request{}, ErrInvalidVersion
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return decomposer.Request{}, fmt.Errorf("reading source count: %w", err)
	}
	sources := make([]string, count)
	for i := range sources {
		s, err := readString(r)
		if err != nil {
			return decomposer.Request{}, fmt.Errorf("reading source name: %w", err)
		}
		sources[i] = s
	}

	var start, end int64
	if err := binary.Read(r, binary.BigEndian, &start); err != nil {
		return decomposer.Request{}, fmt.Errorf("reading request start: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &end); err != nil {
		return decomposer.Request{}, fmt.Errorf("reading request end: %w", err)
	}

	return decomposer.Request{Sources: sources, TimeRange: tstypes.NewTimeInterval(start, end)}, nil
}

// ReadMessage reads one ResponseMessage frame written by WriteMessage. It
// returns io.EOF unmodified when the underlying reader is exhausted
// before a new frame's magic bytes, so callers can use it directly as a
// MessageStream.Next implementation.
func ReadMessage(r io.Reader) (tstypes.Message, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		if err == io.EOF {
			return tstypes.Message{}, io.EOF
		}
		return tstypes.Message{}, fmt.Errorf("reading message magic: %w", err)
	}
	if magic != MagicMessage {
		return tstypes.Message{}, ErrInvalidMagic
	}
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return tstypes.Message{}, fmt.Errorf("reading message version: %w", err)
	}
	if version[0] != FrameVersion {
		return tstypes.Message{}, ErrInvalidVersion
	}

	key, err := readKey(r)
	if err != nil {
		return tstypes.Message{}, err
	}

	var numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return tstypes.Message{}, fmt.Errorf("reading column count: %w", err)
	}
	cols := make([]tstypes.DataColumn, numCols)
	for i := range cols {
		c, err := readColumn(r)
		if err != nil {
			return tstypes.Message{}, err
		}
		cols[i] = c
	}

	return tstypes.NewMessage(key, cols, 0), nil
}

func readKey(r io.Reader) (tstypes.TimingKey, error) {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return tstypes.TimingKey{}, fmt.Errorf("reading key kind: %w", err)
	}
	switch kind[0] {
	case wireKindClock:
		var start, period int64
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &start); err != nil {
			return tstypes.TimingKey{}, fmt.Errorf("reading clock start: %w", err)
		}
		if err := binary.Read(r, binary.BigEndian, &period); err != nil {
			return tstypes.TimingKey{}, fmt.Errorf("reading clock period: %w", err)
		}
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return tstypes.TimingKey{}, fmt.Errorf("reading clock count: %w", err)
		}
		return tstypes.NewClockKey(start, period, int(count)), nil
	case wireKindExplicitList:
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return tstypes.TimingKey{}, fmt.Errorf("reading explicit count: %w", err)
		}
		ts := make([]int64, count)
		for i := range ts {
			if err := binary.Read(r, binary.BigEndian, &ts[i]); err != nil {
				return tstypes.TimingKey{}, fmt.Errorf("reading explicit timestamp: %w", err)
			}
		}
		return tstypes.NewExplicitListKey(ts), nil
	default:
		return tstypes.TimingKey{}, ErrInvalidMagic
	}
}

func readColumn(r io.Reader) (tstypes.DataColumn, error) {
	name, err := readString(r)
	if err != nil {
		return tstypes.DataColumn{}, fmt.Errorf("reading column name: %w", err)
	}
	var wireType [1]byte
	if _, err := io.ReadFull(r, wireType[:]); err != nil {
		return tstypes.DataColumn{}, fmt.Errorf("reading column type: %w", err)
	}
	typ, err := fromWireType(wireType[0])
	if err != nil {
		return tstypes.DataColumn{}, err
	}
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return tstypes.DataColumn{}, fmt.Errorf("reading column value count: %w", err)
	}
	values := make([]any, count)
	for i := range values {
		v, err := readValue(r, typ)
		if err != nil {
			return tstypes.DataColumn{}, fmt.Errorf("reading column %q value: %w", name, err)
		}
		values[i] = v
	}
	return tstypes.DataColumn{SourceName: name, Type: typ, Values: values}, nil
}

func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func fromWireType(b byte) (tstypes.SupportedType, error) {
	switch b {
	case wireTypeBool:
		return tstypes.TypeBool, nil
	case wireTypeByteArray:
		return tstypes.TypeByteArray, nil
	case wireTypeInt32:
		return tstypes.TypeInt32, nil
	case wireTypeInt64:
		return tstypes.TypeInt64, nil
	case wireTypeFloat32:
		return tstypes.TypeFloat32, nil
	case wireTypeFloat64:
		return tstypes.TypeFloat64, nil
	case wireTypeString:
		return tstypes.TypeString, nil
	default:
		return tstypes.TypeUnsupported, ErrUnsupportedType
	}
}

func readValue(r io.Reader, t tstypes.SupportedType) (any, error) {
	switch t {
	case tstypes.TypeBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return b[0] != 0, nil
	case tstypes.TypeByteArray:
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tstypes.TypeInt32:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tstypes.TypeInt64:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return v, err
	case tstypes.TypeFloat32:
		var bits uint32
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float32frombits(bits), nil
	case tstypes.TypeFloat64:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil
	case tstypes.TypeString:
		return readString(r)
	default:
		return nil, ErrUnsupportedType
	}
}
