package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/voltaicdb/tscore/internal/decomposer"
	"github.com/voltaicdb/tscore/internal/tstypes"
)

// WriteRequest writes a sub-request descriptor frame (Client → Server):
// [Magic 4B][Version 1B][SourceCount uint32][sources...][Start int64][End int64].
func WriteRequest(w io.Writer, sub decomposer.Request) error {
	if _, err := w.Write(MagicRequest[:]); err != nil {
		return fmt.Errorf("writing request magic: %w", err)
	}
	if _, err := w.Write([]byte{FrameVersion}); err != nil {
		return fmt.Errorf("writing request version: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(sub.Sources))); err != nil {
		return fmt.Errorf("writing source count: %w", err)
	}
	for _, name := range sub.Sources {
		if err := writeString(w, name); err != nil {
			return fmt.Errorf("writing source name: %w", err)
		}
	}
	if err := binary.Write(w, binary.BigEndian, sub.TimeRange.Start); err != nil {
		return fmt.Errorf("writing request start: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, sub.TimeRange.End); err != nil {
		return fmt.Errorf("writing request end: %w", err)
	}
	return nil
}

// WriteMessage writes one ResponseMessage frame (Server → Client):
// [Magic 4B][Version 1B][KeyKind 1B][key fields...][NumColumns uint32][columns...].
func WriteMessage(w io.Writer, msg tstypes.ResponseMessage) error {
	if _, err := w.Write(MagicMessage[:]); err != nil {
		return fmt.Errorf("writing message magic: %w", err)
	}
	if _, err := w.Write([]byte{FrameVersion}); err != nil {
		return fmt.Errorf("writing message version: %w", err)
	}

	key := msg.TimingKey()
	if err := writeKey(w, key); err != nil {
		return err
	}

	cols := msg.Columns()
	if err := binary.Write(w, binary.BigEndian, uint32(len(cols))); err != nil {
		return fmt.Errorf("writing column count: %w", err)
	}
	for _, c := range cols {
		if err := writeColumn(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeKey(w io.Writer, key tstypes.TimingKey) error {
	switch key.Kind() {
	case tstypes.KindClock:
		if _, err := w.Write([]byte{wireKindClock}); err != nil {
			return fmt.Errorf("writing key kind: %w", err)
		}
		start, period, count := key.Clock()
		if err := binary.Write(w, binary.BigEndian, start); err != nil {
			return fmt.Errorf("writing clock start: %w", err)
		}
		if err := binary.Write(w, binary.BigEndian, period); err != nil {
			return fmt.Errorf("writing clock period: %w", err)
		}
		if err := binary.Write(w, binary.BigEndian, uint32(count)); err != nil {
			return fmt.Errorf("writing clock count: %w", err)
		}
	default:
		if _, err := w.Write([]byte{wireKindExplicitList}); err != nil {
			return fmt.Errorf("writing key kind: %w", err)
		}
		ts := key.ExplicitTimestamps()
		if err := binary.Write(w, binary.BigEndian, uint32(len(ts))); err != nil {
			return fmt.Errorf("writing explicit count: %w", err)
		}
		for _, t := range ts {
			if err := binary.Write(w, binary.BigEndian, t); err != nil {
				return fmt.Errorf("writing explicit timestamp: %w", err)
			}
		}
	}
	return nil
}

func writeColumn(w io.Writer, c tstypes.DataColumn) error {
	if err := writeString(w, c.SourceName); err != nil {
		return fmt.Errorf("writing column name: %w", err)
	}
	wireType, err := toWireType(c.Type)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte{wireType}); err != nil {
		return fmt.Errorf("writing column type: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(c.Values))); err != nil {
		return fmt.Errorf("writing column value count: %w", err)
	}
	for _, v := range c.Values {
		if err := writeValue(w, c.Type, v); err != nil {
			return fmt.Errorf("writing column %q value: %w", c.SourceName, err)
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func toWireType(t tstypes.SupportedType) (byte, error) {
	switch t {
	case tstypes.TypeBool:
		return wireTypeBool, nil
	case tstypes.TypeByteArray:
		return wireTypeByteArray, nil
	case tstypes.TypeInt32:
		return wireTypeInt32, nil
	case tstypes.TypeInt64:
		return wireTypeInt64, nil
	case tstypes.TypeFloat32:
		return wireTypeFloat32, nil
	case tstypes.TypeFloat64:
		return wireTypeFloat64, nil
	case tstypes.TypeString:
		return wireTypeString, nil
	default:
		return 0, ErrUnsupportedType
	}
}

func writeValue(w io.Writer, t tstypes.SupportedType, v any) error {
	switch t {
	case tstypes.TypeBool:
		b := byte(0)
		if v.(bool) {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case tstypes.TypeByteArray:
		buf := v.([]byte)
		if err := binary.Write(w, binary.BigEndian, uint32(len(buf))); err != nil {
			return err
		}
		_, err := w.Write(buf)
		return err
	case tstypes.TypeInt32:
		return binary.Write(w, binary.BigEndian, v.(int32))
	case tstypes.TypeInt64:
		return binary.Write(w, binary.BigEndian, v.(int64))
	case tstypes.TypeFloat32:
		return binary.Write(w, binary.BigEndian, math.Float32bits(v.(float32)))
	case tstypes.TypeFloat64:
		return binary.Write(w, binary.BigEndian, math.Float64bits(v.(float64)))
	case tstypes.TypeString:
		return writeString(w, v.(string))
	default:
		return ErrUnsupportedType
	}
}
