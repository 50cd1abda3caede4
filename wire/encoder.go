package wire

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{bufio.NewWriter(w)}
}

func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func (e *Encoder) Encode(value any) error {
	switch t := value.(type) {
	case nil:
		return e.EncodeNull()
	case *Document:
		return e.EncodeDocument(t)
	case []any:
		return e.EncodeArray(t)
	case ObjectID:
		return e.EncodeObjectID(t)
	case []byte:
		return e.EncodeBinary(t)
	case string:
		return e.EncodeString(t)
	case int64:
		return e.EncodeInt64(t)
	case float64:
		return e.EncodeFloat64(t)
	case bool:
		return e.EncodeBool(t)
	default:
		return fmt.Errorf("no encoder for %T", value)
	}
}

func (e *Encoder) EncodeNull() error {
	return e.w.WriteByte(kindNull)
}

func (e *Encoder) EncodeDocument(value *Document) error {
	err := e.w.WriteByte(kindDocument)
	if err != nil {
		return err
	}
	err = e.writeUint64(uint64(value.Len()))
	if err != nil {
		return err
	}
	for _, k := range value.keys {
		err := e.EncodeString(k)
		if err != nil {
			return err
		}
		err = e.Encode(value.m[k])
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) EncodeArray(value []any) error {
	err := e.w.WriteByte(kindArray)
	if err != nil {
		return err
	}
	err = e.writeUint64(uint64(len(value)))
	if err != nil {
		return err
	}
	for _, v := range value {
		err := e.Encode(v)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) EncodeObjectID(value ObjectID) error {
	err := e.w.WriteByte(kindObjectID)
	if err != nil {
		return err
	}
	_, err = e.w.Write(value[:])
	return err
}

func (e *Encoder) EncodeBinary(value []byte) error {
	err := e.w.WriteByte(kindBinary)
	if err != nil {
		return err
	}
	err = e.writeUint64(uint64(len(value)))
	if err != nil {
		return err
	}
	_, err = e.w.Write(value)
	return err
}

func (e *Encoder) EncodeString(value string) error {
	err := e.w.WriteByte(kindString)
	if err != nil {
		return err
	}
	err = e.writeUint64(uint64(len(value)))
	if err != nil {
		return err
	}
	_, err = e.w.Write([]byte(value))
	return err
}

func (e *Encoder) EncodeInt64(value int64) error {
	err := e.w.WriteByte(kindInt64)
	if err != nil {
		return err
	}
	return e.writeUint64(uint64(value))
}

func (e *Encoder) EncodeFloat64(value float64) error {
	err := e.w.WriteByte(kindFloat64)
	if err != nil {
		return err
	}
	return e.writeUint64(math.Float64bits(value))
}

func (e *Encoder) EncodeBool(value bool) error {
	err := e.w.WriteByte(kindBool)
	if err != nil {
		return err
	}
	if value {
		return e.w.WriteByte(1)
	}
	return e.w.WriteByte(0)
}

func (e *Encoder) writeUint64(value uint64) error {
	for i := 0; i < 8; i++ {
		err := e.w.WriteByte(byte(value >> (i * 8)))
		if err != nil {
			return err
		}
	}
	return nil
}
