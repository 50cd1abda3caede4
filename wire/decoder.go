package wire

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{bufio.NewReader(r)}
}

func (d *Decoder) Decode() (any, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	err = d.r.UnreadByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case kindNull:
		return nil, d.DecodeNull()
	case kindDocument:
		return d.DecodeDocument()
	case kindArray:
		return d.DecodeArray()
	case kindObjectID:
		return d.DecodeObjectID()
	case kindBinary:
		return d.DecodeBinary()
	case kindString:
		return d.DecodeString()
	case kindInt64:
		return d.DecodeInt64()
	case kindFloat64:
		return d.DecodeFloat64()
	case kindBool:
		return d.DecodeBool()
	default:
		return nil, fmt.Errorf("invalid codec kind %x", kind)
	}
}

func (d *Decoder) DecodeNull() error {
	kind, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	if kind != kindNull {
		return fmt.Errorf("unexpected codec kind %x", kind)
	}
	return nil
}

func (d *Decoder) DecodeDocument() (*Document, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind != kindDocument {
		return nil, fmt.Errorf("unexpected codec kind %x", kind)
	}
	size, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	for i := 0; i < int(size); i++ {
		k, err := d.DecodeString()
		if err != nil {
			return nil, err
		}
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		doc.Set(k, v)
	}
	return doc, nil
}

func (d *Decoder) DecodeArray() ([]any, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind != kindArray {
		return nil, fmt.Errorf("unexpected codec kind %x", kind)
	}
	size, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	value := make([]any, size)
	for i := 0; i < int(size); i++ {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		value[i] = v
	}
	return value, nil
}

func (d *Decoder) DecodeObjectID() (ObjectID, error) {
	var id ObjectID
	kind, err := d.r.ReadByte()
	if err != nil {
		return id, err
	}
	if kind != kindObjectID {
		return id, fmt.Errorf("unexpected codec kind %x", kind)
	}
	_, err = io.ReadFull(d.r, id[:])
	return id, err
}

func (d *Decoder) DecodeBinary() ([]byte, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind != kindBinary {
		return nil, fmt.Errorf("unexpected codec kind %x", kind)
	}
	size, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	value := make([]byte, size)
	_, err = io.ReadFull(d.r, value)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (d *Decoder) DecodeString() (string, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return "", err
	}
	if kind != kindString {
		return "", fmt.Errorf("unexpected codec kind %x", kind)
	}
	size, err := d.readUint64()
	if err != nil {
		return "", err
	}
	value := make([]byte, size)
	_, err = io.ReadFull(d.r, value)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (d *Decoder) DecodeInt64() (int64, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if kind != kindInt64 {
		return 0, fmt.Errorf("unexpected codec kind %x", kind)
	}
	value, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	return int64(value), nil
}

func (d *Decoder) DecodeFloat64() (float64, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if kind != kindFloat64 {
		return 0, fmt.Errorf("unexpected codec kind %x", kind)
	}
	value, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(value), nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	kind, err := d.r.ReadByte()
	if err != nil {
		return false, err
	}
	if kind != kindBool {
		return false, fmt.Errorf("unexpected codec kind %x", kind)
	}
	value, err := d.r.ReadByte()
	if err != nil {
		return false, err
	}
	return value != 0, nil
}

func (d *Decoder) readUint64() (uint64, error) {
	result := uint64(0)
	for i := 0; i < 8; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b) << (i * 8)
	}
	return result, nil
}
