package wire

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Extended JSON representation of wire values. Object ids are rendered
// as {"$oid": "<hex>"} and binary values as {"$bin": "<base64>"} so
// that every wire kind survives a JSON round trip.

const (
	jsonObjectIDKey = "$oid"
	jsonBinaryKey   = "$bin"
)

// MarshalJSON returns the extended JSON representation of a wire value.
func MarshalJSON(value any) ([]byte, error) {
	var buf bytes.Buffer
	err := appendJSON(&buf, value)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		err = appendJSON(&buf, d.m[k])
		if err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (id ObjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{jsonObjectIDKey: id.String()})
}

func appendJSON(buf *bytes.Buffer, value any) error {
	switch t := value.(type) {
	case *Document:
		out, err := t.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(out)
	case []any:
		buf.WriteByte('[')
		for i, v := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			err := appendJSON(buf, v)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectID:
		out, err := t.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(out)
	case []byte:
		out, err := json.Marshal(map[string]string{jsonBinaryKey: base64.StdEncoding.EncodeToString(t)})
		if err != nil {
			return err
		}
		buf.Write(out)
	case nil, bool, int64, float64, string:
		out, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(out)
	default:
		return fmt.Errorf("no json encoder for %T", value)
	}
	return nil
}

// UnmarshalJSON parses the extended JSON representation of a wire value.
func UnmarshalJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeJSONValue(dec)
}

// UnmarshalDocument parses the extended JSON representation of a document.
func UnmarshalDocument(data []byte) (*Document, error) {
	value, err := UnmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	doc, ok := value.(*Document)
	if !ok {
		return nil, fmt.Errorf("expected json object, got %T", value)
	}
	return doc, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected json token %v", t)
		}
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return t.Float64()
		}
		return t.Int64()
	case string, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected json token %v", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (any, error) {
	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected json key %v", tok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, val)
	}
	_, err := dec.Token() // closing brace
	if err != nil {
		return nil, err
	}
	if doc.Len() != 1 {
		return doc, nil
	}
	if v, ok := doc.Get(jsonObjectIDKey); ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("invalid %s value %v", jsonObjectIDKey, v)
		}
		return ObjectIDFromHex(s)
	}
	if v, ok := doc.Get(jsonBinaryKey); ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("invalid %s value %v", jsonBinaryKey, v)
		}
		return base64.StdEncoding.DecodeString(s)
	}
	return doc, nil
}

func decodeJSONArray(dec *json.Decoder) (any, error) {
	value := []any{}
	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		value = append(value, v)
	}
	_, err := dec.Token() // closing bracket
	if err != nil {
		return nil, err
	}
	return value, nil
}
