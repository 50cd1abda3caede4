package mango

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nasdf/mango/wire"
)

// Symbol is an identifier literal. Symbols encode to their string form
// and are never produced by decoding.
type Symbol string

// FieldSep separates nested field names in native keys. Wire document
// keys must not contain it; Encode substitutes wire.PathSep in every
// mapping key and Decode reverses the substitution.
const FieldSep = "."

// EncodeError reports a native value the codec cannot represent.
// It indicates a programming error, not a recoverable condition.
type EncodeError struct {
	Value any
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode value of type %T", e.Value)
}

// SanitizeKey replaces every field separator in a key with the wire
// path separator.
func SanitizeKey(key string) string {
	return strings.ReplaceAll(key, FieldSep, wire.PathSep)
}

// DesanitizeKey replaces every wire path separator in a key with the
// field separator. Keys that legitimately contain the wire separator
// are ambiguous; see Encode.
func DesanitizeKey(key string) string {
	return strings.ReplaceAll(key, wire.PathSep, FieldSep)
}

// Encode converts a native value to its wire form.
//
// Mappings become wire documents with sanitized keys, slices become
// wire arrays, symbols are stringified, and all other supported
// scalars pass through unchanged. Keys that already contain the wire
// path separator are not escaped and will decode with field separators
// in their place.
func Encode(value any) (any, error) {
	switch t := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return encodeMapping(t)
	case Criteria:
		return encodeMapping(t)
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			enc, err := Encode(v)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case Symbol:
		return string(t), nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case string, bool, int64, float64, []byte, wire.ObjectID:
		return t, nil
	default:
		return nil, &EncodeError{Value: value}
	}
}

func encodeMapping(value map[string]any) (*wire.Document, error) {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	doc := wire.NewDocument()
	for _, k := range keys {
		v, err := Encode(value[k])
		if err != nil {
			return nil, err
		}
		doc.Set(SanitizeKey(k), v)
	}
	return doc, nil
}

// EncodeDocument converts a native record to a wire document.
func EncodeDocument(value map[string]any) (*wire.Document, error) {
	return encodeMapping(value)
}

// Decode converts a wire value to its native form.
//
// Wire documents become mappings with desanitized keys, wire arrays
// become slices, object ids are stringified, and all other scalars
// pass through unchanged. Decode is total over well formed wire values.
func Decode(value any) any {
	switch t := value.(type) {
	case *wire.Document:
		return DecodeDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = Decode(v)
		}
		return out
	case wire.ObjectID:
		return t.String()
	default:
		return t
	}
}

// DecodeDocument converts a wire document to a native record.
func DecodeDocument(doc *wire.Document) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, doc.Len())
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		out[DesanitizeKey(k)] = Decode(v)
	}
	return out
}
