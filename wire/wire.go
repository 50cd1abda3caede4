// Package wire implements the document representation and binary encoding
// used by the store protocol.
//
// A wire value is one of: nil, bool, int64, float64, string, []byte,
// ObjectID, *Document, or []any. Document keys must not contain the
// field path separator; see the client codec for key sanitization.
package wire

// PathSep separates nested field names in wire document keys.
const PathSep = "$"

// Document is an insertion-ordered mapping of field names to wire values.
type Document struct {
	keys []string
	m    map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{m: make(map[string]any)}
}

// Len returns the number of fields in the document.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the field names in insertion order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Get returns the value of the named field.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.m[key]
	return v, ok
}

// Set assigns the value of the named field. The position of an existing
// field is preserved; a new field is appended.
func (d *Document) Set(key string, value any) {
	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.m[key] = value
}

// Delete removes the named field.
func (d *Document) Delete(key string) {
	if _, ok := d.m[key]; !ok {
		return
	}
	delete(d.m, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for _, k := range d.keys {
		out.Set(k, cloneValue(d.m[k]))
	}
	return out
}

// Equal returns true if both documents contain the same fields in the
// same order with equal values.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, k := range d.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(d.m[k], other.m[k]) {
			return false
		}
	}
	return true
}

func cloneValue(value any) any {
	switch t := value.(type) {
	case *Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = cloneValue(v)
		}
		return out
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	default:
		return t
	}
}

// Equal returns true if two wire values are deeply equal.
func Equal(a, b any) bool {
	switch t := a.(type) {
	case *Document:
		doc, ok := b.(*Document)
		return ok && t.Equal(doc)
	case []any:
		list, ok := b.([]any)
		if !ok || len(list) != len(t) {
			return false
		}
		for i, v := range t {
			if !Equal(v, list[i]) {
				return false
			}
		}
		return true
	case []byte:
		other, ok := b.([]byte)
		if !ok || len(other) != len(t) {
			return false
		}
		for i, v := range t {
			if other[i] != v {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
