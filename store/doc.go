package store

import (
	"github.com/nasdf/mango/wire"
)

// WithID returns a copy of the document with the identifier field in
// first position, assigning a new object id when the field is absent
// or holds a zero object id. A hex string identifier is restored to its
// object id form, so a decoded record saved back keeps the stored type.
func WithID(doc *wire.Document) *wire.Document {
	id, ok := doc.Get(IDField)
	if !ok {
		id = wire.NewObjectID()
	}
	if s, ok := id.(string); ok {
		oid, err := wire.ObjectIDFromHex(s)
		if err == nil {
			id = oid
		}
	}
	if oid, ok := id.(wire.ObjectID); ok && oid.IsZero() {
		id = wire.NewObjectID()
	}
	out := wire.NewDocument()
	out.Set(IDField, id)
	for _, k := range doc.Keys() {
		if k == IDField {
			continue
		}
		v, _ := doc.Get(k)
		out.Set(k, v)
	}
	return out.Clone()
}

// IDKey returns the string form of an identifier value, used by engines
// to key stored documents.
func IDKey(id any) string {
	switch t := id.(type) {
	case wire.ObjectID:
		return t.String()
	case string:
		return t
	default:
		data, err := wire.MarshalJSON(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
