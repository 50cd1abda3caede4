package sift

import (
	"bytes"
	"sort"
	"strings"

	"github.com/nasdf/mango/wire"
)

// Sort orders documents in place according to a sort specification.
// Earlier specification keys take precedence; a positive direction is
// ascending and a negative direction is descending. Documents missing
// a sort field order before documents that have it.
func Sort(docs []*wire.Document, spec *wire.Document) {
	if spec == nil || spec.Len() == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, field := range spec.Keys() {
			dir := int64(1)
			if d, ok := spec.Get(field); ok {
				if n, ok := asInt64(d); ok {
					dir = n
				}
			}
			a, aok := Lookup(docs[i], field)
			b, bok := Lookup(docs[j], field)
			if !aok || !bok {
				if aok == bok {
					continue
				}
				return aok == (dir < 0)
			}
			cmp, ok := Compare(a, b)
			if !ok || cmp == 0 {
				continue
			}
			if dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// Compare orders two wire scalars. The second result is false when the
// values are not comparable.
func Compare(a, b any) (int, bool) {
	if af, ok := asFloat64(a); ok {
		bf, ok := asFloat64(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(at, bt), true
	case bool:
		bt, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case at == bt:
			return 0, true
		case bt:
			return -1, true
		default:
			return 1, true
		}
	case wire.ObjectID:
		bt, ok := b.(wire.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(at[:], bt[:]), true
	default:
		return 0, false
	}
}

// Project applies a projection to a document, returning a new document.
// When any projection value is truthy only the listed fields and the
// identifier are kept; otherwise the listed fields are removed.
func Project(doc, projection *wire.Document) *wire.Document {
	if projection == nil || projection.Len() == 0 {
		return doc
	}
	include := false
	for _, k := range projection.Keys() {
		v, _ := projection.Get(k)
		if truthy(v) {
			include = true
			break
		}
	}
	if !include {
		out := doc.Clone()
		for _, k := range projection.Keys() {
			out.Delete(k)
		}
		return out
	}
	out := wire.NewDocument()
	if id, ok := doc.Get("_id"); ok {
		out.Set("_id", id)
	}
	for _, k := range projection.Keys() {
		v, _ := projection.Get(k)
		if !truthy(v) {
			continue
		}
		if value, ok := Lookup(doc, k); ok {
			out.Set(k, value)
		}
	}
	return out
}

func asFloat64(value any) (float64, bool) {
	switch t := value.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func truthy(value any) bool {
	switch t := value.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
