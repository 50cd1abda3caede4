package mango

// Criteria is a native mapping of field names to predicate conditions.
// It is encoded through the same codec as documents before it is sent
// to the store.
type Criteria map[string]any

// Where merges predicate fragments into one criteria mapping. The merge
// is shallow: when two fragments target the same field the later one
// wins. Compound range predicates on a single field must be expressed
// within one fragment, e.g. Criteria{"score": map[string]any{"$gt": 1,
// "$lt": 5}}.
func Where(fragments ...Criteria) Criteria {
	out := Criteria{}
	for _, f := range fragments {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

func fragment(field, op string, value any) Criteria {
	return Criteria{field: map[string]any{op: value}}
}

// Eq matches fields equal to the given value.
func Eq(field string, value any) Criteria {
	return fragment(field, "$eq", value)
}

// Ne matches fields not equal to the given value.
func Ne(field string, value any) Criteria {
	return fragment(field, "$ne", value)
}

// Gt matches fields greater than the given value.
func Gt(field string, value any) Criteria {
	return fragment(field, "$gt", value)
}

// Gte matches fields greater than or equal to the given value.
func Gte(field string, value any) Criteria {
	return fragment(field, "$gte", value)
}

// Lt matches fields less than the given value.
func Lt(field string, value any) Criteria {
	return fragment(field, "$lt", value)
}

// Lte matches fields less than or equal to the given value.
func Lte(field string, value any) Criteria {
	return fragment(field, "$lte", value)
}

// Not negates the conditions of a single field fragment.
func Not(pred Criteria) Criteria {
	out := Criteria{}
	for field, cond := range pred {
		out[field] = map[string]any{"$not": cond}
	}
	return out
}

// Mod matches numeric fields whose remainder after division by divisor
// equals remainder.
func Mod(field string, divisor, remainder int64) Criteria {
	return fragment(field, "$mod", []any{divisor, remainder})
}

// All matches array fields containing every given value.
func All(field string, values ...any) Criteria {
	return fragment(field, "$all", values)
}

// In matches fields equal to any of the given values.
func In(field string, values ...any) Criteria {
	return fragment(field, "$in", values)
}

// Nin matches fields equal to none of the given values.
func Nin(field string, values ...any) Criteria {
	return fragment(field, "$nin", values)
}

// Exists matches documents that have the given field.
func Exists(field string) Criteria {
	return fragment(field, "$exists", true)
}

// NotExists matches documents that lack the given field.
func NotExists(field string) Criteria {
	return fragment(field, "$exists", false)
}
