// Package sift evaluates wire criteria documents against wire documents.
// It implements the operator vocabulary shared by the reference engines:
// $eq, $ne, $gt, $gte, $lt, $lte, $in, $nin, $exists, $not, $mod, and
// $all. A criteria field with a non-operator value is an implicit
// equality match.
package sift

import (
	"fmt"
	"strings"

	"github.com/nasdf/mango/wire"
)

const (
	equalOp          = "$eq"
	notEqualOp       = "$ne"
	greaterOp        = "$gt"
	greaterOrEqualOp = "$gte"
	lessOp           = "$lt"
	lessOrEqualOp    = "$lte"
	inOp             = "$in"
	notInOp          = "$nin"
	existsOp         = "$exists"
	notOp            = "$not"
	modOp            = "$mod"
	allOp            = "$all"

	operatorPrefix = "$"
)

// Match returns true if the document satisfies every field condition in
// the criteria. A nil or empty criteria matches everything.
func Match(doc, criteria *wire.Document) (bool, error) {
	if criteria == nil {
		return true, nil
	}
	for _, field := range criteria.Keys() {
		cond, _ := criteria.Get(field)
		match, err := matchField(doc, field, cond)
		if err != nil || !match {
			return false, err
		}
	}
	return true, nil
}

func matchField(doc *wire.Document, field string, cond any) (bool, error) {
	value, exists := Lookup(doc, field)
	ops, ok := operatorDocument(cond)
	if !ok {
		return exists && equal(value, cond), nil
	}
	return matchOperators(value, exists, ops)
}

// equal reports wire value equality, additionally equating an object id
// with its hex string form so decoded identifiers match stored ones.
func equal(a, b any) bool {
	if wire.Equal(a, b) {
		return true
	}
	if id, ok := a.(wire.ObjectID); ok {
		s, ok := b.(string)
		return ok && id.String() == s
	}
	if id, ok := b.(wire.ObjectID); ok {
		s, ok := a.(string)
		return ok && id.String() == s
	}
	return false
}

func matchOperators(value any, exists bool, ops *wire.Document) (bool, error) {
	for _, op := range ops.Keys() {
		arg, _ := ops.Get(op)
		switch op {
		case equalOp:
			if !exists || !equal(value, arg) {
				return false, nil
			}
		case notEqualOp:
			if exists && equal(value, arg) {
				return false, nil
			}
		case greaterOp:
			cmp, ok := Compare(value, arg)
			if !exists || !ok || cmp <= 0 {
				return false, nil
			}
		case greaterOrEqualOp:
			cmp, ok := Compare(value, arg)
			if !exists || !ok || cmp < 0 {
				return false, nil
			}
		case lessOp:
			cmp, ok := Compare(value, arg)
			if !exists || !ok || cmp >= 0 {
				return false, nil
			}
		case lessOrEqualOp:
			cmp, ok := Compare(value, arg)
			if !exists || !ok || cmp > 0 {
				return false, nil
			}
		case inOp:
			match, err := matchIn(value, arg)
			if err != nil || !exists || !match {
				return false, err
			}
		case notInOp:
			match, err := matchIn(value, arg)
			if err != nil || (exists && match) {
				return false, err
			}
		case existsOp:
			want, ok := arg.(bool)
			if !ok {
				return false, fmt.Errorf("invalid %s argument %v", existsOp, arg)
			}
			if exists != want {
				return false, nil
			}
		case notOp:
			sub, ok := operatorDocument(arg)
			if !ok {
				return false, fmt.Errorf("invalid %s argument %v", notOp, arg)
			}
			match, err := matchOperators(value, exists, sub)
			if err != nil || match {
				return false, err
			}
		case modOp:
			match, err := matchMod(value, arg)
			if err != nil || !exists || !match {
				return false, err
			}
		case allOp:
			match, err := matchAll(value, arg)
			if err != nil || !exists || !match {
				return false, err
			}
		default:
			return false, fmt.Errorf("unknown operator: %s", op)
		}
	}
	return true, nil
}

func matchIn(value, arg any) (bool, error) {
	list, ok := arg.([]any)
	if !ok {
		return false, fmt.Errorf("invalid %s argument %v", inOp, arg)
	}
	for _, v := range list {
		if equal(value, v) {
			return true, nil
		}
	}
	return false, nil
}

func matchMod(value, arg any) (bool, error) {
	list, ok := arg.([]any)
	if !ok || len(list) != 2 {
		return false, fmt.Errorf("invalid %s argument %v", modOp, arg)
	}
	div, ok := asInt64(list[0])
	if !ok || div == 0 {
		return false, fmt.Errorf("invalid %s divisor %v", modOp, list[0])
	}
	rem, ok := asInt64(list[1])
	if !ok {
		return false, fmt.Errorf("invalid %s remainder %v", modOp, list[1])
	}
	num, ok := asInt64(value)
	if !ok {
		return false, nil
	}
	return num%div == rem, nil
}

func matchAll(value, arg any) (bool, error) {
	want, ok := arg.([]any)
	if !ok {
		return false, fmt.Errorf("invalid %s argument %v", allOp, arg)
	}
	have, ok := value.([]any)
	if !ok {
		return false, nil
	}
	for _, w := range want {
		found := false
		for _, h := range have {
			if equal(w, h) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// operatorDocument returns the condition as an operator document if
// every key begins with the operator prefix.
func operatorDocument(cond any) (*wire.Document, bool) {
	doc, ok := cond.(*wire.Document)
	if !ok || doc.Len() == 0 {
		return nil, false
	}
	for _, k := range doc.Keys() {
		if !strings.HasPrefix(k, operatorPrefix) {
			return nil, false
		}
	}
	return doc, true
}

// Lookup returns the value of a field, traversing nested documents when
// the field name contains the wire path separator and no top level field
// matches it exactly.
func Lookup(doc *wire.Document, field string) (any, bool) {
	if v, ok := doc.Get(field); ok {
		return v, true
	}
	if !strings.Contains(field, wire.PathSep) {
		return nil, false
	}
	var value any = doc
	for _, part := range strings.Split(field, wire.PathSep) {
		sub, ok := value.(*wire.Document)
		if !ok {
			return nil, false
		}
		value, ok = sub.Get(part)
		if !ok {
			return nil, false
		}
	}
	return value, true
}

func asInt64(value any) (int64, bool) {
	switch t := value.(type) {
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return 0, false
	default:
		return 0, false
	}
}
