package sift

import (
	"testing"

	"github.com/nasdf/mango/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(pairs ...any) *wire.Document {
	out := wire.NewDocument()
	for i := 0; i < len(pairs); i += 2 {
		out.Set(pairs[i].(string), pairs[i+1])
	}
	return out
}

func TestMatchImplicitEqual(t *testing.T) {
	d := doc("name", "alice", "score", int64(42))

	match, err := Match(d, doc("name", "alice"))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("name", "bob"))
	require.NoError(t, err)
	assert.False(t, match)

	match, err = Match(d, nil)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestMatchOperators(t *testing.T) {
	d := doc("score", int64(5), "tags", []any{"a", "b", "c"})

	tests := []struct {
		name     string
		criteria *wire.Document
		expect   bool
	}{
		{"eq", doc("score", doc("$eq", int64(5))), true},
		{"eq miss", doc("score", doc("$eq", int64(6))), false},
		{"ne", doc("score", doc("$ne", int64(6))), true},
		{"ne miss", doc("score", doc("$ne", int64(5))), false},
		{"gt", doc("score", doc("$gt", int64(4))), true},
		{"gt equal", doc("score", doc("$gt", int64(5))), false},
		{"gte equal", doc("score", doc("$gte", int64(5))), true},
		{"lt", doc("score", doc("$lt", int64(6))), true},
		{"lte equal", doc("score", doc("$lte", int64(5))), true},
		{"lt miss", doc("score", doc("$lt", int64(5))), false},
		{"float compare", doc("score", doc("$gt", float64(4.5))), true},
		{"in", doc("score", doc("$in", []any{int64(1), int64(5)})), true},
		{"in miss", doc("score", doc("$in", []any{int64(1)})), false},
		{"nin", doc("score", doc("$nin", []any{int64(1)})), true},
		{"nin miss", doc("score", doc("$nin", []any{int64(5)})), false},
		{"exists", doc("score", doc("$exists", true)), true},
		{"exists miss", doc("missing", doc("$exists", true)), false},
		{"not exists", doc("missing", doc("$exists", false)), true},
		{"mod", doc("score", doc("$mod", []any{int64(3), int64(2)})), true},
		{"mod miss", doc("score", doc("$mod", []any{int64(3), int64(1)})), false},
		{"not", doc("score", doc("$not", doc("$gt", int64(10)))), true},
		{"not miss", doc("score", doc("$not", doc("$gt", int64(1)))), false},
		{"all", doc("tags", doc("$all", []any{"a", "c"})), true},
		{"all miss", doc("tags", doc("$all", []any{"a", "z"})), false},
		{"range", doc("score", doc("$gt", int64(1), "$lt", int64(10))), true},
		{"range miss", doc("score", doc("$gt", int64(1), "$lt", int64(5))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := Match(d, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, match)
		})
	}
}

func TestMatchMissingFieldComparisons(t *testing.T) {
	d := doc("name", "alice")

	match, err := Match(d, doc("score", doc("$gt", int64(1))))
	require.NoError(t, err)
	assert.False(t, match)

	// a missing field is never equal and never in a set
	match, err = Match(d, doc("score", doc("$ne", int64(1))))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("score", doc("$nin", []any{int64(1)})))
	require.NoError(t, err)
	assert.True(t, match)
}

func TestMatchUnknownOperator(t *testing.T) {
	_, err := Match(doc("a", int64(1)), doc("a", doc("$nope", int64(1))))
	require.Error(t, err)
}

func TestMatchObjectIDHexForm(t *testing.T) {
	id := wire.NewObjectID()
	d := doc("_id", id)

	// an object id matches its hex string form in either position
	match, err := Match(d, doc("_id", id.String()))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("_id", doc("$eq", id.String())))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("_id", doc("$in", []any{id.String()})))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(doc("_id", id.String()), doc("_id", id))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("_id", wire.NewObjectID().String()))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestMatchNestedPath(t *testing.T) {
	d := doc("address", doc("city", "berlin"))

	match, err := Match(d, doc("address$city", "berlin"))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Match(d, doc("address$city", "oslo"))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestMatchExactKeyBeforePath(t *testing.T) {
	// a literal key containing the separator shadows path traversal
	d := doc("a$b", int64(1), "a", doc("b", int64(2)))

	value, ok := Lookup(d, "a$b")
	require.True(t, ok)
	assert.Equal(t, int64(1), value)
}

func TestSort(t *testing.T) {
	docs := []*wire.Document{
		doc("name", "a", "score", int64(1)),
		doc("name", "b", "score", int64(3)),
		doc("name", "c", "score", int64(2)),
	}
	Sort(docs, doc("score", int64(-1)))

	names := make([]string, len(docs))
	for i, d := range docs {
		v, _ := d.Get("name")
		names[i] = v.(string)
	}
	assert.Equal(t, []string{"b", "c", "a"}, names)
}

func TestSortMultipleKeys(t *testing.T) {
	docs := []*wire.Document{
		doc("a", int64(1), "b", int64(2)),
		doc("a", int64(2), "b", int64(1)),
		doc("a", int64(1), "b", int64(1)),
	}
	Sort(docs, doc("a", int64(1), "b", int64(1)))

	first, _ := docs[0].Get("b")
	assert.Equal(t, int64(1), first)

	last, _ := docs[2].Get("a")
	assert.Equal(t, int64(2), last)
}

func TestProjectInclude(t *testing.T) {
	d := doc("_id", "x", "name", "a", "secret", "s")
	out := Project(d, doc("name", int64(1)))

	assert.Equal(t, []string{"_id", "name"}, out.Keys())
}

func TestProjectExclude(t *testing.T) {
	d := doc("_id", "x", "name", "a", "secret", "s")
	out := Project(d, doc("secret", int64(0)))

	assert.Equal(t, []string{"_id", "name"}, out.Keys())
}

func TestCompareMixedTypes(t *testing.T) {
	_, ok := Compare("a", int64(1))
	assert.False(t, ok)

	cmp, ok := Compare(int64(1), float64(1.5))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = Compare(false, true)
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}
