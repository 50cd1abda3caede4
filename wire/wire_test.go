package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSetPreservesOrder(t *testing.T) {
	doc := NewDocument()
	doc.Set("b", int64(1))
	doc.Set("a", int64(2))
	doc.Set("b", int64(3))

	assert.Equal(t, []string{"b", "a"}, doc.Keys())

	v, ok := doc.Get("b")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestDocumentDelete(t *testing.T) {
	doc := NewDocument()
	doc.Set("a", int64(1))
	doc.Set("b", int64(2))
	doc.Set("c", int64(3))
	doc.Delete("b")
	doc.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, doc.Keys())
	assert.Equal(t, 2, doc.Len())
}

func TestDocumentClone(t *testing.T) {
	sub := NewDocument()
	sub.Set("x", int64(1))

	doc := NewDocument()
	doc.Set("sub", sub)
	doc.Set("list", []any{int64(1)})

	clone := doc.Clone()
	sub.Set("x", int64(2))

	v, ok := clone.Get("sub")
	require.True(t, ok)

	x, ok := v.(*Document).Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), x)
}

func TestDocumentEqual(t *testing.T) {
	a := NewDocument()
	a.Set("x", int64(1))
	a.Set("y", "z")

	b := NewDocument()
	b.Set("x", int64(1))
	b.Set("y", "z")

	c := NewDocument()
	c.Set("y", "z")
	c.Set("x", int64(1))

	assert.True(t, a.Equal(b))
	// same fields, different order
	assert.False(t, a.Equal(c))
}

func TestObjectIDUnique(t *testing.T) {
	seen := make(map[ObjectID]struct{})
	for i := 0; i < 1000; i++ {
		id := NewObjectID()
		_, ok := seen[id]
		require.False(t, ok)
		seen[id] = struct{}{}
	}
}

func TestObjectIDHexRoundTrip(t *testing.T) {
	id := NewObjectID()
	assert.Len(t, id.String(), 24)

	parsed, err := ObjectIDFromHex(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestObjectIDFromHexInvalid(t *testing.T) {
	_, err := ObjectIDFromHex("nope")
	require.Error(t, err)

	_, err = ObjectIDFromHex("zzzzzzzzzzzzzzzzzzzzzzzz")
	require.Error(t, err)
}

func TestObjectIDIsZero(t *testing.T) {
	assert.True(t, ObjectID{}.IsZero())
	assert.False(t, NewObjectID().IsZero())
}
