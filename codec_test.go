package mango

import (
	"testing"

	"github.com/nasdf/mango/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []map[string]any{
		{},
		{"name": "alice", "score": int64(42)},
		{"active": true, "ratio": float64(0.5), "none": nil},
		{"tags": []any{"a", int64(1), false}},
		{"nested": map[string]any{"deep": map[string]any{"value": "x"}}},
		{"contact.email": "a@b.c"},
		{"raw": []byte{1, 2, 3}},
	}
	for _, record := range records {
		enc, err := Encode(record)
		require.NoError(t, err)

		assert.Equal(t, map[string]any(record), Decode(enc))
	}
}

func TestEncodeSanitizesKeys(t *testing.T) {
	enc, err := Encode(map[string]any{"contact.email": "a@b.c"})
	require.NoError(t, err)

	doc := enc.(*wire.Document)
	assert.Equal(t, []string{"contact$email"}, doc.Keys())
}

func TestEncodeSymbol(t *testing.T) {
	enc, err := Encode(Symbol("score"))
	require.NoError(t, err)
	assert.Equal(t, "score", enc)
}

func TestEncodeNormalizesNumbers(t *testing.T) {
	enc, err := Encode(map[string]any{"a": 1, "b": int32(2), "c": float32(0.5)})
	require.NoError(t, err)

	doc := enc.(*wire.Document)
	a, _ := doc.Get("a")
	assert.Equal(t, int64(1), a)

	b, _ := doc.Get("b")
	assert.Equal(t, int64(2), b)

	c, _ := doc.Get("c")
	assert.Equal(t, float64(0.5), c)
}

func TestEncodeUnsupportedType(t *testing.T) {
	_, err := Encode(map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	var encodeErr *EncodeError
	require.ErrorAs(t, err, &encodeErr)
}

func TestDecodeObjectID(t *testing.T) {
	id := wire.NewObjectID()

	doc := wire.NewDocument()
	doc.Set("_id", id)
	doc.Set("ids", []any{id})

	record := DecodeDocument(doc)
	assert.Equal(t, id.String(), record["_id"])
	assert.Equal(t, []any{id.String()}, record["ids"])
}

func TestSanitizeKeyInverse(t *testing.T) {
	keys := []string{"a", "a.b", "a.b.c", ".", "..", "a.", ".a"}
	for _, key := range keys {
		assert.Equal(t, key, DesanitizeKey(SanitizeKey(key)))
	}
}

func TestSanitizeKeyAmbiguity(t *testing.T) {
	// Keys that already contain the wire separator collide with
	// sanitized keys and do not survive a round trip. This mirrors the
	// store protocol's reservation of the character; it is a documented
	// limitation, not an escaping scheme.
	assert.Equal(t, "a.b", DesanitizeKey(SanitizeKey("a$b")))
}
