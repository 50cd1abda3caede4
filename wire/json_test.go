package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Set("_id", NewObjectID())
	doc.Set("name", "alice")
	doc.Set("score", int64(42))
	doc.Set("ratio", float64(0.5))
	doc.Set("active", true)
	doc.Set("raw", []byte{1, 2, 3})
	doc.Set("tags", []any{"a", "b"})
	doc.Set("none", nil)

	sub := NewDocument()
	sub.Set("city", "berlin")
	doc.Set("address", sub)

	data, err := MarshalJSON(doc)
	require.NoError(t, err)

	actual, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(actual))
}

func TestMarshalJSONPreservesOrder(t *testing.T) {
	doc := NewDocument()
	doc.Set("z", int64(1))
	doc.Set("a", int64(2))

	data, err := MarshalJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(data))
}

func TestUnmarshalJSONNumbers(t *testing.T) {
	value, err := UnmarshalJSON([]byte(`{"int": 5, "float": 2.5, "exp": 1e3}`))
	require.NoError(t, err)

	doc := value.(*Document)
	i, _ := doc.Get("int")
	assert.Equal(t, int64(5), i)

	f, _ := doc.Get("float")
	assert.Equal(t, float64(2.5), f)

	e, _ := doc.Get("exp")
	assert.Equal(t, float64(1000), e)
}

func TestUnmarshalJSONObjectID(t *testing.T) {
	id := NewObjectID()
	value, err := UnmarshalJSON([]byte(`{"$oid": "` + id.String() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, id, value)
}

func TestUnmarshalDocumentRejectsScalar(t *testing.T) {
	_, err := UnmarshalDocument([]byte(`"test"`))
	require.Error(t, err)
}
