package mango

import (
	"context"
	"testing"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/store/memory"
	"github.com/nasdf/mango/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts the remote calls issued through it.
type countingStore struct {
	inner  store.Store
	finds  int
	counts int
}

func (s *countingStore) Collection(db, name string) store.Collection {
	return &countingCollection{Collection: s.inner.Collection(db, name), store: s}
}

func (s *countingStore) Close() error {
	return s.inner.Close()
}

type countingCollection struct {
	store.Collection
	store *countingStore
}

func (c *countingCollection) Find(ctx context.Context, query store.Query) (store.Cursor, error) {
	c.store.finds++
	return c.Collection.Find(ctx, query)
}

func (c *countingCollection) Count(ctx context.Context, criteria *wire.Document) (int64, error) {
	c.store.counts++
	return c.Collection.Count(ctx, criteria)
}

func TestCursorLaziness(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{inner: memory.New()}
	client := Open(counting, Config{})
	players := client.Database("test").Collection("players")

	cursor := players.FindAll(nil).OrderBy("name").Limit(10).Skip(2)
	assert.Equal(t, 0, counting.finds)
	assert.Equal(t, 0, counting.counts)

	stream, err := cursor.Observe(ctx)
	require.NoError(t, err)
	defer stream.Close()
	assert.Equal(t, 1, counting.finds)

	_, err = cursor.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.counts)
}

func TestCursorObserveIssuesFreshCall(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{inner: memory.New()}
	client := Open(counting, Config{})
	players := client.Database("test").Collection("players")

	_, err := players.Insert(ctx,
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	)
	require.NoError(t, err)

	cursor := players.FindAll(nil)

	first, err := cursor.All(ctx)
	require.NoError(t, err)

	second, err := cursor.All(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, counting.finds)
	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
}

func TestCursorTransformsDoNotShareState(t *testing.T) {
	client := Open(memory.New(), Config{})
	players := client.Database("test").Collection("players")

	base := players.FindAll(nil).OrderBy("a")
	byScore := base.OrderBy(Desc("score"))
	limited := base.Limit(5)

	assert.Equal(t, []SortKey{Asc("a")}, base.sort)
	assert.Equal(t, []SortKey{Asc("a"), Desc("score")}, byScore.sort)
	assert.Equal(t, int64(0), base.limit)
	assert.Equal(t, int64(5), limited.limit)
}

func TestCursorSortSpecOrder(t *testing.T) {
	client := Open(memory.New(), Config{})
	players := client.Database("test").Collection("players")

	query, err := players.FindAll(nil).OrderBy("a", Desc("b")).query()
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b"}, query.Sort.Keys())

	a, _ := query.Sort.Get("a")
	assert.Equal(t, int64(1), a)

	b, _ := query.Sort.Get("b")
	assert.Equal(t, int64(-1), b)
}

func TestCursorOrderByMapEntry(t *testing.T) {
	client := Open(memory.New(), Config{})
	players := client.Database("test").Collection("players")

	query, err := players.FindAll(nil).OrderBy(map[string]any{"score": -1}).query()
	require.NoError(t, err)

	dir, _ := query.Sort.Get("score")
	assert.Equal(t, int64(-1), dir)
}

func TestCursorOrderByInvalidKey(t *testing.T) {
	ctx := context.Background()
	client := Open(memory.New(), Config{})
	players := client.Database("test").Collection("players")

	_, err := players.FindAll(nil).OrderBy(42).Observe(ctx)
	require.Error(t, err)
}

func TestStreamReleasesCursor(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	client := Open(engine, Config{})
	players := client.Database("test").Collection("players")

	_, err := players.Insert(ctx,
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	)
	require.NoError(t, err)

	// draining the stream closes the remote cursor
	docs, err := players.FindAll(nil).All(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 0, engine.OpenCursors())

	// abandoning a stream requires an explicit close
	stream, err := players.FindAll(nil).Observe(ctx)
	require.NoError(t, err)
	require.True(t, stream.Next(ctx))
	assert.Equal(t, 1, engine.OpenCursors())

	require.NoError(t, stream.Close())
	assert.Equal(t, 0, engine.OpenCursors())
}
