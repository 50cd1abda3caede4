// Package memory implements an in-memory document store engine.
//
// The engine is primarily used for tests and examples. Cursors snapshot
// their result set at find time, so concurrent writes never affect an
// open cursor.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/store/sift"
	"github.com/nasdf/mango/wire"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	cursors     mapset.Set[string]
}

type collection struct {
	ids       []string
	docs      map[string]*wire.Document
	indexes   map[string]*wire.Document
	validator *gojsonschema.Schema
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		cursors:     mapset.NewSet[string](),
	}
}

func (s *Store) Collection(db, name string) store.Collection {
	return &handle{store: s, key: db + "." + name}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]*collection)
	s.cursors.Clear()
	return nil
}

// OpenCursors returns the number of cursors that have not been closed.
func (s *Store) OpenCursors() int {
	return s.cursors.Cardinality()
}

// SetValidator attaches a JSON schema to a collection. Documents written
// to the collection must validate against it.
func (s *Store) SetValidator(db, name, schemaJSON string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(db + "." + name).validator = schema
	return nil
}

// get returns the named collection, creating it if needed. The caller
// must hold the write lock.
func (s *Store) get(key string) *collection {
	col, ok := s.collections[key]
	if !ok {
		col = &collection{
			docs:    make(map[string]*wire.Document),
			indexes: make(map[string]*wire.Document),
		}
		s.collections[key] = col
	}
	return col
}

type handle struct {
	store *Store
	key   string
}

func (h *handle) InsertOrReplace(ctx context.Context, doc *wire.Document) (*wire.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := store.WithID(doc)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	col := h.store.get(h.key)
	if col.validator != nil {
		err := validate(col.validator, stored)
		if err != nil {
			return nil, err
		}
	}
	id, _ := stored.Get(store.IDField)
	key := store.IDKey(id)
	if _, ok := col.docs[key]; !ok {
		col.ids = append(col.ids, key)
	}
	col.docs[key] = stored
	return stored.Clone(), nil
}

func (h *handle) Find(ctx context.Context, query store.Query) (store.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := h.match(query)
	if err != nil {
		return nil, err
	}
	cur := &cursor{id: uuid.NewString(), store: h.store, docs: docs}
	h.store.cursors.Add(cur.id)
	return cur, nil
}

func (h *handle) FindOne(ctx context.Context, query store.Query) (*wire.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query.Limit = 1
	docs, err := h.match(query)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (h *handle) Remove(ctx context.Context, criteria *wire.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	col, ok := h.store.collections[h.key]
	if !ok {
		return nil
	}
	kept := col.ids[:0]
	for _, id := range col.ids {
		match, err := sift.Match(col.docs[id], criteria)
		if err != nil {
			return err
		}
		if match {
			delete(col.docs, id)
		} else {
			kept = append(kept, id)
		}
	}
	col.ids = kept
	return nil
}

func (h *handle) Count(ctx context.Context, criteria *wire.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	col, ok := h.store.collections[h.key]
	if !ok {
		return 0, nil
	}
	count := int64(0)
	for _, id := range col.ids {
		match, err := sift.Match(col.docs[id], criteria)
		if err != nil {
			return 0, err
		}
		if match {
			count++
		}
	}
	return count, nil
}

func (h *handle) EnsureIndex(ctx context.Context, keys *wire.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	col := h.store.get(h.key)
	col.indexes[indexName(keys)] = keys.Clone()
	return nil
}

func (h *handle) DropIndex(ctx context.Context, keys *wire.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	col, ok := h.store.collections[h.key]
	if !ok {
		return nil
	}
	delete(col.indexes, indexName(keys))
	return nil
}

// match snapshots the documents matching a query in result order.
func (h *handle) match(query store.Query) ([]*wire.Document, error) {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	col, ok := h.store.collections[h.key]
	if !ok {
		return nil, nil
	}
	var docs []*wire.Document
	for _, id := range col.ids {
		match, err := sift.Match(col.docs[id], query.Criteria)
		if err != nil {
			return nil, err
		}
		if match {
			docs = append(docs, col.docs[id].Clone())
		}
	}
	sift.Sort(docs, query.Sort)
	if query.Skip > 0 {
		if query.Skip >= int64(len(docs)) {
			docs = nil
		} else {
			docs = docs[query.Skip:]
		}
	}
	if query.Limit > 0 && query.Limit < int64(len(docs)) {
		docs = docs[:query.Limit]
	}
	for i, doc := range docs {
		docs[i] = sift.Project(doc, query.Projection)
	}
	return docs, nil
}

type cursor struct {
	id    string
	store *Store
	docs  []*wire.Document
}

func (c *cursor) Next(ctx context.Context) (*wire.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.docs) == 0 {
		c.store.cursors.Remove(c.id)
		return nil, store.ErrDone
	}
	doc := c.docs[0]
	c.docs = c.docs[1:]
	return doc, nil
}

func (c *cursor) Close() error {
	c.docs = nil
	c.store.cursors.Remove(c.id)
	return nil
}

func indexName(keys *wire.Document) string {
	name := ""
	for _, k := range keys.Keys() {
		dir := int64(1)
		if v, ok := keys.Get(k); ok {
			if n, ok := v.(int64); ok {
				dir = n
			}
		}
		if name != "" {
			name += "_"
		}
		name += fmt.Sprintf("%s_%d", k, dir)
	}
	return name
}

func validate(schema *gojsonschema.Schema, doc *wire.Document) error {
	data, err := wire.MarshalJSON(doc)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msg := "document failed validation"
	for _, desc := range result.Errors() {
		msg += ": " + desc.String()
	}
	return fmt.Errorf("%s", msg)
}
