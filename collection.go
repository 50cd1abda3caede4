package mango

import (
	"context"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/wire"
)

// Collection composes cursor producing operations over one collection.
type Collection struct {
	client *Client
	name   string
	col    store.Collection
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Save encodes the document and writes it to the store, which assigns
// an identifier when absent. The input record is never mutated; the
// stored form is decoded and returned as a new record.
func (c *Collection) Save(ctx context.Context, doc map[string]any) (map[string]any, error) {
	enc, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client.opContext(ctx)
	defer cancel()

	stored, err := c.col.InsertOrReplace(ctx, enc)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(stored), nil
}

// Insert saves each document in argument order. It is not transactional:
// a failure partway leaves earlier documents persisted, and the saved
// records up to that point are returned with the error.
func (c *Collection) Insert(ctx context.Context, docs ...map[string]any) ([]map[string]any, error) {
	saved := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out, err := c.Save(ctx, doc)
		if err != nil {
			return saved, err
		}
		saved = append(saved, out)
	}
	return saved, nil
}

// FindAll returns a lazy cursor over the documents matching the
// criteria. A nil criteria matches everything; when field names are
// given only those fields and the identifier are returned.
func (c *Collection) FindAll(criteria Criteria, fields ...string) *Cursor {
	return &Cursor{col: c, criteria: criteria, fields: fields}
}

// FindOne returns the first document matching the criteria, or nil if
// none match.
func (c *Collection) FindOne(ctx context.Context, criteria Criteria, fields ...string) (map[string]any, error) {
	query, err := c.FindAll(criteria, fields...).query()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.client.opContext(ctx)
	defer cancel()

	doc, err := c.col.FindOne(ctx, query)
	if err != nil || doc == nil {
		return nil, err
	}
	return DecodeDocument(doc), nil
}

// Delete removes all documents matching the criteria. A nil criteria
// removes everything.
func (c *Collection) Delete(ctx context.Context, criteria Criteria) error {
	enc, err := encodeCriteria(criteria)
	if err != nil {
		return err
	}
	ctx, cancel := c.client.opContext(ctx)
	defer cancel()
	return c.col.Remove(ctx, enc)
}

// EnsureIndex creates an index over the given keys, which use the same
// format as Cursor.OrderBy. It returns the collection for chaining.
func (c *Collection) EnsureIndex(ctx context.Context, keys ...any) (*Collection, error) {
	spec, err := indexSpec(keys)
	if err != nil {
		return c, err
	}
	ctx, cancel := c.client.opContext(ctx)
	defer cancel()
	return c, c.col.EnsureIndex(ctx, spec)
}

// DropIndex removes the index over the given keys. It returns the
// collection for chaining.
func (c *Collection) DropIndex(ctx context.Context, keys ...any) (*Collection, error) {
	spec, err := indexSpec(keys)
	if err != nil {
		return c, err
	}
	ctx, cancel := c.client.opContext(ctx)
	defer cancel()
	return c, c.col.DropIndex(ctx, spec)
}

func indexSpec(keys []any) (*wire.Document, error) {
	parsed, err := parseSortKeys(keys)
	if err != nil {
		return nil, err
	}
	return sortSpec(parsed), nil
}
