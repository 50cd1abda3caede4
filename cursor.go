package mango

import (
	"context"
	"errors"
	"fmt"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/wire"
)

// SortKey specifies one field of a sort or index specification.
type SortKey struct {
	Field      string
	Descending bool
}

// Asc returns an ascending sort key.
func Asc(field string) SortKey {
	return SortKey{Field: field}
}

// Desc returns a descending sort key.
func Desc(field string) SortKey {
	return SortKey{Field: field, Descending: true}
}

// Cursor is a deferred query descriptor. Constructing or transforming a
// cursor never contacts the store; only Observe and Count issue remote
// calls, and every Observe issues a fresh one.
type Cursor struct {
	col      *Collection
	criteria Criteria
	fields   []string
	sort     []SortKey
	limit    int64
	skip     int64
	err      error
}

func (c *Cursor) clone() *Cursor {
	out := *c
	out.sort = make([]SortKey, len(c.sort))
	copy(out.sort, c.sort)
	return &out
}

// Limit returns a new cursor that returns at most n documents.
func (c *Cursor) Limit(n int64) *Cursor {
	out := c.clone()
	out.limit = n
	return out
}

// Skip returns a new cursor that discards the first n documents.
func (c *Cursor) Skip(n int64) *Cursor {
	out := c.clone()
	out.skip = n
	return out
}

// OrderBy returns a new cursor sorted by the given keys. A key is a
// bare field name for ascending order, a SortKey, or a single entry
// map of field name to direction where a negative direction means
// descending. Earlier keys take precedence.
func (c *Cursor) OrderBy(keys ...any) *Cursor {
	out := c.clone()
	parsed, err := parseSortKeys(keys)
	if err != nil {
		out.err = err
		return out
	}
	out.sort = append(out.sort, parsed...)
	return out
}

// Observe issues a remote find call and returns a stream over the
// results. The stream is one shot; calling Observe again issues an
// independent remote call.
func (c *Cursor) Observe(ctx context.Context) (*Stream, error) {
	query, err := c.query()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.col.client.opContext(ctx)
	defer cancel()
	cur, err := c.col.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Stream{client: c.col.client, cur: cur}, nil
}

// Count issues a remote count call for the cursor criteria. It is
// independent of Observe and carries no consistency guarantee with it.
func (c *Cursor) Count(ctx context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	criteria, err := encodeCriteria(c.criteria)
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.col.client.opContext(ctx)
	defer cancel()
	return c.col.col.Count(ctx, criteria)
}

// All observes the cursor and drains the stream into a slice.
func (c *Cursor) All(ctx context.Context) ([]map[string]any, error) {
	stream, err := c.Observe(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var docs []map[string]any
	for stream.Next(ctx) {
		docs = append(docs, stream.Value())
	}
	return docs, stream.Err()
}

// One observes the cursor and returns the first document, or nil if the
// stream is empty.
func (c *Cursor) One(ctx context.Context) (map[string]any, error) {
	stream, err := c.Limit(1).Observe(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if !stream.Next(ctx) {
		return nil, stream.Err()
	}
	return stream.Value(), nil
}

// query encodes the cursor descriptor into wire form.
func (c *Cursor) query() (store.Query, error) {
	if c.err != nil {
		return store.Query{}, c.err
	}
	criteria, err := encodeCriteria(c.criteria)
	if err != nil {
		return store.Query{}, err
	}
	return store.Query{
		Criteria:   criteria,
		Projection: projectionSpec(c.fields),
		Sort:       sortSpec(c.sort),
		Limit:      c.limit,
		Skip:       c.skip,
	}, nil
}

func encodeCriteria(criteria Criteria) (*wire.Document, error) {
	if criteria == nil {
		return nil, nil
	}
	return encodeMapping(criteria)
}

func projectionSpec(fields []string) *wire.Document {
	if len(fields) == 0 {
		return nil
	}
	doc := wire.NewDocument()
	for _, f := range fields {
		doc.Set(SanitizeKey(f), int64(1))
	}
	return doc
}

func sortSpec(keys []SortKey) *wire.Document {
	if len(keys) == 0 {
		return nil
	}
	doc := wire.NewDocument()
	for _, k := range keys {
		dir := int64(1)
		if k.Descending {
			dir = -1
		}
		doc.Set(SanitizeKey(k.Field), dir)
	}
	return doc
}

func parseSortKeys(keys []any) ([]SortKey, error) {
	out := make([]SortKey, 0, len(keys))
	for _, key := range keys {
		switch t := key.(type) {
		case string:
			out = append(out, Asc(t))
		case Symbol:
			out = append(out, Asc(string(t)))
		case SortKey:
			out = append(out, t)
		case map[string]any:
			if len(t) != 1 {
				return nil, fmt.Errorf("sort key must have exactly one field, got %d", len(t))
			}
			for field, dir := range t {
				desc, err := isDescending(dir)
				if err != nil {
					return nil, err
				}
				out = append(out, SortKey{Field: field, Descending: desc})
			}
		default:
			return nil, fmt.Errorf("invalid sort key type %T", key)
		}
	}
	return out, nil
}

func isDescending(dir any) (bool, error) {
	switch t := dir.(type) {
	case int:
		return t < 0, nil
	case int64:
		return t < 0, nil
	case float64:
		return t < 0, nil
	default:
		return false, fmt.Errorf("invalid sort direction %v", dir)
	}
}

// Stream iterates over the decoded results of one remote find call.
// The underlying remote cursor is released when the stream is exhausted
// or closed.
type Stream struct {
	client *Client
	cur    store.Cursor
	doc    map[string]any
	err    error
	done   bool
}

// Next fetches and decodes the next document. It returns false when the
// stream is exhausted or an error occurs; see Err.
func (s *Stream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	ctx, cancel := s.client.opContext(ctx)
	defer cancel()

	doc, err := s.cur.Next(ctx)
	if errors.Is(err, store.ErrDone) {
		s.done = true
		s.cur.Close()
		return false
	}
	if err != nil {
		s.err = err
		s.done = true
		s.cur.Close()
		return false
	}
	s.doc = DecodeDocument(doc)
	return true
}

// Value returns the document fetched by the last call to Next.
func (s *Stream) Value() map[string]any {
	return s.doc
}

// Err returns the first error encountered by the stream.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying remote cursor. It is safe to call after
// the stream is exhausted.
func (s *Stream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.cur.Close()
}
