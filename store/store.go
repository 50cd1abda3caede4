// Package store defines the boundary between the client layer and a
// document store engine. Engines accept criteria, projection, and sort
// documents already in wire form; the client codec is responsible for
// shaping them.
package store

import (
	"context"
	"errors"

	"github.com/nasdf/mango/wire"
)

// ErrDone is returned by Cursor.Next when no documents remain.
var ErrDone = errors.New("no more documents")

// IDField is the reserved identifier field assigned by the store.
const IDField = "_id"

// Query describes a single find operation.
type Query struct {
	// Criteria filters the matched documents. An empty or nil document
	// matches everything.
	Criteria *wire.Document
	// Projection selects the returned fields. An empty or nil document
	// returns all fields.
	Projection *wire.Document
	// Sort orders the matched documents. Earlier keys take precedence.
	Sort *wire.Document
	// Limit bounds the number of returned documents when positive.
	Limit int64
	// Skip discards the first documents of the result when positive.
	Skip int64
}

// Store is a connection to a document store.
type Store interface {
	// Collection returns a handle scoped to the named collection
	// within the named database.
	Collection(db, name string) Collection
	// Close releases the connection.
	Close() error
}

// Collection is the set of remote operations the client layer depends on.
type Collection interface {
	// InsertOrReplace writes a document, assigning an identifier if
	// absent, and returns the stored form.
	InsertOrReplace(ctx context.Context, doc *wire.Document) (*wire.Document, error)
	// Find returns a cursor over the documents matching the query.
	Find(ctx context.Context, query Query) (Cursor, error)
	// FindOne returns the first document matching the query, or nil
	// if none match.
	FindOne(ctx context.Context, query Query) (*wire.Document, error)
	// Remove deletes all documents matching the criteria.
	Remove(ctx context.Context, criteria *wire.Document) error
	// Count returns the number of documents matching the criteria.
	Count(ctx context.Context, criteria *wire.Document) (int64, error)
	// EnsureIndex creates an index over the given keys if it does not exist.
	EnsureIndex(ctx context.Context, keys *wire.Document) error
	// DropIndex removes the index over the given keys.
	DropIndex(ctx context.Context, keys *wire.Document) error
}

// Cursor is a one-shot stream of result documents. Abandoned cursors
// must be closed to release the underlying resources.
type Cursor interface {
	// Next returns the next document, or ErrDone when exhausted.
	Next(ctx context.Context) (*wire.Document, error)
	// Close releases the cursor.
	Close() error
}
