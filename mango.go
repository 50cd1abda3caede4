// Package mango is a client layer for document oriented data stores.
//
// Application code works with native records (string keyed maps, slices,
// and scalars); the store speaks wire documents with their own key
// naming rules and identifier type. The codec converts between the two,
// sanitizing field separators in keys and normalizing identifiers.
// Queries are composed lazily through cursors and an embedded predicate
// vocabulary, and executed against any store.Store implementation.
package mango

import (
	"context"
	"time"

	"github.com/nasdf/mango/store"
)

// IDField is the reserved identifier field on decoded records.
const IDField = store.IDField

// Client wraps a store connection and applies the configured default
// operation timeout to every call whose context has no deadline.
type Client struct {
	store   store.Store
	timeout time.Duration
}

// Open returns a client using the given store connection.
func Open(st store.Store, cfg Config) *Client {
	return &Client{store: st, timeout: cfg.Timeout}
}

// Database returns a handle scoped to the named database.
func (c *Client) Database(name string) *Database {
	return &Database{client: c, name: name}
}

// Close releases the store connection.
func (c *Client) Close() error {
	return c.store.Close()
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Database is a handle scoped to a named database.
type Database struct {
	client *Client
	name   string
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.name
}

// Collection returns a handle scoped to the named collection.
func (d *Database) Collection(name string) *Collection {
	return &Collection{
		client: d.client,
		name:   name,
		col:    d.client.store.Collection(d.name, name),
	}
}
