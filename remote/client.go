package remote

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/wire"
)

// Client implements store.Store over a single server connection.
// Requests are serialized on the connection; the caller's context
// deadline is applied as the connection deadline for each round trip.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder
}

// Dial connects to a server at the given address.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient returns a client using an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		enc:  wire.NewEncoder(conn),
		dec:  wire.NewDecoder(conn),
	}
}

func (c *Client) Collection(db, name string) store.Collection {
	return &collection{client: c, db: db, col: name}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(ctx context.Context, req *wire.Document) (*wire.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	err := c.conn.SetDeadline(deadline)
	if err != nil {
		return nil, err
	}
	err = c.enc.EncodeDocument(req)
	if err == nil {
		err = c.enc.Flush()
	}
	if err != nil {
		return nil, err
	}
	resp, err := c.dec.DecodeDocument()
	if err != nil {
		return nil, err
	}
	if !getBool(resp, fieldOK) {
		return nil, errors.New(getString(resp, fieldErr))
	}
	return resp, nil
}

type collection struct {
	client *Client
	db     string
	col    string
}

func (c *collection) request(op string) *wire.Document {
	return newRequest(op, c.db, c.col)
}

func (c *collection) InsertOrReplace(ctx context.Context, doc *wire.Document) (*wire.Document, error) {
	req := c.request(opInsertOrReplace)
	req.Set(fieldDoc, doc)
	resp, err := c.client.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	return getDocument(resp, fieldDoc), nil
}

func (c *collection) Find(ctx context.Context, query store.Query) (store.Cursor, error) {
	req := c.request(opFind)
	setQuery(req, query)
	resp, err := c.client.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	return &cursor{client: c.client, db: c.db, col: c.col, id: getString(resp, fieldCursor)}, nil
}

func (c *collection) FindOne(ctx context.Context, query store.Query) (*wire.Document, error) {
	req := c.request(opFindOne)
	setQuery(req, query)
	resp, err := c.client.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	return getDocument(resp, fieldDoc), nil
}

func (c *collection) Remove(ctx context.Context, criteria *wire.Document) error {
	req := c.request(opRemove)
	if criteria != nil {
		req.Set(fieldCriteria, criteria)
	}
	_, err := c.client.roundTrip(ctx, req)
	return err
}

func (c *collection) Count(ctx context.Context, criteria *wire.Document) (int64, error) {
	req := c.request(opCount)
	if criteria != nil {
		req.Set(fieldCriteria, criteria)
	}
	resp, err := c.client.roundTrip(ctx, req)
	if err != nil {
		return 0, err
	}
	return getInt64(resp, fieldCount), nil
}

func (c *collection) EnsureIndex(ctx context.Context, keys *wire.Document) error {
	req := c.request(opEnsureIndex)
	req.Set(fieldKeys, keys)
	_, err := c.client.roundTrip(ctx, req)
	return err
}

func (c *collection) DropIndex(ctx context.Context, keys *wire.Document) error {
	req := c.request(opDropIndex)
	req.Set(fieldKeys, keys)
	_, err := c.client.roundTrip(ctx, req)
	return err
}

func setQuery(req *wire.Document, query store.Query) {
	if query.Criteria != nil {
		req.Set(fieldCriteria, query.Criteria)
	}
	if query.Projection != nil {
		req.Set(fieldProjection, query.Projection)
	}
	if query.Sort != nil {
		req.Set(fieldSort, query.Sort)
	}
	if query.Limit > 0 {
		req.Set(fieldLimit, query.Limit)
	}
	if query.Skip > 0 {
		req.Set(fieldSkip, query.Skip)
	}
}

// closeTimeout bounds the round trip that releases a remote cursor, so
// abandoning a stream cannot block forever on an unresponsive server.
var closeTimeout = 5 * time.Second

type cursor struct {
	client *Client
	db     string
	col    string
	id     string
	done   bool
}

func (c *cursor) Next(ctx context.Context) (*wire.Document, error) {
	if c.done {
		return nil, store.ErrDone
	}
	req := newRequest(opNext, c.db, c.col)
	req.Set(fieldCursor, c.id)
	resp, err := c.client.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if getBool(resp, fieldDone) {
		c.done = true
		return nil, store.ErrDone
	}
	return getDocument(resp, fieldDoc), nil
}

func (c *cursor) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	req := newRequest(opCloseCursor, c.db, c.col)
	req.Set(fieldCursor, c.id)
	_, err := c.client.roundTrip(ctx, req)
	return err
}
