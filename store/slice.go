package store

import (
	"context"

	"github.com/nasdf/mango/wire"
)

type sliceCursor struct {
	docs []*wire.Document
}

// NewSliceCursor returns a cursor over an already materialized result set.
func NewSliceCursor(docs []*wire.Document) Cursor {
	return &sliceCursor{docs: docs}
}

func (c *sliceCursor) Next(ctx context.Context) (*wire.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.docs) == 0 {
		return nil, ErrDone
	}
	doc := c.docs[0]
	c.docs = c.docs[1:]
	return doc, nil
}

func (c *sliceCursor) Close() error {
	c.docs = nil
	return nil
}
