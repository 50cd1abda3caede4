// Package sqlite implements a document store engine persisted to a
// single SQLite database file. Documents are stored as wire encoded
// blobs; matching and sorting are delegated to the sift package.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/store/sift"
	"github.com/nasdf/mango/wire"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	db   TEXT NOT NULL,
	col  TEXT NOT NULL,
	id   TEXT NOT NULL,
	doc  BLOB NOT NULL,
	PRIMARY KEY (db, col, id)
);
CREATE TABLE IF NOT EXISTS indexes (
	db   TEXT NOT NULL,
	col  TEXT NOT NULL,
	name TEXT NOT NULL,
	keys BLOB NOT NULL,
	PRIMARY KEY (db, col, name)
);
`

type Store struct {
	db *sql.DB
}

// Open opens or creates the store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Collection(db, name string) store.Collection {
	return &handle{store: s, db: db, col: name}
}

func (s *Store) Close() error {
	return s.db.Close()
}

type handle struct {
	store *Store
	db    string
	col   string
}

func (h *handle) InsertOrReplace(ctx context.Context, doc *wire.Document) (*wire.Document, error) {
	stored := store.WithID(doc)
	id, _ := stored.Get(store.IDField)

	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	err := enc.EncodeDocument(stored)
	if err != nil {
		return nil, err
	}
	err = enc.Flush()
	if err != nil {
		return nil, err
	}
	_, err = h.store.db.ExecContext(ctx,
		`INSERT INTO documents (db, col, id, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (db, col, id) DO UPDATE SET doc = excluded.doc`,
		h.db, h.col, store.IDKey(id), buf.Bytes())
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (h *handle) Find(ctx context.Context, query store.Query) (store.Cursor, error) {
	docs, err := h.match(ctx, query)
	if err != nil {
		return nil, err
	}
	return store.NewSliceCursor(docs), nil
}

func (h *handle) FindOne(ctx context.Context, query store.Query) (*wire.Document, error) {
	query.Limit = 1
	docs, err := h.match(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (h *handle) Remove(ctx context.Context, criteria *wire.Document) error {
	docs, err := h.match(ctx, store.Query{Criteria: criteria})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		id, _ := doc.Get(store.IDField)
		_, err := h.store.db.ExecContext(ctx,
			`DELETE FROM documents WHERE db = ? AND col = ? AND id = ?`,
			h.db, h.col, store.IDKey(id))
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *handle) Count(ctx context.Context, criteria *wire.Document) (int64, error) {
	docs, err := h.match(ctx, store.Query{Criteria: criteria})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (h *handle) EnsureIndex(ctx context.Context, keys *wire.Document) error {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	err := enc.EncodeDocument(keys)
	if err != nil {
		return err
	}
	err = enc.Flush()
	if err != nil {
		return err
	}
	_, err = h.store.db.ExecContext(ctx,
		`INSERT INTO indexes (db, col, name, keys) VALUES (?, ?, ?, ?)
		 ON CONFLICT (db, col, name) DO UPDATE SET keys = excluded.keys`,
		h.db, h.col, indexName(keys), buf.Bytes())
	return err
}

func (h *handle) DropIndex(ctx context.Context, keys *wire.Document) error {
	_, err := h.store.db.ExecContext(ctx,
		`DELETE FROM indexes WHERE db = ? AND col = ? AND name = ?`,
		h.db, h.col, indexName(keys))
	return err
}

// match loads the collection and evaluates the query against it.
func (h *handle) match(ctx context.Context, query store.Query) ([]*wire.Document, error) {
	rows, err := h.store.db.QueryContext(ctx,
		`SELECT doc FROM documents WHERE db = ? AND col = ? ORDER BY rowid`,
		h.db, h.col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*wire.Document
	for rows.Next() {
		var blob []byte
		err := rows.Scan(&blob)
		if err != nil {
			return nil, err
		}
		doc, err := wire.NewDecoder(bytes.NewReader(blob)).DecodeDocument()
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		match, err := sift.Match(doc, query.Criteria)
		if err != nil {
			return nil, err
		}
		if match {
			docs = append(docs, doc)
		}
	}
	err = rows.Err()
	if err != nil {
		return nil, err
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
