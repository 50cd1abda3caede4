// Package remote implements the network transport between the client
// layer and a document store engine. Requests and responses are wire
// documents framed by the wire binary codec, one message per operation.
package remote

import (
	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/wire"
)

// Request operations.
const (
	opInsertOrReplace = "insertOrReplace"
	opFind            = "find"
	opFindOne         = "findOne"
	opRemove          = "remove"
	opCount           = "count"
	opEnsureIndex     = "ensureIndex"
	opDropIndex       = "dropIndex"
	opNext            = "next"
	opCloseCursor     = "closeCursor"
)

// Message fields.
const (
	fieldOp         = "op"
	fieldDB         = "db"
	fieldCol        = "col"
	fieldDoc        = "doc"
	fieldCriteria   = "criteria"
	fieldProjection = "projection"
	fieldSort       = "sort"
	fieldLimit      = "limit"
	fieldSkip       = "skip"
	fieldKeys       = "keys"
	fieldCursor     = "cursor"
	fieldOK         = "ok"
	fieldErr        = "err"
	fieldCount      = "count"
	fieldDone       = "done"
)

func newRequest(op, db, col string) *wire.Document {
	req := wire.NewDocument()
	req.Set(fieldOp, op)
	req.Set(fieldDB, db)
	req.Set(fieldCol, col)
	return req
}

func okResponse() *wire.Document {
	resp := wire.NewDocument()
	resp.Set(fieldOK, true)
	return resp
}

func errResponse(err error) *wire.Document {
	resp := wire.NewDocument()
	resp.Set(fieldOK, false)
	resp.Set(fieldErr, err.Error())
	return resp
}

func getString(doc *wire.Document, field string) string {
	v, ok := doc.Get(field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func getInt64(doc *wire.Document, field string) int64 {
	v, ok := doc.Get(field)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}

func getBool(doc *wire.Document, field string) bool {
	v, ok := doc.Get(field)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func getDocument(doc *wire.Document, field string) *wire.Document {
	v, ok := doc.Get(field)
	if !ok {
		return nil
	}
	d, _ := v.(*wire.Document)
	return d
}

func queryFromRequest(req *wire.Document) store.Query {
	return store.Query{
		Criteria:   getDocument(req, fieldCriteria),
		Projection: getDocument(req, fieldProjection),
		Sort:       getDocument(req, fieldSort),
		Limit:      getInt64(req, fieldLimit),
		Skip:       getInt64(req, fieldSkip),
	}
}
