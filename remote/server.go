package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/nasdf/mango/store"
	"github.com/nasdf/mango/wire"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const defaultMaxConnections = 128

// Server serves a document store engine over TCP. Each connection is
// handled by a goroutine from a bounded pool and owns its open cursors,
// which are released when the connection closes.
type Server struct {
	store store.Store
	log   *slog.Logger
	pool  *ants.Pool

	mu     sync.Mutex
	lis    net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// ServerOption configures a server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	log      *slog.Logger
	maxConns int
}

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(cfg *serverConfig) {
		cfg.log = log
	}
}

// WithMaxConnections bounds the number of concurrently served connections.
func WithMaxConnections(n int) ServerOption {
	return func(cfg *serverConfig) {
		cfg.maxConns = n
	}
}

// NewServer returns a server for the given engine.
func NewServer(st store.Store, opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{
		log:      slog.Default(),
		maxConns: defaultMaxConnections,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	pool, err := ants.NewPool(cfg.maxConns, ants.WithPanicHandler(func(v any) {
		cfg.log.Error("connection handler panic", "panic", v)
	}))
	if err != nil {
		return nil, err
	}
	return &Server{
		store: st,
		log:   cfg.log,
		pool:  pool,
		conns: make(map[net.Conn]struct{}),
	}, nil
}

// ListenAndServe starts the server bound to the given address.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve accepts connections from the given listener until Close is called.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("server is closed")
	}
	s.lis = lis
	s.mu.Unlock()

	s.log.Info("server listening", "addr", lis.Addr().String())
	for {
		conn, err := lis.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		err = s.pool.Submit(func() {
			defer s.wg.Done()
			s.handleConn(conn)
		})
		if err != nil {
			s.wg.Done()
			s.dropConn(conn)
			s.log.Warn("failed to submit connection handler", "err", err)
		}
	}
}

// Addr returns the listener address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops the listener, closes all connections, and waits for the
// handlers to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	lis := s.lis
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	if lis != nil {
		lis.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
	s.wg.Wait()
	s.pool.Release()
	return nil
}

func (s *Server) dropConn(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	cursors := make(map[string]store.Cursor)
	defer func() {
		for _, cur := range cursors {
			cur.Close()
		}
		s.dropConn(conn)
	}()

	s.log.Debug("connection opened", "remote", conn.RemoteAddr().String())
	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)
	for {
		req, err := dec.DecodeDocument()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Warn("failed to read request", "err", err)
			}
			return
		}
		resp := s.handle(req, cursors)
		err = enc.EncodeDocument(resp)
		if err == nil {
			err = enc.Flush()
		}
		if err != nil {
			s.log.Warn("failed to write response", "err", err)
			return
		}
	}
}

func (s *Server) handle(req *wire.Document, cursors map[string]store.Cursor) *wire.Document {
	ctx := context.Background()
	op := getString(req, fieldOp)
	col := s.store.Collection(getString(req, fieldDB), getString(req, fieldCol))

	switch op {
	case opInsertOrReplace:
		doc := getDocument(req, fieldDoc)
		if doc == nil {
			return errResponse(fmt.Errorf("missing %s field", fieldDoc))
		}
		stored, err := col.InsertOrReplace(ctx, doc)
		if err != nil {
			return errResponse(err)
		}
		resp := okResponse()
		resp.Set(fieldDoc, stored)
		return resp

	case opFind:
		cur, err := col.Find(ctx, queryFromRequest(req))
		if err != nil {
			return errResponse(err)
		}
		id := uuid.NewString()
		cursors[id] = cur
		resp := okResponse()
		resp.Set(fieldCursor, id)
		return resp

	case opFindOne:
		doc, err := col.FindOne(ctx, queryFromRequest(req))
		if err != nil {
			return errResponse(err)
		}
		resp := okResponse()
		if doc != nil {
			resp.Set(fieldDoc, doc)
		}
		return resp

	case opRemove:
		err := col.Remove(ctx, getDocument(req, fieldCriteria))
		if err != nil {
			return errResponse(err)
		}
		return okResponse()

	case opCount:
		count, err := col.Count(ctx, getDocument(req, fieldCriteria))
		if err != nil {
			return errResponse(err)
		}
		resp := okResponse()
		resp.Set(fieldCount, count)
		return resp

	case opEnsureIndex:
		keys := getDocument(req, fieldKeys)
		if keys == nil {
			return errResponse(fmt.Errorf("missing %s field", fieldKeys))
		}
		err := col.EnsureIndex(ctx, keys)
		if err != nil {
			return errResponse(err)
		}
		return okResponse()

	case opDropIndex:
		keys := getDocument(req, fieldKeys)
		if keys == nil {
			return errResponse(fmt.Errorf("missing %s field", fieldKeys))
		}
		err := col.DropIndex(ctx, keys)
		if err != nil {
			return errResponse(err)
		}
		return okResponse()

	case opNext:
		id := getString(req, fieldCursor)
		cur, ok := cursors[id]
		if !ok {
			resp := okResponse()
			resp.Set(fieldDone, true)
			return resp
		}
		doc, err := cur.Next(ctx)
		if errors.Is(err, store.ErrDone) {
			cur.Close()
			delete(cursors, id)
			resp := okResponse()
			resp.Set(fieldDone, true)
			return resp
		}
		if err != nil {
			return errResponse(err)
		}
		resp := okResponse()
		resp.Set(fieldDoc, doc)
		return resp

	case opCloseCursor:
		id := getString(req, fieldCursor)
		if cur, ok := cursors[id]; ok {
			cur.Close()
			delete(cursors, id)
		}
		return okResponse()

	default:
		return errResponse(fmt.Errorf("unknown operation: %s", op))
	}
}
