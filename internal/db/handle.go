package db

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dbassist/dbassist-mcp/internal/qerr"
	"go.uber.org/zap"
)

// Handle lazily opens and caches the pool for the configured target
// database. Concurrent requests share the pool; the read-only pin travels in
// the connection config, so every connection the pool hands out is pinned.
type Handle struct {
	dialect Dialect
	dsn     string
	log     *zap.Logger

	mu   sync.Mutex
	pool *sql.DB
}

// NewHandle returns an unconnected handle. The DSN is held privately and
// never appears in errors returned to callers.
func NewHandle(dialect Dialect, dsn string, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{dialect: dialect, dsn: dsn, log: log}
}

// Pool returns the shared pool, connecting on first use. The full connect
// error (which may reference the host) goes to the server log only; the
// caller gets a ConnectionUnavailable with no connection details.
func (h *Handle) Pool(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		return h.pool, nil
	}
	if h.dsn == "" {
		return nil, qerr.New(qerr.ConnectionUnavailable, "no database configured")
	}
	pool, err := Open(ctx, h.dialect, h.dsn)
	if err != nil {
		h.log.Warn("database connect failed",
			zap.String("dialect", string(h.dialect)), zap.Error(err))
		return nil, qerr.New(qerr.ConnectionUnavailable,
			"cannot reach %s database; check server logs", h.dialect)
	}
	h.pool = pool
	return h.pool, nil
}

// Querier returns a Querier that connects on first use, so a request can be
// validated (and rejected) without ever opening a connection.
func (h *Handle) Querier() Querier { return lazyQuerier{h} }

// Close releases the pool. Call once on shutdown.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool == nil {
		return nil
	}
	err := h.pool.Close()
	h.pool = nil
	return err
}

type lazyQuerier struct{ h *Handle }

func (l lazyQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	pool, err := l.h.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.QueryContext(ctx, query, args...)
}
