// Package db holds the database-facing half of the gateway: dialect and
// connection plumbing, the batch executor, the schema inspector, and the
// Gateway type that ties them to the admission layer.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Dialect selects the database/sql driver and the catalog queries used by
// the schema inspector.
type Dialect string

const (
	Postgres  Dialect = "postgres"
	MySQL     Dialect = "mysql"
	SQLServer Dialect = "sqlserver"
	SQLite    Dialect = "sqlite"
)

// Open connects to the target database and verifies the connection. The
// read-only pin travels in the connection config, so every connection the
// pool opens over its lifetime is pinned, not just the one that served the
// first request. Errors may reference the host; callers must not forward
// them to tool responses unfiltered.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	pool, err := open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s ping: %w", string(dialect), err)
	}
	return pool, nil
}

// open builds the pool with a per-connection read-only pin where the backend
// has one. This sits underneath the classifier as defense in depth; SQL
// Server has no session-level switch, so there the classifier and the
// account's grants are the whole guard.
func open(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case Postgres:
		cfg, err := pgReadOnlyConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("pgx config: %w", err)
		}
		pool, err := sql.Open("pgx", stdlib.RegisterConnConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("pgx open: %w", err)
		}
		return pool, nil
	case MySQL:
		cfg, err := mysqlReadOnlyConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("mysql config: %w", err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	case SQLite:
		return sql.Open("sqlite", sqliteReadOnlyDSN(dsn))
	case SQLServer:
		return sql.Open("sqlserver", dsn)
	}
	return nil, fmt.Errorf("unsupported dialect %q", string(dialect))
}

// pgReadOnlyConfig parses dsn and pins default_transaction_read_only as a
// runtime parameter, sent by the driver on every new connection.
func pgReadOnlyConfig(dsn string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["default_transaction_read_only"] = "on"
	return cfg, nil
}

// mysqlReadOnlyConfig parses dsn and adds the session system variable the
// driver SETs on every new connection.
func mysqlReadOnlyConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	cfg.Params["transaction_read_only"] = "1"
	return cfg, nil
}

// sqliteReadOnlyDSN appends the query_only pragma, applied by the driver to
// every new connection.
func sqliteReadOnlyDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=query_only(1)"
}
