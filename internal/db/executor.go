package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dbassist/dbassist-mcp/internal/qerr"
)

// Querier is the database surface the executor and inspector need. *sql.DB
// and *sql.Conn both satisfy it, as do test doubles.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// StatementResult pairs one executed statement with its rows. Columns keeps
// the result-set order; every row of one statement shares that column set.
type StatementResult struct {
	Statement string           `json:"statement"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
}

const (
	DefaultMaxStatements = 20
	DefaultQueryTimeout  = 30 * time.Second
)

// Executor runs pre-validated statement batches in input order. It enforces
// the statement cap and the per-request timeout; it performs no validation
// of its own and never retries.
type Executor struct {
	MaxStatements int
	Timeout       time.Duration
}

// Execute runs stmts sequentially on q. The batch is all-or-nothing: the
// cap is checked before anything runs, and a failure at statement i stops
// the batch and discards the results of statements 0..i-1. The returned
// error carries the failing index and the driver's message verbatim.
func (e *Executor) Execute(ctx context.Context, q Querier, stmts []string) ([]StatementResult, error) {
	if len(stmts) > e.maxStatements() {
		return nil, qerr.New(qerr.ResourceLimitExceeded,
			"batch has %d statements, limit is %d", len(stmts), e.maxStatements())
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	results := make([]StatementResult, 0, len(stmts))
	for i, stmt := range stmts {
		rows, err := q.QueryContext(ctx, stmt)
		if err != nil {
			return nil, execError(i, err)
		}
		cols, rowMaps, err := collectRows(rows)
		if err != nil {
			return nil, execError(i, err)
		}
		results = append(results, StatementResult{Statement: stmt, Columns: cols, Rows: rowMaps})
	}
	return results, nil
}

func (e *Executor) maxStatements() int {
	if e.MaxStatements > 0 {
		return e.MaxStatements
	}
	return DefaultMaxStatements
}

func (e *Executor) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultQueryTimeout
}

func execError(i int, err error) error {
	var qe *qerr.Error
	if errors.As(err, &qe) {
		// already classified, e.g. ConnectionUnavailable from a lazy querier
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &qerr.Error{Kind: qerr.Timeout, Index: i, Message: "query timed out", Err: err}
	}
	return qerr.Wrap(qerr.ExecutionFailed, i, err)
}
