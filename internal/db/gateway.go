package db

import (
	"context"
	"time"

	"github.com/dbassist/dbassist-mcp/internal/qerr"
	"github.com/dbassist/dbassist-mcp/internal/sqlguard"
)

// Gateway is the core the hosting process calls: admission, execution, and
// schema inspection over an explicitly passed connection. It holds no
// connection of its own, so test doubles and concurrent requests are
// straightforward.
type Gateway struct {
	Guard *sqlguard.Classifier
	Exec  Executor
	Insp  Inspector
}

// NewGateway returns a gateway for the given dialect with the default
// classifier. Zero maxStatements or timeout fall back to the executor
// defaults.
func NewGateway(dialect Dialect, maxStatements int, timeout time.Duration) *Gateway {
	return &Gateway{
		Guard: &sqlguard.Classifier{},
		Exec:  Executor{MaxStatements: maxStatements, Timeout: timeout},
		Insp:  Inspector{Dialect: dialect},
	}
}

// ValidateAndExecute is the end-to-end entry point: split raw text into
// statements, strip comments, classify each one, and only if every verdict
// is ALLOW run the batch on q. Any DENY aborts the whole request before a
// single statement executes; the error carries the offending statement's
// index and reason. Statements that are empty after comment stripping are
// skipped, not rejected.
func (g *Gateway) ValidateAndExecute(ctx context.Context, q Querier, raw string) ([]StatementResult, error) {
	stmts, err := g.Screen(raw)
	if err != nil {
		return nil, err
	}
	return g.Exec.Execute(ctx, q, stmts)
}

// Screen runs the admission pipeline alone and returns the comment-free
// statements cleared for execution. It never touches a database.
func (g *Gateway) Screen(raw string) ([]string, error) {
	guard := g.Guard
	if guard == nil {
		guard = &sqlguard.Classifier{}
	}
	parts := sqlguard.SplitStatements(raw)
	stmts := make([]string, 0, len(parts))
	for i, part := range parts {
		cleaned := sqlguard.StripComments(part)
		if v := guard.Classify(cleaned); !v.Allowed {
			return nil, qerr.At(qerr.ValidationRejected, i, "%s", v.Reason)
		}
		if cleaned == "" {
			continue // comment-only fragment, nothing to run
		}
		stmts = append(stmts, cleaned)
	}
	return stmts, nil
}

// InspectSchema rebuilds the schema snapshot from the live catalog.
func (g *Gateway) InspectSchema(ctx context.Context, q Querier, schemaFilter string) (*Snapshot, error) {
	return g.Insp.Snapshot(ctx, q, schemaFilter)
}
