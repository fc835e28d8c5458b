// Package server wires the gateway core into MCP tools and resources. All
// transport framing lives here; the admission and execution logic is in
// internal/sqlguard and internal/db.
package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dbassist/dbassist-mcp/internal/config"
	"github.com/dbassist/dbassist-mcp/internal/db"
	"github.com/dbassist/dbassist-mcp/internal/qerr"
)

const (
	ServerName    = "dbassist-mcp"
	ServerVersion = "1.0.0"
)

// SchemaResourceURI is the resource exposing the live schema snapshot.
const SchemaResourceURI = "schema://database"

// New returns an MCP server with all tools and resources registered. cfg
// may be nil: validation-only behavior still works, database calls report
// ConnectionUnavailable.
func New(cfg *config.Config, log *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	Register(s, cfg, log)
	return s
}

// Register adds the gateway tools and the schema resource to s.
func Register(s *server.MCPServer, cfg *config.Config, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	dialect := db.Postgres
	var dsn, schemaFilter string
	maxStatements := 0
	var timeout = db.DefaultQueryTimeout
	if cfg != nil {
		dialect = db.Dialect(cfg.Dialect)
		dsn, _ = cfg.DSN()
		schemaFilter = cfg.Schema
		maxStatements = cfg.MaxStatements
		if cfg.QueryTimeout > 0 {
			timeout = cfg.QueryTimeout
		}
	}
	gw := db.NewGateway(dialect, maxStatements, timeout)
	handle := db.NewHandle(dialect, dsn, log)

	s.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Simple health check. Returns pong."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(pingOutput{Message: "pong"})
	})

	s.AddTool(mcp.NewTool("query",
		mcp.WithDescription("Run read-only SQL against the configured database. "+
			"Multiple statements separated by semicolons run in order; the whole batch "+
			"is rejected if any statement is not read-only (SELECT, WITH, EXPLAIN, SHOW, DESCRIBE)."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL text to screen and execute."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results, err := gw.ValidateAndExecute(ctx, handle.Querier(), raw)
		if err != nil {
			// outcome only; the statement text itself is never logged
			log.Warn("query rejected or failed",
				zap.String("kind", string(qerr.KindOf(err))))
			return mcp.NewToolResultError(err.Error()), nil
		}
		log.Info("query executed", zap.Int("statements", len(results)))
		return jsonResult(queryOutput{Results: results})
	})

	s.AddTool(mcp.NewTool("inspect_schema",
		mcp.WithDescription("Describe tables, columns and foreign keys. Queried live from catalog views on every call."),
		mcp.WithString("schema",
			mcp.Description("Optional schema name filter (defaults to the dialect's default schema)."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := req.GetString("schema", schemaFilter)
		snap, err := snapshot(ctx, gw, handle, filter)
		if err != nil {
			log.Warn("schema inspection failed",
				zap.String("kind", string(qerr.KindOf(err))))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(snap)
	})

	s.AddResource(mcp.NewResource(SchemaResourceURI, "Database Schema",
		mcp.WithResourceDescription("Live schema snapshot: tables, columns, foreign keys."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := snapshot(ctx, gw, handle, schemaFilter)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}}, nil
	})
}

func snapshot(ctx context.Context, gw *db.Gateway, handle *db.Handle, filter string) (*db.Snapshot, error) {
	pool, err := handle.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return gw.InspectSchema(ctx, pool, filter)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

type pingOutput struct {
	Message string `json:"message"`
}

type queryOutput struct {
	Results []db.StatementResult `json:"results"`
}
