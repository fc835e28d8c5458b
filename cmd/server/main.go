// Package main runs the dbassist-mcp gateway: an MCP server that lets an
// agent run screened read-only SQL and inspect schema over a database whose
// credentials never leave the server process.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dbassist/dbassist-mcp/internal/config"
	"github.com/dbassist/dbassist-mcp/internal/db"
	"github.com/dbassist/dbassist-mcp/internal/server"
	"github.com/dbassist/dbassist-mcp/internal/sqlguard"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dbassist-mcp",
		Short:        "Read-only SQL gateway served over MCP stdio",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(checkCmd(), schemaCmd())
	return root
}

// runServe speaks MCP on stdin/stdout. All logging goes to stderr so the
// wire stays clean.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := server.New(cfg, log)
	log.Info("serving", zap.String("name", server.ServerName),
		zap.String("version", server.ServerVersion),
		zap.String("dialect", cfg.Dialect))
	// Listen returns once the signal context is cancelled; the stdio
	// transport needs no teardown beyond that.
	stdio := mcpserver.NewStdioServer(s)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// checkCmd screens SQL offline and prints the verdict for each statement.
// No database is touched; exit status 1 means at least one statement was
// denied.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [sql]",
		Short: "Screen SQL without executing it (reads stdin when no argument)",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if raw == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = string(data)
			}

			guard := &sqlguard.Classifier{}
			denied := false
			var verdicts []sqlguard.Verdict
			for _, part := range sqlguard.SplitStatements(raw) {
				v := guard.Classify(sqlguard.StripComments(part))
				if !v.Allowed {
					denied = true
				}
				verdicts = append(verdicts, v)
			}
			out, err := json.MarshalIndent(verdicts, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if denied {
				return fmt.Errorf("denied")
			}
			return nil
		},
	}
}

// schemaCmd connects once and prints the schema snapshot as JSON.
func schemaCmd() *cobra.Command {
	var schemaFilter string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			dsn, ok := cfg.DSN()
			if !ok {
				return fmt.Errorf("no database configured")
			}
			ctx := cmd.Context()
			pool, err := db.Open(ctx, db.Dialect(cfg.Dialect), dsn)
			if err != nil {
				return fmt.Errorf("connect %s: database unreachable", cfg.Dialect)
			}
			defer pool.Close()

			filter := schemaFilter
			if filter == "" {
				filter = cfg.Schema
			}
			ins := db.Inspector{Dialect: db.Dialect(cfg.Dialect)}
			snap, err := ins.Snapshot(ctx, pool, filter)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaFilter, "schema", "", "schema name filter")
	return cmd
}
