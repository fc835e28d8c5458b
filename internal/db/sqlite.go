package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLite has a single unnamed schema; the filter is ignored. Column and
// foreign-key metadata come from PRAGMAs, which go through QueryContext like
// any other row-returning statement.

const sqliteTablesQuery = `
	SELECT name FROM sqlite_master
	WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name`

func sqliteSnapshot(ctx context.Context, q Querier) (*Snapshot, error) {
	b := newSnapshotBuilder()

	rows, err := q.QueryContext(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, name)
		b.addTable("", name)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	for _, name := range names {
		if err := sqliteColumns(ctx, q, b, name); err != nil {
			return nil, err
		}
		if err := sqliteForeignKeys(ctx, q, b, name); err != nil {
			return nil, err
		}
	}
	return b.snapshot(), nil
}

func sqliteColumns(ctx context.Context, q Querier, b *snapshotBuilder, table string) error {
	// table_info columns: cid, name, type, notnull, dflt_value, pk
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdentifier(table)))
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid, notnull, pk int
		var name, typ string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		b.addColumn("", table, Column{
			Name: name, Type: typ, Nullable: notnull == 0, Position: cid + 1,
		})
	}
	return closeRows(rows)
}

func sqliteForeignKeys(ctx context.Context, q Querier, b *snapshotBuilder, table string) error {
	// foreign_key_list columns: id, seq, table, from, to, on_update, on_delete, match
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteSQLiteIdentifier(table)))
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			rows.Close()
			return err
		}
		b.addForeignKeyColumn("", table, fmt.Sprintf("fk_%s_%d", table, id), from, refTable, to.String)
	}
	return closeRows(rows)
}

func quoteSQLiteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
