package db

import "context"

// Catalog queries for MySQL/MariaDB. An empty schema filter falls back to
// the connection's current database. KEY_COLUMN_USAGE carries the
// referenced side directly, no third join needed.

const mysqlTablesQuery = `
	SELECT table_schema, table_name
	FROM information_schema.tables
	WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
	  AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const mysqlColumnsQuery = `
	SELECT table_schema, table_name, column_name, data_type, is_nullable, ordinal_position
	FROM information_schema.columns
	WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
	ORDER BY table_name, ordinal_position`

const mysqlForeignKeysQuery = `
	SELECT table_schema, table_name, constraint_name, column_name,
	       referenced_table_name, referenced_column_name
	FROM information_schema.key_column_usage
	WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
	  AND referenced_table_name IS NOT NULL
	ORDER BY table_name, constraint_name, ordinal_position`

func mysqlSnapshot(ctx context.Context, q Querier, schemaFilter string) (*Snapshot, error) {
	b := newSnapshotBuilder()

	rows, err := q.QueryContext(ctx, mysqlTablesQuery, schemaFilter)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			rows.Close()
			return nil, err
		}
		b.addTable(schema, name)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, mysqlColumnsQuery, schemaFilter)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var schema, table, name, typ, nullable string
		var pos int
		if err := rows.Scan(&schema, &table, &name, &typ, &nullable, &pos); err != nil {
			rows.Close()
			return nil, err
		}
		b.addColumn(schema, table, Column{
			Name: name, Type: typ, Nullable: nullable == "YES", Position: pos,
		})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, mysqlForeignKeysQuery, schemaFilter)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var schema, table, constraint, column, refTable, refColumn string
		if err := rows.Scan(&schema, &table, &constraint, &column, &refTable, &refColumn); err != nil {
			rows.Close()
			return nil, err
		}
		b.addForeignKeyColumn(schema, table, constraint, column, refTable, refColumn)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return b.snapshot(), nil
}
