package db

import "context"

// Catalog queries for PostgreSQL. Placeholders are $1-style; the pgx stdlib
// driver passes them through.

const postgresTablesQuery = `
	SELECT table_schema, table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const postgresColumnsQuery = `
	SELECT table_name, column_name, data_type, is_nullable, ordinal_position
	FROM information_schema.columns
	WHERE table_schema = $1
	ORDER BY table_name, ordinal_position`

const postgresForeignKeysQuery = `
	SELECT tc.table_name, tc.constraint_name, kcu.column_name,
	       ccu.table_name AS ref_table, ccu.column_name AS ref_column
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1
	ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`

func postgresSnapshot(ctx context.Context, q Querier, schemaFilter string) (*Snapshot, error) {
	if schemaFilter == "" {
		schemaFilter = "public"
	}
	b := newSnapshotBuilder()

	rows, err := q.QueryContext(ctx, postgresTablesQuery, schemaFilter)
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

	rows, err = q.QueryContext(ctx, postgresColumnsQuery, schemaFilter)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var table, name, typ, nullable string
		var pos int
		if err := rows.Scan(&table, &name, &typ, &nullable, &pos); err != nil {
			rows.Close()
			return nil, err
		}
		b.addColumn(schemaFilter, table, Column{
			Name: name, Type: typ, Nullable: nullable == "YES", Position: pos,
		})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = q.QueryContext(ctx, postgresForeignKeysQuery, schemaFilter)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var table, constraint, column, refTable, refColumn string
		if err := rows.Scan(&table, &constraint, &column, &refTable, &refColumn); err != nil {
			rows.Close()
			return nil, err
		}
		b.addForeignKeyColumn(schemaFilter, table, constraint, column, refTable, refColumn)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return b.snapshot(), nil
}
