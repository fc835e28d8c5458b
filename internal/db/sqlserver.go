package db

import "context"

// Catalog queries for SQL Server. Placeholders are @p1-style. The foreign
// key query pairs constrained and referenced columns through
// REFERENTIAL_CONSTRAINTS, matching on ordinal position so composite keys
// line up column by column.

const sqlserverTablesQuery = `
	SELECT TABLE_SCHEMA, TABLE_NAME
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
	ORDER BY TABLE_NAME`

const sqlserverColumnsQuery = `
	SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, ORDINAL_POSITION
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = @p1
	ORDER BY TABLE_NAME, ORDINAL_POSITION`

const sqlserverForeignKeysQuery = `
	SELECT fk.TABLE_NAME, rc.CONSTRAINT_NAME, cu.COLUMN_NAME,
	       pk.TABLE_NAME AS REF_TABLE, pt.COLUMN_NAME AS REF_COLUMN
	FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
	JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS fk ON rc.CONSTRAINT_NAME = fk.CONSTRAINT_NAME
	JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS pk ON rc.UNIQUE_CONSTRAINT_NAME = pk.CONSTRAINT_NAME
	JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE cu ON rc.CONSTRAINT_NAME = cu.CONSTRAINT_NAME
	JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE pt
	  ON pk.CONSTRAINT_NAME = pt.CONSTRAINT_NAME AND pt.ORDINAL_POSITION = cu.ORDINAL_POSITION
	WHERE fk.TABLE_SCHEMA = @p1
	ORDER BY fk.TABLE_NAME, rc.CONSTRAINT_NAME, cu.ORDINAL_POSITION`

func sqlserverSnapshot(ctx context.Context, q Querier, schemaFilter string) (*Snapshot, error) {
	if schemaFilter == "" {
		schemaFilter = "dbo"
	}
	b := newSnapshotBuilder()

	rows, err := q.QueryContext(ctx, sqlserverTablesQuery, schemaFilter)
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

	rows, err = q.QueryContext(ctx, sqlserverColumnsQuery, schemaFilter)
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

	rows, err = q.QueryContext(ctx, sqlserverForeignKeysQuery, schemaFilter)
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
