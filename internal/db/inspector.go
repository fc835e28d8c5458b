package db

import "context"

// Column describes one table column as declared in the catalog.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Position int    `json:"position"`
}

// ForeignKey is one constraint, possibly spanning several columns. Catalog
// views return one row per constrained column; the inspector regroups those
// rows per constraint.
type ForeignKey struct {
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// Table describes one table: its ordered columns plus outgoing foreign keys.
type Table struct {
	Schema      string       `json:"schema,omitempty"`
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}

// Snapshot is a live description of the database schema. It is rebuilt on
// every call, since the database may change between requests, and an empty
// database yields an empty snapshot rather than an error.
type Snapshot struct {
	Tables []Table `json:"tables"`
}

// Table returns the descriptor for (schema, name), if present.
func (s *Snapshot) Table(schema, name string) (*Table, bool) {
	for i := range s.Tables {
		t := &s.Tables[i]
		if t.Schema == schema && t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Inspector assembles Snapshots from catalog views. It only ever issues
// catalog reads (information_schema SELECTs, PRAGMAs on SQLite), so it is
// read-only by construction.
type Inspector struct {
	Dialect Dialect
}

// Snapshot queries the catalog and builds a fresh snapshot. schemaFilter
// restricts the result to one schema; empty means the dialect's default
// (public, dbo, the current MySQL database).
func (ins *Inspector) Snapshot(ctx context.Context, q Querier, schemaFilter string) (*Snapshot, error) {
	switch ins.Dialect {
	case MySQL:
		return mysqlSnapshot(ctx, q, schemaFilter)
	case SQLServer:
		return sqlserverSnapshot(ctx, q, schemaFilter)
	case SQLite:
		return sqliteSnapshot(ctx, q)
	default:
		return postgresSnapshot(ctx, q, schemaFilter)
	}
}

// snapshotBuilder accumulates catalog rows into a Snapshot. It keeps tables
// in first-seen order, attaches columns in catalog order, and groups
// foreign-key rows by constraint, dropping duplicate (constraint, column)
// pairs that some catalogs emit.
type snapshotBuilder struct {
	tables []Table
	index  map[[2]string]int
}

func newSnapshotBuilder() *snapshotBuilder {
	return &snapshotBuilder{index: make(map[[2]string]int)}
}

func (b *snapshotBuilder) addTable(schema, name string) {
	key := [2]string{schema, name}
	if _, ok := b.index[key]; ok {
		return
	}
	b.index[key] = len(b.tables)
	b.tables = append(b.tables, Table{Schema: schema, Name: name})
}

// addColumn attaches a column to its table. Rows for unknown tables (e.g. a
// table created between the two catalog queries) are ignored.
func (b *snapshotBuilder) addColumn(schema, table string, col Column) {
	if i, ok := b.index[[2]string{schema, table}]; ok {
		b.tables[i].Columns = append(b.tables[i].Columns, col)
	}
}

func (b *snapshotBuilder) addForeignKeyColumn(schema, table, constraint, column, refTable, refColumn string) {
	i, ok := b.index[[2]string{schema, table}]
	if !ok {
		return
	}
	t := &b.tables[i]
	for j := range t.ForeignKeys {
		fk := &t.ForeignKeys[j]
		if fk.Name != constraint {
			continue
		}
		for _, c := range fk.Columns {
			if c == column {
				return // duplicate catalog row for the same constrained column
			}
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
		return
	}
	t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
		Name:       constraint,
		Columns:    []string{column},
		RefTable:   refTable,
		RefColumns: []string{refColumn},
	})
}

func (b *snapshotBuilder) snapshot() *Snapshot {
	return &Snapshot{Tables: b.tables}
}
