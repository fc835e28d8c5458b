package db

import "database/sql"

// collectRows drains rows into ordered column names plus one map per row.
// []byte values become strings so every value is a JSON-friendly scalar
// (text, numeric, boolean, timestamp, or nil).
func collectRows(rows *sql.Rows) ([]string, []map[string]any, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	var out []map[string]any
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			v := *(scan[i].(*any))
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			m[c] = v
		}
		out = append(out, m)
	}
	return cols, out, rows.Err()
}

// closeRows closes rows and surfaces any deferred iteration error.
func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}
