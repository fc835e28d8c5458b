// Package sqlguard is the admission layer for untrusted SQL text. It splits
// raw input into statements, strips comments, and classifies each statement
// as read-only or not, all before anything touches a database. Every function
// here is a pure, synchronous transform: no I/O, no blocking, no shared state.
package sqlguard

import "strings"

// SplitStatements splits raw SQL text on top-level semicolons. A semicolon
// inside a single- or double-quoted literal does not split, and a doubled
// quote inside a literal is an escaped quote rather than a state toggle.
// Empty fragments (including a trailing terminator) are dropped, so any
// input, however malformed, yields zero or more trimmed non-empty statements.
func SplitStatements(raw string) []string {
	var stmts []string
	var b strings.Builder
	var quote byte // 0 outside a literal, otherwise the opening quote char
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == quote {
				if i+1 < len(raw) && raw[i+1] == quote {
					// escaped quote, stay inside the literal
					b.WriteByte(raw[i+1])
					i++
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == ';':
			if s := strings.TrimSpace(b.String()); s != "" {
				stmts = append(stmts, s)
			}
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}
