package sqlguard

import "strings"

// StripComments removes line comments (-- to end of line) and non-nesting
// block comments (/* ... */) from one statement. Comment markers inside
// single- or double-quoted literals are left alone. Each removed comment is
// replaced by a single space so adjacent tokens cannot fuse, and the result
// is re-trimmed. An unterminated block comment swallows the rest of the
// statement. Classification is defined only on the output of this function.
func StripComments(stmt string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == quote {
				if i+1 < len(stmt) && stmt[i+1] == quote {
					b.WriteByte(stmt[i+1])
					i++
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '-' && i+1 < len(stmt) && stmt[i+1] == '-':
			for i < len(stmt) && stmt[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(stmt) && stmt[i+1] == '*':
			end := strings.Index(stmt[i+2:], "*/")
			b.WriteByte(' ')
			if end == -1 {
				i = len(stmt)
			} else {
				i += 2 + end + 1
			}
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
