package sqlguard

import (
	"fmt"
	"strings"
)

// DefaultAllowed are the leading keywords accepted as read-only.
var DefaultAllowed = []string{"SELECT", "WITH", "EXPLAIN", "SHOW", "DESCRIBE"}

// DefaultForbidden are keywords that deny a statement wherever they appear
// in its body, catching writes nested inside an otherwise read-looking
// statement (data-modifying CTEs, subquery calls to mutating routines).
var DefaultForbidden = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "TRUNCATE", "CREATE",
	"GRANT", "REVOKE", "MERGE", "CALL", "EXECUTE", "REPLACE", "COPY", "LOCK",
}

// Verdict is the classifier's decision for one statement. It is never
// mutated after creation.
type Verdict struct {
	Statement string `json:"statement"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
}

// Classifier decides whether a single comment-free statement is read-only.
// The keyword sets are configuration, not hard-coded literals; the zero
// value uses the defaults above.
//
// This is explicitly a keyword heuristic, not a parser. It cannot detect a
// write performed by an opaque routine behind a read-looking call, or
// dialect-specific write syntax outside the forbidden set. That trade-off
// buys simplicity and auditability and is a documented limitation, backed
// up by a read-only database session underneath.
type Classifier struct {
	Allowed   []string
	Forbidden []string
}

// Classify returns the verdict for one statement. Comments must already be
// stripped. An empty statement is allowed as a no-op: it contributes no
// result rows and is skipped by the executor, not rejected.
func (c *Classifier) Classify(stmt string) Verdict {
	trimmed := strings.TrimSpace(stmt)
	if trimmed == "" {
		return Verdict{Statement: stmt, Allowed: true}
	}

	first, rest := leadingKeyword(trimmed)
	if !keywordSet(c.allowed()).contains(first) {
		return Verdict{Statement: stmt, Reason: "statement does not begin with a read-only keyword"}
	}
	if kw, found := scanForbidden(rest, keywordSet(c.forbidden())); found {
		return Verdict{Statement: stmt, Reason: fmt.Sprintf("forbidden keyword %s in statement body", kw)}
	}
	// Splitter bypass: a terminator that survived splitting (e.g. smuggled
	// through an encoding trick) followed by more content.
	if hasEmbeddedStatement(trimmed) {
		return Verdict{Statement: stmt, Reason: "embedded secondary statement detected"}
	}
	return Verdict{Statement: stmt, Allowed: true}
}

func (c *Classifier) allowed() []string {
	if len(c.Allowed) > 0 {
		return c.Allowed
	}
	return DefaultAllowed
}

func (c *Classifier) forbidden() []string {
	if len(c.Forbidden) > 0 {
		return c.Forbidden
	}
	return DefaultForbidden
}

type keywordSet []string

func (s keywordSet) contains(word string) bool {
	for _, k := range s {
		if strings.EqualFold(k, word) {
			return true
		}
	}
	return false
}

// leadingKeyword returns the first keyword of the statement (the leading run
// of identifier characters) and everything after it.
func leadingKeyword(stmt string) (keyword, rest string) {
	end := 0
	for end < len(stmt) && isWordChar(stmt[end]) {
		end++
	}
	return stmt[:end], stmt[end:]
}

// scanForbidden walks text character by character, outside string literals,
// and reports the first word-boundary-delimited match against the forbidden
// set. Identifiers like "created_at" never match "CREATE", and a keyword
// inside a quoted literal is data, not a statement.
func scanForbidden(text string, forbidden keywordSet) (string, bool) {
	var quote byte
	start := -1
	check := func(end int) (string, bool) {
		if start < 0 {
			return "", false
		}
		word := text[start:end]
		start = -1
		if forbidden.contains(word) {
			return strings.ToUpper(word), true
		}
		return "", false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				if i+1 < len(text) && text[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
			continue
		}
		switch {
		case isWordChar(c):
			if start < 0 {
				start = i
			}
		case c == '\'' || c == '"':
			if w, found := check(i); found {
				return w, true
			}
			quote = c
		default:
			if w, found := check(i); found {
				return w, true
			}
		}
	}
	return check(len(text))
}

// hasEmbeddedStatement reports whether an unquoted terminator is followed by
// further non-whitespace content.
func hasEmbeddedStatement(text string) bool {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				if i+1 < len(text) && text[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case ';':
			if strings.TrimSpace(text[i+1:]) != "" {
				return true
			}
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
