package sqlguard

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	var c Classifier // zero value = default keyword sets
	tests := []struct {
		stmt   string
		want   bool
		reason string // substring expected in the deny reason
	}{
		{"SELECT 1", true, ""},
		{"select * from users", true, ""},
		{"WITH cte AS (SELECT 1) SELECT * FROM cte", true, ""},
		{"EXPLAIN SELECT 1", true, ""},
		{"SHOW server_version", true, ""},
		{"DESCRIBE users", true, ""},
		// empty statement is a no-op, not a rejection
		{"", true, ""},
		{"   \n ", true, ""},

		// leading keyword not in the allow set
		{"INSERT INTO t VALUES (1)", false, "read-only keyword"},
		{"UPDATE t SET x = 1", false, "read-only keyword"},
		{"VACUUM", false, "read-only keyword"},
		{"BEGIN", false, "read-only keyword"},

		// forbidden keyword anywhere in the body
		{"WITH x AS (DELETE FROM t RETURNING *) SELECT * FROM x", false, "DELETE"},
		{"SELECT * FROM t WHERE id IN (SELECT do_write()) UNION SELECT drop_all()", true, ""},
		{"SELECT 1 UNION ALL SELECT * FROM t; DROP TABLE t", false, "DROP"},
		{"EXPLAIN INSERT INTO t VALUES (1)", false, "INSERT"},
		{"SELECT * FROM t LOCK IN SHARE MODE", false, "LOCK"},

		// word boundaries: identifiers containing forbidden words pass
		{"SELECT created_at, updated_at FROM t", true, ""},
		{"SELECT * FROM deleted_items", true, ""},
		// forbidden keywords inside string literals are data
		{"SELECT 'DROP TABLE users'", true, ""},
		{"SELECT * FROM t WHERE note = 'please DELETE me'", true, ""},

		// embedded terminator with trailing content
		{"SELECT 1 ; SELECT 2", false, "embedded"},
		{"SELECT 1;", true, ""}, // trailing terminator only, nothing after
		{"SELECT 'a;b'", true, ""},
	}
	for _, tt := range tests {
		v := c.Classify(tt.stmt)
		if v.Allowed != tt.want {
			t.Errorf("Classify(%q): allowed=%v, want %v (reason %q)", tt.stmt, v.Allowed, tt.want, v.Reason)
			continue
		}
		if !tt.want && !strings.Contains(v.Reason, tt.reason) {
			t.Errorf("Classify(%q): reason %q does not mention %q", tt.stmt, v.Reason, tt.reason)
		}
	}
}

func TestClassifyCustomKeywordSets(t *testing.T) {
	c := Classifier{
		Allowed:   []string{"PRAGMA"},
		Forbidden: []string{"WRITE"},
	}
	if v := c.Classify("PRAGMA table_info(users)"); !v.Allowed {
		t.Errorf("custom allow set rejected PRAGMA: %q", v.Reason)
	}
	if v := c.Classify("SELECT 1"); v.Allowed {
		t.Error("custom allow set should reject SELECT")
	}
	if v := c.Classify("PRAGMA journal_mode = WRITE"); v.Allowed {
		t.Error("custom forbidden set should reject WRITE")
	}
}

// A comment placed right before a forbidden keyword must not smuggle it
// through the pipeline: split, strip, then classify.
func TestPipelineCommentSmuggling(t *testing.T) {
	var c Classifier
	raw := "SELECT 1; /*comment*/ DROP TABLE x"
	stmts := SplitStatements(raw)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	denied := false
	for _, s := range stmts {
		if v := c.Classify(StripComments(s)); !v.Allowed {
			denied = true
		}
	}
	if !denied {
		t.Errorf("comment-hidden DROP passed the pipeline: %q", raw)
	}
}

// Every input whose leading keyword is outside the allow set must be denied.
func TestClassifyNonReadOnlyLeadingKeyword(t *testing.T) {
	var c Classifier
	for _, stmt := range []string{
		"DELETE FROM t", "DROP TABLE t", "TRUNCATE t", "CREATE TABLE t (x int)",
		"ALTER TABLE t ADD c int", "GRANT ALL ON t TO x", "MERGE INTO t USING s ON 1=1",
		"CALL p()", "COPY t FROM '/tmp/f'", "LOCK TABLE t",
	} {
		if v := c.Classify(stmt); v.Allowed {
			t.Errorf("Classify(%q): expected DENY", stmt)
		}
	}
}
