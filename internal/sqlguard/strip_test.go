package sqlguard

import "testing"

func TestStripComments(t *testing.T) {
	tests := []struct {
		stmt string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"-- leading comment\nSELECT 1", "SELECT 1"},
		{"SELECT 1 -- trailing comment", "SELECT 1"},
		{"/* block */ SELECT 1", "SELECT 1"},
		{"SELECT/*inline*/1", "SELECT 1"},
		{"SELECT 1 /* spans\nlines */ + 2", "SELECT 1   + 2"},
		// comment markers inside literals are data, not comments
		{"SELECT '--not a comment'", "SELECT '--not a comment'"},
		{"SELECT '/* literal */'", "SELECT '/* literal */'"},
		{`SELECT "a--b" FROM t`, `SELECT "a--b" FROM t`},
		// unterminated block comment swallows the rest
		{"SELECT 1 /* unterminated", "SELECT 1"},
		{"-- only a comment", ""},
		{"/* only */", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripComments(tt.stmt); got != tt.want {
			t.Errorf("StripComments(%q) = %q, want %q", tt.stmt, got, tt.want)
		}
	}
}
