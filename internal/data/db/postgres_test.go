package db

import "testing"

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	cases := map[string]string{
		"forum.db":                        "forum.db?_foreign_keys=on",
		"file:x?mode=memory&cache=shared": "file:x?mode=memory&cache=shared&_foreign_keys=on",
		"forum.db?_foreign_keys=off":      "forum.db?_foreign_keys=off",
	}
	for in, want := range cases {
		if got := SQLiteDSN(in); got != want {
			t.Fatalf("SQLiteDSN(%q): want=%q got=%q", in, want, got)
		}
	}
}
