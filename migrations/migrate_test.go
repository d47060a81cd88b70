package migrations

import "testing"

func TestSplitStatements(t *testing.T) {
	t.Run("splits on semicolons and trims", func(t *testing.T) {
		got := splitStatements("CREATE TABLE a (id INT);\n\nINSERT INTO a VALUES (1);\n")
		if len(got) != 2 {
			t.Fatalf("got %d statements, want 2: %v", len(got), got)
		}
		if got[0] != "CREATE TABLE a (id INT)" {
			t.Errorf("first = %q", got[0])
		}
	})

	t.Run("drops comment-only fragments", func(t *testing.T) {
		got := splitStatements("-- schema notes\n;-- nothing here\nSELECT 1;")
		if len(got) != 1 || got[0] != "SELECT 1" {
			t.Fatalf("got %v, want [SELECT 1]", got)
		}
	})

	t.Run("strips leading comment lines from statements", func(t *testing.T) {
		got := splitStatements("-- the backstop index\nCREATE INDEX i ON t (c);")
		if len(got) != 1 {
			t.Fatalf("got %d statements, want 1", len(got))
		}
		if got[0] != "CREATE INDEX i ON t (c)" {
			t.Errorf("statement = %q", got[0])
		}
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		if got := splitStatements("  \n ; ; \n"); len(got) != 0 {
			t.Errorf("got %v, want none", got)
		}
	})
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("embedded %d files, want schema and seed at least", len(entries))
	}
	for _, e := range entries {
		raw, err := migrationFiles.ReadFile(e.Name())
		if err != nil {
			t.Fatalf("ReadFile %s: %v", e.Name(), err)
		}
		if len(splitStatements(string(raw))) == 0 {
			t.Errorf("%s contains no executable statements", e.Name())
		}
	}
}
