package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Dialect() != DialectSQLite {
		t.Errorf("Dialect() = %q, want %q", s.Dialect(), DialectSQLite)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "results"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		pragma   string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.pragma, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_MigratesSchemaVersion(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_results_suite_name'",
	).Scan(&name)
	if err != nil {
		t.Errorf("history index missing: %v", err)
	}
}

func TestOpenMySQL_InvalidDSN(t *testing.T) {
	if _, err := OpenMySQL("not a dsn"); err == nil {
		t.Fatal("OpenMySQL() with a malformed DSN should fail")
	}
}

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (x INT);

-- comment
CREATE TABLE b (y INT)
  ENGINE=InnoDB;
`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (x INT)" {
		t.Errorf("first statement = %q", got[0])
	}
	if got[1] != "CREATE TABLE b (y INT)\n  ENGINE=InnoDB" {
		t.Errorf("second statement = %q", got[1])
	}
}

func TestSplitStatements_MySQLSchema(t *testing.T) {
	if got := len(splitStatements(mysqlSchemaSQL)); got != 2 {
		t.Errorf("mysql schema has %d statements, want 2", got)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	if a == b {
		t.Errorf("Generate() returned the same id twice: %s", a)
	}
	if len(a) != 36 || a[14] != '7' {
		t.Errorf("Generate() = %q, want a hyphenated v7 UUID", a)
	}
}
