package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyclock/migrations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyEmbeddedSQLiteMigrations(t *testing.T) {
	db := openTestDB(t)
	sub, err := Sub(migrations.FS, DialectSQLite)
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(db, sub, DialectSQLite)

	var logs []string
	count, err := runner.ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(logs) == 0 {
		t.Error("expected progress to be logged")
	}

	for _, table := range []string{"kv", "scheduled_activities", "activity_results"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("table %s missing after migration", table)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		count, err := runner.ApplyMigrations(nil)
		if err != nil {
			t.Fatalf("second ApplyMigrations failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no migrations on second run, got %d", count)
		}
		version, err := runner.CurrentVersion()
		if err != nil {
			t.Fatal(err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
	})
}

func TestReadMigrationFiles(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"010_later.sql":  {Data: []byte("SELECT 1;")},
				"002_second.sql": {Data: []byte("SELECT 1;")},
				"README.md":      {Data: []byte("ignored")},
			},
			want: []int{2, 10},
		},
		{
			name:    "bad name",
			files:   fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "invalid migration filename",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"001_a.sql": {Data: []byte("SELECT 1;")},
				"01_b.sql":  {Data: []byte("SELECT 1;")},
			},
			wantErr: "duplicate migration version",
		},
		{
			name:    "zero version",
			files:   fstest.MapFS{"000_zero.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, tt.files, DialectSQLite)
			got, err := runner.ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d migrations, got %d", len(tt.want), len(got))
			}
			for i, v := range tt.want {
				if got[i].Version != v {
					t.Errorf("migration %d: expected version %d, got %d", i, v, got[i].Version)
				}
			}
		})
	}
}

func TestValidateVersionRejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	files := fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE t (id INTEGER);")}}
	runner := NewRunner(db, files, DialectSQLite)

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Fatalf("expected valid version, got %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 5"); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected error for newer schema version")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("expected ApplyMigrations to refuse a newer schema")
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	files := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE nope (")},
	}
	runner := NewRunner(db, files, DialectSQLite)

	count, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected broken migration to fail")
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", count)
	}
	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}
}
