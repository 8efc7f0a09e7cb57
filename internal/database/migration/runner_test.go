package migration

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_OrdersAndChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("  SELECT 1;\n")},
		"README.md":      {Data: []byte("ignored")},
	}

	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "first" {
		t.Fatalf("unexpected first migration %+v", migs[0])
	}
	if migs[0].SQL != "SELECT 1;" {
		t.Fatalf("expected trimmed sql, got %q", migs[0].SQL)
	}
	if len(migs[0].Checksum) != 64 {
		t.Fatalf("expected sha256 hex checksum, got %q", migs[0].Checksum)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V1__b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := loadMigrations(fsys); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestLoadMigrations_EmptyFile(t *testing.T) {
	fsys := fstest.MapFS{"V1__empty.sql": {Data: []byte("   ")}}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatalf("expected error for empty migration")
	}
}

func TestEmbedded_ContainsSchema(t *testing.T) {
	migs, err := loadMigrations(Embedded())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(migs))
	}
	if !strings.Contains(migs[0].SQL, "job_requirements_mapping") {
		t.Fatalf("expected schema migration first")
	}
	if !strings.Contains(migs[1].SQL, "delete_job_cascade") {
		t.Fatalf("expected cascade function migration second")
	}
}
