package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"010_later.sql", "002_second.sql", "001_first.sql", "README.md", "abc_bad.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}

	want := []migrationFile{
		{version: 1, name: "001_first.sql"},
		{version: 2, name: "002_second.sql"},
		{version: 10, name: "010_later.sql"},
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(files), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d: expected %+v, got %+v", i, want[i], files[i])
		}
	}
}

func TestMigrationFiles_MissingDir(t *testing.T) {
	if _, err := migrationFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing migrations directory")
	}
}

func TestMigrationFiles_RepositoryMigrations(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) == 0 || files[0].version != 1 {
		t.Fatalf("expected migration 001 to be present, got %+v", files)
	}
}
