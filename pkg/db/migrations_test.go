package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMigrationFiles_ValidDir(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"001_init.sql":      "CREATE TABLE contracts (id UUID PRIMARY KEY);",
		"002_functions.sql": "CREATE TABLE interface_functions (id UUID PRIMARY KEY);",
		"003_defaults.sql":  "CREATE TABLE interface_defaults (id UUID PRIMARY KEY);",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("db:migrations_test - failed to write test file %s: %v", name, err)
		}
	}

	result, err := LoadMigrationFiles(dir)
	if err != nil {
		t.Fatalf("db:migrations_test - unexpected error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("db:migrations_test - expected 3 migrations, got %d", len(result))
	}

	// Verify order (should be sorted by filename)
	if result[0] != "CREATE TABLE contracts (id UUID PRIMARY KEY);" {
		t.Errorf("db:migrations_test - first migration content mismatch")
	}
	if result[1] != "CREATE TABLE interface_functions (id UUID PRIMARY KEY);" {
		t.Errorf("db:migrations_test - second migration content mismatch")
	}
	if result[2] != "CREATE TABLE interface_defaults (id UUID PRIMARY KEY);" {
		t.Errorf("db:migrations_test - third migration content mismatch")
	}
}

func TestLoadMigrationFiles_SkipsNonSQLFiles(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"001_init.sql":  "CREATE TABLE t1;",
		"README.md":     "# Migrations",
		"notes.txt":     "some notes",
		"002_alter.sql": "ALTER TABLE t1;",
		"config.json":   "{}",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("db:migrations_test - failed to write test file: %v", err)
		}
	}

	result, err := LoadMigrationFiles(dir)
	if err != nil {
		t.Fatalf("db:migrations_test - unexpected error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("db:migrations_test - expected 2 SQL files, got %d", len(result))
	}
}

func TestLoadMigrationFiles_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()

	// Create a subdirectory with a tricky name ending in .sql
	subDir := filepath.Join(dir, "archive.sql")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatalf("db:migrations_test - failed to create subdir: %v", err)
	}

	sqlFile := filepath.Join(dir, "001_init.sql")
	if err := os.WriteFile(sqlFile, []byte("CREATE TABLE x;"), 0644); err != nil {
		t.Fatalf("db:migrations_test - failed to write file: %v", err)
	}

	result, err := LoadMigrationFiles(dir)
	if err != nil {
		t.Fatalf("db:migrations_test - unexpected error: %v", err)
	}

	if len(result) != 1 {
		t.Errorf("db:migrations_test - expected 1 migration (skipping dir), got %d", len(result))
	}
}

func TestLoadMigrationFiles_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	result, err := LoadMigrationFiles(dir)
	if err != nil {
		t.Fatalf("db:migrations_test - unexpected error: %v", err)
	}

	if len(result) != 0 {
		t.Errorf("db:migrations_test - expected empty result, got %d items", len(result))
	}
}

func TestLoadMigrationFiles_NonExistentDir(t *testing.T) {
	_, err := LoadMigrationFiles(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Error("db:migrations_test - expected error for non-existent directory")
	}
}

func TestLoadMigrationFiles_SortOrder(t *testing.T) {
	dir := t.TempDir()

	// Write files in reverse order to ensure sorting works
	files := []struct {
		name    string
		content string
	}{
		{"003_third.sql", "THIRD"},
		{"001_first.sql", "FIRST"},
		{"002_second.sql", "SECOND"},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			t.Fatalf("db:migrations_test - failed to write file: %v", err)
		}
	}

	result, err := LoadMigrationFiles(dir)
	if err != nil {
		t.Fatalf("db:migrations_test - unexpected error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("db:migrations_test - expected 3, got %d", len(result))
	}
	if result[0] != "FIRST" {
		t.Errorf("db:migrations_test - expected FIRST at index 0, got %s", result[0])
	}
	if result[1] != "SECOND" {
		t.Errorf("db:migrations_test - expected SECOND at index 1, got %s", result[1])
	}
	if result[2] != "THIRD" {
		t.Errorf("db:migrations_test - expected THIRD at index 2, got %s", result[2])
	}
}
