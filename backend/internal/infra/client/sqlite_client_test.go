package client_test

import (
	"path/filepath"
	"testing"

	"isizulu-corpus/backend/internal/infra/client"
)

func TestNewGORMSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "corpus.db")

	db, sqlDB, err := client.NewGORMSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var enabled int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("expected foreign keys enabled, got %d", enabled)
	}

	if _, _, err := client.NewGORMSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSQLiteLowerFoldsUnicode(t *testing.T) {
	db, sqlDB, err := client.NewGORMSQLite(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var lowered string
	if err := db.Raw("SELECT lower(?)", "ÚBUNTU ÉMAZWENI").Scan(&lowered).Error; err != nil {
		t.Fatalf("select lower: %v", err)
	}
	if lowered != "úbuntu émazweni" {
		t.Fatalf("expected unicode lower-casing, got %q", lowered)
	}

	var isNull bool
	if err := db.Raw("SELECT lower(NULL) IS NULL").Scan(&isNull).Error; err != nil {
		t.Fatalf("select lower(null): %v", err)
	}
	if !isNull {
		t.Fatalf("lower(NULL) must stay NULL")
	}
}
