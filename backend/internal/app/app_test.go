package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"isizulu-corpus/backend/internal/app"
	"isizulu-corpus/backend/internal/config"
	"isizulu-corpus/backend/internal/domain/corpus"
	userdomain "isizulu-corpus/backend/internal/domain/user"
)

const localModeTestUsername = "umhleli-wasendaweni"

// TestInitResourcesLocalMode 验证 APP_MODE=local 时切换到 SQLite、完成迁移并创建本地编辑者。
func TestInitResourcesLocalMode(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "corpus-local.db")

	config.SetEnvFileLoadingForTest(false)
	t.Cleanup(func() {
		config.SetEnvFileLoadingForTest(true)
	})

	t.Setenv("APP_MODE", config.ModeLocal)
	t.Setenv("LOCAL_SQLITE_PATH", dbPath)
	t.Setenv("LOCAL_USER_ID", "99")
	t.Setenv("LOCAL_USER_USERNAME", localModeTestUsername)
	t.Setenv("LOCAL_USER_ADMIN", "true")

	resources, err := app.InitResources(ctx)
	if err != nil {
		t.Fatalf("InitResources(local): %v", err)
	}
	t.Cleanup(func() {
		if err := resources.Close(); err != nil {
			t.Fatalf("close resources: %v", err)
		}
	})

	if resources.Config.Mode != config.ModeLocal {
		t.Fatalf("expected mode %q, got %q", config.ModeLocal, resources.Config.Mode)
	}
	if name := resources.DBConn().Dialector.Name(); name != "sqlite" {
		t.Fatalf("expected sqlite dialector, got %s", name)
	}
	if resources.Redis != nil {
		t.Fatalf("expected redis to be nil in local mode")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("sqlite db not created: %v", err)
	}

	var user userdomain.User
	if err := resources.DB.WithContext(ctx).First(&user, uint(99)).Error; err != nil {
		t.Fatalf("load local user: %v", err)
	}
	if user.Username != localModeTestUsername || !user.IsAdmin {
		t.Fatalf("unexpected local user: %+v", user)
	}

	for _, model := range app.Models() {
		if !resources.DB.Migrator().HasTable(model) {
			t.Fatalf("table for %T not migrated", model)
		}
	}
	if !resources.DB.Migrator().HasIndex(&corpus.AdditionalTranslation{}, "idx_translation_entry_language") {
		t.Fatalf("expected unique index on translation language")
	}
}

// TestInitResourcesLocalModeIsIdempotent 验证重复启动不会因本地用户已存在而失败。
func TestInitResourcesLocalModeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "corpus.db")

	config.SetEnvFileLoadingForTest(false)
	t.Cleanup(func() {
		config.SetEnvFileLoadingForTest(true)
	})
	t.Setenv("APP_MODE", config.ModeLocal)
	t.Setenv("LOCAL_SQLITE_PATH", dbPath)
	t.Setenv("LOCAL_USER_ADMIN", "true")

	for i := 0; i < 2; i++ {
		resources, err := app.InitResources(ctx)
		if err != nil {
			t.Fatalf("InitResources run %d: %v", i+1, err)
		}
		if err := resources.Close(); err != nil {
			t.Fatalf("close resources: %v", err)
		}
	}
}

func TestNilResources(t *testing.T) {
	var resources *app.Resources
	if resources.DBConn() != nil {
		t.Fatalf("expected nil db for nil resources")
	}
	if err := resources.Close(); err != nil {
		t.Fatalf("close nil resources: %v", err)
	}
}
