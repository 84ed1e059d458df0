// Package testutil 提供测试共用的内存数据库。
package testutil

import (
	"strings"
	"testing"

	"isizulu-corpus/backend/internal/domain/activity"
	"isizulu-corpus/backend/internal/domain/corpus"
	"isizulu-corpus/backend/internal/domain/user"
	"isizulu-corpus/backend/internal/infra/client"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 为当前测试创建独立的内存 SQLite 并完成迁移。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(client.SQLiteDialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := []any{&user.User{}}
	models = append(models, corpus.Models()...)
	models = append(models, &activity.Log{})
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}
