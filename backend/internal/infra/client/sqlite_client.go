package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteDriverName 是覆盖了 lower() 的 SQLite 驱动，本地模式与测试库都通过它打开。
// SQLite 内置的 lower() 只折叠 ASCII，大写的 Á、Ş 等字符无法与小写关键词匹配。
const SQLiteDriverName = "sqlite3_corpus"

var registerSQLiteOnce sync.Once

// SQLiteDialector 返回使用 SQLiteDriverName 的 GORM 方言。
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLiteOnce.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", unicodeLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: dsn})
}

// unicodeLower 与仓储层处理关键词时使用相同的 strings.ToLower，NULL 与数字原样返回。
func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// NewGORMSQLite 打开本地 SQLite 文件，不存在时自动创建目录；本地模式与命令行工具共用。
func NewGORMSQLite(path string) (*gorm.DB, *sql.DB, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	gormDB, err := gorm.Open(SQLiteDialector(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db: %w", err)
	}
	// SQLite 只允许单写者。
	sqlDB.SetMaxOpenConns(1)

	return gormDB, sqlDB, nil
}
