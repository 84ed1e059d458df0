/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 19:54:47
 * @FilePath: \isizulu-corpus\backend\internal\app\app.go
 * @LastEditTime: 2025-10-14 17:05:44
 */
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"isizulu-corpus/backend/internal/config"
	"isizulu-corpus/backend/internal/domain/activity"
	"isizulu-corpus/backend/internal/domain/corpus"
	"isizulu-corpus/backend/internal/domain/user"
	"isizulu-corpus/backend/internal/infra/client"
	"isizulu-corpus/backend/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AppConfig struct {
	Mode  string
	Local config.LocalRuntime
	MySQL client.MySQLConfig
	Redis client.RedisConfig
}

type Resources struct {
	Config AppConfig
	DB     *gorm.DB
	sqlDB  *sql.DB
	Redis  *redis.Client
}

// InitResources 根据运行模式打开数据库并完成迁移：本地模式使用 SQLite 与固定编辑者，
// 在线模式使用 MySQL，配置了 REDIS_ENDPOINT 时再连接 Redis。
func InitResources(ctx context.Context) (*Resources, error) {
	flags := config.LoadRuntimeFlags()
	if flags.IsLocal() {
		return initLocalResources(ctx, flags)
	}

	mysqlCfg, err := client.LoadMySQLConfig()
	if err != nil {
		return nil, fmt.Errorf("load mysql config: %w", err)
	}

	db, sqlDB, err := client.NewGORMMySQL(mysqlCfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	res := &Resources{
		Config: AppConfig{Mode: flags.Mode, Local: flags.Local, MySQL: mysqlCfg},
		DB:     db,
		sqlDB:  sqlDB,
	}

	if err := migrate(ctx, db); err != nil {
		_ = res.Close()
		return nil, err
	}

	redisCfg, err := client.LoadRedisConfig()
	res.Config.Redis = redisCfg
	switch {
	case errors.Is(err, client.ErrRedisNotConfigured):
		// 未配置 Redis 时限流退化为进程内计数。
	case err != nil:
		_ = res.Close()
		return nil, fmt.Errorf("load redis config: %w", err)
	default:
		rdb, err := client.NewRedisClient(ctx, redisCfg)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		res.Redis = rdb
	}

	return res, nil
}

func initLocalResources(ctx context.Context, flags config.RuntimeFlags) (*Resources, error) {
	db, sqlDB, err := client.NewGORMSQLite(flags.Local.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local sqlite: %w", err)
	}

	res := &Resources{
		Config: AppConfig{Mode: flags.Mode, Local: flags.Local},
		DB:     db,
		sqlDB:  sqlDB,
	}

	if err := migrate(ctx, db); err != nil {
		_ = res.Close()
		return nil, err
	}

	localUser := &user.User{
		ID:       flags.Local.UserID,
		Username: flags.Local.Username,
		IsAdmin:  flags.Local.IsAdmin,
	}
	if err := repository.NewUserRepository(db).EnsureUser(ctx, localUser); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("ensure local user: %w", err)
	}

	return res, nil
}

// Models 返回需要自动迁移的全部模型，用户表必须先于审计表创建。
func Models() []any {
	models := []any{&user.User{}}
	models = append(models, corpus.Models()...)
	return append(models, &activity.Log{})
}

func migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.sqlDB != nil {
		if err := r.sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Resources) DBConn() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.DB
}

func WithShutdown(ctx context.Context, cancel func(), fn func(context.Context) error) {
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
