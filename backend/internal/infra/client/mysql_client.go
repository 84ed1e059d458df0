/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 17:16:56
 * @FilePath: \isizulu-corpus\backend\internal\infra\client\mysql_client.go
 * @LastEditTime: 2025-10-14 10:31:26
 */
package client

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"isizulu-corpus/backend/internal/config"

	"github.com/caarlos0/env/v11"
	mysqlcfg "github.com/go-sql-driver/mysql"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultMySQLParams = "charset=utf8mb4&parseTime=true&loc=Local"
)

// MySQLConfig 描述在线模式下的数据库连接配置，全部来自环境变量。
type MySQLConfig struct {
	Host     string `env:"MYSQL_HOST"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	Username string `env:"MYSQL_USERNAME"`
	Password string `env:"MYSQL_PASSWORD"`
	Database string `env:"MYSQL_DATABASE" envDefault:"isizulu_corpus"`
	Params   string `env:"MYSQL_PARAMS" envDefault:"charset=utf8mb4&parseTime=true&loc=Local"`
}

// LoadMySQLConfig 读取 .env 文件后解析 MYSQL_* 环境变量。
func LoadMySQLConfig() (MySQLConfig, error) {
	config.LoadEnvFiles()

	var cfg MySQLConfig
	if err := env.Parse(&cfg); err != nil {
		return MySQLConfig{}, fmt.Errorf("parse mysql config: %w", err)
	}
	return cfg, nil
}

// NewGORMMySQL 创建 GORM 连接并返回 ORM 与底层 *sql.DB，便于控制生命周期。
func NewGORMMySQL(cfg MySQLConfig) (*gorm.DB, *sql.DB, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(mysqlDriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open gorm mysql: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(60 * time.Minute)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}

	return gormDB, sqlDB, nil
}

// validateMySQLConfig 校验配置字段是否完整。
func validateMySQLConfig(cfg MySQLConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("mysql host is required")
	}
	if cfg.Username == "" {
		return fmt.Errorf("mysql username is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("mysql database is required")
	}
	return nil
}

// BuildMySQLDSN 在通过校验后借助驱动自带的 Config 生成 DSN，额外参数按 query string 解析。
func BuildMySQLDSN(cfg MySQLConfig) (string, error) {
	if err := validateMySQLConfig(cfg); err != nil {
		return "", err
	}

	params := cfg.Params
	if params == "" {
		params = defaultMySQLParams
	}
	values, err := url.ParseQuery(params)
	if err != nil {
		return "", fmt.Errorf("parse mysql params: %w", err)
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	driverCfg := mysqlcfg.NewConfig()
	driverCfg.User = cfg.Username
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	driverCfg.DBName = cfg.Database
	driverCfg.Params = map[string]string{}

	for key := range values {
		value := values.Get(key)
		switch key {
		case "parseTime":
			driverCfg.ParseTime = value == "true" || value == "1"
		case "loc":
			loc, err := time.LoadLocation(value)
			if err != nil {
				return "", fmt.Errorf("invalid mysql loc %q: %w", value, err)
			}
			driverCfg.Loc = loc
		default:
			driverCfg.Params[key] = value
		}
	}

	return driverCfg.FormatDSN(), nil
}
