/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-09 16:34:40
 * @FilePath: \isizulu-corpus\backend\internal\infra\client\redis_client.go
 * @LastEditTime: 2025-10-15 11:40:18
 */
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"isizulu-corpus/backend/internal/config"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPort = "6379"

// ErrRedisNotConfigured 表示未设置 REDIS_ENDPOINT，限流器据此退化为进程内计数。
var ErrRedisNotConfigured = errors.New("REDIS_ENDPOINT not set")

// RedisConfig 描述限流使用的 Redis 连接。REDIS_ENDPOINT 可以是 host[:port]，
// 也可以是 redis:// 或 rediss:// URL，URL 中的密码与库号优先于单独的变量。
type RedisConfig struct {
	Endpoint    string        `env:"REDIS_ENDPOINT"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	KeyPrefix   string        `env:"REDIS_KEY_PREFIX" envDefault:"corpus:ratelimit"`
}

// LoadRedisConfig 解析 REDIS_* 环境变量，未配置地址时返回 ErrRedisNotConfigured。
func LoadRedisConfig() (RedisConfig, error) {
	config.LoadEnvFiles()

	var cfg RedisConfig
	if err := env.Parse(&cfg); err != nil {
		return RedisConfig{}, fmt.Errorf("parse redis config: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return cfg, ErrRedisNotConfigured
	}
	return cfg, nil
}

// Options 转换为 go-redis 连接参数。
func (c RedisConfig) Options() (*redis.Options, error) {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return nil, ErrRedisNotConfigured
	}

	var opts *redis.Options
	if strings.Contains(endpoint, "://") {
		parsed, err := redis.ParseURL(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if parsed.Password == "" {
			parsed.Password = c.Password
		}
		opts = parsed
	} else {
		addr, err := normaliseRedisAddr(endpoint)
		if err != nil {
			return nil, err
		}
		if c.DB < 0 {
			return nil, fmt.Errorf("invalid redis db %d", c.DB)
		}
		opts = &redis.Options{Addr: addr, Password: c.Password, DB: c.DB}
	}

	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	return opts, nil
}

// NewRedisClient 建立连接并 PING 一次，失败时关闭客户端。
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

func normaliseRedisAddr(endpoint string) (string, error) {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		// 未写端口时使用默认端口。
		host, port = strings.Trim(endpoint, "[]"), defaultRedisPort
	}
	if host == "" {
		return "", fmt.Errorf("invalid redis endpoint %q: host is empty", endpoint)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return "", fmt.Errorf("invalid redis endpoint %q: bad port", endpoint)
	}
	return net.JoinHostPort(host, port), nil
}
