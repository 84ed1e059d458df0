package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig 汇总 HTTP 服务需要的运行参数。
type ServerConfig struct {
	Port               string        `env:"SERVER_PORT" envDefault:"8000"`
	JWTSecret          string        `env:"JWT_SECRET"`
	AccessTTL          time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	DefaultPageSize    int           `env:"PAGE_SIZE_DEFAULT" envDefault:"20"`
	MaxPageSize        int           `env:"PAGE_SIZE_MAX" envDefault:"100"`
	SearchRateLimit    int           `env:"SEARCH_RATE_LIMIT" envDefault:"60"`
	ImportRateLimit    int           `env:"IMPORT_RATE_LIMIT" envDefault:"10"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr 返回 http.Server 监听地址。
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// LoadServerConfig 解析 HTTP 服务配置；在线模式必须提供 JWT_SECRET。
func LoadServerConfig(mode string) (ServerConfig, error) {
	LoadEnvFiles()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse server config: %w", err)
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	if cfg.JWTSecret == "" {
		if mode != ModeLocal {
			return ServerConfig{}, errors.New("JWT_SECRET is required in online mode")
		}
		cfg.JWTSecret = "local-mode-secret"
	}
	return cfg, nil
}
