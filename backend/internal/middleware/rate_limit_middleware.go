/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-13 23:10:00
 * @FilePath: \isizulu-corpus\backend\internal\middleware\rate_limit_middleware.go
 * @LastEditTime: 2025-10-14 16:31:08
 */
package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	response "isizulu-corpus/backend/internal/infra/common"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitConfig 描述单个路由组的限流参数。Limit <= 0 表示不限流。
type RateLimitConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
}

// RateLimitMiddleware 按客户端 IP 计数，超过阈值返回 429。
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	cfg     RateLimitConfig
	logger  *zap.SugaredLogger
}

// NewRateLimitMiddleware 构建限流中间件。
func NewRateLimitMiddleware(limiter ratelimit.Limiter, cfg RateLimitConfig, logger *zap.SugaredLogger) *RateLimitMiddleware {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}
	return &RateLimitMiddleware{
		limiter: limiter,
		cfg:     cfg,
		logger:  appLogger.OrNop(logger, "middleware.ratelimit"),
	}
}

// Handle 返回 Gin 中间件。限流后端异常时放行，只记录警告。
func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || m.limiter == nil || m.cfg.Limit <= 0 {
			c.Next()
			return
		}

		ip := ClientIP(c)
		result, err := m.limiter.Allow(c.Request.Context(), ratelimit.Key(m.cfg.Scope, ip), m.cfg.Limit, m.cfg.Window)
		if err != nil {
			m.logger.Warnw("rate limit check failed", "scope", m.cfg.Scope, "ip", ip, "error", err)
			c.Next()
			return
		}
		if !result.Allowed {
			retry := int(math.Ceil(result.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			m.logger.Infow("rate limited", "scope", m.cfg.Scope, "ip", ip, "retry_after", retry)
			response.Fail(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "too many requests", gin.H{
				"retry_after_seconds": retry,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClientIP 优先取 X-Forwarded-For 的第一个地址，否则退回 gin 的 ClientIP。
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	return strings.TrimSpace(c.ClientIP())
}
