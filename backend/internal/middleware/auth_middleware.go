/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 20:41:15
 * @FilePath: \isizulu-corpus\backend\internal\middleware\auth_middleware.go
 * @LastEditTime: 2025-10-14 16:20:37
 */
package middleware

import (
	"net/http"
	"strings"

	response "isizulu-corpus/backend/internal/infra/common"
	"isizulu-corpus/backend/internal/infra/token"

	"github.com/gin-gonic/gin"
)

// Context keys 供 handler 读取当前身份。
const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// TokenParser 抽象访问令牌解析，由 token.JWTManager 实现。
type TokenParser interface {
	Parse(raw string) (token.Claims, error)
}

// AuthMiddleware 校验 Bearer Token，保护写接口与管理接口。
type AuthMiddleware struct {
	parser TokenParser
}

// NewAuthMiddleware 创建鉴权中间件实例。
func NewAuthMiddleware(parser TokenParser) *AuthMiddleware {
	return &AuthMiddleware{parser: parser}
}

// Handle 要求请求携带合法的访问令牌，否则返回 401。
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.parser.Parse(raw)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.ErrUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// Optional 在携带合法令牌时注入身份，令牌缺失或无效时按匿名放行。
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := m.parser.Parse(raw); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextIsAdmin, claims.IsAdmin)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(header[7:])
	return raw, raw != ""
}
