package middleware

import "github.com/gin-gonic/gin"

// OfflineAuthMiddleware 在本地模式下注入固定编辑者，绕过 JWT 校验流程。
type OfflineAuthMiddleware struct {
	userID  uint
	isAdmin bool
}

// NewOfflineAuthMiddleware 构造用于本地模式的鉴权中间件。
func NewOfflineAuthMiddleware(userID uint, isAdmin bool) *OfflineAuthMiddleware {
	return &OfflineAuthMiddleware{
		userID:  userID,
		isAdmin: isAdmin,
	}
}

// Handle 将固定用户写入上下文，使后续 Handler 可以读取 userID/isAdmin。
func (m *OfflineAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, m.userID)
		c.Set(ContextIsAdmin, m.isAdmin)
		c.Next()
	}
}

// Optional 与 Handle 相同，本地模式下所有请求都归属于固定用户。
func (m *OfflineAuthMiddleware) Optional() gin.HandlerFunc {
	return m.Handle()
}
