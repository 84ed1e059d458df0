package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"isizulu-corpus/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

const offlineMiddlewareTestUserID = uint(42)

// TestOfflineAuthMiddlewareHandle 确认离线鉴权中间件能够注入本地编辑者。
func TestOfflineAuthMiddlewareHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, handler := range map[string]gin.HandlerFunc{
		"handle":   middleware.NewOfflineAuthMiddleware(offlineMiddlewareTestUserID, true).Handle(),
		"optional": middleware.NewOfflineAuthMiddleware(offlineMiddlewareTestUserID, true).Optional(),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(handler)

			var capturedUser, capturedRole any
			router.GET("/", func(c *gin.Context) {
				capturedUser, _ = c.Get(middleware.ContextUserID)
				capturedRole, _ = c.Get(middleware.ContextIsAdmin)
				c.Status(http.StatusNoContent)
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			if userID, ok := capturedUser.(uint); !ok || userID != offlineMiddlewareTestUserID {
				t.Fatalf("userID not injected, got=%v", capturedUser)
			}
			if isAdmin, ok := capturedRole.(bool); !ok || !isAdmin {
				t.Fatalf("isAdmin not injected, got=%v", capturedRole)
			}
		})
	}
}
