package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "isizulu-corpus/backend/internal/domain/user"
	"isizulu-corpus/backend/internal/infra/token"
	"isizulu-corpus/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(t *testing.T, optional bool) (*gin.Engine, *token.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := token.NewJWTManager("test-secret", time.Minute)
	mw := middleware.NewAuthMiddleware(manager)

	router := gin.New()
	if optional {
		router.Use(mw.Optional())
	} else {
		router.Use(mw.Handle())
	}
	router.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get(middleware.ContextUserID)
		isAdmin, _ := c.Get(middleware.ContextIsAdmin)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_admin": isAdmin})
	})
	return router, manager
}

func issue(t *testing.T, manager *token.JWTManager, id uint, admin bool) string {
	t.Helper()
	access, err := manager.Issue(&domain.User{ID: id, Username: "editor", IsAdmin: admin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return access.Token
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	router, manager := newAuthRouter(t, false)

	cases := map[string]string{
		"missing": "",
		"scheme":  "Token abc",
		"invalid": "Bearer not-a-jwt",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+issue(t, manager, 5, true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != `{"is_admin":true,"user_id":5}` {
		t.Fatalf("unexpected identity: %s", body)
	}
}

func TestAuthMiddlewareOptionalAllowsAnonymous(t *testing.T) {
	router, manager := newAuthRouter(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"is_admin":null,"user_id":null}` {
		t.Fatalf("expected no identity, got %s", body)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected invalid token to fall back to anonymous, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, manager, 9, false))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if body := rec.Body.String(); body != `{"is_admin":false,"user_id":9}` {
		t.Fatalf("unexpected identity: %s", body)
	}
}
