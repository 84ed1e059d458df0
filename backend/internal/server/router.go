package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"isizulu-corpus/backend/internal/handler"
	response "isizulu-corpus/backend/internal/infra/common"
	"isizulu-corpus/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	EntryHandler     *handler.EntryHandler
	AnalyticsHandler *handler.AnalyticsHandler
	AuthHandler      *handler.AuthHandler
	AuthMW           middleware.Authenticator
	SearchLimit      *middleware.RateLimitMiddleware
	ImportLimit      *middleware.RateLimitMiddleware
	AllowedOrigins   []string
}

// NewRouter 构建应用的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	// 同一路由同时注册带斜杠与不带斜杠两种形式，关闭自动重定向。
	r.RedirectTrailingSlash = false

	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})
	r.GET("/", apiRoot)

	read := []gin.HandlerFunc{}
	write := []gin.HandlerFunc{}
	if opts.AuthMW != nil {
		read = append(read, opts.AuthMW.Optional())
		write = append(write, opts.AuthMW.Handle())
	}

	api := r.Group("/api")
	{
		if opts.EntryHandler != nil {
			h := opts.EntryHandler
			entries := api.Group("/corpus/entries")

			// 静态路径需要先于 :id 注册，gin 会优先匹配静态段。
			handleBoth(entries, http.MethodGet, "/search", chain(read, opts.SearchLimit, h.Search)...)
			handleBoth(entries, http.MethodPost, "/import_data", chain(write, opts.ImportLimit, h.Import)...)
			handleBoth(entries, http.MethodGet, "/export_data", chain(read, nil, h.Export)...)

			handleBoth(entries, http.MethodGet, "", chain(read, nil, h.List)...)
			handleBoth(entries, http.MethodPost, "", chain(write, nil, h.Create)...)
			handleBoth(entries, http.MethodGet, "/:id", chain(read, nil, h.Get)...)
			handleBoth(entries, http.MethodPut, "/:id", chain(write, nil, h.Update)...)
			handleBoth(entries, http.MethodPatch, "/:id", chain(write, nil, h.Patch)...)
			handleBoth(entries, http.MethodDelete, "/:id", chain(write, nil, h.Delete)...)
		}

		if opts.AnalyticsHandler != nil {
			h := opts.AnalyticsHandler
			analytics := api.Group("/analytics")
			handleBoth(analytics, http.MethodGet, "/word-frequency", chain(read, nil, h.WordFrequency)...)
			handleBoth(analytics, http.MethodGet, "/corpus-stats", chain(read, nil, h.CorpusStats)...)
			handleBoth(analytics, http.MethodGet, "/usage-stats", chain(read, nil, h.UsageStats)...)
			handleBoth(analytics, http.MethodGet, "/dashboard", chain(read, nil, h.Dashboard)...)
			// 审计日志只对管理员开放，Activity 内部再校验 isAdmin。
			handleBoth(analytics, http.MethodGet, "/activity", chain(write, nil, h.Activity)...)
		}

		if opts.AuthHandler != nil {
			authGroup := api.Group("/auth")
			handleBoth(authGroup, http.MethodPost, "/login", opts.AuthHandler.Login)
		}
	}

	return r
}

// handleBoth 同时注册 path 与 path/ 两种形式。
func handleBoth(group *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	group.Handle(method, path, handlers...)
	if path == "" {
		group.Handle(method, "/", handlers...)
		return
	}
	if !strings.HasSuffix(path, "/") {
		group.Handle(method, path+"/", handlers...)
	}
}

func chain(auth []gin.HandlerFunc, limit *middleware.RateLimitMiddleware, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(auth)+2)
	out = append(out, auth...)
	if limit != nil {
		out = append(out, limit.Handle())
	}
	return append(out, h)
}

func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if origin == "" {
				return false
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
		},
	}
}

// apiRoot 返回接口索引。
func apiRoot(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message": "isiZulu Cultural Corpus API",
		"version": "1.0",
		"endpoints": gin.H{
			"entries":        "/api/corpus/entries/",
			"search":         "/api/corpus/entries/search/",
			"import":         "/api/corpus/entries/import_data/",
			"export":         "/api/corpus/entries/export_data/",
			"word_frequency": "/api/analytics/word-frequency/",
			"corpus_stats":   "/api/analytics/corpus-stats/",
			"usage_stats":    "/api/analytics/usage-stats/",
			"dashboard":      "/api/analytics/dashboard/",
			"login":          "/api/auth/login/",
		},
	}, nil)
}
