/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-09 20:51:28
 * @FilePath: \isizulu-corpus\backend\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2025-10-14 17:21:09
 */
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"isizulu-corpus/backend/internal/app"
	"isizulu-corpus/backend/internal/bootstrapdata"
	"isizulu-corpus/backend/internal/config"
	"isizulu-corpus/backend/internal/handler"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/ratelimit"
	"isizulu-corpus/backend/internal/infra/token"
	"isizulu-corpus/backend/internal/middleware"
	"isizulu-corpus/backend/internal/repository"
	"isizulu-corpus/backend/internal/server"
	activitysvc "isizulu-corpus/backend/internal/service/activity"
	analyticssvc "isizulu-corpus/backend/internal/service/analytics"
	authsvc "isizulu-corpus/backend/internal/service/auth"
	entrysvc "isizulu-corpus/backend/internal/service/entry"
	searchsvc "isizulu-corpus/backend/internal/service/search"
	transfersvc "isizulu-corpus/backend/internal/service/transfer"

	"go.uber.org/zap"
)

// Services 汇总业务层实例，HTTP 服务与命令行工具共用。
type Services struct {
	Entries   *repository.EntryRepository
	Activity  *activitysvc.Service
	Entry     *entrysvc.Service
	Search    *searchsvc.Service
	Transfer  *transfersvc.Service
	Analytics *analyticssvc.Service
	Auth      *authsvc.Service
	Tokens    *token.JWTManager
}

type Application struct {
	Resources *app.Resources
	Services  *Services
	Router    http.Handler
}

// BuildServices 基于已初始化的资源装配仓储与服务。
func BuildServices(logger *zap.SugaredLogger, resources *app.Resources, cfg config.ServerConfig) (*Services, error) {
	if resources == nil || resources.DBConn() == nil {
		return nil, errors.New("resources not initialised")
	}
	db := resources.DBConn()

	entryRepo := repository.NewEntryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)

	activityService := activitysvc.NewService(activityRepo, logger)
	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)

	return &Services{
		Entries:   entryRepo,
		Activity:  activityService,
		Entry:     entrysvc.NewService(entryRepo, activityService, logger),
		Search:    searchsvc.NewService(entryRepo, activityService, logger),
		Transfer:  transfersvc.NewService(entryRepo, activityService, logger),
		Analytics: analyticssvc.NewService(entryRepo, activityRepo, logger),
		Auth:      authsvc.NewService(userRepo, tokens, logger),
		Tokens:    tokens,
	}, nil
}

// BuildApplication 装配 HTTP 层：本地模式使用固定编辑者，在线模式使用 JWT 鉴权。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources, cfg config.ServerConfig) (*Application, error) {
	services, err := BuildServices(logger, resources, cfg)
	if err != nil {
		return nil, err
	}

	log := appLogger.OrNop(logger, "bootstrap")

	var authMW middleware.Authenticator
	if resources.Config.Mode == config.ModeLocal {
		authMW = middleware.NewOfflineAuthMiddleware(resources.Config.Local.UserID, resources.Config.Local.IsAdmin)
		log.Infow("local mode: requests run as the local editor", "user_id", resources.Config.Local.UserID)

		// 本地库为空时写入内置示例词条，失败不影响启动。
		if seeded, err := bootstrapdata.SeedIfEmpty(ctx, services.Entries, services.Transfer); err != nil {
			log.Warnw("seed local corpus failed", "error", err)
		} else if seeded > 0 {
			log.Infow("local corpus seeded", "entries", seeded)
		}
	} else {
		authMW = middleware.NewAuthMiddleware(services.Tokens)
	}

	limiter := ratelimit.New(resources.Redis, resources.Config.Redis.KeyPrefix)
	if resources.Redis == nil {
		log.Infow("using in-memory rate limiter; limits are per process")
	}

	paging := handler.Pagination{DefaultSize: cfg.DefaultPageSize, MaxSize: cfg.MaxPageSize}
	router := server.NewRouter(server.RouterOptions{
		EntryHandler:     handler.NewEntryHandler(services.Entry, services.Search, services.Transfer, paging, logger),
		AnalyticsHandler: handler.NewAnalyticsHandler(services.Analytics, services.Activity, logger),
		AuthHandler:      handler.NewAuthHandler(services.Auth),
		AuthMW:           authMW,
		SearchLimit: middleware.NewRateLimitMiddleware(limiter, middleware.RateLimitConfig{
			Scope:  "search",
			Limit:  cfg.SearchRateLimit,
			Window: cfg.RateLimitWindow,
		}, logger),
		ImportLimit: middleware.NewRateLimitMiddleware(limiter, middleware.RateLimitConfig{
			Scope:  "import",
			Limit:  cfg.ImportRateLimit,
			Window: cfg.RateLimitWindow,
		}, logger),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &Application{
		Resources: resources,
		Services:  services,
		Router:    router,
	}, nil
}
