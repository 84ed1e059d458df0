package activity

import (
	"context"
	"strings"

	domain "isizulu-corpus/backend/internal/domain/activity"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/metrics"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Actor 是已完成鉴权的调用方身份，UserID 为空表示匿名。
type Actor struct {
	UserID *uint
	IP     string
}

// Anonymous 构造只带 IP 的匿名调用方。
func Anonymous(ip string) Actor {
	return Actor{IP: ip}
}

// Event 描述一次需要审计的动作。
type Event struct {
	Actor       Actor
	Action      domain.Action
	Description string
	Metadata    map[string]any
}

// Repository 抽象审计日志的持久化能力。
type Repository interface {
	Create(ctx context.Context, log *domain.Log) error
	ListRecent(ctx context.Context, limit int) ([]domain.Log, error)
}

// Recorder 是业务服务依赖的最小接口。
type Recorder interface {
	Log(ctx context.Context, event Event)
}

// Service 负责写入审计日志。写入失败只记录告警，不会影响正在审计的业务操作。
type Service struct {
	repo   Repository
	logger *zap.SugaredLogger
}

// NewService 构造审计服务，logger 为空时丢弃日志输出。
func NewService(repo Repository, logger *zap.SugaredLogger) *Service {
	return &Service{repo: repo, logger: appLogger.OrNop(logger, "activity.service")}
}

// Log 追加一条审计记录。
func (s *Service) Log(ctx context.Context, event Event) {
	if s == nil || s.repo == nil {
		return
	}

	record := &domain.Log{
		UserID:      event.Actor.UserID,
		Action:      event.Action,
		Description: event.Description,
	}
	if ip := strings.TrimSpace(event.Actor.IP); ip != "" {
		if len(ip) > 45 {
			ip = ip[:45]
		}
		record.IPAddress = &ip
	}
	if len(event.Metadata) > 0 {
		record.Metadata = datatypes.JSONMap(event.Metadata)
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordActivityFailure(string(event.Action))
			s.logger.Errorw("activity log panicked", "action", event.Action, "panic", r)
		}
	}()

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.RecordActivityFailure(string(event.Action))
		s.logger.Warnw("write activity log failed", "action", event.Action, "error", err)
	}
}

// Recent 返回最近的审计记录，供管理员查看。
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Log, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	return s.repo.ListRecent(ctx, limit)
}
