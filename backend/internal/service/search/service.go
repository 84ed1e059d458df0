package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainactivity "isizulu-corpus/backend/internal/domain/activity"
	"isizulu-corpus/backend/internal/domain/corpus"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/metrics"
	"isizulu-corpus/backend/internal/repository"
	"isizulu-corpus/backend/internal/service/activity"

	"go.uber.org/zap"
)

// ErrSearchFailed 表示持久层出错，原始错误只写日志不对外暴露。
var ErrSearchFailed = errors.New("search failed")

const (
	LanguageIsiZulu = "isizulu"
	LanguageEnglish = "english"
)

// Filters 是搜索接口可选的过滤条件。
type Filters struct {
	PartOfSpeech string
	Genre        string
	Language     string
}

// Repository 抽象搜索依赖的查询能力。
type Repository interface {
	SearchAndTouch(ctx context.Context, filter repository.EntrySearchFilter) ([]corpus.Entry, error)
}

// Service 负责组合搜索条件、维护命中频次并记录审计。
type Service struct {
	entries  Repository
	activity activity.Recorder
	logger   *zap.SugaredLogger
}

// NewService 构造搜索服务。
func NewService(entries Repository, recorder activity.Recorder, logger *zap.SugaredLogger) *Service {
	return &Service{entries: entries, activity: recorder, logger: appLogger.OrNop(logger, "search.service")}
}

// Search 返回匹配的活跃词条，并把每条结果的 frequency 加一。
// query 为空时只按过滤条件筛选，language 过滤在这种情况下不生效。
func (s *Service) Search(ctx context.Context, actor activity.Actor, query string, filters Filters) ([]corpus.Entry, error) {
	query = strings.TrimSpace(query)
	normalized := normalizeFilters(filters)

	started := time.Now()
	entries, err := s.entries.SearchAndTouch(ctx, repository.EntrySearchFilter{
		Query:        query,
		PartOfSpeech: normalized.PartOfSpeech,
		Genre:        normalized.Genre,
		Language:     normalized.Language,
	})
	if err != nil {
		metrics.ObserveSearch("error", normalized.Language, 0, time.Since(started))
		s.logger.Errorw("search entries failed", "query", query, "filters", normalized, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	metrics.ObserveSearch("success", normalized.Language, len(entries), time.Since(started))

	if s.activity != nil {
		s.activity.Log(ctx, activity.Event{
			Actor:       actor,
			Action:      domainactivity.ActionSearch,
			Description: "Searched for: " + query,
			Metadata: map[string]any{
				"query":          query,
				"part_of_speech": normalized.PartOfSpeech,
				"genre":          normalized.Genre,
				"language":       normalized.Language,
				"results":        len(entries),
			},
		})
	}

	return entries, nil
}

// normalizeFilters 规范化大小写；未知的词性、体裁照常参与精确匹配（结果为空），未知语言忽略。
func normalizeFilters(filters Filters) Filters {
	out := Filters{
		PartOfSpeech: strings.ToLower(strings.TrimSpace(filters.PartOfSpeech)),
		Genre:        strings.ToLower(strings.TrimSpace(filters.Genre)),
	}
	switch lang := strings.ToLower(strings.TrimSpace(filters.Language)); lang {
	case LanguageIsiZulu, LanguageEnglish:
		out.Language = lang
	}
	return out
}
