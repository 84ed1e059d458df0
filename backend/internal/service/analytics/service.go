package analytics

import (
	"context"
	"fmt"
	"strings"

	domainactivity "isizulu-corpus/backend/internal/domain/activity"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/repository"

	"go.uber.org/zap"
)

// DefaultWordLimit 是词频接口的默认返回数量。
const DefaultWordLimit = 20

// dashboardWordLimit 是仪表盘中词频部分的数量。
const dashboardWordLimit = 10

// EntryStats 抽象词条相关的统计查询。
type EntryStats interface {
	ListActiveTexts(ctx context.Context) ([]string, error)
	Aggregates(ctx context.Context) (repository.CorpusAggregates, error)
}

// ActivityStats 抽象审计日志计数。
type ActivityStats interface {
	CountByActions(ctx context.Context, actions ...domainactivity.Action) (int64, error)
}

// CorpusStatistics 是语料整体统计。
// AverageWordLength 实际为平均每条词条的词数，字段名沿用对外接口。
type CorpusStatistics struct {
	TotalEntries      int64    `json:"total_entries"`
	TotalProverbs     int64    `json:"total_proverbs"`
	TotalIdioms       int64    `json:"total_idioms"`
	TotalNarratives   int64    `json:"total_narratives"`
	TotalSongs        int64    `json:"total_songs"`
	AvgFrequency      *float64 `json:"avg_frequency"`
	MaxFrequency      *int64   `json:"max_frequency"`
	TotalWords        int      `json:"total_words"`
	UniqueWords       int      `json:"unique_words"`
	AverageWordLength float64  `json:"average_word_length"`
}

// UsageStatistics 汇总搜索与查看行为。没有时间窗口，统计的是全部历史。
type UsageStatistics struct {
	RecentActivities int64 `json:"recent_activities"`
	TotalSearches    int64 `json:"total_searches"`
	TotalViews       int64 `json:"total_views"`
}

// Dashboard 把三类统计合并为一次响应。
type Dashboard struct {
	WordFrequency    WordFrequency    `json:"word_frequency"`
	CorpusStatistics CorpusStatistics `json:"corpus_statistics"`
	UsageStatistics  UsageStatistics  `json:"usage_statistics"`
}

// Service 提供词频与统计分析。
type Service struct {
	entries  EntryStats
	activity ActivityStats
	logger   *zap.SugaredLogger
}

// NewService 构造分析服务。
func NewService(entries EntryStats, activity ActivityStats, logger *zap.SugaredLogger) *Service {
	return &Service{entries: entries, activity: activity, logger: appLogger.OrNop(logger, "analytics.service")}
}

// WordFrequency 统计所有活跃词条 isiZulu 原文中出现最多的 limit 个词。
func (s *Service) WordFrequency(ctx context.Context, limit int) (WordFrequency, error) {
	texts, err := s.entries.ListActiveTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entry texts: %w", err)
	}
	return countWords(strings.Join(texts, " "), limit), nil
}

// CorpusStatistics 计算活跃词条的计数与词汇统计，非活跃词条不参与任何一项。
func (s *Service) CorpusStatistics(ctx context.Context) (CorpusStatistics, error) {
	agg, err := s.entries.Aggregates(ctx)
	if err != nil {
		return CorpusStatistics{}, fmt.Errorf("aggregate corpus: %w", err)
	}
	texts, err := s.entries.ListActiveTexts(ctx)
	if err != nil {
		return CorpusStatistics{}, fmt.Errorf("load entry texts: %w", err)
	}

	totalWords, uniqueWords := whitespaceStats(texts)
	divisor := agg.TotalEntries
	if divisor < 1 {
		divisor = 1
	}

	stats := CorpusStatistics{
		TotalEntries:      agg.TotalEntries,
		TotalProverbs:     agg.TotalProverbs,
		TotalIdioms:       agg.TotalIdioms,
		TotalNarratives:   agg.TotalNarratives,
		TotalSongs:        agg.TotalSongs,
		TotalWords:        totalWords,
		UniqueWords:       uniqueWords,
		AverageWordLength: float64(totalWords) / float64(divisor),
	}
	if agg.TotalEntries > 0 {
		stats.AvgFrequency = agg.AvgFrequency
		stats.MaxFrequency = agg.MaxFrequency
	}
	return stats, nil
}

// UsageStatistics 统计搜索与查看记录。
func (s *Service) UsageStatistics(ctx context.Context) (UsageStatistics, error) {
	recent, err := s.activity.CountByActions(ctx, domainactivity.ActionSearch, domainactivity.ActionView)
	if err != nil {
		return UsageStatistics{}, err
	}
	searches, err := s.activity.CountByActions(ctx, domainactivity.ActionSearch)
	if err != nil {
		return UsageStatistics{}, err
	}
	views, err := s.activity.CountByActions(ctx, domainactivity.ActionView)
	if err != nil {
		return UsageStatistics{}, err
	}
	return UsageStatistics{
		RecentActivities: recent,
		TotalSearches:    searches,
		TotalViews:       views,
	}, nil
}

// Dashboard 组合词频前 10、语料统计与使用统计。
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	words, err := s.WordFrequency(ctx, dashboardWordLimit)
	if err != nil {
		return Dashboard{}, err
	}
	corpusStats, err := s.CorpusStatistics(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	usage, err := s.UsageStatistics(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	s.logger.Debugw("dashboard computed", "entries", corpusStats.TotalEntries, "words", len(words))
	return Dashboard{
		WordFrequency:    words,
		CorpusStatistics: corpusStats,
		UsageStatistics:  usage,
	}, nil
}
