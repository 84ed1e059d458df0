package handler

import (
	"net/http"
	"strconv"

	response "isizulu-corpus/backend/internal/infra/common"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	activitysvc "isizulu-corpus/backend/internal/service/activity"
	analyticssvc "isizulu-corpus/backend/internal/service/analytics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsHandler 提供词频、语料统计、使用统计与审计日志查询。
type AnalyticsHandler struct {
	analytics *analyticssvc.Service
	activity  *activitysvc.Service
	logger    *zap.SugaredLogger
}

// NewAnalyticsHandler 构造分析 handler。
func NewAnalyticsHandler(analytics *analyticssvc.Service, activity *activitysvc.Service, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		activity:  activity,
		logger:    appLogger.OrNop(logger, "analytics.handler"),
	}
}

// WordFrequency 返回 isiZulu 原文中出现最多的词，limit 默认 20。
func (h *AnalyticsHandler) WordFrequency(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(analyticssvc.DefaultWordLimit)))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "limit must be an integer", nil)
		return
	}
	if limit <= 0 {
		limit = analyticssvc.DefaultWordLimit
	}

	words, err := h.analytics.WordFrequency(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "word_frequency", err)
		return
	}
	response.Success(c, http.StatusOK, words, nil)
}

// CorpusStats 返回语料整体统计。
func (h *AnalyticsHandler) CorpusStats(c *gin.Context) {
	stats, err := h.analytics.CorpusStatistics(c.Request.Context())
	if err != nil {
		h.fail(c, "corpus_stats", err)
		return
	}
	response.Success(c, http.StatusOK, stats, nil)
}

// UsageStats 返回搜索与查看次数。
func (h *AnalyticsHandler) UsageStats(c *gin.Context) {
	stats, err := h.analytics.UsageStatistics(c.Request.Context())
	if err != nil {
		h.fail(c, "usage_stats", err)
		return
	}
	response.Success(c, http.StatusOK, stats, nil)
}

// Dashboard 合并三类统计。
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "dashboard", err)
		return
	}
	response.Success(c, http.StatusOK, dashboard, nil)
}

// Activity 返回最近的审计记录，仅管理员可见。
func (h *AnalyticsHandler) Activity(c *gin.Context) {
	if !isAdmin(c) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden, "admin permission required", nil)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "limit must be an integer", nil)
		return
	}

	logs, err := h.activity.Recent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "activity", err)
		return
	}
	response.Success(c, http.StatusOK, logs, gin.H{"count": len(logs)})
}

func (h *AnalyticsHandler) fail(c *gin.Context, operation string, err error) {
	h.logger.Errorw("analytics query failed", "operation", operation, "error", err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "failed to compute statistics", nil)
}
