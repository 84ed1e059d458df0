package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"isizulu-corpus/backend/internal/domain/corpus"
	response "isizulu-corpus/backend/internal/infra/common"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	entrysvc "isizulu-corpus/backend/internal/service/entry"
	searchsvc "isizulu-corpus/backend/internal/service/search"
	transfersvc "isizulu-corpus/backend/internal/service/transfer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImportBytes 限制导入请求体大小。
const maxImportBytes = 16 << 20

// EntryHandler 承接语料词条相关的 HTTP 请求：增删改查、搜索与导入导出。
type EntryHandler struct {
	entries  *entrysvc.Service
	search   *searchsvc.Service
	transfer *transfersvc.Service
	paging   Pagination
	logger   *zap.SugaredLogger
}

// NewEntryHandler 创建词条 handler。
func NewEntryHandler(entries *entrysvc.Service, search *searchsvc.Service, transfer *transfersvc.Service, paging Pagination, logger *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{
		entries:  entries,
		search:   search,
		transfer: transfer,
		paging:   paging.normalize(),
		logger:   appLogger.OrNop(logger, "entry.handler"),
	}
}

// List 返回分页的活跃词条列表，支持字段过滤、频次区间与排序。
func (h *EntryHandler) List(c *gin.Context) {
	page, size := h.paging.parse(c)

	minFreq, err := optionalIntQuery(c, "min_frequency")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}
	maxFreq, err := optionalIntQuery(c, "max_frequency")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	isiZulu := c.Query("isiZulu_text")
	if isiZulu == "" {
		isiZulu = c.Query("isizulu_text")
	}

	result, err := h.entries.List(c.Request.Context(), entrysvc.ListParams{
		IsiZuluText:        isiZulu,
		EnglishTranslation: c.Query("english_translation"),
		PartOfSpeech:       c.Query("part_of_speech"),
		Genre:              c.Query("genre"),
		MinFrequency:       minFreq,
		MaxFrequency:       maxFreq,
		Search:             c.Query("search"),
		Ordering:           c.Query("ordering"),
		Page:               page,
		PageSize:           size,
	})
	if err != nil {
		h.logger.Errorw("list entries failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "failed to list entries", nil)
		return
	}

	items := corpus.ToSummaries(result.Items)
	response.Success(c, http.StatusOK, items, response.NewPagination(page, size, result.Total, len(items)))
}

// Get 返回单个活跃词条的完整信息。
func (h *EntryHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	entry, err := h.entries.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeEntryError(c, "get", err)
		return
	}
	response.Success(c, http.StatusOK, corpus.ToDetail(entry), nil)
}

// Create 新建词条，可同时提交用法示例与附加翻译。
func (h *EntryHandler) Create(c *gin.Context) {
	var payload corpus.EntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	entry, err := h.entries.Create(c.Request.Context(), actorFrom(c), payload)
	if err != nil {
		h.writeEntryError(c, "create", err)
		return
	}
	response.Created(c, corpus.ToDetail(entry), nil)
}

// Update 处理 PUT 全量更新。
func (h *EntryHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch 处理 PATCH 部分更新。
func (h *EntryHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *EntryHandler) update(c *gin.Context, partial bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	var payload corpus.EntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	entry, err := h.entries.Update(c.Request.Context(), actorFrom(c), id, payload, partial)
	if err != nil {
		h.writeEntryError(c, "update", err)
		return
	}
	response.Success(c, http.StatusOK, corpus.ToDetail(entry), nil)
}

// Delete 软删除词条，成功返回 204。
func (h *EntryHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	if err := h.entries.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.writeEntryError(c, "delete", err)
		return
	}
	response.NoContent(c)
}

// Search 按关键词与过滤条件检索，命中的词条频次加一，结果在内存中分页。
func (h *EntryHandler) Search(c *gin.Context) {
	page, size := h.paging.parse(c)

	entries, err := h.search.Search(c.Request.Context(), actorFrom(c), c.Query("q"), searchsvc.Filters{
		PartOfSpeech: c.Query("part_of_speech"),
		Genre:        c.Query("genre"),
		Language:     c.Query("language"),
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "Search failed", nil)
		return
	}

	total := len(entries)
	start, end := pageWindow(page, size, total)

	items := corpus.ToSummaries(entries[start:end])
	response.Success(c, http.StatusOK, items, response.NewPagination(page, size, int64(total), len(items)))
}

// Import 接收词条数组并整体写入；顶层不是数组时返回 400。
func (h *EntryHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "failed to read request body", nil)
		return
	}

	records, err := transfersvc.DecodeRecords(body)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "Data must be a list of entries", nil)
		return
	}

	result, err := h.transfer.Import(c.Request.Context(), actorFrom(c), records)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "Import failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Successfully imported %d entries", result.Imported),
		"imported_count": result.Imported,
	}, nil)
}

// Export 以 JSON 附件形式返回全部活跃词条，格式可以直接回灌导入接口。
func (h *EntryHandler) Export(c *gin.Context) {
	details, err := h.transfer.Export(c.Request.Context(), actorFrom(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "Export failed", nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="corpus_export.json"`)
	c.IndentedJSON(http.StatusOK, details)
}

func (h *EntryHandler) writeEntryError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, entrysvc.ErrEntryNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, "entry not found", nil)
	case errors.Is(err, entrysvc.ErrValidation):
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, strings.TrimPrefix(err.Error(), entrysvc.ErrValidation.Error()+": "), nil)
	default:
		h.logger.Errorw("entry operation failed", "operation", operation, "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal server error", nil)
	}
}
