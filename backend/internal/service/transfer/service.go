package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domainactivity "isizulu-corpus/backend/internal/domain/activity"
	"isizulu-corpus/backend/internal/domain/corpus"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/infra/metrics"
	"isizulu-corpus/backend/internal/service/activity"

	"go.uber.org/zap"
)

var (
	// ErrPayloadNotList 表示导入数据不是 JSON 数组。
	ErrPayloadNotList = errors.New("data must be a list of entries")
	// ErrImportFailed 表示导入事务失败并已整体回滚。
	ErrImportFailed = errors.New("import failed")
	// ErrExportFailed 表示导出查询失败。
	ErrExportFailed = errors.New("export failed")
)

// Repository 抽象导入导出依赖的持久化能力。
type Repository interface {
	CreateBatch(ctx context.Context, entries []*corpus.Entry) error
	ListActiveWithChildren(ctx context.Context) ([]corpus.Entry, error)
}

// Result 汇总一次导入的结果。
type Result struct {
	Imported int `json:"imported_count"`
	Skipped  int `json:"skipped_count"`
}

// Service 负责词条的批量导入与导出。
type Service struct {
	entries  Repository
	activity activity.Recorder
	logger   *zap.SugaredLogger
}

// NewService 构造导入导出服务。
func NewService(entries Repository, recorder activity.Recorder, logger *zap.SugaredLogger) *Service {
	return &Service{entries: entries, activity: recorder, logger: appLogger.OrNop(logger, "transfer.service")}
}

// DecodeRecords 解析导入请求体，顶层必须是数组；单条记录结构错误时按缺字段处理。
func DecodeRecords(raw []byte) ([]corpus.EntryPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrPayloadNotList
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadNotList, err)
	}

	records := make([]corpus.EntryPayload, 0, len(items))
	for _, item := range items {
		var record corpus.EntryPayload
		if err := json.Unmarshal(item, &record); err != nil {
			// 非对象或字段类型错误的记录视为缺少必填字段，由 Import 跳过。
			records = append(records, corpus.EntryPayload{})
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Import 在单个事务中写入全部合法记录，缺少原文或译文的记录被跳过且不计数。
func (s *Service) Import(ctx context.Context, actor activity.Actor, records []corpus.EntryPayload) (Result, error) {
	entries := make([]*corpus.Entry, 0, len(records))
	var result Result
	for _, record := range records {
		entry, ok := BuildEntry(record)
		if !ok {
			result.Skipped++
			continue
		}
		entries = append(entries, entry)
	}

	if err := s.entries.CreateBatch(ctx, entries); err != nil {
		metrics.RecordImport(len(entries), result.Skipped, true)
		s.logger.Errorw("import entries failed", "records", len(records), "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	result.Imported = len(entries)
	metrics.RecordImport(result.Imported, result.Skipped, false)

	if s.activity != nil {
		s.activity.Log(ctx, activity.Event{
			Actor:       actor,
			Action:      domainactivity.ActionImport,
			Description: fmt.Sprintf("Imported %d entries from JSON", result.Imported),
			Metadata: map[string]any{
				"imported": result.Imported,
				"skipped":  result.Skipped,
			},
		})
	}
	s.logger.Infow("entries imported", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// Export 返回全部活跃词条的完整结构，格式可直接回灌 Import。
func (s *Service) Export(ctx context.Context, actor activity.Actor) ([]corpus.EntryDetail, error) {
	entries, err := s.entries.ListActiveWithChildren(ctx)
	if err != nil {
		s.logger.Errorw("export entries failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	if s.activity != nil {
		s.activity.Log(ctx, activity.Event{
			Actor:       actor,
			Action:      domainactivity.ActionExport,
			Description: "Exported corpus data",
			Metadata:    map[string]any{"entries": len(entries)},
		})
	}
	return corpus.ToDetails(entries), nil
}

// BuildEntry 把导入记录转换为待写入的实体，并填充默认值。
// 未知的词性或体裁回落到 cultural。
func BuildEntry(record corpus.EntryPayload) (*corpus.Entry, bool) {
	zu := corpus.Value(record.IsiZuluText)
	en := corpus.Value(record.EnglishTranslation)
	if zu == "" || en == "" {
		return nil, false
	}

	pos, ok := corpus.ParsePartOfSpeech(corpus.Value(record.PartOfSpeech))
	if !ok {
		pos = corpus.PartOfSpeechCultural
	}
	genre, ok := corpus.ParseGenre(corpus.Value(record.Genre))
	if !ok {
		genre = corpus.GenreCultural
	}

	source := corpus.Value(record.Source)
	if len([]rune(source)) > 200 {
		source = string([]rune(source)[:200])
	}

	return &corpus.Entry{
		IsiZuluText:        zu,
		EnglishTranslation: en,
		PartOfSpeech:       pos,
		Genre:              genre,
		CulturalContext:    corpus.Value(record.CulturalContext),
		Source:             source,
		IsActive:           true,
		Examples:           corpus.BuildExamples(record.Examples),
		Translations:       corpus.BuildTranslations(record.Translations),
	}, true
}
