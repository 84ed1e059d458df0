package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainactivity "isizulu-corpus/backend/internal/domain/activity"
	"isizulu-corpus/backend/internal/domain/corpus"
	appLogger "isizulu-corpus/backend/internal/infra/logger"
	"isizulu-corpus/backend/internal/repository"
	"isizulu-corpus/backend/internal/service/activity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotFound 表示词条不存在或已被软删除。
	ErrEntryNotFound = errors.New("entry not found")
	// ErrValidation 表示请求字段不合法，错误信息可以直接返回给客户端。
	ErrValidation = errors.New("validation failed")
)

// Repository 抽象词条的持久化能力。
type Repository interface {
	List(ctx context.Context, filter repository.EntryListFilter) ([]corpus.Entry, int64, error)
	FindActive(ctx context.Context, id uint) (*corpus.Entry, error)
	Create(ctx context.Context, entry *corpus.Entry) error
	UpdateWithChildren(ctx context.Context, entry *corpus.Entry, examples []corpus.UsageExample, translations []corpus.AdditionalTranslation) error
	SoftDelete(ctx context.Context, id uint) error
}

// ListParams 是列表接口已解析的查询参数。
type ListParams struct {
	IsiZuluText        string
	EnglishTranslation string
	PartOfSpeech       string
	Genre              string
	MinFrequency       *int
	MaxFrequency       *int
	Search             string
	Ordering           string
	Page               int
	PageSize           int
}

// ListResult 包含当前页数据与筛选后的总数。
type ListResult struct {
	Items []corpus.Entry
	Total int64
}

// Service 提供词条的增删改查。
type Service struct {
	entries  Repository
	activity activity.Recorder
	logger   *zap.SugaredLogger
}

// NewService 构造词条服务。
func NewService(entries Repository, recorder activity.Recorder, logger *zap.SugaredLogger) *Service {
	return &Service{entries: entries, activity: recorder, logger: appLogger.OrNop(logger, "entry.service")}
}

// List 返回活跃词条分页列表。
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}

	items, total, err := s.entries.List(ctx, repository.EntryListFilter{
		IsiZuluText:        params.IsiZuluText,
		EnglishTranslation: params.EnglishTranslation,
		PartOfSpeech:       strings.ToLower(strings.TrimSpace(params.PartOfSpeech)),
		Genre:              strings.ToLower(strings.TrimSpace(params.Genre)),
		MinFrequency:       params.MinFrequency,
		MaxFrequency:       params.MaxFrequency,
		Search:             params.Search,
		Ordering:           params.Ordering,
		Limit:              params.PageSize,
		Offset:             (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list entries: %w", err)
	}
	return ListResult{Items: items, Total: total}, nil
}

// Get 返回词条详情并记录一次查看。
func (s *Service) Get(ctx context.Context, actor activity.Actor, id uint) (corpus.Entry, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return corpus.Entry{}, err
	}
	s.record(ctx, actor, domainactivity.ActionView, "Viewed entry: "+entry.IsiZuluText, entry.ID)
	return entry, nil
}

// Create 校验必填字段后在事务中写入词条与子集合。校验失败时不写库也不记审计。
func (s *Service) Create(ctx context.Context, actor activity.Actor, payload corpus.EntryPayload) (corpus.Entry, error) {
	entry := corpus.Entry{IsActive: true}
	if err := applyPayload(&entry, payload, false); err != nil {
		return corpus.Entry{}, err
	}
	entry.Examples = corpus.BuildExamples(payload.Examples)
	entry.Translations = corpus.BuildTranslations(payload.Translations)

	if err := s.entries.Create(ctx, &entry); err != nil {
		return corpus.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	s.record(ctx, actor, domainactivity.ActionCreate, "Created entry: "+entry.IsiZuluText, entry.ID)

	return s.load(ctx, entry.ID)
}

// Update 更新词条。partial=false 时两个文本字段必须同时提供；
// examples 或 additional_translations 出现在请求中时整体替换对应集合，搭配短语不可写。
func (s *Service) Update(ctx context.Context, actor activity.Actor, id uint, payload corpus.EntryPayload, partial bool) (corpus.Entry, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return corpus.Entry{}, err
	}
	if !partial && (payload.IsiZuluText == nil || payload.EnglishTranslation == nil) {
		return corpus.Entry{}, fmt.Errorf("%w: isiZulu_text and english_translation are required", ErrValidation)
	}

	if err := applyPayload(&current, payload, true); err != nil {
		return corpus.Entry{}, err
	}

	var examples []corpus.UsageExample
	if payload.Examples != nil {
		examples = corpus.BuildExamples(payload.Examples)
	}
	var translations []corpus.AdditionalTranslation
	if payload.Translations != nil {
		translations = corpus.BuildTranslations(payload.Translations)
	}

	if err := s.entries.UpdateWithChildren(ctx, &current, examples, translations); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return corpus.Entry{}, ErrEntryNotFound
		}
		return corpus.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	s.record(ctx, actor, domainactivity.ActionUpdate, "Updated entry: "+current.IsiZuluText, current.ID)

	return s.load(ctx, id)
}

// Delete 软删除词条，子记录保留。
func (s *Service) Delete(ctx context.Context, actor activity.Actor, id uint) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.entries.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("delete entry: %w", err)
	}
	s.record(ctx, actor, domainactivity.ActionDelete, "Deleted entry: "+current.IsiZuluText, id)
	return nil
}

func (s *Service) load(ctx context.Context, id uint) (corpus.Entry, error) {
	entry, err := s.entries.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return corpus.Entry{}, ErrEntryNotFound
		}
		return corpus.Entry{}, fmt.Errorf("load entry: %w", err)
	}
	return *entry, nil
}

func (s *Service) record(ctx context.Context, actor activity.Actor, action domainactivity.Action, description string, id uint) {
	if s.activity == nil {
		return
	}
	s.activity.Log(ctx, activity.Event{
		Actor:       actor,
		Action:      action,
		Description: description,
		Metadata:    map[string]any{"entry_id": id},
	})
}

// applyPayload 把请求字段写入实体。partial=true 时只处理出现的字段。
func applyPayload(entry *corpus.Entry, payload corpus.EntryPayload, partial bool) error {
	if payload.IsiZuluText != nil || !partial {
		text := corpus.Value(payload.IsiZuluText)
		if text == "" {
			return fmt.Errorf("%w: isiZulu_text may not be blank", ErrValidation)
		}
		entry.IsiZuluText = text
	}
	if payload.EnglishTranslation != nil || !partial {
		text := corpus.Value(payload.EnglishTranslation)
		if text == "" {
			return fmt.Errorf("%w: english_translation may not be blank", ErrValidation)
		}
		entry.EnglishTranslation = text
	}

	if payload.PartOfSpeech != nil {
		pos, ok := corpus.ParsePartOfSpeech(*payload.PartOfSpeech)
		if !ok {
			return fmt.Errorf("%w: %q is not a valid part_of_speech", ErrValidation, *payload.PartOfSpeech)
		}
		entry.PartOfSpeech = pos
	} else if !partial {
		entry.PartOfSpeech = corpus.PartOfSpeechCultural
	}

	if payload.Genre != nil {
		genre, ok := corpus.ParseGenre(*payload.Genre)
		if !ok {
			return fmt.Errorf("%w: %q is not a valid genre", ErrValidation, *payload.Genre)
		}
		entry.Genre = genre
	} else if !partial {
		entry.Genre = corpus.GenreCultural
	}

	if payload.CulturalContext != nil {
		entry.CulturalContext = corpus.Value(payload.CulturalContext)
	}
	if payload.Source != nil {
		source := corpus.Value(payload.Source)
		if len([]rune(source)) > 200 {
			return fmt.Errorf("%w: source must be at most 200 characters", ErrValidation)
		}
		entry.Source = source
	}

	for _, tr := range payload.Translations {
		if _, ok := corpus.ParseLanguage(tr.Language); !ok {
			return fmt.Errorf("%w: %q is not a supported language", ErrValidation, tr.Language)
		}
	}
	return nil
}
