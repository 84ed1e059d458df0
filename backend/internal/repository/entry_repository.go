package repository

import (
	"context"
	"fmt"
	"strings"

	"isizulu-corpus/backend/internal/domain/corpus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const likeEscape = "!"

// EntryListFilter 描述列表接口的筛选条件。
type EntryListFilter struct {
	IsiZuluText        string
	EnglishTranslation string
	PartOfSpeech       string
	Genre              string
	MinFrequency       *int
	MaxFrequency       *int
	Search             string
	Ordering           string
	Limit              int
	Offset             int
}

// EntrySearchFilter 描述搜索接口的过滤条件，Query 为空时只按枚举过滤。
type EntrySearchFilter struct {
	Query        string
	PartOfSpeech string
	Genre        string
	Language     string
}

// CorpusAggregates 汇总活跃词条的统计值。
type CorpusAggregates struct {
	TotalEntries    int64
	TotalProverbs   int64
	TotalIdioms     int64
	TotalNarratives int64
	TotalSongs      int64
	AvgFrequency    *float64
	MaxFrequency    *int64
}

var orderingColumns = map[string]string{
	"frequency":  "frequency",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// EntryRepository 封装 cultural_entries 及其子表的读写。
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository 创建仓储实例。
func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// active 返回只包含活跃词条的基础查询。
func (r *EntryRepository) active(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Model(&corpus.Entry{}).Where("cultural_entries.is_active = ?", true)
}

// List 返回分页后的活跃词条以及筛选后的总数。
func (r *EntryRepository) List(ctx context.Context, filter EntryListFilter) ([]corpus.Entry, int64, error) {
	query := r.active(ctx, r.db)

	if v := strings.TrimSpace(filter.IsiZuluText); v != "" {
		query = query.Where("LOWER(isizulu_text) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(v))
	}
	if v := strings.TrimSpace(filter.EnglishTranslation); v != "" {
		query = query.Where("LOWER(english_translation) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(v))
	}
	if v := strings.TrimSpace(filter.PartOfSpeech); v != "" {
		query = query.Where("part_of_speech = ?", v)
	}
	if v := strings.TrimSpace(filter.Genre); v != "" {
		query = query.Where("genre = ?", v)
	}
	if filter.MinFrequency != nil {
		query = query.Where("frequency >= ?", *filter.MinFrequency)
	}
	if filter.MaxFrequency != nil {
		query = query.Where("frequency <= ?", *filter.MaxFrequency)
	}
	if v := strings.TrimSpace(filter.Search); v != "" {
		pattern := containsPattern(v)
		query = query.Where(
			"(LOWER(isizulu_text) LIKE @p ESCAPE '"+likeEscape+"' OR LOWER(english_translation) LIKE @p ESCAPE '"+likeEscape+"' OR LOWER(cultural_context) LIKE @p ESCAPE '"+likeEscape+"')",
			map[string]any{"p": pattern},
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query = applyOrdering(query, filter.Ordering)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []corpus.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	return entries, total, nil
}

// FindActive 按主键加载活跃词条，并预加载全部子集合。
func (r *EntryRepository) FindActive(ctx context.Context, id uint) (*corpus.Entry, error) {
	var entry corpus.Entry
	err := withChildren(r.active(ctx, r.db)).
		Where("cultural_entries.id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create 在同一事务内写入词条与示例、翻译。
func (r *EntryRepository) Create(ctx context.Context, entry *corpus.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createWithChildren(tx, entry)
	})
}

// CreateBatch 在单个事务中写入整批词条，任一失败则整体回滚。
func (r *EntryRepository) CreateBatch(ctx context.Context, entries []*corpus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, entry := range entries {
			if err := createWithChildren(tx, entry); err != nil {
				return fmt.Errorf("create entry #%d: %w", i, err)
			}
		}
		return nil
	})
}

// UpdateWithChildren 更新词条标量字段；examples/translations 非 nil 时整体替换对应子集合。
// 父记录更新与子集合替换位于同一事务中。
func (r *EntryRepository) UpdateWithChildren(ctx context.Context, entry *corpus.Entry, examples []corpus.UsageExample, translations []corpus.AdditionalTranslation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&corpus.Entry{}).
			Where("id = ? AND is_active = ?", entry.ID, true).
			Select("isizulu_text", "english_translation", "part_of_speech", "genre", "cultural_context", "source", "updated_at").
			Omit(clause.Associations).
			Updates(entry)
		if result.Error != nil {
			return fmt.Errorf("update entry: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if examples != nil {
			if err := replaceExamples(tx, entry.ID, examples); err != nil {
				return err
			}
		}
		if translations != nil {
			if err := replaceTranslations(tx, entry.ID, translations); err != nil {
				return err
			}
		}
		return nil
	})
}

// SoftDelete 将词条标记为非活跃，子记录保持不变。
func (r *EntryRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&corpus.Entry{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeInactive 物理删除全部已软删除的词条及其子记录，返回删除的词条数。
func (r *EntryRepository) PurgeInactive(ctx context.Context) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&corpus.Entry{}).Where("is_active = ?", false).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("collect inactive entries: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		for _, model := range []any{&corpus.UsageExample{}, &corpus.AdditionalTranslation{}, &corpus.Collocation{}} {
			if err := tx.Where("entry_id IN ?", ids).Delete(model).Error; err != nil {
				return fmt.Errorf("purge children: %w", err)
			}
		}
		result := tx.Where("id IN ?", ids).Delete(&corpus.Entry{})
		if result.Error != nil {
			return fmt.Errorf("purge entries: %w", result.Error)
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

// SearchAndTouch 执行搜索并在同一事务内把命中词条的 frequency 批量加一。
// 子表匹配使用 EXISTS 子查询，不会因为多条示例命中而重复返回同一词条。
func (r *EntryRepository) SearchAndTouch(ctx context.Context, filter EntrySearchFilter) ([]corpus.Entry, error) {
	var entries []corpus.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := r.active(ctx, tx)

		if q := strings.TrimSpace(filter.Query); q != "" {
			pattern := containsPattern(q)
			query = query.Where(
				"(LOWER(cultural_entries.isizulu_text) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR LOWER(cultural_entries.english_translation) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR LOWER(cultural_entries.cultural_context) LIKE @p ESCAPE '"+likeEscape+"'"+
					" OR EXISTS (SELECT 1 FROM usage_examples ue WHERE ue.entry_id = cultural_entries.id"+
					" AND (LOWER(ue.isizulu_example) LIKE @p ESCAPE '"+likeEscape+"' OR LOWER(ue.english_example) LIKE @p ESCAPE '"+likeEscape+"')))",
				map[string]any{"p": pattern},
			)

			// 语言过滤只在已有查询词时收窄结果。
			switch strings.ToLower(strings.TrimSpace(filter.Language)) {
			case "isizulu":
				query = query.Where("LOWER(cultural_entries.isizulu_text) LIKE ? ESCAPE '"+likeEscape+"'", pattern)
			case "english":
				query = query.Where("LOWER(cultural_entries.english_translation) LIKE ? ESCAPE '"+likeEscape+"'", pattern)
			}
		}
		if v := strings.TrimSpace(filter.PartOfSpeech); v != "" {
			query = query.Where("cultural_entries.part_of_speech = ?", v)
		}
		if v := strings.TrimSpace(filter.Genre); v != "" {
			query = query.Where("cultural_entries.genre = ?", v)
		}

		if err := query.Order("cultural_entries.created_at DESC, cultural_entries.id DESC").Find(&entries).Error; err != nil {
			return fmt.Errorf("search entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if err := tx.Model(&corpus.Entry{}).
			Where("id IN ?", ids).
			UpdateColumn("frequency", gorm.Expr("frequency + ?", 1)).Error; err != nil {
			return fmt.Errorf("increment frequency: %w", err)
		}
		for i := range entries {
			entries[i].Frequency++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListActiveWithChildren 返回所有活跃词条及完整子集合，用于导出。
func (r *EntryRepository) ListActiveWithChildren(ctx context.Context) ([]corpus.Entry, error) {
	var entries []corpus.Entry
	if err := withChildren(r.active(ctx, r.db)).
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries for export: %w", err)
	}
	return entries, nil
}

// ListActiveTexts 按默认排序返回活跃词条的 isiZulu 原文。
func (r *EntryRepository) ListActiveTexts(ctx context.Context) ([]string, error) {
	var texts []string
	if err := r.active(ctx, r.db).
		Order("created_at DESC, id DESC").
		Pluck("isizulu_text", &texts).Error; err != nil {
		return nil, fmt.Errorf("pluck entry texts: %w", err)
	}
	return texts, nil
}

// Aggregates 使用单条 SQL 计算活跃词条的计数、平均与最大频次。
func (r *EntryRepository) Aggregates(ctx context.Context) (CorpusAggregates, error) {
	var row struct {
		TotalEntries    int64
		TotalProverbs   int64
		TotalIdioms     int64
		TotalNarratives int64
		TotalSongs      int64
		AvgFrequency    *float64
		MaxFrequency    *int64
	}
	err := r.active(ctx, r.db).Select(
		"COUNT(*) AS total_entries, " +
			"COALESCE(SUM(CASE WHEN genre = 'proverb' THEN 1 ELSE 0 END), 0) AS total_proverbs, " +
			"COALESCE(SUM(CASE WHEN genre = 'idiom' THEN 1 ELSE 0 END), 0) AS total_idioms, " +
			"COALESCE(SUM(CASE WHEN genre = 'narrative' THEN 1 ELSE 0 END), 0) AS total_narratives, " +
			"COALESCE(SUM(CASE WHEN genre = 'song' THEN 1 ELSE 0 END), 0) AS total_songs, " +
			"AVG(frequency) AS avg_frequency, " +
			"MAX(frequency) AS max_frequency",
	).Scan(&row).Error
	if err != nil {
		return CorpusAggregates{}, fmt.Errorf("aggregate entries: %w", err)
	}
	return CorpusAggregates(row), nil
}

// CountAll 返回包括非活跃记录在内的总行数，供运维命令展示。
func (r *EntryRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&corpus.Entry{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func createWithChildren(tx *gorm.DB, entry *corpus.Entry) error {
	examples := entry.Examples
	translations := entry.Translations
	entry.Examples = nil
	entry.Translations = nil
	entry.Collocations = nil

	if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if err := insertExamples(tx, entry.ID, examples); err != nil {
		return err
	}
	if err := insertTranslations(tx, entry.ID, translations); err != nil {
		return err
	}
	entry.Examples = examples
	entry.Translations = translations
	return nil
}

func replaceExamples(tx *gorm.DB, entryID uint, examples []corpus.UsageExample) error {
	if err := tx.Where("entry_id = ?", entryID).Delete(&corpus.UsageExample{}).Error; err != nil {
		return fmt.Errorf("clear examples: %w", err)
	}
	return insertExamples(tx, entryID, examples)
}

func replaceTranslations(tx *gorm.DB, entryID uint, translations []corpus.AdditionalTranslation) error {
	if err := tx.Where("entry_id = ?", entryID).Delete(&corpus.AdditionalTranslation{}).Error; err != nil {
		return fmt.Errorf("clear translations: %w", err)
	}
	return insertTranslations(tx, entryID, translations)
}

func insertExamples(tx *gorm.DB, entryID uint, examples []corpus.UsageExample) error {
	if len(examples) == 0 {
		return nil
	}
	for i := range examples {
		examples[i].ID = 0
		examples[i].EntryID = entryID
	}
	if err := tx.Create(&examples).Error; err != nil {
		return fmt.Errorf("create examples: %w", err)
	}
	return nil
}

func insertTranslations(tx *gorm.DB, entryID uint, translations []corpus.AdditionalTranslation) error {
	if len(translations) == 0 {
		return nil
	}
	for i := range translations {
		translations[i].ID = 0
		translations[i].EntryID = entryID
	}
	if err := tx.Create(&translations).Error; err != nil {
		return fmt.Errorf("create translations: %w", err)
	}
	return nil
}

func withChildren(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Examples", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Translations", func(db *gorm.DB) *gorm.DB { return db.Order("language ASC") }).
		Preload("Collocations", func(db *gorm.DB) *gorm.DB { return db.Order("frequency DESC, id ASC") })
}

func applyOrdering(query *gorm.DB, ordering string) *gorm.DB {
	ordering = strings.TrimSpace(ordering)
	desc := strings.HasPrefix(ordering, "-")
	column, ok := orderingColumns[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return query.Order("created_at DESC, id DESC")
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return query.Order(column + " " + direction + ", id " + direction)
}

// containsPattern 生成小写的 %keyword% 模式，并转义 LIKE 通配符。
func containsPattern(keyword string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + replacer.Replace(strings.ToLower(keyword)) + "%"
}
