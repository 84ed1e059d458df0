package corpus

import "time"

// Status 描述词条的生命周期状态，底层仍由 is_active 布尔列承载。
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Entry 是语料库的核心记录：一条 isiZulu 文本及其英文翻译与文化注释。
type Entry struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`                                       // 自增主键
	IsiZuluText        string       `gorm:"column:isizulu_text;type:text;not null" json:"isiZulu_text"` // isiZulu 原文
	EnglishTranslation string       `gorm:"type:text;not null" json:"english_translation"`              // 英文翻译
	PartOfSpeech       PartOfSpeech `gorm:"size:20;index;default:cultural" json:"part_of_speech"`       // 词性
	Genre              Genre        `gorm:"size:20;index;default:cultural" json:"genre"`                // 体裁
	CulturalContext    string       `gorm:"type:text" json:"cultural_context"`                          // 文化背景说明
	Source             string       `gorm:"size:200" json:"source"`                                     // 出处，可为空
	Frequency          int          `gorm:"default:0;index" json:"frequency"`                           // 搜索命中计数，只增不减
	IsActive           bool         `gorm:"default:true;index" json:"is_active"`                        // 软删除标记
	CreatedAt          time.Time    `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt          time.Time    `json:"updated_at"`                                                 // 更新时间

	Examples     []UsageExample          `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"examples"`
	Translations []AdditionalTranslation `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"additional_translations"`
	Collocations []Collocation           `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"collocations"`
}

// TableName 指定数据库表名。
func (Entry) TableName() string {
	return "cultural_entries"
}

// Status 将布尔标记映射为生命周期状态。
func (e Entry) Status() Status {
	if e.IsActive {
		return StatusActive
	}
	return StatusDeleted
}

// UsageExample 记录词条在句子中的用法示例。
type UsageExample struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	EntryID        uint   `gorm:"index;not null" json:"-"`
	IsiZuluExample string `gorm:"column:isizulu_example;type:text" json:"isiZulu_example"`
	EnglishExample string `gorm:"type:text" json:"english_example"`
}

// TableName 指定数据库表名。
func (UsageExample) TableName() string {
	return "usage_examples"
}

// AdditionalTranslation 保存相关语言（isiXhosa、Sesotho 等）的译文，每种语言每个词条唯一。
type AdditionalTranslation struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	EntryID     uint     `gorm:"not null;uniqueIndex:idx_translation_entry_language,priority:1" json:"-"`
	Language    Language `gorm:"size:20;not null;uniqueIndex:idx_translation_entry_language,priority:2" json:"language"`
	Translation string   `gorm:"type:text" json:"translation"`
}

// TableName 指定数据库表名。
func (AdditionalTranslation) TableName() string {
	return "additional_translations"
}

// Collocation 记录常见搭配短语，目前仅供读取。
type Collocation struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	EntryID   uint   `gorm:"not null;uniqueIndex:idx_collocation_entry_phrase,priority:1" json:"-"`
	Phrase    string `gorm:"size:100;not null;uniqueIndex:idx_collocation_entry_phrase,priority:2" json:"phrase"`
	Frequency int    `gorm:"default:1" json:"frequency"`
}

// TableName 指定数据库表名。
func (Collocation) TableName() string {
	return "collocations"
}

// Models 返回需要迁移的全部语料表模型。
func Models() []any {
	return []any{&Entry{}, &UsageExample{}, &AdditionalTranslation{}, &Collocation{}}
}
