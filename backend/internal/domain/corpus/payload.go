package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// EntryPayload 描述创建、更新与批量导入时的输入结构。
// 标量字段使用指针以区分"未提供"与"显式置空"，子集合为 nil 表示未提供。
type EntryPayload struct {
	IsiZuluText        *string          `json:"isiZulu_text"`
	EnglishTranslation *string          `json:"english_translation"`
	PartOfSpeech       *string          `json:"part_of_speech"`
	Genre              *string          `json:"genre"`
	CulturalContext    *string          `json:"cultural_context"`
	Source             *string          `json:"source"`
	Examples           []ExamplePayload `json:"examples"`
	Translations       TranslationList  `json:"additional_translations"`
}

// ExamplePayload 兼容两种写法：{isizulu, english} 与导出格式 {isiZulu_example, english_example}。
type ExamplePayload struct {
	IsiZulu string
	English string
}

// UnmarshalJSON 合并两种键名，导出格式优先。
func (p *ExamplePayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		IsiZulu        string `json:"isizulu"`
		English        string `json:"english"`
		IsiZuluExample string `json:"isiZulu_example"`
		EnglishExample string `json:"english_example"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.IsiZulu = firstNonBlank(raw.IsiZuluExample, raw.IsiZulu)
	p.English = firstNonBlank(raw.EnglishExample, raw.English)
	return nil
}

// MarshalJSON 以导出格式输出，保证导出后可再次导入。
func (p ExamplePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsiZuluExample string `json:"isiZulu_example"`
		EnglishExample string `json:"english_example"`
	}{p.IsiZulu, p.English})
}

// TranslationPayload 是单条附加翻译。
type TranslationPayload struct {
	Language    string `json:"language"`
	Translation string `json:"translation"`
}

// TranslationList 兼容 {"isixhosa": "..."} 映射写法与 [{language, translation}] 列表写法。
type TranslationList []TranslationPayload

// UnmarshalJSON 根据首字符判断输入形态，映射按语言键排序以保证写入顺序稳定。
func (l *TranslationList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	switch trimmed[0] {
	case '{':
		var byLanguage map[string]string
		if err := json.Unmarshal(trimmed, &byLanguage); err != nil {
			return fmt.Errorf("decode translation map: %w", err)
		}
		keys := make([]string, 0, len(byLanguage))
		for k := range byLanguage {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(TranslationList, 0, len(keys))
		for _, k := range keys {
			out = append(out, TranslationPayload{Language: k, Translation: byLanguage[k]})
		}
		*l = out
		return nil
	case '[':
		var items []TranslationPayload
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode translation list: %w", err)
		}
		if items == nil {
			items = []TranslationPayload{}
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("additional_translations must be an object or a list")
	}
}

// BuildExamples 过滤掉缺少任意一侧文本的示例。
func BuildExamples(items []ExamplePayload) []UsageExample {
	out := make([]UsageExample, 0, len(items))
	for _, item := range items {
		zu := strings.TrimSpace(item.IsiZulu)
		en := strings.TrimSpace(item.English)
		if zu == "" || en == "" {
			continue
		}
		out = append(out, UsageExample{IsiZuluExample: zu, EnglishExample: en})
	}
	return out
}

// BuildTranslations 丢弃未知语言或空译文；同一语言重复出现时保留最后一条。
func BuildTranslations(items TranslationList) []AdditionalTranslation {
	out := make([]AdditionalTranslation, 0, len(items))
	position := make(map[Language]int, len(items))
	for _, item := range items {
		lang, ok := ParseLanguage(item.Language)
		text := strings.TrimSpace(item.Translation)
		if !ok || text == "" {
			continue
		}
		if idx, seen := position[lang]; seen {
			out[idx].Translation = text
			continue
		}
		position[lang] = len(out)
		out = append(out, AdditionalTranslation{Language: lang, Translation: text})
	}
	return out
}

// Value 返回指针指向的去空白字符串，nil 视为空串。
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
