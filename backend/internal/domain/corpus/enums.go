package corpus

import "strings"

// PartOfSpeech 表示词条的词性分类。
type PartOfSpeech string

const (
	PartOfSpeechNoun      PartOfSpeech = "noun"
	PartOfSpeechVerb      PartOfSpeech = "verb"
	PartOfSpeechAdjective PartOfSpeech = "adjective"
	PartOfSpeechAdverb    PartOfSpeech = "adverb"
	PartOfSpeechProverb   PartOfSpeech = "proverb"
	PartOfSpeechIdiom     PartOfSpeech = "idiom"
	PartOfSpeechNarrative PartOfSpeech = "narrative"
	PartOfSpeechSong      PartOfSpeech = "song"
	PartOfSpeechGreeting  PartOfSpeech = "greeting"
	PartOfSpeechCultural  PartOfSpeech = "cultural"
)

var partOfSpeechLabels = map[PartOfSpeech]string{
	PartOfSpeechNoun:      "Noun",
	PartOfSpeechVerb:      "Verb",
	PartOfSpeechAdjective: "Adjective",
	PartOfSpeechAdverb:    "Adverb",
	PartOfSpeechProverb:   "Proverb",
	PartOfSpeechIdiom:     "Idiom",
	PartOfSpeechNarrative: "Narrative",
	PartOfSpeechSong:      "Song",
	PartOfSpeechGreeting:  "Greeting",
	PartOfSpeechCultural:  "Cultural Term",
}

// Valid 判断词性是否属于允许的枚举值。
func (p PartOfSpeech) Valid() bool {
	_, ok := partOfSpeechLabels[p]
	return ok
}

// Label 返回词性的展示名称。
func (p PartOfSpeech) Label() string {
	return partOfSpeechLabels[p]
}

// Genre 表示词条所属的文化体裁。
type Genre string

const (
	GenreProverb   Genre = "proverb"
	GenreIdiom     Genre = "idiom"
	GenreNarrative Genre = "narrative"
	GenreSong      Genre = "song"
	GenreGreeting  Genre = "greeting"
	GenreCultural  Genre = "cultural"
)

var genreLabels = map[Genre]string{
	GenreProverb:   "Proverb",
	GenreIdiom:     "Idiom",
	GenreNarrative: "Narrative",
	GenreSong:      "Song",
	GenreGreeting:  "Greeting",
	GenreCultural:  "Cultural",
}

// Valid 判断体裁是否合法。
func (g Genre) Valid() bool {
	_, ok := genreLabels[g]
	return ok
}

// Label 返回体裁的展示名称。
func (g Genre) Label() string {
	return genreLabels[g]
}

// Language 表示附加翻译支持的相关语言。
type Language string

const (
	LanguageIsiXhosa  Language = "isixhosa"
	LanguageSesotho   Language = "sesotho"
	LanguageSetswana  Language = "setswana"
	LanguageTshivenda Language = "tshivenda"
	LanguageXitsonga  Language = "xitsonga"
)

var languageLabels = map[Language]string{
	LanguageIsiXhosa:  "isiXhosa",
	LanguageSesotho:   "Sesotho",
	LanguageSetswana:  "Setswana",
	LanguageTshivenda: "Tshivenda",
	LanguageXitsonga:  "Xitsonga",
}

// Valid 判断语言标签是否在固定集合内。
func (l Language) Valid() bool {
	_, ok := languageLabels[l]
	return ok
}

// Label 返回语言展示名。
func (l Language) Label() string {
	return languageLabels[l]
}

// ParsePartOfSpeech 规范化输入并校验，空字符串返回 false。
func ParsePartOfSpeech(raw string) (PartOfSpeech, bool) {
	value := PartOfSpeech(strings.ToLower(strings.TrimSpace(raw)))
	return value, value.Valid()
}

// ParseGenre 规范化体裁输入。
func ParseGenre(raw string) (Genre, bool) {
	value := Genre(strings.ToLower(strings.TrimSpace(raw)))
	return value, value.Valid()
}

// ParseLanguage 规范化语言标签。
func ParseLanguage(raw string) (Language, bool) {
	value := Language(strings.ToLower(strings.TrimSpace(raw)))
	return value, value.Valid()
}
