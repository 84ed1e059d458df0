package corpus

import "time"

// ExampleView 是用法示例的对外展示结构。
type ExampleView struct {
	ID             uint   `json:"id"`
	IsiZuluExample string `json:"isiZulu_example"`
	EnglishExample string `json:"english_example"`
}

// TranslationView 附带语言展示名。
type TranslationView struct {
	ID              uint     `json:"id"`
	Language        Language `json:"language"`
	LanguageDisplay string   `json:"language_display"`
	Translation     string   `json:"translation"`
}

// CollocationView 是搭配短语的展示结构。
type CollocationView struct {
	ID        uint   `json:"id"`
	Phrase    string `json:"phrase"`
	Frequency int    `json:"frequency"`
}

// EntryDetail 是详情、导出接口使用的完整结构，同时也能被导入接口直接消费。
type EntryDetail struct {
	ID                  uint              `json:"id"`
	IsiZuluText         string            `json:"isiZulu_text"`
	EnglishTranslation  string            `json:"english_translation"`
	PartOfSpeech        PartOfSpeech      `json:"part_of_speech"`
	PartOfSpeechDisplay string            `json:"part_of_speech_display"`
	Genre               Genre             `json:"genre"`
	GenreDisplay        string            `json:"genre_display"`
	CulturalContext     string            `json:"cultural_context"`
	Source              string            `json:"source"`
	Frequency           int               `json:"frequency"`
	IsActive            bool              `json:"is_active"`
	Examples            []ExampleView     `json:"examples"`
	Translations        []TranslationView `json:"additional_translations"`
	Collocations        []CollocationView `json:"collocations"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// EntrySummary 是列表、搜索接口使用的精简结构。
type EntrySummary struct {
	ID                  uint         `json:"id"`
	IsiZuluText         string       `json:"isiZulu_text"`
	EnglishTranslation  string       `json:"english_translation"`
	PartOfSpeech        PartOfSpeech `json:"part_of_speech"`
	PartOfSpeechDisplay string       `json:"part_of_speech_display"`
	Genre               Genre        `json:"genre"`
	Frequency           int          `json:"frequency"`
	CreatedAt           time.Time    `json:"created_at"`
}

// ToDetail 把实体转换为详情结构，子集合为空时输出空数组而非 null。
func ToDetail(e Entry) EntryDetail {
	detail := EntryDetail{
		ID:                  e.ID,
		IsiZuluText:         e.IsiZuluText,
		EnglishTranslation:  e.EnglishTranslation,
		PartOfSpeech:        e.PartOfSpeech,
		PartOfSpeechDisplay: e.PartOfSpeech.Label(),
		Genre:               e.Genre,
		GenreDisplay:        e.Genre.Label(),
		CulturalContext:     e.CulturalContext,
		Source:              e.Source,
		Frequency:           e.Frequency,
		IsActive:            e.IsActive,
		Examples:            make([]ExampleView, 0, len(e.Examples)),
		Translations:        make([]TranslationView, 0, len(e.Translations)),
		Collocations:        make([]CollocationView, 0, len(e.Collocations)),
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
	for _, ex := range e.Examples {
		detail.Examples = append(detail.Examples, ExampleView{
			ID:             ex.ID,
			IsiZuluExample: ex.IsiZuluExample,
			EnglishExample: ex.EnglishExample,
		})
	}
	for _, tr := range e.Translations {
		detail.Translations = append(detail.Translations, TranslationView{
			ID:              tr.ID,
			Language:        tr.Language,
			LanguageDisplay: tr.Language.Label(),
			Translation:     tr.Translation,
		})
	}
	for _, col := range e.Collocations {
		detail.Collocations = append(detail.Collocations, CollocationView{
			ID:        col.ID,
			Phrase:    col.Phrase,
			Frequency: col.Frequency,
		})
	}
	return detail
}

// ToSummary 把实体转换为列表结构。
func ToSummary(e Entry) EntrySummary {
	return EntrySummary{
		ID:                  e.ID,
		IsiZuluText:         e.IsiZuluText,
		EnglishTranslation:  e.EnglishTranslation,
		PartOfSpeech:        e.PartOfSpeech,
		PartOfSpeechDisplay: e.PartOfSpeech.Label(),
		Genre:               e.Genre,
		Frequency:           e.Frequency,
		CreatedAt:           e.CreatedAt,
	}
}

// ToSummaries 批量转换。
func ToSummaries(entries []Entry) []EntrySummary {
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToSummary(e))
	}
	return out
}

// ToDetails 批量转换。
func ToDetails(entries []Entry) []EntryDetail {
	out := make([]EntryDetail, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToDetail(e))
	}
	return out
}
