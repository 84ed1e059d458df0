package corpus

import (
	"encoding/json"
	"testing"
)

func TestToDetailUsesEmptyArrays(t *testing.T) {
	detail := ToDetail(Entry{ID: 1, IsiZuluText: "Ubuntu", EnglishTranslation: "Humanity", PartOfSpeech: PartOfSpeechNoun, Genre: GenreCultural, IsActive: true})

	raw, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"examples", "additional_translations", "collocations"} {
		list, ok := decoded[key].([]any)
		if !ok || len(list) != 0 {
			t.Fatalf("expected empty array for %s, got %v", key, decoded[key])
		}
	}
	if decoded["part_of_speech_display"] != "Noun" || decoded["genre_display"] != "Cultural" {
		t.Fatalf("unexpected display labels: %v", decoded)
	}
}

func TestDetailRoundTripsAsImportPayload(t *testing.T) {
	entry := Entry{
		IsiZuluText:        "Ubuntu",
		EnglishTranslation: "Humanity",
		PartOfSpeech:       PartOfSpeechNoun,
		Genre:              GenreCultural,
		Examples:           []UsageExample{{ID: 4, IsiZuluExample: "Ubuntu ngumuntu ngabantu", EnglishExample: "A person is a person through other people"}},
		Translations:       []AdditionalTranslation{{ID: 9, Language: LanguageSesotho, Translation: "Botho"}},
		Collocations:       []Collocation{{Phrase: "ubuntu bethu", Frequency: 2}},
	}

	raw, err := json.Marshal(ToDetail(entry))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload EntryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal as payload: %v", err)
	}

	if Value(payload.IsiZuluText) != "Ubuntu" || Value(payload.PartOfSpeech) != "noun" {
		t.Fatalf("unexpected scalars: %+v", payload)
	}
	examples := BuildExamples(payload.Examples)
	if len(examples) != 1 || examples[0].EnglishExample != "A person is a person through other people" {
		t.Fatalf("unexpected examples: %+v", examples)
	}
	translations := BuildTranslations(payload.Translations)
	if len(translations) != 1 || translations[0].Language != LanguageSesotho {
		t.Fatalf("unexpected translations: %+v", translations)
	}
}

func TestEntryStatus(t *testing.T) {
	if (Entry{IsActive: true}).Status() != StatusActive || (Entry{}).Status() != StatusDeleted {
		t.Fatalf("unexpected status mapping")
	}
}
