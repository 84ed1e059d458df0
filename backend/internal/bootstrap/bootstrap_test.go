package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"isizulu-corpus/backend/internal/app"
	"isizulu-corpus/backend/internal/bootstrap"
	"isizulu-corpus/backend/internal/config"
	domain "isizulu-corpus/backend/internal/domain/user"
	"isizulu-corpus/backend/internal/repository"
	"isizulu-corpus/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            "8000",
		JWTSecret:       "test-secret",
		AccessTTL:       time.Hour,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		RateLimitWindow: time.Minute,
	}
}

func newOnlineApp(t *testing.T, cfg config.ServerConfig) *bootstrap.Application {
	t.Helper()
	resources := &app.Resources{
		Config: app.AppConfig{Mode: config.ModeOnline},
		DB:     testutil.NewDB(t),
	}
	application, err := bootstrap.BuildApplication(context.Background(), nil, resources, cfg)
	require.NoError(t, err)
	return application
}

func login(t *testing.T, application *bootstrap.Application, admin bool) string {
	t.Helper()
	_, err := application.Services.Auth.CreateUser(context.Background(), "editor", "correct-horse", admin)
	require.NoError(t, err)

	c := &client{t: t, router: application.Router}
	rec, env := c.do(http.MethodPost, "/api/auth/login/", map[string]string{"username": "editor", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Bearer", data.TokenType)
	return data.AccessToken
}

func TestOnlineEntryLifecycle(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	anon := &client{t: t, router: application.Router}
	editor := &client{t: t, router: application.Router, token: login(t, application, true)}

	payload := map[string]any{
		"isiZulu_text":            "Ubuntu",
		"english_translation":     "Humanity",
		"part_of_speech":          "noun",
		"examples":                []map[string]string{{"isizulu": "Ubuntu ngumuntu ngabantu", "english": "A person is a person through other people"}},
		"additional_translations": map[string]string{"sesotho": "Botho"},
	}

	rec, env := anon.do(http.MethodPost, "/api/corpus/entries/", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)

	rec, env = editor.do(http.MethodPost, "/api/corpus/entries", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID           uint   `json:"id"`
		Genre        string `json:"genre"`
		Translations []struct {
			LanguageDisplay string `json:"language_display"`
		} `json:"additional_translations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "cultural", created.Genre)
	require.Len(t, created.Translations, 1)
	assert.Equal(t, "Sesotho", created.Translations[0].LanguageDisplay)

	rec, env = editor.do(http.MethodPost, "/api/corpus/entries/", map[string]string{"isiZulu_text": "", "english_translation": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, env.Error.Message, "validation failed")

	for _, path := range []string{"/api/corpus/entries", "/api/corpus/entries/"} {
		rec, env = anon.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.EqualValues(t, 1, env.Meta["total_items"], path)
	}

	id := strconv.FormatUint(uint64(created.ID), 10)
	rec, _ = anon.do(http.MethodGet, "/api/corpus/entries/"+id+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = anon.do(http.MethodGet, "/api/corpus/entries/search/?q=UBUNTU", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []struct {
		Frequency int `json:"frequency"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Frequency)

	rec, env = anon.do(http.MethodGet, "/api/corpus/entries/search?q=ubuntu&page=2&page_size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.EqualValues(t, 1, env.Meta["total_items"])

	rec, _ = editor.do(http.MethodPatch, "/api/corpus/entries/"+id, map[string]any{"genre": "proverb"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = editor.do(http.MethodPut, "/api/corpus/entries/"+id+"/", map[string]any{"isiZulu_text": "Ubuntu"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = anon.do(http.MethodGet, "/api/analytics/activity/", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = editor.do(http.MethodGet, "/api/analytics/activity?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []struct {
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.NotEmpty(t, logs)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Subset(t, actions, []string{"create", "view", "search", "update"})

	rec, _ = editor.do(http.MethodDelete, "/api/corpus/entries/"+id+"/", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = anon.do(http.MethodGet, "/api/corpus/entries/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = anon.do(http.MethodGet, "/api/corpus/entries/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnlineImportExport(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	editor := &client{t: t, router: application.Router, token: login(t, application, false)}

	rec, env := editor.do(http.MethodPost, "/api/corpus/entries/import_data/", `{"isiZulu_text": "Ubuntu"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Data must be a list of entries", env.Error.Message)

	rec, env = editor.do(http.MethodPost, "/api/corpus/entries/import_data", `[
		{"isiZulu_text": "Ubuntu", "english_translation": "Humanity", "additional_translations": {"isixhosa": "Ubuntu"}},
		{"isiZulu_text": "Indlela"}
	]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var imported struct {
		Message       string `json:"message"`
		ImportedCount int    `json:"imported_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &imported))
	assert.Equal(t, 1, imported.ImportedCount)
	assert.Equal(t, "Successfully imported 1 entries", imported.Message)

	rec, _ = editor.do(http.MethodGet, "/api/corpus/entries/export_data/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "Ubuntu", exported[0]["isiZulu_text"])

	rec, _ = editor.do(http.MethodGet, "/api/analytics/activity/", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = editor.do(http.MethodGet, "/api/analytics/dashboard/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		WordFrequency    map[string]int `json:"word_frequency"`
		CorpusStatistics struct {
			TotalEntries int `json:"total_entries"`
		} `json:"corpus_statistics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, map[string]int{"ubuntu": 1}, dashboard.WordFrequency)
	assert.Equal(t, 1, dashboard.CorpusStatistics.TotalEntries)
}

func listTotal(t *testing.T, c *client, path string) float64 {
	t.Helper()
	rec, env := c.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, path)
	total, ok := env.Meta["total_items"].(float64)
	require.True(t, ok, "missing total_items for %s", path)
	return total
}

func TestListFiltersThroughRouter(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	anon := &client{t: t, router: application.Router}
	editor := &client{t: t, router: application.Router, token: login(t, application, false)}

	for _, payload := range []map[string]string{
		{"isiZulu_text": "Ubuntu", "english_translation": "Humanity"},
		{"isiZulu_text": "Indlela ibuzwa", "english_translation": "The way is found by asking"},
	} {
		rec, _ := editor.do(http.MethodPost, "/api/corpus/entries/", payload)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// 两次搜索让 Ubuntu 的频次变为 2。
	for i := 0; i < 2; i++ {
		rec, _ := anon.do(http.MethodGet, "/api/corpus/entries/search/?q=ubuntu", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	cases := map[string]float64{
		"/api/corpus/entries/":                                             2,
		"/api/corpus/entries/?isiZulu_text=ubuntu":                         1,
		"/api/corpus/entries/?isizulu_text=UBUNTU":                         1,
		"/api/corpus/entries/?english_translation=way":                     1,
		"/api/corpus/entries/?isiZulu_text=ubuntu&english_translation=way": 0,
		"/api/corpus/entries/?min_frequency=2":                             1,
		"/api/corpus/entries/?max_frequency=1":                             1,
		"/api/corpus/entries/?min_frequency=1&max_frequency=3":             1,
		"/api/corpus/entries/?min_frequency=3":                             0,
		"/api/corpus/entries?isiZulu_text=indlela&max_frequency=0":         1,
	}
	for path, want := range cases {
		assert.Equal(t, want, listTotal(t, anon, path), path)
	}

	rec, env := anon.do(http.MethodGet, "/api/corpus/entries/?isiZulu_text=ubuntu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []struct {
		Text      string `json:"isiZulu_text"`
		Frequency int    `json:"frequency"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Ubuntu", items[0].Text)
	assert.Equal(t, 2, items[0].Frequency)

	rec, _ = anon.do(http.MethodGet, "/api/corpus/entries/?min_frequency=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHugePageNumbersReturnEmptyPages(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	anon := &client{t: t, router: application.Router}
	editor := &client{t: t, router: application.Router, token: login(t, application, false)}

	rec, _ := editor.do(http.MethodPost, "/api/corpus/entries/", map[string]string{"isiZulu_text": "Ubuntu", "english_translation": "Humanity"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, path := range []string{
		"/api/corpus/entries/search/?q=ubuntu&page=461168601842738792&page_size=20",
		"/api/corpus/entries/?page=461168601842738792&page_size=20",
		"/api/corpus/entries/search/?q=ubuntu&page=9223372036854775807&page_size=100",
	} {
		rec, env := anon.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, string(env.Data), path)
		assert.EqualValues(t, 1, env.Meta["total_items"], path)
	}
}

func TestWordFrequencyLimitFallsBackToDefault(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	anon := &client{t: t, router: application.Router}
	editor := &client{t: t, router: application.Router, token: login(t, application, false)}

	words := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		words = append(words, "igama"+strconv.Itoa(i))
	}
	rec, _ := editor.do(http.MethodPost, "/api/corpus/entries/", map[string]string{
		"isiZulu_text":        strings.Join(words, " "),
		"english_translation": "Twenty-five words",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cases := map[string]int{
		"/api/analytics/word-frequency/":          20,
		"/api/analytics/word-frequency/?limit=0":  20,
		"/api/analytics/word-frequency/?limit=-3": 20,
		"/api/analytics/word-frequency/?limit=5":  5,
		"/api/analytics/word-frequency/?limit=50": 25,
	}
	for path, want := range cases {
		rec, env := anon.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var counts map[string]int
		require.NoError(t, json.Unmarshal(env.Data, &counts), path)
		assert.Len(t, counts, want, path)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	login(t, application, false)
	c := &client{t: t, router: application.Router}

	rec, env := c.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "editor", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, _ = c.do(http.MethodPost, "/api/auth/login", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.SearchRateLimit = 2
	application := newOnlineApp(t, cfg)
	c := &client{t: t, router: application.Router}

	for i := 0; i < 2; i++ {
		rec, _ := c.do(http.MethodGet, "/api/corpus/entries/search/?q=x", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := c.do(http.MethodGet, "/api/corpus/entries/search/?q=x", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHealthAndRoot(t *testing.T) {
	application := newOnlineApp(t, testConfig())
	c := &client{t: t, router: application.Router}

	rec, _ := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "isiZulu Cultural Corpus API")
}

func TestLocalModeSeedsAndSkipsAuth(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, repository.NewUserRepository(db).EnsureUser(context.Background(), &domain.User{ID: 1, Username: "local-editor", IsAdmin: true}))

	resources := &app.Resources{
		Config: app.AppConfig{Mode: config.ModeLocal, Local: config.LocalRuntime{UserID: 1, IsAdmin: true}},
		DB:     db,
	}
	application, err := bootstrap.BuildApplication(context.Background(), nil, resources, testConfig())
	require.NoError(t, err)

	c := &client{t: t, router: application.Router}
	rec, env := c.do(http.MethodGet, "/api/corpus/entries/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, env.Meta["total_items"])

	rec, _ = c.do(http.MethodPost, "/api/corpus/entries/", map[string]string{"isiZulu_text": "Amanzi", "english_translation": "Water"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = c.do(http.MethodGet, "/api/analytics/activity/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 再次装配不会重复写入种子数据。
	_, err = bootstrap.BuildApplication(context.Background(), nil, resources, testConfig())
	require.NoError(t, err)
	total, err := application.Services.Entries.CountAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
