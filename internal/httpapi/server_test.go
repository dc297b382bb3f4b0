package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pluto731/Translation-tools/internal/db"
	"github.com/Pluto731/Translation-tools/internal/history"
	"github.com/Pluto731/Translation-tools/internal/langdetect"
	"github.com/Pluto731/Translation-tools/internal/settings"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

// fakeEngine upper-cases text, or fails with failWith.
type fakeEngine struct {
	name     string
	failWith string
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) Translate(_ context.Context, req translation.Request) translation.Result {
	result := translation.Result{
		SourceText: req.Text,
		FromLang:   req.FromLang,
		ToLang:     req.ToLang,
		EngineName: e.name,
		IsWord:     translation.IsSingleWord(req.Text),
	}
	if e.failWith != "" {
		result.Error = e.failWith
		return result
	}
	result.TranslatedText = strings.ToUpper(req.Text)
	return result
}

func (e *fakeEngine) LookupWord(ctx context.Context, word, fromLang, toLang string) translation.Result {
	result := e.Translate(ctx, translation.Request{Text: word, FromLang: fromLang, ToLang: toLang})
	if result.Success() {
		result.IsWord = true
		result.WordDetail = &translation.WordDetail{
			Word:     word,
			Explains: []string{result.TranslatedText},
			Examples: []translation.WordExample{},
		}
	}
	return result
}

func (e *fakeEngine) Close() error { return nil }

type fakeSettings struct {
	mu      sync.Mutex
	current settings.Settings
	saves   int
}

func (f *fakeSettings) Settings() settings.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSettings) UpdateSettings(_ context.Context, update func(settings.Settings) settings.Settings) (settings.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = update(f.current)
	f.saves++
	return f.current, nil
}

type testEnv struct {
	e        *echo.Echo
	manager  *translation.EngineManager
	history  *history.Repository
	settings *fakeSettings
}

func newTestEnv(t *testing.T, engines ...translation.Engine) *testEnv {
	t.Helper()

	pool, err := db.NewPool(context.Background(), db.Options{
		DatabaseURL: filepath.Join(t.TempDir(), "history.db"),
		LogLevel:    "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	logger := zerolog.Nop()
	manager := translation.NewEngineManager(logger)
	for _, engine := range engines {
		require.NoError(t, manager.Register(engine))
	}

	repo := history.NewRepository(pool)
	service := translation.NewService(manager, translation.ServiceOptions{
		ShowWordDetail: true,
		History:        repo,
		Detector:       langdetect.Detector{},
	}, logger)

	store := &fakeSettings{current: settings.Default().WithAPIKeys(func(k *settings.APIKeys) {
		k.BaiduAppID = "app"
		k.BaiduSecretKey = "top-secret"
	})}

	server := NewServer(Deps{
		Engines:    manager,
		Translator: service,
		Documents:  translation.NewFileTranslator(manager, 16, logger),
		History:    repo,
		Settings:   store,
	}, logger, Options{})

	return &testEnv{e: server.Handler(), manager: manager, history: repo, settings: store}
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (env *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var resp envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHealthAndEngines(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"}, &fakeEngine{name: "youdao"})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/engines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var engines enginesResponse
	require.NoError(t, json.Unmarshal(resp.Data, &engines))
	assert.Equal(t, []string{"baidu", "youdao"}, engines.Engines)
	assert.Equal(t, "baidu", engines.Current)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/engines/current", `{"engine":"Youdao"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "youdao", env.manager.CurrentName())

	rec, resp = env.do(t, http.MethodPut, "/api/v1/engines/current", `{"engine":"deepl"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fail", resp.Status)
	assert.Equal(t, "youdao", env.manager.CurrentName())
}

func TestTranslateRecordsHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	rec, resp := env.do(t, http.MethodPost, "/api/v1/translate", `{"text":"good morning","from_lang":"en","to_lang":"zh"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Result translation.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	assert.Equal(t, "GOOD MORNING", payload.Result.TranslatedText)
	assert.Empty(t, payload.Result.Error)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/history?page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page history.Page
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.PageSize)
	assert.Equal(t, "good morning", page.Entries[0].SourceText)
}

func TestTranslateWordReturnsDetail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "youdao"})

	rec, resp := env.do(t, http.MethodPost, "/api/v1/translate", `{"text":"apple"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Result translation.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	require.NotNil(t, payload.Result.WordDetail)
	assert.True(t, payload.Result.IsWord)
	assert.Equal(t, []string{"APPLE"}, payload.Result.WordDetail.Explains)
}

func TestTranslateEngineFailureIsSuccessEnvelope(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu", failWith: "baidu credentials not configured"})

	rec, resp := env.do(t, http.MethodPost, "/api/v1/translate", `{"text":"hello world"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	var payload struct {
		Result translation.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	assert.Equal(t, "baidu credentials not configured", payload.Result.Error)
	assert.Empty(t, payload.Result.TranslatedText)

	count, err := env.history.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed translations must not reach history")
}

func TestTranslateWithoutEngineIsUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/translate", `{"text":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", resp.Status)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/lookup", `{"word":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTranslateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	for _, body := range []string{``, `{"text":""}`, `{"text":"a","to_lang":"auto"}`, `{"text":"a","extra":1}`} {
		rec, resp := env.do(t, http.MethodPost, "/api/v1/translate", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "fail", resp.Status, body)
	}
}

func TestHistoryEntryLifecycleAndExport(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "llm"})
	for _, text := range []string{"first sentence", "second sentence"} {
		rec, _ := env.do(t, http.MethodPost, "/api/v1/translate", `{"text":"`+text+`","from_lang":"en"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	all, err := env.history.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	id := all[0].ID

	rec, _ := env.do(t, http.MethodGet, "/api/v1/history/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".csv")
	assert.Contains(t, rec.Body.String(), "ID,Source,Translation,From,To,Engine,Word,Created")
	assert.Contains(t, rec.Body.String(), "SECOND SENTENCE")

	rec, _ = env.do(t, http.MethodGet, "/api/v1/history/export?format=xlsx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/history/"+itoa(id), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/history/"+itoa(id), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/history/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/history/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := env.do(t, http.MethodDelete, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, string(resp.Data))
}

func TestHistoryDisabled(t *testing.T) {
	t.Parallel()

	server := NewServer(Deps{
		Engines:    translation.NewEngineManager(zerolog.Nop()),
		Translator: translation.NewService(translation.NewEngineManager(zerolog.Nop()), translation.ServiceOptions{}, zerolog.Nop()),
	}, zerolog.Nop(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSettingsAreRedactedAndUpdated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got settingsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "app", got.Settings.APIKeys.BaiduAppID)
	assert.Equal(t, settings.RedactedMask, got.Settings.APIKeys.BaiduSecretKey)
	assert.NotContains(t, rec.Body.String(), "top-secret")

	rec, resp = env.do(t, http.MethodPut, "/api/v1/settings",
		`{"api_keys":{"baidu_secret_key":"********","llm_api_key":"sk-new"},"preferences":{"default_engine":"llm"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "llm", got.Settings.Preferences.DefaultEngine)
	assert.Equal(t, settings.RedactedMask, got.Settings.APIKeys.LLMAPIKey)

	stored := env.settings.Settings()
	assert.Equal(t, "top-secret", stored.APIKeys.BaiduSecretKey)
	assert.Equal(t, "sk-new", stored.APIKeys.LLMAPIKey)
	assert.Equal(t, 1, env.settings.saves)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/settings", `{"preferences":{"history_page_size":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateFileUpload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("alpha beta\ngamma delta"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("to_lang", "zh"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/translate", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Filename string                     `json:"filename"`
			Document translation.DocumentResult `json:"document"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notes.txt", resp.Data.Filename)
	assert.Equal(t, "ALPHA BETA\n\nGAMMA DELTA", resp.Data.Document.Text)
	assert.Equal(t, 2, resp.Data.Document.Chunks)
	assert.Zero(t, resp.Data.Document.FailedChunks)
}

func TestTranslateFileRejectsUnsupportedFormat(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "sheet.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("binary"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/translate", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestURLPreview(t *testing.T) {
	t.Parallel()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("word ", 100)))
	}))
	defer page.Close()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/url/preview?max_chars=200&url="+page.URL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview pagePreview
	require.NoError(t, json.Unmarshal(resp.Data, &preview))
	assert.True(t, preview.Truncated)
	assert.Equal(t, 200, len([]rune(preview.PreviewText)))
	assert.Equal(t, 499, preview.CharCount)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/url/preview?max_chars=5&url="+page.URL, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeEngine{name: "baidu"})

	rec, resp := env.do(t, http.MethodPost, "/api/v1/detect", `{"text":"Das ist ein kleines Haus am See.","limit":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got detectResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.True(t, got.Detected)
	assert.Equal(t, "de", got.Language)
	assert.LessOrEqual(t, len(got.Candidates), 2)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
