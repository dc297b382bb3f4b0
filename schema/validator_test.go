package payloadschema

import (
	"strings"
	"testing"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

func TestValidateTranslateRequest_Valid(t *testing.T) {
	req, err := ValidateTranslateRequest([]byte(`{"text":"Hello world","from_lang":"auto","to_lang":"zh"}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.Text != "Hello world" || req.FromLang != "auto" || req.ToLang != "zh" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestValidateTranslateRequest_LanguagesOptional(t *testing.T) {
	req, err := ValidateTranslateRequest([]byte(`{"text":"你好"}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.FromLang != "" || req.ToLang != "" {
		t.Fatalf("expected empty languages, got %+v", req)
	}
}

func TestValidateTranslateRequest_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "missing text", payload: `{"to_lang":"en"}`, want: "schema validation failed"},
		{name: "whitespace text", payload: `{"text":"   "}`, want: "text must not be empty"},
		{name: "unknown field", payload: `{"text":"a","engine":"baidu"}`, want: "schema validation failed"},
		{name: "bad language", payload: `{"text":"a","to_lang":"z h"}`, want: "schema validation failed"},
		{name: "auto target", payload: `{"text":"a","to_lang":"auto"}`, want: "to_lang must not be auto"},
		{name: "trailing content", payload: `{"text":"a"} {}`, want: "trailing content"},
		{name: "empty body", payload: `   `, want: "payload is empty"},
	}

	for _, tc := range cases {
		_, err := ValidateTranslateRequest([]byte(tc.payload))
		if err == nil {
			t.Fatalf("%s: expected validation to fail", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in error, got: %v", tc.name, tc.want, err)
		}
	}
}

func TestValidateLookupRequest_TrimsWord(t *testing.T) {
	req, err := ValidateLookupRequest([]byte(`{"word":"  apple ","to_lang":"zh"}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.Word != "apple" {
		t.Fatalf("expected trimmed word, got %q", req.Word)
	}

	if _, err := ValidateLookupRequest([]byte(`{"word":"` + strings.Repeat("a", 65) + `"}`)); err == nil {
		t.Fatalf("expected overly long word to fail")
	}
}

func TestValidateDetectRequest(t *testing.T) {
	req, err := ValidateDetectRequest([]byte(`{"text":"Bonjour tout le monde","limit":3}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", req.Limit)
	}
	if _, err := ValidateDetectRequest([]byte(`{"text":"x","limit":0}`)); err == nil {
		t.Fatalf("expected zero limit to fail")
	}
}

func TestValidateEngineSelection_Normalizes(t *testing.T) {
	req, err := ValidateEngineSelection([]byte(`{"engine":"Youdao"}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.Engine != "youdao" {
		t.Fatalf("expected lowercased engine, got %q", req.Engine)
	}
	if _, err := ValidateEngineSelection([]byte(`{"engine":""}`)); err == nil {
		t.Fatalf("expected empty engine to fail")
	}
}

func TestValidateSettingsUpdate_AppliesPartialChanges(t *testing.T) {
	update, err := ValidateSettingsUpdate([]byte(`{
		"api_keys":{"llm_api_url":"https://api.deepseek.com","llm_api_key":"sk-test"},
		"preferences":{"default_engine":"llm","show_word_detail":false,"history_page_size":50}
	}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}

	current := settings.Default().WithAPIKeys(func(k *settings.APIKeys) {
		k.BaiduAppID = "app"
	})
	next := update.Apply(current)

	if next.APIKeys.BaiduAppID != "app" {
		t.Fatalf("expected untouched baidu app id, got %q", next.APIKeys.BaiduAppID)
	}
	if next.APIKeys.LLMAPIURL != "https://api.deepseek.com" || next.APIKeys.LLMAPIKey != "sk-test" {
		t.Fatalf("unexpected llm keys: %+v", next.APIKeys)
	}
	if next.Preferences.DefaultEngine != "llm" || next.Preferences.ShowWordDetail || next.Preferences.HistoryPageSize != 50 {
		t.Fatalf("unexpected preferences: %+v", next.Preferences)
	}
	if next.Preferences.DefaultToLang != settings.DefaultToLang {
		t.Fatalf("expected default target language to stay, got %q", next.Preferences.DefaultToLang)
	}
	if current.APIKeys.LLMAPIKey != "" {
		t.Fatalf("apply must not mutate the current value")
	}
}

func TestValidateSettingsUpdate_Rejections(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"preferences":{}}`,
		`{"api_keys":{"baidu_api_url":"ftp://example.com"}}`,
		`{"preferences":{"history_page_size":0}}`,
		`{"preferences":{"default_to_lang":"auto"}}`,
		`{"api_keys":{"unknown":"x"}}`,
	}
	for _, payload := range payloads {
		if _, err := ValidateSettingsUpdate([]byte(payload)); err == nil {
			t.Fatalf("expected %s to fail validation", payload)
		}
	}

	if _, err := ValidateSettingsUpdate([]byte(`{"api_keys":{"baidu_api_url":""}}`)); err != nil {
		t.Fatalf("expected empty endpoint to reset to default, got error: %v", err)
	}
}

func TestValidateURLTranslateRequest(t *testing.T) {
	req, err := ValidateURLTranslateRequest([]byte(`{"url":"https://example.com/post","to_lang":"en"}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if req.URL != "https://example.com/post" {
		t.Fatalf("unexpected url: %q", req.URL)
	}

	for _, payload := range []string{`{"url":"file:///etc/passwd"}`, `{"url":"not a url"}`, `{}`} {
		if _, err := ValidateURLTranslateRequest([]byte(payload)); err == nil {
			t.Fatalf("expected %s to fail validation", payload)
		}
	}
}

func TestSettingsUpdateKeepsSecretsBehindMask(t *testing.T) {
	update, err := ValidateSettingsUpdate([]byte(`{"api_keys":{"baidu_app_id":"new-app","baidu_secret_key":"********"}}`))
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}

	current := settings.Default().WithAPIKeys(func(k *settings.APIKeys) {
		k.BaiduAppID = "old-app"
		k.BaiduSecretKey = "real-secret"
	})
	next := update.Apply(current)
	if next.APIKeys.BaiduAppID != "new-app" || next.APIKeys.BaiduSecretKey != "real-secret" {
		t.Fatalf("unexpected keys: %+v", next.APIKeys)
	}
}
