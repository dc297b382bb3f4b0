package payloadschema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

//go:embed *.schema.json
var schemaFiles embed.FS

const (
	translateRequestSchema = "translate_request.schema.json"
	lookupRequestSchema    = "lookup_request.schema.json"
	detectRequestSchema    = "detect_request.schema.json"
	engineSelectionSchema  = "engine_selection.schema.json"
	settingsUpdateSchema   = "settings_update.schema.json"
	urlTranslateSchema     = "url_translate_request.schema.json"
)

type TranslateRequest struct {
	Text     string `json:"text"`
	FromLang string `json:"from_lang,omitempty"`
	ToLang   string `json:"to_lang,omitempty"`
}

type LookupRequest struct {
	Word     string `json:"word"`
	FromLang string `json:"from_lang,omitempty"`
	ToLang   string `json:"to_lang,omitempty"`
}

type DetectRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit,omitempty"`
}

type URLTranslateRequest struct {
	URL      string `json:"url"`
	FromLang string `json:"from_lang,omitempty"`
	ToLang   string `json:"to_lang,omitempty"`
}

type EngineSelection struct {
	Engine string `json:"engine"`
}

// SettingsUpdate is a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	APIKeys     *APIKeysUpdate     `json:"api_keys,omitempty"`
	Preferences *PreferencesUpdate `json:"preferences,omitempty"`
}

type APIKeysUpdate struct {
	BaiduAppID      *string `json:"baidu_app_id,omitempty"`
	BaiduSecretKey  *string `json:"baidu_secret_key,omitempty"`
	BaiduAPIURL     *string `json:"baidu_api_url,omitempty"`
	YoudaoAppKey    *string `json:"youdao_app_key,omitempty"`
	YoudaoAppSecret *string `json:"youdao_app_secret,omitempty"`
	YoudaoAPIURL    *string `json:"youdao_api_url,omitempty"`
	LLMAPIURL       *string `json:"llm_api_url,omitempty"`
	LLMAPIKey       *string `json:"llm_api_key,omitempty"`
	LLMModelName    *string `json:"llm_model_name,omitempty"`
}

type PreferencesUpdate struct {
	DefaultEngine   *string `json:"default_engine,omitempty"`
	DefaultFromLang *string `json:"default_from_lang,omitempty"`
	DefaultToLang   *string `json:"default_to_lang,omitempty"`
	ShowWordDetail  *bool   `json:"show_word_detail,omitempty"`
	HistoryPageSize *int    `json:"history_page_size,omitempty"`
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func ValidateTranslateRequest(payload []byte) (*TranslateRequest, error) {
	return validate(translateRequestSchema, payload, func(req *TranslateRequest) error {
		if strings.TrimSpace(req.Text) == "" {
			return fmt.Errorf("text must not be empty")
		}
		return validateTargetLang(req.ToLang)
	})
}

func ValidateLookupRequest(payload []byte) (*LookupRequest, error) {
	return validate(lookupRequestSchema, payload, func(req *LookupRequest) error {
		req.Word = strings.TrimSpace(req.Word)
		if req.Word == "" {
			return fmt.Errorf("word must not be empty")
		}
		return validateTargetLang(req.ToLang)
	})
}

func ValidateDetectRequest(payload []byte) (*DetectRequest, error) {
	return validate(detectRequestSchema, payload, func(req *DetectRequest) error {
		if strings.TrimSpace(req.Text) == "" {
			return fmt.Errorf("text must not be empty")
		}
		return nil
	})
}

func ValidateURLTranslateRequest(payload []byte) (*URLTranslateRequest, error) {
	return validate(urlTranslateSchema, payload, func(req *URLTranslateRequest) error {
		req.URL = strings.TrimSpace(req.URL)
		return validateTargetLang(req.ToLang)
	})
}

func ValidateEngineSelection(payload []byte) (*EngineSelection, error) {
	return validate(engineSelectionSchema, payload, func(req *EngineSelection) error {
		req.Engine = strings.ToLower(strings.TrimSpace(req.Engine))
		return nil
	})
}

func ValidateSettingsUpdate(payload []byte) (*SettingsUpdate, error) {
	return validate(settingsUpdateSchema, payload, func(req *SettingsUpdate) error {
		if req.Preferences != nil && req.Preferences.DefaultToLang != nil {
			return validateTargetLang(*req.Preferences.DefaultToLang)
		}
		return nil
	})
}

// Apply returns current with every field present in the update replaced.
func (u SettingsUpdate) Apply(current settings.Settings) settings.Settings {
	next := current
	if keys := u.APIKeys; keys != nil {
		next = next.WithAPIKeys(func(k *settings.APIKeys) {
			assign(&k.BaiduAppID, keys.BaiduAppID)
			assignSecret(&k.BaiduSecretKey, keys.BaiduSecretKey)
			assign(&k.BaiduAPIURL, keys.BaiduAPIURL)
			assign(&k.YoudaoAppKey, keys.YoudaoAppKey)
			assignSecret(&k.YoudaoAppSecret, keys.YoudaoAppSecret)
			assign(&k.YoudaoAPIURL, keys.YoudaoAPIURL)
			assign(&k.LLMAPIURL, keys.LLMAPIURL)
			assignSecret(&k.LLMAPIKey, keys.LLMAPIKey)
			assign(&k.LLMModelName, keys.LLMModelName)
		})
	}
	if prefs := u.Preferences; prefs != nil {
		next = next.WithPreferences(func(p *settings.Preferences) {
			assign(&p.DefaultEngine, prefs.DefaultEngine)
			assign(&p.DefaultFromLang, prefs.DefaultFromLang)
			assign(&p.DefaultToLang, prefs.DefaultToLang)
			assign(&p.ShowWordDetail, prefs.ShowWordDetail)
			assign(&p.HistoryPageSize, prefs.HistoryPageSize)
		})
	}
	return next
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// assignSecret ignores the redaction mask so a settings form can echo back
// what it was given without wiping the stored secret.
func assignSecret(dst *string, src *string) {
	if src != nil && *src == settings.RedactedMask {
		return
	}
	assign(dst, src)
}

func validateTargetLang(lang string) error {
	if strings.EqualFold(strings.TrimSpace(lang), "auto") {
		return fmt.Errorf("to_lang must not be auto")
	}
	return nil
}

func validate[T any](schemaName string, payload []byte, semantics func(*T) error) (*T, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var out T
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if semantics != nil {
		if err := semantics(&out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchemas, compileErr = compileAll()
	})
	if compileErr != nil {
		return nil, compileErr
	}

	schema, ok := compiledSchemas[name]
	if !ok || schema == nil {
		return nil, fmt.Errorf("schema %s not initialized", name)
	}
	return schema, nil
}

func compileAll() (map[string]*jsonschema.Schema, error) {
	names := []string{
		translateRequestSchema,
		lookupRequestSchema,
		detectRequestSchema,
		engineSelectionSchema,
		settingsUpdateSchema,
		urlTranslateSchema,
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	for _, name := range names {
		raw, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		schemas[name] = schema
	}
	return schemas, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
