package settings

import "strings"

const (
	DefaultEngine          = "baidu"
	DefaultFromLang        = "auto"
	DefaultToLang          = "zh"
	DefaultHistoryPageSize = 20

	// RedactedMask replaces secrets in Redacted copies.
	RedactedMask = "********"
)

// APIKeys holds provider credentials and endpoints. Values here are always
// plaintext; sealing happens only when the file is written.
type APIKeys struct {
	BaiduAppID      string `yaml:"baidu_app_id" json:"baidu_app_id"`
	BaiduSecretKey  string `yaml:"baidu_secret_key" json:"baidu_secret_key"`
	BaiduAPIURL     string `yaml:"baidu_api_url" json:"baidu_api_url"`
	YoudaoAppKey    string `yaml:"youdao_app_key" json:"youdao_app_key"`
	YoudaoAppSecret string `yaml:"youdao_app_secret" json:"youdao_app_secret"`
	YoudaoAPIURL    string `yaml:"youdao_api_url" json:"youdao_api_url"`
	LLMAPIURL       string `yaml:"llm_api_url" json:"llm_api_url"`
	LLMAPIKey       string `yaml:"llm_api_key" json:"llm_api_key"`
	LLMModelName    string `yaml:"llm_model_name" json:"llm_model_name"`
}

// Redacted returns a copy with every secret replaced by a fixed mask.
func (k APIKeys) Redacted() APIKeys {
	for _, field := range k.secretFields() {
		if *field != "" {
			*field = RedactedMask
		}
	}
	return k
}

func (k *APIKeys) secretFields() []*string {
	return []*string{&k.BaiduSecretKey, &k.YoudaoAppSecret, &k.LLMAPIKey}
}

type Preferences struct {
	DefaultEngine   string `yaml:"default_engine" json:"default_engine"`
	DefaultFromLang string `yaml:"default_from_lang" json:"default_from_lang"`
	DefaultToLang   string `yaml:"default_to_lang" json:"default_to_lang"`
	ShowWordDetail  bool   `yaml:"show_word_detail" json:"show_word_detail"`
	HistoryPageSize int    `yaml:"history_page_size" json:"history_page_size"`
}

// Settings is an immutable configuration value. Updates go through WithAPIKeys
// and WithPreferences, which return modified copies.
type Settings struct {
	APIKeys     APIKeys     `yaml:"api_keys" json:"api_keys"`
	Preferences Preferences `yaml:"preferences" json:"preferences"`
}

func Default() Settings {
	return Settings{
		Preferences: Preferences{
			DefaultEngine:   DefaultEngine,
			DefaultFromLang: DefaultFromLang,
			DefaultToLang:   DefaultToLang,
			ShowWordDetail:  true,
			HistoryPageSize: DefaultHistoryPageSize,
		},
	}
}

func (s Settings) WithAPIKeys(update func(*APIKeys)) Settings {
	if update != nil {
		update(&s.APIKeys)
	}
	return s.normalized()
}

func (s Settings) WithPreferences(update func(*Preferences)) Settings {
	if update != nil {
		update(&s.Preferences)
	}
	return s.normalized()
}

// normalized trims every field and restores defaults for blank preferences.
func (s Settings) normalized() Settings {
	keys := &s.APIKeys
	for _, field := range []*string{
		&keys.BaiduAppID, &keys.BaiduSecretKey, &keys.BaiduAPIURL,
		&keys.YoudaoAppKey, &keys.YoudaoAppSecret, &keys.YoudaoAPIURL,
		&keys.LLMAPIURL, &keys.LLMAPIKey, &keys.LLMModelName,
	} {
		*field = strings.TrimSpace(*field)
	}

	prefs := &s.Preferences
	prefs.DefaultEngine = strings.ToLower(strings.TrimSpace(prefs.DefaultEngine))
	if prefs.DefaultEngine == "" {
		prefs.DefaultEngine = DefaultEngine
	}
	prefs.DefaultFromLang = strings.TrimSpace(prefs.DefaultFromLang)
	if prefs.DefaultFromLang == "" {
		prefs.DefaultFromLang = DefaultFromLang
	}
	prefs.DefaultToLang = strings.TrimSpace(prefs.DefaultToLang)
	if prefs.DefaultToLang == "" {
		prefs.DefaultToLang = DefaultToLang
	}
	if prefs.HistoryPageSize <= 0 {
		prefs.HistoryPageSize = DefaultHistoryPageSize
	}
	return s
}
