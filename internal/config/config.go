package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL is a postgres DSN or SQLite path. Empty means history.db
	// next to the settings file.
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	HistoryDisabled bool   `envconfig:"HISTORY_DISABLED" default:"false"`
	DBMinConns      int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns      int32  `envconfig:"DB_MAX_CONNS" default:"4"`

	SettingsPath    string `envconfig:"SETTINGS_PATH"`
	SettingsKeyPath string `envconfig:"SETTINGS_KEY_PATH"`

	ChunkSize int `envconfig:"CHUNK_SIZE" default:"5000"`

	HTTPAddr           string `envconfig:"HTTP_ADDR" default:"127.0.0.1:8090"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	ProviderOverrides
}

// ProviderOverrides replace the stored API keys field by field when set.
type ProviderOverrides struct {
	Engine          string `envconfig:"TRANSLATION_ENGINE"`
	BaiduAppID      string `envconfig:"BAIDU_APP_ID"`
	BaiduSecretKey  string `envconfig:"BAIDU_SECRET_KEY"`
	BaiduAPIURL     string `envconfig:"BAIDU_API_URL"`
	YoudaoAppKey    string `envconfig:"YOUDAO_APP_KEY"`
	YoudaoAppSecret string `envconfig:"YOUDAO_APP_SECRET"`
	YoudaoAPIURL    string `envconfig:"YOUDAO_API_URL"`
	LLMAPIURL       string `envconfig:"LLM_API_URL"`
	LLMAPIKey       string `envconfig:"LLM_API_KEY"`
	LLMModelName    string `envconfig:"LLM_MODEL_NAME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("CHUNK_SIZE must be >= 1")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	return nil
}

func (c *Config) HistoryEnabled() bool {
	return c != nil && !c.HistoryDisabled
}

// ResolveDatabaseURL returns DATABASE_URL, or a SQLite file beside settingsPath.
func (c *Config) ResolveDatabaseURL(settingsPath string) string {
	if url := strings.TrimSpace(c.DatabaseURL); url != "" {
		return url
	}
	return filepath.Join(filepath.Dir(settingsPath), "history.db")
}

// ResolveSettingsPaths fills in the settings and key file locations,
// defaulting to the user config dir. The key file sits next to the settings
// file unless configured separately.
func (c *Config) ResolveSettingsPaths() (settingsPath, keyPath string, err error) {
	defaultSettings, defaultKey, err := settings.DefaultPaths()
	if err != nil && (strings.TrimSpace(c.SettingsPath) == "" || strings.TrimSpace(c.SettingsKeyPath) == "") {
		return "", "", err
	}

	settingsPath = strings.TrimSpace(c.SettingsPath)
	keyPath = strings.TrimSpace(c.SettingsKeyPath)
	switch {
	case settingsPath == "":
		settingsPath = defaultSettings
		if keyPath == "" {
			keyPath = defaultKey
		}
	case keyPath == "":
		keyPath = strings.TrimSuffix(settingsPath, ".yaml") + ".key"
	}
	return settingsPath, keyPath, nil
}

// ApplyOverrides returns value with every non-empty override applied.
func (c *Config) ApplyOverrides(value settings.Settings) settings.Settings {
	if c == nil {
		return value
	}
	p := c.ProviderOverrides
	value = value.WithAPIKeys(func(k *settings.APIKeys) {
		for _, o := range []struct {
			dst *string
			src string
		}{
			{&k.BaiduAppID, p.BaiduAppID},
			{&k.BaiduSecretKey, p.BaiduSecretKey},
			{&k.BaiduAPIURL, p.BaiduAPIURL},
			{&k.YoudaoAppKey, p.YoudaoAppKey},
			{&k.YoudaoAppSecret, p.YoudaoAppSecret},
			{&k.YoudaoAPIURL, p.YoudaoAPIURL},
			{&k.LLMAPIURL, p.LLMAPIURL},
			{&k.LLMAPIKey, p.LLMAPIKey},
			{&k.LLMModelName, p.LLMModelName},
		} {
			if v := strings.TrimSpace(o.src); v != "" {
				*o.dst = v
			}
		}
	})
	if engine := strings.TrimSpace(p.Engine); engine != "" {
		value = value.WithPreferences(func(prefs *settings.Preferences) {
			prefs.DefaultEngine = engine
		})
	}
	return value
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
