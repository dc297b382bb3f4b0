package config

import (
	"os"
	"testing"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

func TestLoadDefaultsWithoutDatabase(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "HISTORY_DISABLED", "CHUNK_SIZE", "ENVIRONMENT", "LOG_LEVEL"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.HistoryEnabled() {
		t.Fatalf("expected history enabled by default")
	}
	if got := cfg.ResolveDatabaseURL("/tmp/tt/settings.yaml"); got != "/tmp/tt/history.db" {
		t.Fatalf("unexpected default database: %s", got)
	}
	if cfg.ChunkSize != 5000 || cfg.Environment != "local" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsProviderOverrides(t *testing.T) {
	t.Setenv("BAIDU_APP_ID", "env-app")
	t.Setenv("LLM_MODEL_NAME", "deepseek-chat")
	t.Setenv("TRANSLATION_ENGINE", "llm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	stored := settings.Default().WithAPIKeys(func(k *settings.APIKeys) {
		k.BaiduAppID = "stored-app"
		k.BaiduSecretKey = "stored-secret"
	})
	got := cfg.ApplyOverrides(stored)
	if got.APIKeys.BaiduAppID != "env-app" || got.APIKeys.BaiduSecretKey != "stored-secret" {
		t.Fatalf("unexpected baidu keys: %+v", got.APIKeys)
	}
	if got.APIKeys.LLMModelName != "deepseek-chat" || got.Preferences.DefaultEngine != "llm" {
		t.Fatalf("unexpected overrides: %+v", got)
	}
	if stored.APIKeys.BaiduAppID != "stored-app" {
		t.Fatalf("overrides must not mutate the stored value")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{DBMinConns: 2, DBMaxConns: 1, ChunkSize: 10, HTTPAddr: ":8090"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected min > max to fail")
	}
	cfg = Config{DBMinConns: 0, DBMaxConns: 1, ChunkSize: 0, HTTPAddr: ":8090"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero chunk size to fail")
	}
}

func TestResolveSettingsPaths(t *testing.T) {
	cfg := Config{SettingsPath: "/tmp/tt/settings.yaml"}
	settingsPath, keyPath, err := cfg.ResolveSettingsPaths()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if settingsPath != "/tmp/tt/settings.yaml" || keyPath != "/tmp/tt/settings.key" {
		t.Fatalf("unexpected paths: %s %s", settingsPath, keyPath)
	}
}

func TestHistoryCanBeDisabled(t *testing.T) {
	t.Setenv("HISTORY_DISABLED", "true")
	t.Setenv("DATABASE_URL", "postgres://tt@localhost/tt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryEnabled() {
		t.Fatalf("expected history disabled")
	}
	if got := cfg.ResolveDatabaseURL("/ignored/settings.yaml"); got != "postgres://tt@localhost/tt" {
		t.Fatalf("unexpected database url: %s", got)
	}
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}
