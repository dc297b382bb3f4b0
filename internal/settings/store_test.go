package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	sealer, err := LoadOrCreateSealer(filepath.Join(dir, "settings.key"))
	require.NoError(t, err)
	path := filepath.Join(dir, "settings.yaml")
	store, err := NewStore(path, sealer)
	require.NoError(t, err)
	return store, path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
	assert.True(t, got.Preferences.ShowWordDetail)
	assert.Equal(t, 20, got.Preferences.HistoryPageSize)
}

func TestSaveSealsSecretsAndRoundTrips(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)
	value := Default().WithAPIKeys(func(k *APIKeys) {
		k.BaiduAppID = "20240101000000001"
		k.BaiduSecretKey = "baidu-secret"
		k.LLMAPIKey = " sk-test "
		k.LLMModelName = "gpt-4o"
	}).WithPreferences(func(p *Preferences) {
		p.DefaultEngine = "LLM"
		p.DefaultToLang = "en"
	})
	require.NoError(t, store.Save(value))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "baidu-secret")
	assert.NotContains(t, string(raw), "sk-test")
	assert.Contains(t, string(raw), "baidu_secret_key: v2:")
	assert.Contains(t, string(raw), "baidu_app_id: \"20240101000000001\"")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "baidu-secret", loaded.APIKeys.BaiduSecretKey)
	assert.Equal(t, "sk-test", loaded.APIKeys.LLMAPIKey)
	assert.Equal(t, "llm", loaded.Preferences.DefaultEngine)
	assert.Equal(t, "en", loaded.Preferences.DefaultToLang)
	assert.False(t, store.NeedsReseal())
}

func TestLoadDecodesLegacySecretsAndResealsOnSave(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)
	legacy := strings.Join([]string{
		"api_keys:",
		"  youdao_app_key: app",
		"  youdao_app_secret: 1zwYGti/Tg==",
		"preferences:",
		"  default_engine: youdao",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "test123", loaded.APIKeys.YoudaoAppSecret)
	assert.Equal(t, "youdao", loaded.Preferences.DefaultEngine)
	assert.Equal(t, "zh", loaded.Preferences.DefaultToLang)
	assert.True(t, store.NeedsReseal())

	require.NoError(t, store.Save(loaded))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "1zwYGti/Tg==")
	assert.Contains(t, string(raw), "youdao_app_secret: v2:")
	assert.False(t, store.NeedsReseal())
}

func TestLoadCorruptFileReturnsDefaultsAndError(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("api_keys: [not a map"), 0o600))

	got, err := store.Load()
	require.Error(t, err)
	assert.Equal(t, Default(), got)
}

func TestWithPreferencesDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := Default()
	updated := base.WithPreferences(func(p *Preferences) {
		p.HistoryPageSize = 0
		p.ShowWordDetail = false
	})
	assert.True(t, base.Preferences.ShowWordDetail)
	assert.False(t, updated.Preferences.ShowWordDetail)
	assert.Equal(t, DefaultHistoryPageSize, updated.Preferences.HistoryPageSize)
}

func TestRedactedMasksSecretsOnly(t *testing.T) {
	t.Parallel()

	keys := APIKeys{BaiduAppID: "id", BaiduSecretKey: "secret"}
	redacted := keys.Redacted()
	assert.Equal(t, "id", redacted.BaiduAppID)
	assert.Equal(t, "********", redacted.BaiduSecretKey)
	assert.Equal(t, "", redacted.LLMAPIKey)
	assert.Equal(t, "secret", keys.BaiduSecretKey)
}
