package translation

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

func TestNewEnginesOrderAndDefaults(t *testing.T) {
	t.Parallel()

	engines := NewEngines(settings.APIKeys{})
	if len(engines) != 3 {
		t.Fatalf("unexpected engine count: %d", len(engines))
	}
	for i, want := range []string{"baidu", "youdao", "llm"} {
		if engines[i].Name() != want {
			t.Fatalf("engine %d = %q, want %q", i, engines[i].Name(), want)
		}
	}

	baidu := engines[0].(*BaiduEngine)
	if baidu.apiURL != DefaultBaiduAPIURL {
		t.Fatalf("unexpected baidu default url: %q", baidu.apiURL)
	}
	youdao := engines[1].(*YoudaoEngine)
	if youdao.apiURL != DefaultYoudaoAPIURL {
		t.Fatalf("unexpected youdao default url: %q", youdao.apiURL)
	}
}

func TestNewManagerFromSettingsSelectsPreferredEngine(t *testing.T) {
	t.Parallel()

	value := settings.Default().WithPreferences(func(p *settings.Preferences) {
		p.DefaultEngine = "youdao"
	})
	manager, err := NewManagerFromSettings(value, zerolog.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer manager.CloseAll()
	if got := manager.CurrentName(); got != "youdao" {
		t.Fatalf("unexpected current engine: %q", got)
	}

	unknown := settings.Default().WithPreferences(func(p *settings.Preferences) {
		p.DefaultEngine = "google"
	})
	fallback, err := NewManagerFromSettings(unknown, zerolog.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer fallback.CloseAll()
	if got := fallback.CurrentName(); got != "baidu" {
		t.Fatalf("expected fallback to first engine, got %q", got)
	}
}
