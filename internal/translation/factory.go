package translation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/settings"
)

// NewEngines builds every provider adapter from keys, in registration order.
// Adapters with missing credentials are still built; they report themselves
// as unconfigured when called.
func NewEngines(keys settings.APIKeys) []Engine {
	return []Engine{
		NewBaiduEngine(keys.BaiduAppID, keys.BaiduSecretKey, keys.BaiduAPIURL),
		NewYoudaoEngine(keys.YoudaoAppKey, keys.YoudaoAppSecret, keys.YoudaoAPIURL),
		NewLLMEngine(keys.LLMAPIURL, keys.LLMAPIKey, keys.LLMModelName),
	}
}

// NewManagerFromSettings registers all engines and selects the preferred one.
// An unknown preference keeps the first registered engine.
func NewManagerFromSettings(value settings.Settings, logger zerolog.Logger) (*EngineManager, error) {
	manager := NewEngineManager(logger)
	for _, engine := range NewEngines(value.APIKeys) {
		if err := manager.Register(engine); err != nil {
			return nil, fmt.Errorf("register %s engine: %w", engine.Name(), err)
		}
	}

	preferred := value.Preferences.DefaultEngine
	if err := manager.SetCurrent(preferred); err != nil {
		logger.Warn().
			Str("engine", preferred).
			Str("fallback", manager.CurrentName()).
			Msg("preferred translation engine is not registered")
	}
	return manager, nil
}
