package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/config"
	"github.com/Pluto731/Translation-tools/internal/db"
	"github.com/Pluto731/Translation-tools/internal/history"
	"github.com/Pluto731/Translation-tools/internal/langdetect"
	"github.com/Pluto731/Translation-tools/internal/logging"
	"github.com/Pluto731/Translation-tools/internal/settings"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

type historyMode int

const (
	// historyOptional opens history when configured and carries on without it on failure.
	historyOptional historyMode = iota
	// historyRequired fails the command when history cannot be opened.
	historyRequired
	historyOff
)

// runtime wires configuration, settings, engines and history for one command.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger

	store  *settings.Store
	mu     sync.Mutex
	stored settings.Settings

	engines *translation.EngineManager
	service *translation.Service
	files   *translation.FileTranslator

	pool    *db.Pool
	history *history.Repository
}

func bootstrap(envLoader *cli.EnvLoader, mode historyMode) (*runtime, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	settingsPath, keyPath, err := cfg.ResolveSettingsPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings paths: %w", err)
	}
	sealer, err := settings.LoadOrCreateSealer(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings key: %w", err)
	}
	store, err := settings.NewStore(settingsPath, sealer)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	stored, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("path", settingsPath).Msg("settings unreadable, using defaults")
	}
	if store.NeedsReseal() {
		if err := store.Save(stored); err != nil {
			logger.Warn().Err(err).Msg("re-sealing legacy settings secrets failed")
		} else {
			logger.Info().Msg("legacy settings secrets re-sealed")
		}
	}

	effective := cfg.ApplyOverrides(stored)
	engines, err := translation.NewManagerFromSettings(effective, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build translation engines: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		stored:  stored,
		engines: engines,
	}

	if mode != historyOff && cfg.HistoryEnabled() {
		if err := rt.openHistory(settingsPath); err != nil {
			if mode == historyRequired {
				_ = engines.CloseAll()
				return nil, err
			}
			logger.Warn().Err(err).Msg("history unavailable, translations will not be recorded")
		}
	} else if mode == historyRequired {
		_ = engines.CloseAll()
		return nil, fmt.Errorf("history is disabled (HISTORY_DISABLED=true)")
	}

	opts := translation.ServiceOptions{
		ShowWordDetail: effective.Preferences.ShowWordDetail,
		Detector:       langdetect.Detector{},
	}
	if rt.history != nil {
		opts.History = rt.history
	}
	rt.service = translation.NewService(engines, opts, logger)
	rt.files = translation.NewFileTranslator(engines, cfg.ChunkSize, logger)

	return rt, nil
}

func (rt *runtime) openHistory(settingsPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, db.Options{
		DatabaseURL: rt.cfg.ResolveDatabaseURL(settingsPath),
		MinConns:    rt.cfg.DBMinConns,
		MaxConns:    rt.cfg.DBMaxConns,
		LogLevel:    rt.cfg.LogLevel,
		Environment: rt.cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	rt.pool = pool
	rt.history = history.NewRepository(pool)
	return nil
}

// Settings returns the stored settings with environment overrides applied.
func (rt *runtime) Settings() settings.Settings {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.cfg.ApplyOverrides(rt.stored)
}

// UpdateSettings applies update to the stored settings, saves them and reloads
// the engines. Environment overrides are never written back to the file.
func (rt *runtime) UpdateSettings(_ context.Context, update func(settings.Settings) settings.Settings) (settings.Settings, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	next := update(rt.stored)
	if err := rt.store.Save(next); err != nil {
		return settings.Settings{}, err
	}
	rt.stored = next

	effective := rt.cfg.ApplyOverrides(next)
	if err := rt.engines.Reload(translation.NewEngines(effective.APIKeys), effective.Preferences.DefaultEngine); err != nil {
		rt.logger.Warn().Err(err).Msg("closing replaced engines failed")
	}
	if rt.service != nil {
		rt.service.SetShowWordDetail(effective.Preferences.ShowWordDetail)
	}
	rt.logger.Info().Str("path", rt.store.Path()).Msg("settings saved")
	return effective, nil
}

// languages resolves CLI language flags against the preferences.
func (rt *runtime) languages(from, to string) (string, string) {
	prefs := rt.Settings().Preferences
	if from == "" {
		from = prefs.DefaultFromLang
	}
	if to == "" {
		to = prefs.DefaultToLang
	}
	return from, to
}

func (rt *runtime) Close() {
	var errs []error
	if rt.engines != nil {
		errs = append(errs, rt.engines.CloseAll())
	}
	if rt.pool != nil {
		errs = append(errs, rt.pool.Close())
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger.Warn().Err(err).Msg("shutdown cleanup failed")
	}
}
