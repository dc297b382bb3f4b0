package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/globaltime"
	"github.com/Pluto731/Translation-tools/internal/history"
	"github.com/Pluto731/Translation-tools/internal/settings"
	"github.com/Pluto731/Translation-tools/internal/translation"
)

const (
	defaultMaxUploadBytes = 20 << 20
	maxJSONBodyBytes      = 1 << 20
)

// EngineRegistry exposes engine selection.
type EngineRegistry interface {
	Names() []string
	CurrentName() string
	SetCurrent(name string) error
}

// TextTranslator runs the interactive single-text flow.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, fromLang, toLang string) (translation.Result, error)
	LookupWord(ctx context.Context, word, fromLang, toLang string) (translation.Result, error)
}

// DocumentTranslator runs chunked translations of files and web pages.
type DocumentTranslator interface {
	TranslateFile(ctx context.Context, path, fromLang, toLang string, progress func(translation.Progress)) (translation.DocumentResult, error)
	TranslateURL(ctx context.Context, pageURL, fromLang, toLang string, progress func(translation.Progress)) (translation.DocumentResult, error)
}

// HistoryStore reads and prunes stored translations.
type HistoryStore interface {
	List(ctx context.Context, page, pageSize int, query string) (history.Page, error)
	FindByID(ctx context.Context, id int64) (history.Entry, error)
	All(ctx context.Context) ([]history.Entry, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// SettingsController owns the persisted settings and applies changes to the
// running engines.
type SettingsController interface {
	Settings() settings.Settings
	UpdateSettings(ctx context.Context, update func(settings.Settings) settings.Settings) (settings.Settings, error)
}

// Deps are the collaborators behind the API. History and Settings may be nil.
type Deps struct {
	Engines    EngineRegistry
	Translator TextTranslator
	Documents  DocumentTranslator
	History    HistoryStore
	Settings   SettingsController
}

type Options struct {
	Addr            string
	AllowedOrigins  []string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	deps   Deps
	logger zerolog.Logger
	opts   Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = "127.0.0.1:8090"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// Whole documents are translated within one request.
		opts.WriteTimeout = 10 * time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		deps:   deps,
		logger: logger,
		opts:   opts,
	}
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if len(s.opts.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.opts.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       3600,
		}))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)

	api.GET("/engines", s.handleEngines)
	api.PUT("/engines/current", s.handleSelectEngine)

	api.POST("/translate", s.handleTranslate)
	api.POST("/lookup", s.handleLookup)
	api.POST("/detect", s.handleDetect)
	api.POST("/files/translate", s.handleTranslateFile)
	api.GET("/url/preview", s.handleURLPreview)
	api.POST("/url/translate", s.handleTranslateURL)

	api.GET("/history", s.handleListHistory)
	api.DELETE("/history", s.handleClearHistory)
	api.GET("/history/export", s.handleExportHistory)
	api.GET("/history/:id", s.handleGetHistory)
	api.DELETE("/history/:id", s.handleDeleteHistory)

	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.deps.Engines == nil || s.deps.Translator == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("translation api started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("translation api stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "translation-tools",
		"engine":  s.deps.Engines.CurrentName(),
		"history": s.deps.History != nil,
		"time":    globaltime.UTC(),
	})
}

// readJSONBody reads a bounded request body for schema validation.
func readJSONBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxJSONBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxJSONBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", maxJSONBodyBytes)
	}
	return body, nil
}

// dispatchError maps dispatcher errors to responses.
func (s *Server) dispatchError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, translation.ErrNoEngine):
		return serviceUnavailable(c, "No translation engine available")
	case errors.Is(err, context.Canceled):
		return fail(c, http.StatusRequestTimeout, "Request cancelled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusGatewayTimeout, "Request timed out", nil)
	default:
		s.logger.Error().Err(err).Msg(action + " failed")
		return internalError(c, "Failed to "+action)
	}
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
