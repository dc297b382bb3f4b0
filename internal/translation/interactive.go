package translation

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/language"
)

// Dispatcher is the engine surface the interactive flow uses.
type Dispatcher interface {
	Translator
	LookupWord(ctx context.Context, word, fromLang, toLang string) (Result, error)
}

// HistoryStore persists successful translations.
type HistoryStore interface {
	Create(ctx context.Context, result Result) error
}

// LanguageDetector guesses the application language code of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// ServiceOptions configures the interactive translation flow.
type ServiceOptions struct {
	// ShowWordDetail enables the dictionary lookup for single words.
	ShowWordDetail bool
	History        HistoryStore
	Detector       LanguageDetector
}

// Service runs the single-text flow: translate, enrich single words with a
// dictionary lookup, then record successes in history.
type Service struct {
	dispatcher     Dispatcher
	opts           ServiceOptions
	showWordDetail atomic.Bool
	logger         zerolog.Logger
}

func NewService(dispatcher Dispatcher, opts ServiceOptions, logger zerolog.Logger) *Service {
	s := &Service{dispatcher: dispatcher, opts: opts, logger: logger}
	s.showWordDetail.Store(opts.ShowWordDetail)
	return s
}

// SetShowWordDetail toggles the dictionary lookup for single words.
func (s *Service) SetShowWordDetail(enabled bool) {
	s.showWordDetail.Store(enabled)
}

// TranslateText returns the translation of text. Engine failures are reported
// in Result.Error; the returned error is reserved for dispatcher conditions
// such as ErrNoEngine.
func (s *Service) TranslateText(ctx context.Context, text, fromLang, toLang string) (Result, error) {
	req := NewRequest(text, fromLang, toLang)

	result, err := s.dispatcher.Translate(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if result.Success() && result.IsWord && s.showWordDetail.Load() {
		wordResult, err := s.dispatcher.LookupWord(ctx, req.Text, req.FromLang, req.ToLang)
		if err != nil {
			return Result{}, err
		}
		if wordResult.Success() && wordResult.WordDetail != nil {
			result = wordResult
		}
	}

	if result.Success() {
		s.record(ctx, result)
	}
	return result, nil
}

// LookupWord runs a dictionary lookup without touching history.
func (s *Service) LookupWord(ctx context.Context, word, fromLang, toLang string) (Result, error) {
	req := NewRequest(word, fromLang, toLang)
	return s.dispatcher.LookupWord(ctx, req.Text, req.FromLang, req.ToLang)
}

func (s *Service) record(ctx context.Context, result Result) {
	if s.opts.History == nil {
		return
	}

	stored := result
	if language.IsAuto(stored.FromLang) && s.opts.Detector != nil {
		if code, ok := s.opts.Detector.Detect(stored.SourceText); ok {
			stored.FromLang = code
		}
	}

	if err := s.opts.History.Create(ctx, stored); err != nil {
		s.logger.Error().Err(err).Str("engine", result.EngineName).Msg("save translation history failed")
	}
}
