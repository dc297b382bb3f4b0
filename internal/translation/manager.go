package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Pluto731/Translation-tools/internal/reader"
)

// ErrEmptyDocument is returned when a document has no text to translate.
var ErrEmptyDocument = reader.ErrEmptyDocument

const chunkSeparator = "\n\n"

// Translator is the dispatcher surface the chunked flows depend on.
type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// Progress reports chunk-level progress for document translations.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// DocumentResult summarizes a chunked translation.
type DocumentResult struct {
	Text         string `json:"text"`
	Chunks       int    `json:"chunks"`
	FailedChunks int    `json:"failed_chunks"`
}

// FileTranslator translates long documents chunk by chunk. A failed chunk is
// rendered inline and never aborts the rest of the document.
type FileTranslator struct {
	translator Translator
	chunkSize  int
	logger     zerolog.Logger
}

func NewFileTranslator(translator Translator, chunkSize int, logger zerolog.Logger) *FileTranslator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &FileTranslator{
		translator: translator,
		chunkSize:  chunkSize,
		logger:     logger,
	}
}

// TranslateFile extracts text from path and translates it.
func (f *FileTranslator) TranslateFile(
	ctx context.Context,
	path string,
	fromLang, toLang string,
	progress func(Progress),
) (DocumentResult, error) {
	text, err := reader.ExtractFile(path)
	if err != nil {
		return DocumentResult{}, err
	}
	return f.translateDocument(ctx, text, fromLang, toLang, progress)
}

// TranslateURL fetches a web page, extracts its readable text and translates it.
func (f *FileTranslator) TranslateURL(
	ctx context.Context,
	pageURL string,
	fromLang, toLang string,
	progress func(Progress),
) (DocumentResult, error) {
	text, err := reader.FetchText(ctx, pageURL)
	if err != nil {
		return DocumentResult{}, err
	}
	return f.translateDocument(ctx, text, fromLang, toLang, progress)
}

func (f *FileTranslator) translateDocument(
	ctx context.Context,
	text string,
	fromLang, toLang string,
	progress func(Progress),
) (DocumentResult, error) {
	if strings.TrimSpace(text) == "" {
		return DocumentResult{}, ErrEmptyDocument
	}
	return f.TranslateText(ctx, text, fromLang, toLang, progress)
}

// TranslateText splits text into chunks and translates them in order.
// Progress is reported once per chunk whether or not the chunk succeeded.
// The only errors are a missing dispatcher engine and context cancellation.
func (f *FileTranslator) TranslateText(
	ctx context.Context,
	text string,
	fromLang, toLang string,
	progress func(Progress),
) (DocumentResult, error) {
	if f == nil || f.translator == nil {
		return DocumentResult{}, fmt.Errorf("file translator is not initialized")
	}

	chunks := SplitTextChunks(text, f.chunkSize)
	translated := make([]string, 0, len(chunks))
	failed := 0

	for idx, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return DocumentResult{}, fmt.Errorf("translate chunk %d/%d: %w", idx+1, len(chunks), err)
		}

		result, err := f.translator.Translate(ctx, NewRequest(chunk, fromLang, toLang))
		if err != nil {
			return DocumentResult{}, fmt.Errorf("translate chunk %d/%d: %w", idx+1, len(chunks), err)
		}

		if result.Success() {
			translated = append(translated, result.TranslatedText)
		} else {
			failed++
			f.logger.Warn().
				Int("chunk", idx+1).
				Int("total", len(chunks)).
				Str("engine", result.EngineName).
				Str("error", result.Error).
				Msg("chunk translation failed")
			translated = append(translated, FailureMarker(result.Error))
		}

		f.logger.Debug().Int("chunk", idx+1).Int("total", len(chunks)).Msg("chunk translated")
		if progress != nil {
			progress(Progress{Current: idx + 1, Total: len(chunks)})
		}
	}

	return DocumentResult{
		Text:         strings.Join(translated, chunkSeparator),
		Chunks:       len(chunks),
		FailedChunks: failed,
	}, nil
}

// FailureMarker renders a failed chunk in place of its translation.
func FailureMarker(message string) string {
	return "[translation failed: " + message + "]"
}
