package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// scriptedTranslator fails the calls whose 1-based index is listed in failOn.
type scriptedTranslator struct {
	failOn map[int]string
	calls  []Request
	err    error
}

func (s *scriptedTranslator) Translate(_ context.Context, req Request) (Result, error) {
	if s.err != nil {
		return Result{}, s.err
	}
	s.calls = append(s.calls, req)
	if msg, ok := s.failOn[len(s.calls)]; ok {
		return failedResult("stub", req, msg), nil
	}
	return Result{
		SourceText:     req.Text,
		TranslatedText: strings.ToUpper(req.Text),
		FromLang:       req.FromLang,
		ToLang:         req.ToLang,
		EngineName:     "stub",
	}, nil
}

func TestTranslateTextRendersFailedChunkInline(t *testing.T) {
	t.Parallel()

	translator := &scriptedTranslator{failOn: map[int]string{2: "baidu api error 54003: Invalid Access Limit"}}
	files := NewFileTranslator(translator, 10, zerolog.Nop())

	var progress []Progress
	got, err := files.TranslateText(
		context.Background(),
		"one one\ntwo two\nthree",
		"en", "zh",
		func(p Progress) { progress = append(progress, p) },
	)
	if err != nil {
		t.Fatalf("translate text: %v", err)
	}

	want := "ONE ONE\n\n[translation failed: baidu api error 54003: Invalid Access Limit]\n\nTHREE"
	if got.Text != want {
		t.Fatalf("unexpected document\nwant: %q\ngot:  %q", want, got.Text)
	}
	if got.Chunks != 3 || got.FailedChunks != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if len(progress) != 3 {
		t.Fatalf("expected 3 progress reports, got %d", len(progress))
	}
	for i, p := range progress {
		if p.Current != i+1 || p.Total != 3 {
			t.Fatalf("unexpected progress %d: %+v", i, p)
		}
	}
	for _, req := range translator.calls {
		if req.FromLang != "en" || req.ToLang != "zh" {
			t.Fatalf("unexpected request languages: %+v", req)
		}
	}
}

func TestTranslateTextAppliesLanguageDefaults(t *testing.T) {
	t.Parallel()

	translator := &scriptedTranslator{}
	files := NewFileTranslator(translator, 100, zerolog.Nop())

	if _, err := files.TranslateText(context.Background(), "hello", "", "", nil); err != nil {
		t.Fatalf("translate text: %v", err)
	}
	if len(translator.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(translator.calls))
	}
	if got := translator.calls[0]; got.FromLang != "auto" || got.ToLang != "zh" {
		t.Fatalf("expected auto -> zh defaults, got %q -> %q", got.FromLang, got.ToLang)
	}
}

func TestTranslateTextReturnsDispatcherErrors(t *testing.T) {
	t.Parallel()

	files := NewFileTranslator(&scriptedTranslator{err: ErrNoEngine}, 10, zerolog.Nop())
	calls := 0
	_, err := files.TranslateText(context.Background(), "hello", "en", "zh", func(Progress) { calls++ })
	if !errors.Is(err, ErrNoEngine) {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("did not expect progress without an engine")
	}
}

func TestTranslateTextStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	translator := &scriptedTranslator{}
	files := NewFileTranslator(translator, 10, zerolog.Nop())
	if _, err := files.TranslateText(ctx, "hello", "en", "zh", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(translator.calls) != 0 {
		t.Fatalf("did not expect calls after cancellation")
	}
}

func TestTranslateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(doc, []byte("first line\nsecond line"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte(" \n\t"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	files := NewFileTranslator(&scriptedTranslator{}, 0, zerolog.Nop())

	got, err := files.TranslateFile(context.Background(), doc, "auto", "zh", nil)
	if err != nil {
		t.Fatalf("translate file: %v", err)
	}
	if got.Text != "FIRST LINE\nSECOND LINE" || got.Chunks != 1 {
		t.Fatalf("unexpected document: %+v", got)
	}

	if _, err := files.TranslateFile(context.Background(), empty, "auto", "zh", nil); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := files.TranslateFile(context.Background(), filepath.Join(dir, "x.xls"), "auto", "zh", nil); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
