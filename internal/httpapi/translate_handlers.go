package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Pluto731/Translation-tools/internal/langdetect"
	"github.com/Pluto731/Translation-tools/internal/reader"
	"github.com/Pluto731/Translation-tools/internal/translation"
	payloadschema "github.com/Pluto731/Translation-tools/schema"
)

const defaultDetectLimit = 3

type enginesResponse struct {
	Engines []string `json:"engines"`
	Current string   `json:"current"`
}

type detectResponse struct {
	Language   string                 `json:"language"`
	Detected   bool                   `json:"detected"`
	Candidates []langdetect.Candidate `json:"candidates"`
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"languages": translation.LanguageOptions(),
	})
}

func (s *Server) handleEngines(c echo.Context) error {
	return success(c, s.enginesSnapshot())
}

func (s *Server) handleSelectEngine(c echo.Context) error {
	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateEngineSelection(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	if err := s.deps.Engines.SetCurrent(req.Engine); err != nil {
		if errors.Is(err, translation.ErrEngineNotRegistered) {
			return failValidation(c, map[string]string{"engine": err.Error()})
		}
		return s.dispatchError(c, err, "select engine")
	}
	return success(c, s.enginesSnapshot())
}

func (s *Server) enginesSnapshot() enginesResponse {
	names := s.deps.Engines.Names()
	if names == nil {
		names = []string{}
	}
	return enginesResponse{Engines: names, Current: s.deps.Engines.CurrentName()}
}

// handleTranslate answers engine failures with a success envelope whose
// result carries the error; only dispatcher problems change the status code.
func (s *Server) handleTranslate(c echo.Context) error {
	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateTranslateRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	result, err := s.deps.Translator.TranslateText(c.Request().Context(), req.Text, req.FromLang, req.ToLang)
	if err != nil {
		return s.dispatchError(c, err, "translate text")
	}
	return success(c, map[string]any{"result": result})
}

func (s *Server) handleLookup(c echo.Context) error {
	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateLookupRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	result, err := s.deps.Translator.LookupWord(c.Request().Context(), req.Word, req.FromLang, req.ToLang)
	if err != nil {
		return s.dispatchError(c, err, "look up word")
	}
	return success(c, map[string]any{"result": result})
}

func (s *Server) handleDetect(c echo.Context) error {
	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateDetectRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultDetectLimit
	}
	code, ok := langdetect.Detector{}.Detect(req.Text)
	candidates := langdetect.Confidence(req.Text, limit)
	if candidates == nil {
		candidates = []langdetect.Candidate{}
	}
	return success(c, detectResponse{Language: code, Detected: ok, Candidates: candidates})
}

func (s *Server) handleTranslateFile(c echo.Context) error {
	if s.deps.Documents == nil {
		return serviceUnavailable(c, "Document translation is not available")
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, s.opts.MaxUploadBytes)
	upload, err := c.FormFile("file")
	if err != nil {
		return failValidation(c, map[string]string{"file": "is required"})
	}
	if !reader.IsSupported(upload.Filename) {
		return failValidation(c, map[string]string{
			"file": fmt.Sprintf("unsupported format, expected one of %s", strings.Join(reader.SupportedExtensions(), ", ")),
		})
	}

	fromLang := strings.TrimSpace(c.FormValue("from_lang"))
	toLang := strings.TrimSpace(c.FormValue("to_lang"))
	if strings.EqualFold(toLang, "auto") {
		return failValidation(c, map[string]string{"to_lang": "must not be auto"})
	}

	path, cleanup, err := saveUpload(upload.Filename, func() (io.ReadCloser, error) { return upload.Open() })
	if err != nil {
		s.logger.Error().Err(err).Str("filename", upload.Filename).Msg("store upload failed")
		return internalError(c, "Failed to store upload")
	}
	defer cleanup()

	result, err := s.deps.Documents.TranslateFile(c.Request().Context(), path, fromLang, toLang, nil)
	if err != nil {
		return s.documentError(c, err, "translate file")
	}
	return success(c, map[string]any{
		"filename": upload.Filename,
		"document": result,
	})
}

func (s *Server) documentError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, reader.ErrEmptyDocument):
		return fail(c, http.StatusUnprocessableEntity, "Document contains no text", nil)
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return failValidation(c, map[string]string{"file": err.Error()})
	case errors.Is(err, reader.ErrFetchFailed):
		return fail(c, http.StatusBadGateway, err.Error(), nil)
	}
	return s.dispatchError(c, err, action)
}

// saveUpload copies an upload to a temp file that keeps the original
// extension, since extraction dispatches on it.
func saveUpload(filename string, open func() (io.ReadCloser, error)) (string, func(), error) {
	src, err := open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filename))
	dst, err := os.CreateTemp("", "translation-upload-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(dst.Name()) }

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		cleanup()
		return "", nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), cleanup, nil
}
