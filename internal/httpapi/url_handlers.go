package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Pluto731/Translation-tools/internal/reader"
	payloadschema "github.com/Pluto731/Translation-tools/schema"
)

const (
	defaultPreviewMaxChars = 1000
	minPreviewMaxChars     = 200
	maxPreviewMaxChars     = 4000
)

type pagePreview struct {
	URL         string `json:"url"`
	PreviewText string `json:"preview_text"`
	CharCount   int    `json:"char_count"`
	Truncated   bool   `json:"truncated"`
}

func (s *Server) handleURLPreview(c echo.Context) error {
	pageURL := strings.TrimSpace(c.QueryParam("url"))
	if pageURL == "" {
		return failValidation(c, map[string]string{"url": "is required"})
	}

	maxChars, err := parsePositiveInt(
		c.QueryParam("max_chars"),
		defaultPreviewMaxChars,
		minPreviewMaxChars,
		maxPreviewMaxChars,
	)
	if err != nil {
		return failValidation(c, map[string]string{"max_chars": err.Error()})
	}

	text, err := reader.FetchText(c.Request().Context(), pageURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", pageURL).Msg("page preview failed")
		return s.documentError(c, err, "preview page")
	}

	preview, truncated := reader.TruncateText(text, maxChars)
	return success(c, pagePreview{
		URL:         pageURL,
		PreviewText: preview,
		CharCount:   len([]rune(text)),
		Truncated:   truncated,
	})
}

func (s *Server) handleTranslateURL(c echo.Context) error {
	if s.deps.Documents == nil {
		return serviceUnavailable(c, "Document translation is not available")
	}

	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateURLTranslateRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	result, err := s.deps.Documents.TranslateURL(c.Request().Context(), req.URL, req.FromLang, req.ToLang, nil)
	if err != nil {
		return s.documentError(c, err, "translate page")
	}
	return success(c, map[string]any{
		"url":      req.URL,
		"document": result,
	})
}
