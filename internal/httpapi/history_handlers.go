package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Pluto731/Translation-tools/internal/globaltime"
	"github.com/Pluto731/Translation-tools/internal/history"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 200
)

func (s *Server) handleListHistory(c echo.Context) error {
	if s.deps.History == nil {
		return historyDisabled(c)
	}

	pageSize := defaultHistoryPageSize
	if s.deps.Settings != nil {
		pageSize = s.deps.Settings.Settings().Preferences.HistoryPageSize
	}

	page, err := parsePositiveInt(c.QueryParam("page"), 1, 1, 1_000_000)
	if err != nil {
		return failValidation(c, map[string]string{"page": err.Error()})
	}
	pageSize, err = parsePositiveInt(c.QueryParam("page_size"), pageSize, 1, maxHistoryPageSize)
	if err != nil {
		return failValidation(c, map[string]string{"page_size": err.Error()})
	}

	result, err := s.deps.History.List(c.Request().Context(), page, pageSize, c.QueryParam("q"))
	if err != nil {
		s.logger.Error().Err(err).Msg("list history failed")
		return internalError(c, "Failed to load history")
	}
	return success(c, result)
}

func (s *Server) handleGetHistory(c echo.Context) error {
	if s.deps.History == nil {
		return historyDisabled(c)
	}

	id, ok := parseHistoryID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	entry, err := s.deps.History.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return failNotFound(c, "History entry not found")
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("query history entry failed")
		return internalError(c, "Failed to load history entry")
	}
	return success(c, map[string]any{"entry": entry})
}

func (s *Server) handleDeleteHistory(c echo.Context) error {
	if s.deps.History == nil {
		return historyDisabled(c)
	}

	id, ok := parseHistoryID(c)
	if !ok {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	deleted, err := s.deps.History.DeleteByID(c.Request().Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("delete history entry failed")
		return internalError(c, "Failed to delete history entry")
	}
	if !deleted {
		return failNotFound(c, "History entry not found")
	}
	return success(c, map[string]any{"deleted": id})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	if s.deps.History == nil {
		return historyDisabled(c)
	}

	removed, err := s.deps.History.DeleteAll(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("clear history failed")
		return internalError(c, "Failed to clear history")
	}
	s.logger.Info().Int64("removed", removed).Msg("history cleared")
	return success(c, map[string]any{"removed": removed})
}

func (s *Server) handleExportHistory(c echo.Context) error {
	if s.deps.History == nil {
		return historyDisabled(c)
	}

	rawFormat := c.QueryParam("format")
	if strings.TrimSpace(rawFormat) == "" {
		rawFormat = string(history.FormatCSV)
	}
	format, err := history.ParseFormat(rawFormat)
	if err != nil {
		return failValidation(c, map[string]string{"format": err.Error()})
	}

	entries, err := s.deps.History.All(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load history for export failed")
		return internalError(c, "Failed to export history")
	}

	filename := fmt.Sprintf("translation-history-%s.%s", globaltime.UTC().Format("20060102-150405"), format)
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, format.ContentType())
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	res.WriteHeader(http.StatusOK)
	if err := history.Export(res, format, entries); err != nil {
		// Headers are already sent; the client sees a truncated body.
		s.logger.Error().Err(err).Msg("write history export failed")
	}
	return nil
}

func parseHistoryID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func historyDisabled(c echo.Context) error {
	return serviceUnavailable(c, "History is disabled")
}
