package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Pluto731/Translation-tools/internal/settings"
	payloadschema "github.com/Pluto731/Translation-tools/schema"
)

type settingsResponse struct {
	Settings settings.Settings `json:"settings"`
}

func (s *Server) handleGetSettings(c echo.Context) error {
	if s.deps.Settings == nil {
		return serviceUnavailable(c, "Settings are not available")
	}
	return success(c, buildSettingsResponse(s.deps.Settings.Settings()))
}

// handlePutSettings applies a partial update, persists it and reloads the
// engines. Secrets are never echoed back.
func (s *Server) handlePutSettings(c echo.Context) error {
	if s.deps.Settings == nil {
		return serviceUnavailable(c, "Settings are not available")
	}

	body, err := readJSONBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	update, err := payloadschema.ValidateSettingsUpdate(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	next, err := s.deps.Settings.UpdateSettings(c.Request().Context(), update.Apply)
	if err != nil {
		s.logger.Error().Err(err).Msg("update settings failed")
		return internalError(c, "Failed to save settings")
	}
	return success(c, buildSettingsResponse(next))
}

func buildSettingsResponse(value settings.Settings) settingsResponse {
	value.APIKeys = value.APIKeys.Redacted()
	return settingsResponse{Settings: value}
}
