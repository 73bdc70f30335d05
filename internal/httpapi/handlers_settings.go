package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsdesk/internal/domain"
)

type SettingsService interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error)
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.settings.Get(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		fail(c, http.StatusInternalServerError, "Error fetching settings: "+err.Error())
		return
	}
	ok(c, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid settings payload: "+err.Error())
		return
	}

	settings, err := s.settings.Update(c.Request.Context(), patch)
	if errors.Is(err, domain.ErrInvalidSettings) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to update settings", "error", err)
		fail(c, http.StatusInternalServerError, "Error updating settings: "+err.Error())
		return
	}
	ok(c, settings)
}
