package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"innovation-engine/backend/internal/features/config/application"
)

// AppConfigHandler holds the config service.
type AppConfigHandler struct {
	configService application.ConfigService
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(configService application.ConfigService) (*AppConfigHandler, error) {
	if configService == nil {
		return nil, errors.New("app config handler: config service must not be nil")
	}
	return &AppConfigHandler{
		configService: configService,
	}, nil
}

// GetAppConfigHandler handles fetching the public application configuration.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.configService.PublicConfig())
}
