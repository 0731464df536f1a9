package application

import (
	"errors"
	"time"

	"innovation-engine/backend/internal/config"
	chatdomain "innovation-engine/backend/internal/features/chat/domain"
	"innovation-engine/backend/internal/features/config/domain"
)

// ConfigService defines the interface for reading the public configuration.
type ConfigService interface {
	PublicConfig() *domain.AppConfig
}

// configService is the implementation of ConfigService.
type configService struct {
	models  domain.ModelParams
	timeout time.Duration
}

// NewConfigService creates a new instance of configService from the loaded
// process configuration.
func NewConfigService(cfg *config.Config) (ConfigService, error) {
	if cfg == nil {
		return nil, errors.New("config service: configuration must not be nil")
	}
	return &configService{
		models: domain.ModelParams{
			Classifier: cfg.Models.Classifier,
			Primary:    cfg.Models.Primary,
		},
		timeout: cfg.Chat.Timeout,
	}, nil
}

// PublicConfig returns a fresh copy on every call so callers may modify it.
func (s *configService) PublicConfig() *domain.AppConfig {
	descriptors := chatdomain.Describe()
	categories := make([]domain.CategoryEntry, 0, len(descriptors))
	for _, d := range descriptors {
		categories = append(categories, domain.CategoryEntry{
			Name:        string(d.Category),
			Description: d.Description,
		})
	}
	return &domain.AppConfig{
		Models:         s.models,
		TimeoutSeconds: s.timeout.Seconds(),
		Categories:     categories,
	}
}
