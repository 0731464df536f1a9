package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Models  ModelsConfig  `mapstructure:"models"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	OrgID   string `mapstructure:"org_id"`
}

// ModelsConfig names the fast model used for classification and the primary
// model used for answers.
type ModelsConfig struct {
	Classifier string `mapstructure:"classifier"`
	Primary    string `mapstructure:"primary"`
}

type ChatConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	SmoothingDelay time.Duration `mapstructure:"smoothing_delay"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	File   string `mapstructure:"file"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func validateConfig(cfg *Config) error {
	var errs []error
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		errs = append(errs, errors.New("openai.api_key (OPENAI_API_KEY) is required"))
	}
	if strings.TrimSpace(cfg.Models.Classifier) == "" {
		errs = append(errs, errors.New("models.classifier must not be empty"))
	}
	if strings.TrimSpace(cfg.Models.Primary) == "" {
		errs = append(errs, errors.New("models.primary must not be empty"))
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", cfg.Server.Port))
	}
	if cfg.Chat.Timeout <= 0 {
		errs = append(errs, errors.New("chat.timeout must be positive"))
	}
	if cfg.Chat.SmoothingDelay < 0 {
		errs = append(errs, errors.New("chat.smoothing_delay must not be negative"))
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", cfg.Logging.Format))
	}
	return errors.Join(errs...)
}
