package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options controls where Load looks for its inputs.
type Options struct {
	// EnvFile is loaded into the process environment if it exists.
	EnvFile string
	// ConfigPaths are searched, in order, for config.yaml.
	ConfigPaths []string
}

// DefaultOptions returns the search locations used by the server binary.
func DefaultOptions() Options {
	return Options{
		EnvFile:     ".env",
		ConfigPaths: []string{"./configs", "."},
	}
}

// Loaded describes which optional sources contributed to a Config.
type Loaded struct {
	EnvFile    string
	ConfigFile string
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load(opts Options) (*Config, Loaded, error) {
	var loaded Loaded
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, loaded, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
			}
			loaded.EnvFile = opts.EnvFile
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if len(opts.ConfigPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, loaded, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			loaded.ConfigFile = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, loaded, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := validateConfig(&cfg); err != nil {
		return nil, loaded, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, loaded, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.org_id", "")

	v.SetDefault("models.classifier", "gpt-4o-mini")
	v.SetDefault("models.primary", "gpt-4o")

	v.SetDefault("chat.timeout", 30*time.Second)
	v.SetDefault("chat.smoothing_delay", 10*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "innovation-engine")

	v.SetDefault("metrics.enabled", true)
}
