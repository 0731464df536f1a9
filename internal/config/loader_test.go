package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, loaded, err := Load(Options{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)
	require.Empty(t, loaded.ConfigFile)
	require.Empty(t, loaded.EnvFile)

	require.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Equal(t, "gpt-4o-mini", cfg.Models.Classifier)
	require.Equal(t, "gpt-4o", cfg.Models.Primary)
	require.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	require.Equal(t, 10*time.Millisecond, cfg.Chat.SmoothingDelay)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.False(t, cfg.Tracing.Enabled)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  port: 9090
openai:
  api_key: sk-file
models:
  classifier: small-model
  primary: big-model
chat:
  timeout: 45s
logging:
  level: DEBUG
  format: console
`)
	t.Setenv("MODELS_PRIMARY", "env-model")

	cfg, loaded, err := Load(Options{ConfigPaths: []string{dir}})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "config.yaml"), loaded.ConfigFile)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	require.Equal(t, "small-model", cfg.Models.Classifier)
	require.Equal(t, "env-model", cfg.Models.Primary)
	require.Equal(t, 45*time.Second, cfg.Chat.Timeout)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "OPENAI_API_KEY=sk-dotenv\nCHAT_TIMEOUT=5s\n")
	// register for restore, then clear so the env file is the only source
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CHAT_TIMEOUT", "")
	os.Unsetenv("OPENAI_API_KEY")
	os.Unsetenv("CHAT_TIMEOUT")

	cfg, loaded, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	require.Equal(t, envFile, loaded.EnvFile)
	require.Equal(t, "sk-dotenv", cfg.OpenAI.APIKey)
	require.Equal(t, 5*time.Second, cfg.Chat.Timeout)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	_, loaded, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	require.Empty(t, loaded.EnvFile)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MODELS_CLASSIFIER", " ")
	t.Setenv("LOGGING_FORMAT", "xml")

	_, _, err := Load(Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY")
	require.Contains(t, err.Error(), "models.classifier")
	require.Contains(t, err.Error(), "logging.format")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server: [unterminated\n")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	_, _, err := Load(Options{ConfigPaths: []string{dir}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "error reading config file")
}
