package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING_VALUE", "set")
	assert.Equal(t, "set", getEnvString("TEST_STRING_VALUE", "default"))
	assert.Equal(t, "default", getEnvString("TEST_STRING_MISSING", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{"valid integer", "42", 42},
		{"negative integer", "-3", -3},
		{"invalid integer falls back", "forty", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VALUE", tt.envValue)
			assert.Equal(t, tt.expected, getEnvInt("TEST_INT_VALUE", 7))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envValue string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"garbage", true},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VALUE", tt.envValue)
			assert.Equal(t, tt.expected, getEnvBool("TEST_BOOL_VALUE", true))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_VALUE", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION_VALUE", time.Second))

	t.Setenv("TEST_DURATION_VALUE", "soon")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_VALUE", time.Second))
}

func TestGetEnvPrefixed(t *testing.T) {
	t.Setenv("CODECRITIC_TOOL_RUBY", ".rb|rubocop")
	t.Setenv("CODECRITIC_TOOL_PYTHON_MYPY", ".py|mypy")
	t.Setenv("CODECRITIC_TOOLS_TEMP_DIR", "/tmp/elsewhere")

	overrides := getEnvPrefixed("CODECRITIC_TOOL_")
	assert.Equal(t, ".rb|rubocop", overrides["ruby"])
	assert.Equal(t, ".py|mypy", overrides["python-mypy"])
	assert.NotContains(t, overrides, "s-temp-dir")
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Empty(t, cfg.Database.Path, "Database path is set by LoadFromEnv")
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Zero(t, cfg.Engine.SummaryLimit)
	assert.NotNil(t, cfg.Tools.Overrides)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE_PATH", "")
	t.Setenv("CODECRITIC_GEMINI_API_KEY", "test-key")
	t.Setenv("CODECRITIC_GEMINI_MODEL", "gemini-test")
	t.Setenv("CODECRITIC_TOOL_RUBY", ".rb|rubocop --format emacs")

	cfg, err := LoadFromEnv(dir, "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir())
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
	assert.Equal(t, "v1beta", cfg.Gemini.APIVersion)
	assert.Equal(t, 0, cfg.Gemini.MaxRetries, "a model call is a single attempt by default")
	assert.Equal(t, 200, cfg.Engine.SummaryLimit)
	assert.Equal(t, ".rb|rubocop --format emacs", cfg.Tools.Overrides["ruby"])
	assert.Equal(t, filepath.Join(dir, "codecritic.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "codecritic.log"), cfg.Logging.Output)
	assert.Equal(t, time.RFC3339, cfg.Logging.TimeFormat)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CODECRITIC_SUMMARY_LIMIT=120\n"), 0600))

	// godotenv does not override variables that are already set
	t.Setenv("CODECRITIC_SUMMARY_LIMIT", "")
	os.Unsetenv("CODECRITIC_SUMMARY_LIMIT")
	t.Setenv("ENV_FILE_PATH", envFile)

	cfg, err := LoadFromEnv(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Engine.SummaryLimit)

	t.Setenv("ENV_FILE_PATH", filepath.Join(dir, "missing.env"))
	_, err = LoadFromEnv(dir, "")
	assert.Error(t, err)
}

func TestSetGet(t *testing.T) {
	Set(nil)

	_, err := Get()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	testCfg := New()
	testCfg.Engine.SummaryLimit = 50
	Set(testCfg)

	cfg, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Engine.SummaryLimit)
}

func validConfig(t *testing.T) *Config {
	cfg := New()
	cfg.Gemini = GeminiConfig{Model: "gemini-test", Timeout: time.Second}
	cfg.Engine = EngineConfig{SummaryLimit: 200, MaxConcurrency: 2}
	cfg.Database = DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:  1000,
		ConnMaxLife:  time.Minute,
		QueryTimeout: time.Second,
	}
	cfg.Logging = LoggingConfig{Level: "info", Format: "text"}
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid config gets endpoint defaults", func(t *testing.T) {
		cfg := validConfig(t)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
		assert.Equal(t, "v1beta", cfg.Gemini.APIVersion)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"bad api version", func(c *Config) { c.Gemini.APIVersion = "v2" }, "Gemini config"},
		{"negative retries", func(c *Config) { c.Gemini.MaxRetries = -1 }, "Gemini config"},
		{"zero summary limit", func(c *Config) { c.Engine.SummaryLimit = 0 }, "engine config"},
		{"unknown prompt locale", func(c *Config) { c.Engine.PromptLocale = "fr" }, "engine config"},
		{"malformed tool override", func(c *Config) { c.Tools.Overrides["ruby"] = "rubocop" }, "tools config"},
		{"empty tool command", func(c *Config) { c.Tools.Overrides["ruby"] = ".rb| " }, "tools config"},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, "database config"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging config"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.section)
		})
	}
}

func TestParseLoglevel(t *testing.T) {
	tests := []struct {
		level  string
		expect slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", slog.Level(9999)},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expect, ParseLogLevel(tt.level))
		})
	}
}

func TestCheckDirectoryWritable(t *testing.T) {
	assert.NoError(t, checkDirectoryWritable(t.TempDir()))
	assert.Error(t, checkDirectoryWritable("/path/that/does/not/exist"))
}

func TestSetupConfigDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "codecritic")

	path, err := SetupConfigDirectory(dir, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CODECRITIC_GEMINI_API_KEY")
	assert.Equal(t, SampleEnv(), string(data))

	require.NoError(t, os.WriteFile(path, []byte("CUSTOM=1\n"), 0600))
	_, err = SetupConfigDirectory(dir, false)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM=1\n", string(data), "existing file is kept without backup flag")

	_, err = SetupConfigDirectory(dir, true)
	require.NoError(t, err)
	backups, err := filepath.Glob(filepath.Join(dir, ".env.*.bak"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestSampleToolOverridesNameAParser(t *testing.T) {
	var overrides []string
	for _, line := range strings.Split(SampleEnv(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if key, value, ok := strings.Cut(line, "="); ok && strings.HasPrefix(key, "CODECRITIC_TOOL_") {
			overrides = append(overrides, value)
			name := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "CODECRITIC_TOOL_")), "_", "-")
			_, err := analyzer.ParseToolSpec(name, value)
			assert.NoError(t, err, key)
			assert.Equal(t, 2, strings.Count(value, "|"), "%s names its parser", key)
		}
	}
	assert.NotEmpty(t, overrides)
}
