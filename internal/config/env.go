package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// DefaultConfigDir returns ~/.codecritic
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".codecritic"), nil
}

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - configDir: Directory containing config files (or empty for default)
// - configFilePath: Path to .env file (or empty for <configDir>/.env)
func LoadFromEnv(configDir string, configFilePath string) (*Config, error) {
	cfg := New()

	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	cfg.configDir = configDir

	if configFilePath == "" {
		configFilePath = filepath.Join(configDir, ".env")
	}

	// ENV_FILE_PATH wins over the config directory
	if envFilePath := getEnvString("ENV_FILE_PATH", ""); envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else if err := godotenv.Load(configFilePath); err != nil {
		// Then try current directory as fallback
		_ = godotenv.Load()
	}

	cfg.Gemini = GeminiConfig{
		APIKey:            getEnvString("CODECRITIC_GEMINI_API_KEY", ""),
		BaseURL:           getEnvString("CODECRITIC_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIVersion:        getEnvString("CODECRITIC_GEMINI_API_VERSION", "v1beta"),
		Model:             getEnvString("CODECRITIC_GEMINI_MODEL", "gemini-2.0-flash"),
		Timeout:           getEnvDuration("CODECRITIC_GEMINI_TIMEOUT", 60*time.Second),
		MaxRetries:        getEnvInt("CODECRITIC_GEMINI_MAX_RETRIES", 0),
		RequestsPerMinute: getEnvInt("CODECRITIC_GEMINI_REQUESTS_PER_MINUTE", 0),
		BurstLimit:        getEnvInt("CODECRITIC_GEMINI_BURST_LIMIT", 1),
	}

	cfg.Engine = EngineConfig{
		SummaryLimit:   getEnvInt("CODECRITIC_SUMMARY_LIMIT", 200),
		MaxConcurrency: getEnvInt("CODECRITIC_MAX_CONCURRENCY", 4),
		PromptLocale:   getEnvString("CODECRITIC_PROMPT_LOCALE", "en"),
	}

	cfg.Tools = ToolsConfig{
		Overrides: getEnvPrefixed("CODECRITIC_TOOL_"),
		TempDir:   getEnvString("CODECRITIC_TOOLS_TEMP_DIR", ""),
	}

	cfg.Database = DatabaseConfig{
		Path:            getEnvString("CODECRITIC_DB_PATH", filepath.Join(configDir, "codecritic.db")),
		BusyTimeout:     getEnvInt("CODECRITIC_DB_BUSY_TIMEOUT", 5000),
		JournalMode:     getEnvString("CODECRITIC_DB_JOURNAL_MODE", "WAL"),
		SynchronousMode: getEnvString("CODECRITIC_DB_SYNCHRONOUS_MODE", "NORMAL"),
		CacheSize:       getEnvInt("CODECRITIC_DB_CACHE_SIZE", -16000), // ~16MB
		ForeignKeys:     getEnvBool("CODECRITIC_DB_FOREIGN_KEYS", true),
		ConnMaxLife:     getEnvDuration("CODECRITIC_DB_CONN_MAX_LIFE", 5*time.Minute),
		QueryTimeout:    getEnvDuration("CODECRITIC_DB_QUERY_TIMEOUT", 30*time.Second),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("CODECRITIC_LOG_LEVEL", "info"),
		Format:     getEnvString("CODECRITIC_LOG_FORMAT", "text"),
		Output:     getEnvString("CODECRITIC_LOG_OUTPUT", filepath.Join(configDir, "codecritic.log")),
		AddSource:  getEnvBool("CODECRITIC_LOG_ADD_SOURCE", true),
		TimeFormat: getTimeFormat(getEnvString("CODECRITIC_LOG_TIME_FORMAT", "RFC3339")),
	}

	return cfg, cfg.Validate()
}
