package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// Global configuration instance
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance
// If the configuration has not been initialized, it will return an error
func Get() (*Config, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	return globalConfig, nil
}

// Set sets the global configuration instance
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = cfg
}

// Config represents the complete application configuration
type Config struct {
	Gemini    GeminiConfig
	Engine    EngineConfig
	Tools     ToolsConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	configDir string // Directory the config was loaded from
}

// GeminiConfig holds the generateContent endpoint settings
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	APIVersion string // v1 or v1beta
	Model      string

	Timeout    time.Duration // Transport timeout, the only deadline on a model call
	MaxRetries int           // 0 means a single attempt

	RequestsPerMinute int // 0 disables client side rate limiting
	BurstLimit        int
}

// EngineConfig tunes the extraction pipeline
type EngineConfig struct {
	SummaryLimit   int    // Maximum summary length in characters before "..."
	MaxConcurrency int    // Upper bound on parallel requests in a batch review
	PromptLocale   string // en or vi
}

// ToolsConfig holds external analyzer settings
type ToolsConfig struct {
	// Overrides maps a language to a raw "ext|command args" spec taken
	// from CODECRITIC_TOOL_<LANG>
	Overrides map[string]string
	TempDir   string // Where analyzed snippets are written, empty for os.TempDir
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Path            string        // Path to the SQLite database file
	JournalMode     string        // Journal mode (WAL recommended)
	SynchronousMode string        // Synchronous mode
	BusyTimeout     int           // Busy timeout in milliseconds
	CacheSize       int           // Cache size in KiB
	ForeignKeys     bool          // Whether to enforce foreign key constraints
	ConnMaxLife     time.Duration // Maximum connection lifetime
	QueryTimeout    time.Duration // Query timeout
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a new empty Config
func New() *Config {
	return &Config{
		Tools: ToolsConfig{Overrides: map[string]string{}},
	}
}

// ConfigDir returns the directory the configuration was loaded from
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return fmt.Errorf("Gemini config: %w", err)
	}

	if err := c.validateEngine(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.validateTools(); err != nil {
		return fmt.Errorf("tools config: %w", err)
	}

	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ParseLogLevel parses a log level string to a slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Set to a very high level that won't be triggered
		return slog.Level(9999)
	default:
		return slog.LevelInfo
	}
}

// The API key is not required here: analyze and history never call the model.
// gemini.NewClient rejects an empty key.
func (c *Config) validateGemini() error {
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}

	if c.Gemini.APIVersion == "" {
		c.Gemini.APIVersion = "v1beta"
	}

	if c.Gemini.APIVersion != "v1" && c.Gemini.APIVersion != "v1beta" {
		return fmt.Errorf("invalid API version: %s (must be v1 or v1beta)", c.Gemini.APIVersion)
	}

	if c.Gemini.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if c.Gemini.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute cannot be negative")
	}

	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.SummaryLimit <= 0 {
		return fmt.Errorf("summary limit must be positive")
	}

	if c.Engine.MaxConcurrency <= 0 {
		return fmt.Errorf("max concurrency must be positive")
	}

	if c.Engine.PromptLocale == "" {
		c.Engine.PromptLocale = "en"
	}
	if c.Engine.PromptLocale != "en" && c.Engine.PromptLocale != "vi" {
		return fmt.Errorf("invalid prompt locale: %s (must be en or vi)", c.Engine.PromptLocale)
	}

	return nil
}

func (c *Config) validateTools() error {
	for _, lang := range c.Tools.LanguagesOverridden() {
		ext, cmd, ok := strings.Cut(c.Tools.Overrides[lang], "|")
		if !ok || !strings.HasPrefix(strings.TrimSpace(ext), ".") || len(strings.Fields(cmd)) == 0 {
			return fmt.Errorf("override for %q must look like \".ext|command args\"", lang)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	// Create the directory if it doesn't exist
	dir := filepath.Dir(c.Database.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for database: %w", err)
		}
	}

	if err := checkDirectoryWritable(dir); err != nil {
		return fmt.Errorf("database directory: %w", err)
	}

	if c.Database.BusyTimeout <= 0 {
		return fmt.Errorf("busy timeout must be positive")
	}

	if c.Database.ConnMaxLife <= 0 {
		return fmt.Errorf("connection max life must be positive")
	}

	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" && level != "none" {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// LanguagesOverridden returns the overridden languages in a stable order
func (t ToolsConfig) LanguagesOverridden() []string {
	langs := make([]string, 0, len(t.Overrides))
	for lang := range t.Overrides {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvPrefixed collects every variable starting with prefix, keyed by the
// lowercased remainder. Underscores in the remainder become dashes, so
// CODECRITIC_TOOL_PYTHON_MYPY is keyed "python-mypy".
func getEnvPrefixed(prefix string) map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		if name == "" {
			continue
		}
		out[strings.ReplaceAll(name, "_", "-")] = value
	}
	return out
}

// getTimeFormat converts a named time format to its actual format string
func getTimeFormat(name string) string {
	switch name {
	case "RFC3339":
		return time.RFC3339
	case "RFC3339Nano":
		return time.RFC3339Nano
	case "Kitchen":
		return time.Kitchen
	case "DateTime":
		return time.DateTime
	case "DateTimeMS":
		return "2006-01-02 15:04:05.000"
	case "Date":
		return time.DateOnly
	case "Time":
		return time.TimeOnly
	default:
		return name
	}
}

// checkDirectoryWritable tests if a directory is writable
func checkDirectoryWritable(dir string) error {
	testFile := filepath.Join(dir, fmt.Sprintf("test_write_%d", time.Now().UnixNano()))
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("directory not writable: %w", err)
	}

	f.Close()
	os.Remove(testFile)

	return nil
}
