// Package app provides the application initialization and lifecycle management
package app

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/database"
	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/gemini"
	"github.com/tildaslashalef/codecritic/internal/history"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/prompt"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/source"
)

// App represents the application instance with its dependencies
type App struct {
	Config  *config.Config
	Model   *gemini.Client // nil when no API key is configured
	Runner  *analyzer.Runner
	Review  *review.Service
	History *history.Service
	Loader  *source.Loader
}

// New initializes a new application instance with all its dependencies
func New() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Info("Application initializing",
		"version", os.Getenv("VERSION"),
		"log_level", cfg.Logging.Level,
	)

	if err := database.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	app, err := initServices(cfg)
	if err != nil {
		return nil, err
	}

	loggy.Info("Application initialized successfully")
	return app, nil
}

// initConfig loads and sets up the application configuration
func initConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv("", "")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	config.Set(cfg)
	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initServices builds the pipeline and history services
func initServices(cfg *config.Config) (*App, error) {
	logger := loggy.GetGlobalLogger()

	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	builder, err := prompt.NewBuilder(prompt.Locale(cfg.Engine.PromptLocale))
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt builder: %w", err)
	}

	table, err := analyzer.DefaultCommandTable().WithOverrides(cfg.Tools.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to apply tool overrides: %w", err)
	}
	runner := analyzer.NewRunner(table, analyzer.Options{TempDir: cfg.Tools.TempDir, Logger: logger})

	// A missing API key only matters to commands that call the model
	var modelClient review.ModelClient
	client, err := gemini.NewClient(cfg.Gemini)
	if err != nil {
		loggy.Warn("Model client disabled", "error", err)
		client = nil
	} else {
		modelClient = client
	}

	ext := extractor.New(
		extractor.WithSummaryLimit(cfg.Engine.SummaryLimit),
		extractor.WithLogger(logger),
	)

	reviewService := review.NewService(modelClient, builder, ext, review.Options{
		Model:          cfg.Gemini.Model,
		MaxConcurrency: cfg.Engine.MaxConcurrency,
		Runner:         runner,
		Logger:         logger,
	})

	return &App{
		Config:  cfg,
		Model:   client,
		Runner:  runner,
		Review:  reviewService,
		History: history.NewService(db, logger),
		Loader:  source.NewLoader(logger),
	}, nil
}

// RequireModel returns an error when no model client could be created
func (app *App) RequireModel() error {
	if app.Model == nil {
		return fmt.Errorf("no model configured: set CODECRITIC_GEMINI_API_KEY in %s/.env or the environment", app.Config.ConfigDir())
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Info("Shutting down application")

	if err := database.CloseDB(); err != nil {
		loggy.Error("Error closing database connection", "error", err)
	}

	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
