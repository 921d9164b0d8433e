package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/database"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// InitCommand returns the CLI command for initializing codecritic
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize or update the codecritic environment",
		Description: "Creates the configuration directory with a sample .env and " +
			"applies the history database schema. Run it once after installing " +
			"and again after upgrading.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reset-config",
				Usage: "Replace an existing .env with the sample, keeping a dated backup",
			},
		},
		Action: func(c *cli.Context) error {
			utils.PrintHeading("Initializing codecritic")

			configDir, err := config.DefaultConfigDir()
			if err != nil {
				utils.PrintError(fmt.Sprintf("Failed to resolve config directory: %s", err))
				return err
			}
			utils.PrintInfo("Configuration directory: " + color.YellowString("%s", configDir))

			configFilePath, err := config.SetupConfigDirectory(configDir, c.Bool("reset-config"))
			if err != nil {
				utils.PrintError(fmt.Sprintf("Failed to set up configuration files: %s", err))
				return fmt.Errorf("failed to set up configuration: %w", err)
			}

			cfg, err := config.LoadFromEnv(configDir, configFilePath)
			if err != nil {
				utils.PrintError(fmt.Sprintf("Failed to load configuration: %s", err))
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			utils.PrintInfo("Initializing database...")
			if err := database.InitDB(cfg); err != nil {
				utils.PrintError(fmt.Sprintf("Failed to initialize database: %s", err))
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.CloseDB()

			utils.PrintInfo("Applying database migrations...")
			if err := database.RunMigrations(); err != nil {
				utils.PrintError(fmt.Sprintf("Failed to apply migrations: %s", err))
				return fmt.Errorf("failed to apply migrations: %w", err)
			}

			utils.PrintSuccess("codecritic initialized successfully")
			utils.PrintInfo("Configuration file: " + color.YellowString("%s", configFilePath))
			utils.PrintInfo("Database location: " + color.YellowString("%s", cfg.Database.Path))
			utils.PrintInfo("Log file location: " + color.YellowString("%s", cfg.Logging.Output))
			if cfg.Gemini.APIKey == "" {
				utils.PrintWarning("Set CODECRITIC_GEMINI_API_KEY in " + configFilePath + " before reviewing code")
			}
			fmt.Fprintln(c.App.Writer)
			utils.PrintInfo("Try " + color.CyanString("codecritic review main.py"))

			return nil
		},
	}
}
