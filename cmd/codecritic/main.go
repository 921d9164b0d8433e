package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/commands"
)

// Version information - populated at build time
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
	Author     = "unknown"
	Email      = "unknown"
)

// Commands that run before any configuration exists
var standalone = map[string]bool{
	"init": true,
	"help": true,
	"h":    true,
}

func main() {
	globalFlags := append(commands.InputFlags(), &cli.BoolFlag{
		Name:  "tools",
		Usage: "Also run the static analysis tools for the language",
	})

	cliApp := &cli.App{
		Name:  "codecritic",
		Usage: "Review code with Gemini and static analyzers",
		Description: "codecritic sends code to a generative model and extracts the feedback, " +
			"the defective lines and the corrected code from its reply.\n\n" +
			"When run without subcommands, codecritic reviews the given files or stdin (default action).",
		Version: fmt.Sprintf("%s (%s)", Version, CommitHash),
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Authors: []*cli.Author{
			{
				Name:  Author,
				Email: Email,
			},
		},
		Flags: globalFlags,
		Before: func(c *cli.Context) error {
			if standalone[c.Args().First()] {
				return nil
			}

			application, err := app.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Store the app instance in the context for later use
			c.App.Metadata = map[string]interface{}{
				"app": application,
			}

			return nil
		},
		After: func(c *cli.Context) error {
			if app, ok := c.App.Metadata["app"].(*app.App); ok {
				return app.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.InitCommand(),
			commands.ReviewCommand(),
			commands.ExplainCommand(),
			commands.SuggestCommand(),
			commands.AnalyzeCommand(),
			commands.HistoryCommand(),
			commands.MigrateCommand(),
		},
		Action: commands.ReviewAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
