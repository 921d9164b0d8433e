package commands

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/history"
	"github.com/tildaslashalef/codecritic/internal/prompt"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// HistoryCommand returns the CLI command for browsing saved results
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse results saved with --save",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved results, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries",
						Value:   history.DefaultListLimit,
					},
					&cli.StringFlag{
						Name:    flagLanguage,
						Aliases: []string{"l"},
						Usage:   "Only entries for this language",
					},
					&cli.StringFlag{
						Name:  "task",
						Usage: "Only entries for this task (review, explain, suggest_names)",
					},
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "Print the entries as JSON",
					},
				},
				Action: historyListAction,
			},
			{
				Name:      "show",
				Usage:     "Show a saved result",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "Print the entry as JSON",
					},
				},
				Action: historyShowAction,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a saved result",
				ArgsUsage: "<id>",
				Action:    historyDeleteAction,
			},
		},
	}
}

func historyListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	opts := history.ListOptions{Limit: c.Int("limit")}
	if lang := c.String(flagLanguage); lang != "" {
		opts.Language = review.NormalizeLanguage(lang)
	}
	if task := c.String("task"); task != "" {
		parsed, err := prompt.ParseTask(task)
		if err != nil {
			return err
		}
		opts.Task = string(parsed)
	}

	entries, err := application.History.Recent(c.Context, opts)
	if err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		return writeJSON(c.App.Writer, entries)
	}
	if len(entries) == 0 {
		utils.PrintInfo("No saved results")
		return nil
	}
	renderHistory(c.App.Writer, entries)
	return nil
}

func historyShowAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	entry, err := application.History.Show(c.Context, c.Args().First())
	if err != nil {
		return historyError(c, err)
	}

	if c.Bool(flagJSON) {
		return writeJSON(c.App.Writer, entry)
	}

	result := &review.Result{
		RequestID:  entry.ID,
		Language:   entry.Language,
		Task:       prompt.Task(entry.Task),
		Model:      entry.Model,
		Extraction: entry.Extraction(),
	}
	utils.PrintKeyValue("Label", entry.Label)
	utils.PrintKeyValue("Saved", entry.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	renderResult(c.App.Writer, result, entry.OriginalCode)
	return nil
}

func historyDeleteAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	id := c.Args().First()
	if err := application.History.Remove(c.Context, id); err != nil {
		return historyError(c, err)
	}
	utils.PrintSuccess(fmt.Sprintf("Deleted %s", id))
	return nil
}

func historyError(c *cli.Context, err error) error {
	if c.Args().First() == "" {
		return fmt.Errorf("an entry id is required")
	}
	if errors.Is(err, history.ErrEntryNotFound) {
		return fmt.Errorf("no saved result with id %q", c.Args().First())
	}
	return err
}
