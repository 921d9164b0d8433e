package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/progress"
	"github.com/tildaslashalef/codecritic/internal/prompt"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// ReviewCommand returns the CLI command that reviews code
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Review code and point out defective lines",
		ArgsUsage: "[file...]",
		Description: "Sends the code to the model with line numbers, then extracts the feedback, " +
			"the lines it cites and the corrected code. With --tools the static analyzers " +
			"configured for the language run as well.",
		Flags: append(InputFlags(), &cli.BoolFlag{
			Name:  flagTools,
			Usage: "Also run the static analysis tools for the language",
		}),
		Action: ReviewAction,
	}
}

// ExplainCommand returns the CLI command that explains code
func ExplainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Explain what the code does",
		ArgsUsage: "[file...]",
		Flags:     InputFlags(),
		Action:    taskAction(prompt.TaskExplain),
	}
}

// SuggestCommand returns the CLI command that proposes better identifier names
func SuggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Aliases:   []string{"suggest-names"},
		Usage:     "Suggest clearer names for identifiers",
		ArgsUsage: "[file...]",
		Flags:     InputFlags(),
		Action:    taskAction(prompt.TaskSuggestNames),
	}
}

// ReviewAction is the default action of the CLI
func ReviewAction(c *cli.Context) error {
	return taskAction(prompt.TaskReview)(c)
}

func taskAction(task prompt.Task) cli.ActionFunc {
	return func(c *cli.Context) error {
		application, err := app.FromContext(c)
		if err != nil {
			return err
		}

		reqs, err := readInputs(c, application.Loader, os.Stdin)
		if err != nil {
			return err
		}
		if err := application.RequireModel(); err != nil {
			return err
		}

		for i := range reqs {
			reqs[i].Task = task
			reqs[i].RunTools = task == prompt.TaskReview && c.Bool(flagTools)
		}

		results, err := process(c, application, reqs)
		if err != nil {
			return err
		}

		if c.Bool(flagSave) {
			saveResults(c, application, reqs, results)
		}

		return printResults(c.App.Writer, c.Bool(flagJSON), reqs, results)
	}
}

// process runs the requests behind a spinner unless JSON output was asked for
func process(c *cli.Context, application *app.App, reqs []review.Request) ([]*review.Result, error) {
	job := func(ctx context.Context) []*review.Result {
		if len(reqs) == 1 {
			return []*review.Result{application.Review.Process(ctx, reqs[0])}
		}
		return application.Review.ReviewBatch(ctx, reqs)
	}

	if c.Bool(flagJSON) {
		return job(c.Context), nil
	}

	title := fmt.Sprintf("Asking %s", application.Config.Gemini.Model)
	if len(reqs) > 1 {
		title = fmt.Sprintf("Asking %s about %d files", application.Config.Gemini.Model, len(reqs))
	}
	return progress.Run(c.Context, title, job)
}

func saveResults(c *cli.Context, application *app.App, reqs []review.Request, results []*review.Result) {
	for i, result := range results {
		if result.Failed {
			continue
		}
		entry, err := application.History.Record(c.Context, string(result.Task), result.Language, result.Model, reqs[i].Code, result.Extraction)
		if err != nil {
			utils.PrintWarning(fmt.Sprintf("Failed to save result: %s", err))
			continue
		}
		if !c.Bool(flagJSON) {
			utils.PrintSuccess(fmt.Sprintf("Saved as %s (%s)", entry.Label, entry.ID))
		}
	}
}

func printResults(w io.Writer, asJSON bool, reqs []review.Request, results []*review.Result) error {
	if asJSON {
		if len(results) == 1 {
			return writeJSON(w, results[0])
		}
		return writeJSON(w, results)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderResult(w, result, reqs[i].Code)
	}
	return nil
}
