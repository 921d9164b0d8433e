package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/progress"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// analysisOutput is the JSON shape of one analyzed input
type analysisOutput struct {
	Path     string                     `json:"path"`
	Language string                     `json:"language"`
	Reports  []*analyzer.AnalysisReport `json:"reports"`
}

// AnalyzeCommand returns the CLI command that runs only the static analyzers
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run the static analysis tools without asking the model",
		ArgsUsage: "[file...]",
		Flags: append(InputFlags(), &cli.BoolFlag{
			Name:  "list",
			Usage: "List the configured tools and exit",
		}),
		Action: func(c *cli.Context) error {
			application, err := app.FromContext(c)
			if err != nil {
				return err
			}

			if c.Bool("list") {
				renderToolTable(c, application.Runner.Table())
				return nil
			}

			reqs, err := readInputs(c, application.Loader, os.Stdin)
			if err != nil {
				return err
			}
			files := inputFiles(c)

			job := func(ctx context.Context) []analysisOutput {
				out := make([]analysisOutput, len(reqs))
				for i, req := range reqs {
					path := "stdin"
					if i < len(files) {
						path = displayPath(files[i])
					}
					out[i] = analysisOutput{
						Path:     path,
						Language: req.Language,
						Reports:  application.Review.Analyze(ctx, req.Language, req.Code),
					}
				}
				return out
			}

			if c.Bool(flagJSON) {
				return writeJSON(c.App.Writer, job(c.Context))
			}

			outputs, err := progress.Run(c.Context, "Running analyzers", job)
			if err != nil {
				return err
			}
			for _, o := range outputs {
				utils.PrintHeading(fmt.Sprintf("%s (%s)", o.Path, o.Language))
				renderAnalysis(c.App.Writer, o.Reports)
			}
			return nil
		},
	}
}

func renderToolTable(c *cli.Context, table analyzer.CommandTable) {
	rows := make([][]string, 0, len(table))
	for _, name := range table.Names() {
		spec := table[name]
		rows = append(rows, []string{name, spec.Language, spec.Tool, spec.Extension, strings.Join(spec.Command, " ")})
	}
	utils.RenderTable(c.App.Writer, []string{"Entry", "Language", "Tool", "Ext", "Command"}, rows, utils.TableOptions{Title: "Analyzers"})
}
