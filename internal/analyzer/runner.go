package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/ulid"
)

// Options configures a Runner
type Options struct {
	TempDir string // empty uses os.TempDir
	Logger  *loggy.Logger
}

// Runner executes the tools of a CommandTable. The table is copied at
// construction and never modified afterwards.
type Runner struct {
	table   CommandTable
	tempDir string
	logger  *loggy.Logger
}

// NewRunner creates a Runner over table
func NewRunner(table CommandTable, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = loggy.GetGlobalLogger()
	}
	return &Runner{
		table:   table.Clone(),
		tempDir: opts.TempDir,
		logger:  logger,
	}
}

// Table returns a copy of the runner's command table
func (r *Runner) Table() CommandTable {
	return r.table.Clone()
}

// Run analyzes code with the primary tool for language. It never returns
// nil: failures are reported through the report's Status and Message.
func (r *Runner) Run(ctx context.Context, language, code string) *AnalysisReport {
	lang := CanonicalLanguage(language)
	spec, ok := r.table[lang]
	if !ok {
		return unsupported(lang)
	}
	return r.runSpec(ctx, lang, spec, code)
}

// RunAll analyzes code with every tool registered for language, in entry name order
func (r *Runner) RunAll(ctx context.Context, language, code string) []*AnalysisReport {
	lang := CanonicalLanguage(language)

	var reports []*AnalysisReport
	for _, name := range r.table.Names() {
		spec := r.table[name]
		if spec.Language != lang {
			continue
		}
		reports = append(reports, r.runSpec(ctx, lang, spec, code))
	}

	if len(reports) == 0 {
		return []*AnalysisReport{unsupported(lang)}
	}
	return reports
}

func unsupported(lang string) *AnalysisReport {
	return &AnalysisReport{
		ID:       ulid.AnalysisID(),
		Language: lang,
		Status:   StatusUnsupported,
		Message:  fmt.Sprintf("unsupported language: %q has no configured analysis tool", lang),
		Issues:   []Issue{},
	}
}

func (r *Runner) runSpec(ctx context.Context, lang string, spec ToolSpec, code string) *AnalysisReport {
	report := &AnalysisReport{
		ID:       ulid.AnalysisID(),
		Language: lang,
		Tool:     spec.Tool,
		Status:   StatusOK,
		Issues:   []Issue{},
	}
	logger := r.loggerFor(ctx).With("tool", spec.Tool, "analysis_id", report.ID)

	var output string
	var runErr error
	err := withTempFile(r.tempDir, spec.Extension, code, func(path string) error {
		output, runErr = execute(ctx, spec, path)
		return nil
	})
	if err != nil {
		report.Status = StatusToolError
		report.Message = err.Error()
		logger.Error("Failed to prepare snippet for analysis", "error", err)
		return report
	}

	report.RawOutput = output
	if spec.Parser != nil {
		for _, issue := range spec.Parser.Parse(output) {
			issue.Tool = spec.Tool
			report.Issues = append(report.Issues, issue)
		}
	}

	if toolErr := classify(spec.Tool, output, runErr, len(report.Issues)); toolErr != nil {
		report.Status = StatusToolError
		report.Message = toolErr.Error()
		logger.Warn("Analysis tool failed", "error", toolErr, "exit_code", toolErr.ExitCode)
		return report
	}

	logger.Debug("Analysis finished", "issues", len(report.Issues))
	return report
}

// loggerFor prefers a request scoped logger from ctx over the runner's own
func (r *Runner) loggerFor(ctx context.Context) *loggy.Logger {
	if loggy.GetRequestID(ctx) != "" {
		return loggy.FromContext(ctx)
	}
	return r.logger
}

// execute runs the command with path appended and returns combined output
func execute(ctx context.Context, spec ToolSpec, path string) (string, error) {
	if len(spec.Command) == 0 {
		return "", fmt.Errorf("no command configured for %s", spec.Tool)
	}
	args := append(append([]string{}, spec.Command[1:]...), path)
	out, err := exec.CommandContext(ctx, spec.Command[0], args...).CombinedOutput()
	return string(out), err
}

// classify decides whether a finished run is usable. Lint tools exit non-zero
// when they find something, so a non-zero exit with parsed issues is fine.
func classify(tool, output string, runErr error, issues int) *ToolExecutionError {
	if runErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		// The binary is missing or could not be started
		return &ToolExecutionError{Tool: tool, Output: output, Err: runErr}
	}

	if issues > 0 {
		return nil
	}

	toolErr := &ToolExecutionError{Tool: tool, ExitCode: exitErr.ExitCode(), Output: output}
	if strings.TrimSpace(output) == "" {
		toolErr.Err = errors.New("no output")
	} else {
		toolErr.Err = errors.New("no recognisable findings in output")
	}
	return toolErr
}

// withTempFile writes code to a fresh file with the given extension, calls fn
// with its path and removes the file on every return path
func withTempFile(dir, ext, code string, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, "analyze-*"+ext)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	return fn(path)
}
