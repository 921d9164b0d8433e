package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/history"
	"github.com/tildaslashalef/codecritic/internal/prompt"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

const wrapWidth = 100

var (
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#83a598")).
			Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fabd2f"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fb4934"))
)

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// renderMarkdown renders model prose for the terminal, falling back to the
// raw text when glamour cannot handle it
func renderMarkdown(markdown string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// renderResult prints one processed request
func renderResult(w io.Writer, result *review.Result, code string) {
	ext := result.Extraction

	header := fmt.Sprintf("%s · %s", result.Task, result.Language)
	if result.Model != "" {
		header += " · " + result.Model
	}
	fmt.Fprintln(w, sectionStyle.Render(header))

	if result.Failed {
		fmt.Fprintln(w, failedStyle.Render(ext.Feedback))
		renderAnalysis(w, result.Analysis)
		return
	}

	if ext.Summary != "" {
		fmt.Fprintln(w, summaryStyle.Render(utils.Wrap(ext.Summary, wrapWidth-4, 0)))
	}

	fmt.Fprint(w, renderMarkdown(ext.Feedback))

	if result.Task == prompt.TaskReview {
		renderReviewDetails(w, ext, code)
	}
	renderAnalysis(w, result.Analysis)
}

func renderReviewDetails(w io.Writer, ext *extractor.ExtractionResult, code string) {
	if len(ext.ErrorLines) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Flagged lines: "+joinInts(ext.ErrorLines)))
		fmt.Fprint(w, utils.NumberedCode(code, ext.ErrorLines))
		fmt.Fprintln(w)
	} else if ext.ErrorsSuspected {
		fmt.Fprintln(w, sectionStyle.Render("The reply mentions errors but cites no line numbers"))
	}

	fmt.Fprintln(w, sectionStyle.Render("Improved code"))
	if ext.HasImprovedCode() {
		fmt.Fprintln(w, utils.CodeBlock(ext.ImprovedCode))
	} else {
		fmt.Fprintln(w, utils.Theme.Subtle.Sprint(ext.ImprovedCode))
	}
	if ext.CodeBlocks > 1 {
		fmt.Fprintln(w, utils.Theme.Warning.Sprintf("The reply had %d code blocks, only the first is shown", ext.CodeBlocks))
	}
}

// renderAnalysis prints tool findings as a table per report
func renderAnalysis(w io.Writer, reports []*analyzer.AnalysisReport) {
	for _, report := range reports {
		title := report.Tool
		if title == "" {
			title = report.Language
		}

		if report.Status != analyzer.StatusOK {
			fmt.Fprintln(w, utils.Theme.Warning.Sprintf("%s: %s", title, report.Message))
			continue
		}
		if len(report.Issues) == 0 {
			fmt.Fprintln(w, utils.Theme.Success.Sprintf("%s: no issues", title))
			continue
		}

		rows := make([][]string, 0, len(report.Issues))
		for _, issue := range report.Issues {
			rows = append(rows, []string{
				string(issue.Kind),
				lineColumn(issue.Line, issue.Column),
				issue.Code,
				issue.Message,
			})
		}
		utils.RenderTable(w, []string{"Kind", "Line", "Code", "Message"}, rows, utils.TableOptions{Title: title, MaxWidth: 80})
	}
}

// renderHistory prints history entries as a table
func renderHistory(w io.Writer, entries []*history.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.Label,
			e.Task,
			e.Language,
			joinInts([]int(e.ErrorLines)),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	utils.RenderTable(w, []string{"ID", "Label", "Task", "Language", "Lines", "Created"}, rows, utils.TableOptions{Title: "History"})
}

func lineColumn(line, column int) string {
	switch {
	case line <= 0:
		return "-"
	case column <= 0:
		return strconv.Itoa(line)
	default:
		return fmt.Sprintf("%d:%d", line, column)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
