// Package review runs the extraction pipeline: prompt, model call, reply
// extraction and optional tool analysis.
package review

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/prompt"
)

// UnknownLanguage replaces a missing language
const UnknownLanguage = "unknown"

// Request is one piece of code to process
type Request struct {
	Language string
	Code     string
	Task     prompt.Task

	// RunTools also runs the external analyzers registered for Language.
	// Only meaningful for TaskReview.
	RunTools bool
}

// Validate rejects requests that cannot be sent to the model
func (r Request) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("code must not be empty")
	}
	if NormalizeLanguage(r.Language) == UnknownLanguage {
		return fmt.Errorf("language must not be empty")
	}
	return nil
}

// Result is the outcome of a Request. It is always complete: when the model
// call fails, Failed is set and Extraction.Feedback carries the diagnostic.
type Result struct {
	RequestID  string                      `json:"request_id"`
	Language   string                      `json:"language"`
	Task       prompt.Task                 `json:"task"`
	Model      string                      `json:"model,omitempty"`
	Extraction *extractor.ExtractionResult `json:"result"`
	Analysis   []*analyzer.AnalysisReport  `json:"analysis,omitempty"`
	Failed     bool                        `json:"failed"`
	Duration   time.Duration               `json:"duration_ns"`
}

// ToolErrorLines merges error lines reported by the analyzers, ascending
func (r *Result) ToolErrorLines() []int {
	seen := map[int]bool{}
	lines := []int{}
	for _, report := range r.Analysis {
		for _, line := range report.ErrorLines() {
			if !seen[line] {
				seen[line] = true
				lines = append(lines, line)
			}
		}
	}
	sort.Ints(lines)
	return lines
}

// NormalizeLanguage lowercases and trims lang. Empty, "undefined" and "null"
// become UnknownLanguage.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "", "undefined", "null":
		return UnknownLanguage
	default:
		return lang
	}
}
