// Package analyzer runs external static analysis tools over a code snippet
// and turns their line-oriented output into Issues.
package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// IssueKind classifies an Issue
type IssueKind string

const (
	KindError   IssueKind = "error"
	KindWarning IssueKind = "warning"
	KindLogic   IssueKind = "logic"
)

// Issue is one finding reported by a tool. Line and Column are 0 when unknown.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Line    int       `json:"line"`
	Column  int       `json:"column"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Tool    string    `json:"tool,omitempty"`
}

// Status is the outcome of a tool run
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported_language"
	StatusToolError   Status = "tool_error"
)

// AnalysisReport is the result of running one tool. Issues is never nil.
type AnalysisReport struct {
	ID        string  `json:"id"`
	Language  string  `json:"language"`
	Tool      string  `json:"tool,omitempty"`
	Status    Status  `json:"status"`
	Message   string  `json:"message,omitempty"`
	Issues    []Issue `json:"issues"`
	RawOutput string  `json:"raw_output,omitempty"`
}

// ErrorLines returns the distinct positive lines of error and logic issues, ascending
func (r *AnalysisReport) ErrorLines() []int {
	seen := map[int]bool{}
	lines := []int{}
	for _, issue := range r.Issues {
		if issue.Kind == KindWarning || issue.Line <= 0 || seen[issue.Line] {
			continue
		}
		seen[issue.Line] = true
		lines = append(lines, issue.Line)
	}
	sort.Ints(lines)
	return lines
}

// ToolExecutionError describes a tool that could not produce a usable result
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolExecutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "running %s", e.Tool)
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
