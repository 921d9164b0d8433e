package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// Parser turns raw tool output into Issues. Lines it does not recognise are skipped.
type Parser interface {
	Parse(output string) []Issue
}

// ParserFunc adapts a function to Parser
type ParserFunc func(output string) []Issue

func (f ParserFunc) Parse(output string) []Issue { return f(output) }

var (
	// foo.py:12:4: E0001: syntax error
	lintLineRe = regexp.MustCompile(`^(.+?):(\d+):(\d+): ([A-Z]\d+): (.*)$`)

	// foo.py:3: error: Incompatible types in assignment [assignment]
	typeCheckLineRe = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)? (error|warning|note): (.*?)(?:\s+\[([\w-]+)\])?$`)

	// main.cpp:4:10: error: Array 'a[2]' accessed at index 5, which is out of bounds. [arrayIndexOutOfBounds]
	gccLineRe = regexp.MustCompile(`^(.+?):(\d+):(\d+): (\w+): (.*?)(?:\s+\[([\w-]+)\])?$`)

	// [WARN] /tmp/A.java:3:5: Missing a Javadoc comment. [MissingJavadocMethod]
	checkstyleLineRe = regexp.MustCompile(`^\[(ERROR|WARN|WARNING|INFO)\]\s+(.+?):(\d+)(?::(\d+))?: (.*?)(?:\s+\[(\w+)\])?$`)

	// foo.py:7: error: false when calling f(0) (which returns 1)
	contractLineRe = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)? error: (.*)$`)
)

// LintParser reads pylint style "<path>:<line>:<col>: <CODE>: <message>" lines.
// E and F codes are errors, everything else is a warning.
type LintParser struct{}

func (LintParser) Parse(output string) []Issue {
	issues := []Issue{}
	for _, line := range splitLines(output) {
		m := lintLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := KindWarning
		if m[4][0] == 'E' || m[4][0] == 'F' {
			kind = KindError
		}
		issues = append(issues, Issue{
			Kind:    kind,
			Line:    atoi(m[2]),
			Column:  atoi(m[3]),
			Code:    m[4],
			Message: strings.TrimSpace(m[5]),
		})
	}
	return issues
}

// TypeCheckParser reads mypy style "<path>:<line>: error: <message> [<code>]" lines.
// Notes only annotate the preceding finding and are dropped.
type TypeCheckParser struct{}

func (TypeCheckParser) Parse(output string) []Issue {
	issues := []Issue{}
	for _, line := range splitLines(output) {
		m := typeCheckLineRe.FindStringSubmatch(line)
		if m == nil || m[4] == "note" {
			continue
		}
		kind := KindWarning
		if m[4] == "error" {
			kind = KindError
		}
		issues = append(issues, Issue{
			Kind:    kind,
			Line:    atoi(m[2]),
			Column:  atoi(m[3]),
			Code:    m[6],
			Message: strings.TrimSpace(m[5]),
		})
	}
	return issues
}

// GCCParser reads "<path>:<line>:<col>: <severity>: <message> [<id>]" lines as
// emitted by compilers and cppcheck --template=gcc
type GCCParser struct{}

func (GCCParser) Parse(output string) []Issue {
	issues := []Issue{}
	for _, line := range splitLines(output) {
		m := gccLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		severity := strings.ToLower(m[4])
		if severity == "note" || severity == "information" {
			continue
		}
		kind := KindWarning
		if severity == "error" || severity == "fatal" {
			kind = KindError
		}
		issues = append(issues, Issue{
			Kind:    kind,
			Line:    atoi(m[2]),
			Column:  atoi(m[3]),
			Code:    m[6],
			Message: strings.TrimSpace(m[5]),
		})
	}
	return issues
}

// CheckstyleParser reads "[ERROR|WARN] <path>:<line>[:<col>]: <message> [<Check>]" lines
type CheckstyleParser struct{}

func (CheckstyleParser) Parse(output string) []Issue {
	issues := []Issue{}
	for _, line := range splitLines(output) {
		m := checkstyleLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := KindWarning
		if m[1] == "ERROR" {
			kind = KindError
		}
		issues = append(issues, Issue{
			Kind:    kind,
			Line:    atoi(m[3]),
			Column:  atoi(m[4]),
			Code:    m[6],
			Message: strings.TrimSpace(m[5]),
		})
	}
	return issues
}

// ContractParser reads crosshair style "<path>:<line>: error: <message>" lines.
// Every finding is a counterexample to a contract, so it is a logic issue.
type ContractParser struct{}

func (ContractParser) Parse(output string) []Issue {
	issues := []Issue{}
	for _, line := range splitLines(output) {
		m := contractLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		issues = append(issues, Issue{
			Kind:    KindLogic,
			Line:    atoi(m[2]),
			Column:  atoi(m[3]),
			Message: strings.TrimSpace(m[4]),
		})
	}
	return issues
}

// parserByName resolves the parser names accepted in tool overrides
func parserByName(name string) (Parser, bool) {
	switch strings.ToLower(name) {
	case "lint", "pylint":
		return LintParser{}, true
	case "typecheck", "mypy":
		return TypeCheckParser{}, true
	case "gcc", "cppcheck":
		return GCCParser{}, true
	case "checkstyle":
		return CheckstyleParser{}, true
	case "contract", "crosshair":
		return ContractParser{}, true
	default:
		return nil, false
	}
}

func splitLines(output string) []string {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// atoi returns 0 for empty or unparsable input
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
