package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LinePattern is one heuristic for finding a cited line number. The first
// capture group must hold the number.
type LinePattern struct {
	Name   string
	Regexp *regexp.Regexp
}

// DefaultLinePatterns returns the built-in heuristics, English and Vietnamese
func DefaultLinePatterns() []LinePattern {
	return []LinePattern{
		{Name: "line-marker", Regexp: regexp.MustCompile(`(?i)(?:dòng|line)\s*(\d+)(?:\s*[:-]\s*\d+)?`)},
		{Name: "error-at-line", Regexp: regexp.MustCompile(`(?i)(?:lỗi tại dòng|error at line|error on line)\s*(\d+)`)},
		{Name: "syntax-error-line", Regexp: regexp.MustCompile(`(?i)syntax error.*line\s*(\d+)`)},
		{Name: "l-prefix", Regexp: regexp.MustCompile(`(?i)\bL(\d+):`)},
		{Name: "at-position", Regexp: regexp.MustCompile(`(?i)(?:tại vị trí|at position).*?(\d+)`)},
	}
}

// errorVocabulary marks prose that talks about defects
var errorVocabulary = []string{
	"lỗi", "error", "syntax", "bug", "sai", "thiếu",
	"missing", "invalid", "undefined", "null", "exception",
}

// Locator finds cited line numbers. Its pattern list is fixed at construction.
type Locator struct {
	patterns []LinePattern
}

// NewLocator builds a Locator over patterns, or the defaults when none are given
func NewLocator(patterns []LinePattern) *Locator {
	if len(patterns) == 0 {
		patterns = DefaultLinePatterns()
	}
	return &Locator{patterns: append([]LinePattern(nil), patterns...)}
}

// Patterns returns a copy of the pattern list
func (l *Locator) Patterns() []LinePattern {
	return append([]LinePattern(nil), l.patterns...)
}

// Locate returns the positive line numbers cited in text, unique and
// ascending. The slice is never nil.
func (l *Locator) Locate(text string) []int {
	seen := make(map[int]struct{})
	for _, p := range l.patterns {
		for _, m := range p.Regexp.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				continue
			}
			seen[n] = struct{}{}
		}
	}

	lines := make([]int, 0, len(seen))
	for n := range seen {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines
}

// ContainsErrorIndicators reports whether text mentions any error vocabulary
func ContainsErrorIndicators(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range errorVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
