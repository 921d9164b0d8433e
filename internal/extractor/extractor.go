package extractor

import (
	"regexp"
	"strings"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

var (
	blankRunRe      = regexp.MustCompile(`\n\s*\n\s*\n+`)
	blankLineRe     = regexp.MustCompile(`(?m)^\s*$\n`)
	internalBlankRe = regexp.MustCompile(`\n\s*\n+`)
	fencedBlockRe   = regexp.MustCompile("```([\\s\\S]*?)```")
	fenceInfoRe     = regexp.MustCompile(`^[\w+#.-]*$`)
)

// Extractor turns raw model replies into ExtractionResults. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	locator      *Locator
	summaryLimit int
	logger       *loggy.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLocator replaces the default line locator
func WithLocator(l *Locator) Option {
	return func(e *Extractor) { e.locator = l }
}

// WithSummaryLimit sets the summary length before truncation
func WithSummaryLimit(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.summaryLimit = n
		}
	}
}

// WithLogger sets the logger used for extraction diagnostics
func WithLogger(l *loggy.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		locator:      NewLocator(nil),
		summaryLimit: DefaultSummaryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = loggy.GetGlobalLogger()
	}
	return e
}

// Locator returns the locator used for error lines
func (e *Extractor) Locator() *Locator {
	return e.locator
}

// Extract parses a review reply
func (e *Extractor) Extract(rawText string) *ExtractionResult {
	result := EmptyResult()

	text := Normalize(rawText)
	if text == "" {
		return result
	}

	blocks := fencedBlockRe.FindAllStringSubmatch(text, -1)
	result.CodeBlocks = len(blocks)
	if len(blocks) > 0 {
		lang, code := splitFence(blocks[0][1])
		code = strings.TrimSpace(internalBlankRe.ReplaceAllString(strings.TrimSpace(code), "\n"))
		if code != "" {
			result.ImprovedCode = code
			result.CodeLanguage = lang
		}
		if len(blocks) > 1 {
			e.logger.Warn("Reply has several code blocks, using the first", "blocks", len(blocks))
		}
	}

	result.Feedback = stripCode(text)
	// Cited lines can sit inside the code block's surrounding prose or comments
	result.ErrorLines = e.locator.Locate(text)
	result.ErrorsSuspected = len(result.ErrorLines) == 0 && ContainsErrorIndicators(text)
	result.Summary = Summarize(result.Feedback, e.summaryLimit)

	e.logger.Debug("Extracted review reply",
		"error_lines", result.ErrorLines,
		"feedback_length", len(result.Feedback),
		"has_code", result.HasImprovedCode())

	return result
}

// ExtractExplanation parses an explain reply. Code blocks are part of the
// explanation and stay in Feedback; no error lines are reported.
func (e *Extractor) ExtractExplanation(rawText string) *ExtractionResult {
	result := EmptyResult()
	result.Feedback = Normalize(rawText)
	result.CodeBlocks = len(fencedBlockRe.FindAllStringIndex(result.Feedback, -1))
	result.Summary = Summarize(result.Feedback, e.summaryLimit)
	return result
}

// ExtractSuggestions parses a name suggestion reply
func (e *Extractor) ExtractSuggestions(rawText string) *ExtractionResult {
	result := EmptyResult()
	result.Feedback = Normalize(rawText)
	if result.Feedback == "" {
		result.Feedback = NoSuggestionsSentinel
	}
	result.Summary = Summarize(result.Feedback, e.summaryLimit)
	return result
}

// Normalize trims text, collapses runs of blank lines and drops lines that
// hold only whitespace
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = blankLineRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Summarize keeps the first two sentences when there are more, then caps the
// result at limit characters followed by "..."
func Summarize(text string, limit int) string {
	sentences := strings.Split(text, ". ")
	summary := text
	if len(sentences) > 2 {
		summary = sentences[0] + ". " + sentences[1] + "."
	}

	if limit > 0 {
		runes := []rune(summary)
		if len(runes) > limit {
			summary = string(runes[:limit]) + "..."
		}
	}
	return summary
}

// splitFence separates an optional info string from the block body. The
// first line is a language tag only when a newline follows it and it looks
// like one.
func splitFence(body string) (string, string) {
	first, rest, ok := strings.Cut(body, "\n")
	if !ok {
		return "", body
	}
	tag := strings.TrimSpace(first)
	if !fenceInfoRe.MatchString(tag) {
		return "", body
	}
	return strings.ToLower(tag), rest
}

func stripCode(text string) string {
	text = fencedBlockRe.ReplaceAllString(text, "")
	text = internalBlankRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
