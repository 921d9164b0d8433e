// Package extractor turns a free-form model reply into structured review data
package extractor

const (
	// NoCodeSentinel replaces ImprovedCode when the reply has no fenced block
	NoCodeSentinel = "no corrected code found"

	// NoSuggestionsSentinel replaces empty feedback for name suggestions
	NoSuggestionsSentinel = "the model returned no suggestions"

	// DefaultSummaryLimit is the summary length, in characters, before "..."
	DefaultSummaryLimit = 200
)

// ExtractionResult is the structured form of a model reply
type ExtractionResult struct {
	Feedback     string `json:"feedback"`
	ImprovedCode string `json:"improved_code"`
	CodeLanguage string `json:"code_language,omitempty"`
	ErrorLines   []int  `json:"error_lines"`
	Summary      string `json:"summary"`

	// ErrorsSuspected is set when the reply, code block included, talks about
	// errors but no line number could be recovered
	ErrorsSuspected bool `json:"errors_suspected"`

	// CodeBlocks counts the fenced blocks in the reply. Only the first one
	// becomes ImprovedCode.
	CodeBlocks int `json:"code_blocks"`
}

// EmptyResult returns a result with every field present and empty
func EmptyResult() *ExtractionResult {
	return &ExtractionResult{
		ImprovedCode: NoCodeSentinel,
		ErrorLines:   []int{},
	}
}

// HasImprovedCode reports whether a fenced block was found
func (r *ExtractionResult) HasImprovedCode() bool {
	return r.ImprovedCode != NoCodeSentinel
}

// Degraded reports a weaker result: parsing worked but no fenced block
// or no error line was found
func (r *ExtractionResult) Degraded() bool {
	return len(r.DegradedReasons()) > 0
}

// DegradedReasons lists what was missing from the reply
func (r *ExtractionResult) DegradedReasons() []string {
	var reasons []string
	if !r.HasImprovedCode() {
		reasons = append(reasons, "no fenced code block")
	}
	if len(r.ErrorLines) == 0 {
		reasons = append(reasons, "no error line numbers")
	}
	if r.CodeBlocks > 1 {
		reasons = append(reasons, "multiple code blocks, only the first was used")
	}
	return reasons
}
