package gemini

// GenerateContentRequest is the body of a generateContent call
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// Content holds a sequence of parts from a single role
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single text fragment
type Part struct {
	Text string `json:"text"`
}

// GenerateContentResponse is the body returned by generateContent
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// Candidate represents a candidate response from the Gemini API
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// SafetyRating represents a safety rating from Gemini
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

// PromptFeedback is returned when the prompt itself was blocked
type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// APIError is the JSON error envelope of a non-2xx reply
type APIError struct {
	ErrorDetail *ErrorDetails `json:"error,omitempty"`
}

// ErrorDetails contains details about an API error
type ErrorDetails struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// newTextRequest wraps prompt as a single user turn
func newTextRequest(prompt string) GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}
}
