package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// TransportError is a connection or I/O failure before a reply was read
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a 2xx reply that does not carry usable candidates
type ProtocolError struct {
	Reason string
	Body   string

	// NoCandidates is set when the reply decoded but held no candidates
	NoCandidates bool
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// StatusError is a non-2xx reply. Body is kept verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// APIMessage extracts error.message from a JSON error body, if present
func (e *StatusError) APIMessage() string {
	var apiErr APIError
	if err := json.Unmarshal([]byte(e.Body), &apiErr); err != nil || apiErr.ErrorDetail == nil {
		return ""
	}
	return apiErr.ErrorDetail.Message
}
