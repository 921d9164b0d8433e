package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
)

// Client calls the Gemini generateContent endpoint
type Client struct {
	apiKey        string
	baseURL       string
	apiVersion    string
	model         string
	httpClient    *http.Client
	maxRetries    int
	retryInterval time.Duration
	limiter       *rate.Limiter
}

// NewClient creates a new Gemini client from config
func NewClient(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is not configured (set CODECRITIC_GEMINI_API_KEY)")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiVersion:    apiVersion,
		model:         model,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		maxRetries:    maxRetries,
		retryInterval: 500 * time.Millisecond,
		limiter:       newLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
	}, nil
}

// newLimiter returns nil when rpm is not positive, meaning no limiting
func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// Model returns the model name requests are sent to
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends prompt as a single user turn and returns every
// candidate part's text, each followed by a newline.
//
// Errors are *TransportError, *StatusError or *ProtocolError, possibly
// joined with a context error when retries were cut short.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &TransportError{Err: fmt.Errorf("waiting for rate limiter: %w", err)}
		}
	}

	var resp GenerateContentResponse
	path := fmt.Sprintf("models/%s:generateContent", c.model)
	if err := c.makeRequest(ctx, path, newTextRequest(prompt), &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		reason := "no candidates in response"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason += " (prompt blocked: " + resp.PromptFeedback.BlockReason + ")"
		}
		return "", &ProtocolError{Reason: reason, NoCandidates: true}
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// makeRequest POSTs requestBody to path and decodes a 2xx reply into responseBody
func (c *Client) makeRequest(ctx context.Context, path string, requestBody, responseBody interface{}) error {
	logger := loggy.FromContext(ctx)
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, path)

	requestBytes, err := json.Marshal(requestBody)
	if err != nil {
		return &ProtocolError{Reason: fmt.Sprintf("marshalling request: %v", err)}
	}

	logger.Debug("Sending Gemini request", "url", url, "model", c.model, "body_bytes", len(requestBytes))

	var lastErr error
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBytes))
		if err != nil {
			lastErr = &TransportError{Err: fmt.Errorf("creating request: %w", err)}
			return backoff.Permanent(lastErr)
		}
		req.Header.Set("Content-Type", "application/json")

		q := req.URL.Query()
		q.Add("key", c.apiKey)
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &TransportError{Err: fmt.Errorf("sending request: %w", err)}
			return backoff.Permanent(lastErr)
		}
		defer resp.Body.Close()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = &TransportError{Err: fmt.Errorf("reading response body: %w", err)}
			return backoff.Permanent(lastErr)
		}

		logger.Debug("Gemini API response",
			"status_code", resp.StatusCode,
			"content_length", len(bodyBytes))

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
			lastErr = statusErr
			logger.Warn("Gemini API error response", "status_code", resp.StatusCode, "message", statusErr.APIMessage())
			if statusErr.Retryable() {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		if err := json.Unmarshal(bodyBytes, responseBody); err != nil {
			lastErr = &ProtocolError{Reason: fmt.Sprintf("decoding response: %v", err), Body: string(bodyBytes)}
			return backoff.Permanent(lastErr)
		}

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(operation, retry); err != nil {
		if lastErr != nil && !errors.Is(err, lastErr) {
			return errors.Join(err, lastErr)
		}
		return err
	}

	return nil
}
