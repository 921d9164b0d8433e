package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/gemini"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/prompt"
)

// ModelClient sends a prompt to a generative model and returns its raw reply
type ModelClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// PromptBuilder renders the instruction text for a task
type PromptBuilder interface {
	Build(task prompt.Task, language, code string) (string, error)
}

// ToolRunner runs the external analyzers for a language
type ToolRunner interface {
	RunAll(ctx context.Context, language, code string) []*analyzer.AnalysisReport
}

// Options configures a Service
type Options struct {
	Model          string // Reported on results
	MaxConcurrency int    // Parallel requests in ReviewBatch, 1 when <= 0
	Runner         ToolRunner
	Logger         *loggy.Logger
}

// Service runs requests through the pipeline
type Service struct {
	client         ModelClient
	builder        PromptBuilder
	extractor      *extractor.Extractor
	runner         ToolRunner
	model          string
	maxConcurrency int
	logger         *loggy.Logger
}

// NewService creates a new review service. client may be nil, in which case
// every model request fails with a diagnostic.
func NewService(client ModelClient, builder PromptBuilder, ext *extractor.Extractor, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = loggy.GetGlobalLogger()
	}
	if ext == nil {
		ext = extractor.New(extractor.WithLogger(logger))
	}
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	return &Service{
		client:         client,
		builder:        builder,
		extractor:      ext,
		runner:         opts.Runner,
		model:          opts.Model,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Review asks the model for a review of code
func (s *Service) Review(ctx context.Context, language, code string) *Result {
	return s.Process(ctx, Request{Language: language, Code: code, Task: prompt.TaskReview})
}

// Explain asks the model to explain code
func (s *Service) Explain(ctx context.Context, language, code string) *Result {
	return s.Process(ctx, Request{Language: language, Code: code, Task: prompt.TaskExplain})
}

// SuggestNames asks the model for better identifier names
func (s *Service) SuggestNames(ctx context.Context, language, code string) *Result {
	return s.Process(ctx, Request{Language: language, Code: code, Task: prompt.TaskSuggestNames})
}

// Analyze runs only the external analyzers
func (s *Service) Analyze(ctx context.Context, language, code string) []*analyzer.AnalysisReport {
	if s.runner == nil {
		return nil
	}
	return s.runner.RunAll(ctx, NormalizeLanguage(language), code)
}

// Process runs one request. It never fails: model and prompt errors are
// reported through Result.Failed and the extraction's Feedback.
func (s *Service) Process(ctx context.Context, req Request) *Result {
	start := time.Now()

	requestID := loggy.GetRequestID(ctx)
	if requestID == "" {
		requestID = loggy.NewRequestID()
		ctx = loggy.WithRequestID(loggy.WithLogger(ctx, s.logger), requestID)
	}
	logger := loggy.FromContext(ctx)

	task := req.Task
	if task == "" {
		task = prompt.TaskReview
	}

	result := &Result{
		RequestID: requestID,
		Language:  NormalizeLanguage(req.Language),
		Task:      task,
		Model:     s.model,
	}

	logger.Info("Processing request", "task", task, "language", result.Language, "code_length", len(req.Code))

	if req.RunTools && task == prompt.TaskReview {
		result.Analysis = s.Analyze(ctx, result.Language, req.Code)
	}

	raw, err := s.generate(ctx, task, result.Language, req.Code)
	if err != nil {
		logger.Error("Model request failed", "error", err)
		result.Failed = true
		result.Extraction = failedExtraction(describeError(err))
		result.Duration = time.Since(start)
		return result
	}

	switch task {
	case prompt.TaskExplain:
		result.Extraction = s.extractor.ExtractExplanation(raw)
	case prompt.TaskSuggestNames:
		result.Extraction = s.extractor.ExtractSuggestions(raw)
	default:
		result.Extraction = s.extractor.Extract(raw)
	}

	result.Duration = time.Since(start)
	if result.Extraction.Degraded() && task == prompt.TaskReview {
		logger.Warn("Reply extracted with missing parts", "reasons", result.Extraction.DegradedReasons())
	}
	logger.Info("Request processed",
		"duration_ms", result.Duration.Milliseconds(),
		"error_lines", len(result.Extraction.ErrorLines))

	return result
}

// ReviewBatch processes requests in parallel, at most MaxConcurrency at a
// time. Results are returned in request order.
func (s *Service) ReviewBatch(ctx context.Context, reqs []Request) []*Result {
	results := make([]*Result, len(reqs))
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)

		go func(i int, req Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Each goroutine writes only its own slot
			results[i] = s.Process(ctx, req)
		}(i, req)
	}

	wg.Wait()
	return results
}

func (s *Service) generate(ctx context.Context, task prompt.Task, language, code string) (string, error) {
	if s.builder == nil {
		return "", &buildError{err: errors.New("no prompt builder configured")}
	}
	text, err := s.builder.Build(task, language, code)
	if err != nil {
		return "", &buildError{err: err}
	}

	if s.client == nil {
		return "", errors.New("no model client configured")
	}
	return s.client.GenerateContent(ctx, text)
}

type buildError struct {
	err error
}

func (e *buildError) Error() string { return "building prompt: " + e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

// describeError turns a pipeline error into the diagnostic shown as feedback
func describeError(err error) string {
	var statusErr *gemini.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("model returned HTTP %d: %s", statusErr.StatusCode, statusErr.Body)
	}

	var protoErr *gemini.ProtocolError
	if errors.As(err, &protoErr) {
		if protoErr.NoCandidates {
			return "model returned no candidates"
		}
		return "model returned an unreadable reply: " + protoErr.Reason
	}

	var bErr *buildError
	if errors.As(err, &bErr) {
		return bErr.Error()
	}

	return "model request failed: " + err.Error()
}

func failedExtraction(diagnostic string) *extractor.ExtractionResult {
	result := extractor.EmptyResult()
	result.Feedback = diagnostic
	return result
}
