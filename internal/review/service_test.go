package review

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/codecritic/internal/analyzer"
	"github.com/tildaslashalef/codecritic/internal/extractor"
	"github.com/tildaslashalef/codecritic/internal/gemini"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/prompt"
)

const reviewReply = "Errors:\n" +
	"- Dòng 5: missing colon\n" +
	"- line 10 - undefined variable\n" +
	"Fixed code:\n" +
	"```python\n" +
	"def f():\n" +
	"    return 1\n" +
	"```\n"

type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	delay   time.Duration

	inFlight    int32
	maxInFlight int32
}

func (f *fakeClient) GenerateContent(ctx context.Context, p string) (string, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		old := atomic.LoadInt32(&f.maxInFlight)
		if n <= old || atomic.CompareAndSwapInt32(&f.maxInFlight, old, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	return f.reply, f.err
}

type fakeRunner struct {
	calls int32
}

func (r *fakeRunner) RunAll(ctx context.Context, language, code string) []*analyzer.AnalysisReport {
	atomic.AddInt32(&r.calls, 1)
	return []*analyzer.AnalysisReport{{
		Language: language,
		Tool:     "pylint",
		Status:   analyzer.StatusOK,
		Issues: []analyzer.Issue{
			{Kind: analyzer.KindError, Line: 7},
			{Kind: analyzer.KindWarning, Line: 2},
			{Kind: analyzer.KindError, Line: 3},
		},
	}}
}

func newTestService(t *testing.T, client ModelClient, opts Options) *Service {
	t.Helper()
	builder, err := prompt.NewBuilder(prompt.LocaleEnglish)
	require.NoError(t, err)
	opts.Logger = loggy.NewNoopLogger()
	return NewService(client, builder, extractor.New(extractor.WithLogger(opts.Logger)), opts)
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"":           UnknownLanguage,
		"  ":         UnknownLanguage,
		"undefined":  UnknownLanguage,
		"NULL":       UnknownLanguage,
		" Python ":   "python",
		"JavaScript": "javascript",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLanguage(in), "input %q", in)
	}
}

func TestRequestValidate(t *testing.T) {
	assert.NoError(t, Request{Language: "go", Code: "package main"}.Validate())
	assert.Error(t, Request{Language: "go", Code: "  \n"}.Validate())
	assert.Error(t, Request{Language: "null", Code: "x"}.Validate())
}

func TestReview(t *testing.T) {
	client := &fakeClient{reply: reviewReply}
	svc := newTestService(t, client, Options{Model: "gemini-test"})

	result := svc.Review(context.Background(), " Python ", "def f(:\n    return 1\n")

	require.NotNil(t, result.Extraction)
	assert.False(t, result.Failed)
	assert.Equal(t, "python", result.Language)
	assert.Equal(t, prompt.TaskReview, result.Task)
	assert.Equal(t, "gemini-test", result.Model)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, []int{5, 10}, result.Extraction.ErrorLines)
	assert.Equal(t, "def f():\n    return 1", result.Extraction.ImprovedCode)
	assert.Nil(t, result.Analysis)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "1: def f(:")
	assert.Contains(t, client.prompts[0], "2:     return 1")
}

func TestExplainAndSuggestNames(t *testing.T) {
	client := &fakeClient{reply: "It adds numbers.\n```go\nreturn a + b\n```\n"}
	svc := newTestService(t, client, Options{})

	explained := svc.Explain(context.Background(), "go", "func add(a, b int) int { return a + b }")
	assert.Equal(t, prompt.TaskExplain, explained.Task)
	assert.Contains(t, explained.Extraction.Feedback, "return a + b")
	assert.Empty(t, explained.Extraction.ErrorLines)

	client.reply = "   "
	suggested := svc.SuggestNames(context.Background(), "go", "func f(x int) {}")
	assert.Equal(t, extractor.NoSuggestionsSentinel, suggested.Extraction.Feedback)
	assert.False(t, suggested.Failed)
}

func TestProcessModelFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "status error",
			err:  &gemini.StatusError{StatusCode: 403, Body: `{"error":{"message":"API key invalid"}}`},
			want: `model returned HTTP 403: {"error":{"message":"API key invalid"}}`,
		},
		{
			name: "no candidates",
			err:  &gemini.ProtocolError{Reason: "no candidates in response", NoCandidates: true},
			want: "model returned no candidates",
		},
		{
			name: "transport error",
			err:  &gemini.TransportError{Err: errors.New("connection refused")},
			want: "model request failed: transport error: connection refused",
		},
		{
			name: "joined retry error",
			err:  errors.Join(context.DeadlineExceeded, &gemini.StatusError{StatusCode: 503, Body: "busy"}),
			want: "model returned HTTP 503: busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeClient{err: tt.err}, Options{})

			result := svc.Review(context.Background(), "python", "x = 1")
			assert.True(t, result.Failed)
			require.NotNil(t, result.Extraction)
			assert.Equal(t, tt.want, result.Extraction.Feedback)
			assert.Equal(t, extractor.NoCodeSentinel, result.Extraction.ImprovedCode)
			assert.NotNil(t, result.Extraction.ErrorLines)
			assert.Empty(t, result.Extraction.ErrorLines)
			assert.Empty(t, result.Extraction.Summary)
		})
	}
}

func TestProcessWithoutClient(t *testing.T) {
	svc := newTestService(t, nil, Options{})

	result := svc.Review(context.Background(), "python", "x = 1")
	assert.True(t, result.Failed)
	assert.Equal(t, "model request failed: no model client configured", result.Extraction.Feedback)
}

func TestProcessUnknownTask(t *testing.T) {
	client := &fakeClient{reply: "unused"}
	svc := newTestService(t, client, Options{})

	result := svc.Process(context.Background(), Request{Language: "go", Code: "x", Task: prompt.Task("poem")})
	assert.True(t, result.Failed)
	assert.True(t, strings.HasPrefix(result.Extraction.Feedback, "building prompt: "))
	assert.Empty(t, client.prompts, "the model is not called without a prompt")
}

func TestProcessRunsTools(t *testing.T) {
	runner := &fakeRunner{}
	svc := newTestService(t, &fakeClient{reply: reviewReply}, Options{Runner: runner})

	result := svc.Process(context.Background(), Request{Language: "python", Code: "x", Task: prompt.TaskReview, RunTools: true})
	require.Len(t, result.Analysis, 1)
	assert.Equal(t, []int{3, 7}, result.ToolErrorLines())

	explained := svc.Process(context.Background(), Request{Language: "python", Code: "x", Task: prompt.TaskExplain, RunTools: true})
	assert.Nil(t, explained.Analysis)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
}

func TestToolsRunWhenModelFails(t *testing.T) {
	runner := &fakeRunner{}
	svc := newTestService(t, &fakeClient{err: errors.New("boom")}, Options{Runner: runner})

	result := svc.Process(context.Background(), Request{Language: "python", Code: "x", RunTools: true})
	assert.True(t, result.Failed)
	assert.Len(t, result.Analysis, 1)
}

func TestProcessKeepsCallerRequestID(t *testing.T) {
	svc := newTestService(t, &fakeClient{reply: "ok"}, Options{})
	ctx := loggy.WithRequestID(context.Background(), "req-fixed")

	result := svc.Review(ctx, "go", "x")
	assert.Equal(t, "req-fixed", result.RequestID)
}

func TestReviewBatch(t *testing.T) {
	client := &fakeClient{reply: reviewReply, delay: 20 * time.Millisecond}
	svc := newTestService(t, client, Options{MaxConcurrency: 2})

	reqs := make([]Request, 6)
	for i := range reqs {
		reqs[i] = Request{Language: "python", Code: strings.Repeat("x\n", i+1)}
	}
	reqs[3].Language = ""

	results := svc.ReviewBatch(context.Background(), reqs)
	require.Len(t, results, len(reqs))
	for i, result := range results {
		require.NotNil(t, result, "result %d", i)
		assert.Equal(t, []int{5, 10}, result.Extraction.ErrorLines)
	}
	assert.Equal(t, UnknownLanguage, results[3].Language)
	assert.Len(t, client.prompts, len(reqs))
	assert.LessOrEqual(t, atomic.LoadInt32(&client.maxInFlight), int32(2))
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "model returned an unreadable reply: decoding response: eof",
		describeError(&gemini.ProtocolError{Reason: "decoding response: eof"}))
}
