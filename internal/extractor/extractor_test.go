package extractor

import (
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

const sampleReview = "**1. Detected errors:**\n" +
	"- Dòng 5: missing semicolon\n" +
	"- line 10 - undefined variable\n" +
	"\n\n\n" +
	"**2. Improvements:**\n" +
	"- Use descriptive names\n" +
	"**3. Optimized code:**\n" +
	"```python\n" +
	"def add(a, b):\n" +
	"\n" +
	"    return a + b\n" +
	"```\n" +
	"Done."

func newTestExtractor() *Extractor {
	return New(WithLogger(loggy.NewNoopLogger()))
}

func TestExtract(t *testing.T) {
	result := newTestExtractor().Extract(sampleReview)

	assert.Equal(t, []int{5, 10}, result.ErrorLines)
	assert.Equal(t, "def add(a, b):\n    return a + b", result.ImprovedCode)
	assert.Equal(t, "python", result.CodeLanguage)
	assert.Equal(t, 1, result.CodeBlocks)
	assert.NotContains(t, result.Feedback, "```")
	assert.NotContains(t, result.Feedback, "return a + b")
	assert.NotContains(t, result.Feedback, "\n\n")
	assert.True(t, strings.HasPrefix(result.Feedback, "**1. Detected errors:**"))
	assert.True(t, strings.HasSuffix(result.Feedback, "Done."))
	assert.False(t, result.ErrorsSuspected)
	assert.False(t, result.Degraded())
}

func TestExtractWithoutFence(t *testing.T) {
	result := newTestExtractor().Extract("Error at line 3: x is undefined. Also see L7: shadowed name.")

	assert.Equal(t, NoCodeSentinel, result.ImprovedCode)
	assert.False(t, result.HasImprovedCode())
	assert.Equal(t, []int{3, 7}, result.ErrorLines, "lines are still located without a code block")
	assert.True(t, result.Degraded())
	assert.Contains(t, result.DegradedReasons(), "no fenced code block")
}

func TestExtractEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n\n\t "} {
		result := newTestExtractor().Extract(raw)

		assert.Empty(t, result.Feedback)
		assert.Equal(t, NoCodeSentinel, result.ImprovedCode)
		require.NotNil(t, result.ErrorLines)
		assert.Empty(t, result.ErrorLines)
		assert.Empty(t, result.Summary)
		assert.False(t, result.ErrorsSuspected)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	e := newTestExtractor()
	assert.Equal(t, e.Extract(sampleReview), e.Extract(sampleReview))
}

func TestExtractScansCodeBlock(t *testing.T) {
	raw := "Problems below.\n```go\n// line 42: off by one\nfor i := 0; i <= n; i++ {}\n```"
	result := newTestExtractor().Extract(raw)

	assert.Equal(t, []int{42}, result.ErrorLines)
	assert.Equal(t, "Problems below.", result.Feedback)
}

func TestExtractFenceWithoutTag(t *testing.T) {
	result := newTestExtractor().Extract("Fixed:\n```\nprint(x)\n```")

	assert.Equal(t, "print(x)", result.ImprovedCode)
	assert.Empty(t, result.CodeLanguage)
}

func TestExtractSingleLineFence(t *testing.T) {
	result := newTestExtractor().Extract("Use ```x = 1``` instead.")

	assert.Equal(t, "x = 1", result.ImprovedCode)
	assert.Equal(t, "Use  instead.", result.Feedback)
}

func TestExtractMultipleBlocksUsesFirst(t *testing.T) {
	raw := "First:\n```js\nlet a = 1;\n```\nSecond:\n```js\nlet b = 2;\n```"
	result := newTestExtractor().Extract(raw)

	assert.Equal(t, "let a = 1;", result.ImprovedCode)
	assert.Equal(t, 2, result.CodeBlocks)
	assert.NotContains(t, result.Feedback, "let b")
	assert.Contains(t, result.DegradedReasons(), "multiple code blocks, only the first was used")
}

func TestExtractErrorsSuspected(t *testing.T) {
	result := newTestExtractor().Extract("There is a null pointer exception somewhere.")

	assert.Empty(t, result.ErrorLines)
	assert.True(t, result.ErrorsSuspected)

	clean := newTestExtractor().Extract("Looks good to me.")
	assert.False(t, clean.ErrorsSuspected)

	inCode := newTestExtractor().Extract("Fixed it.\n```python\n# the return was missing\ndef f():\n    return 1\n```")
	assert.Empty(t, inCode.ErrorLines)
	assert.NotContains(t, inCode.Feedback, "missing")
	assert.True(t, inCode.ErrorsSuspected)
}

func TestErrorLinesSortedAndUnique(t *testing.T) {
	inputs := []string{
		"line 9, line 2, dòng 9, error on line 2, L2: again",
		"syntax error near token on line 30. Line 4-6 too. at position 30",
		"line 0 and line -1 and line 99999999999999999999",
		"Dòng 12: thiếu dấu ;\nLỗi tại dòng 3\nLINE 12",
	}

	for _, in := range inputs {
		lines := newTestExtractor().Extract(in).ErrorLines
		assert.True(t, sort.IntsAreSorted(lines), "%v not sorted", lines)

		seen := map[int]bool{}
		for _, n := range lines {
			assert.False(t, seen[n], "duplicate %d in %v", n, lines)
			assert.Positive(t, n)
			seen[n] = true
		}
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"two sentences kept whole", "One. Two", 200, "One. Two"},
		{"three sentences cut to two", "One. Two. Three. Four", 200, "One. Two."},
		{"long text truncated", strings.Repeat("a", 250), 200, strings.Repeat("a", 200) + "..."},
		{"exact limit untouched", strings.Repeat("b", 200), 200, strings.Repeat("b", 200)},
		{"rune safe", strings.Repeat("ồ", 5), 3, "ồồồ..."},
		{"empty", "", 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.text, tt.limit))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb", Normalize("  a\n\n\n\n   \nb  "))
	assert.Equal(t, "a\nb\nc", Normalize("a\n \nb\n\t\nc"))
	assert.Empty(t, Normalize("\n \n"))
}

func TestExtractExplanation(t *testing.T) {
	raw := "This function adds numbers. It takes two arguments. It returns the sum.\n\n\n```python\nadd(1, 2)\n```"
	result := newTestExtractor().ExtractExplanation(raw)

	assert.Contains(t, result.Feedback, "add(1, 2)", "examples stay in the explanation")
	assert.Equal(t, "This function adds numbers. It takes two arguments.", result.Summary)
	assert.Empty(t, result.ErrorLines)
	assert.Equal(t, NoCodeSentinel, result.ImprovedCode)
}

func TestExtractSuggestions(t *testing.T) {
	e := newTestExtractor()

	empty := e.ExtractSuggestions("  ")
	assert.Equal(t, NoSuggestionsSentinel, empty.Feedback)
	assert.Equal(t, NoSuggestionsSentinel, empty.Summary)

	long := e.ExtractSuggestions(strings.Repeat("x", 300))
	assert.Len(t, []rune(long.Summary), 203)
}

func TestWithSummaryLimit(t *testing.T) {
	e := New(WithLogger(loggy.NewNoopLogger()), WithSummaryLimit(5))
	assert.Equal(t, "abcde...", e.Extract("abcdefgh").Summary)

	unchanged := New(WithSummaryLimit(0))
	assert.Equal(t, DefaultSummaryLimit, unchanged.summaryLimit)
}

func TestCustomLocator(t *testing.T) {
	locator := NewLocator([]LinePattern{
		{Name: "hash", Regexp: regexp.MustCompile(`#(\d+)`)},
	})
	e := New(WithLogger(loggy.NewNoopLogger()), WithLocator(locator))

	result := e.Extract("See #4 and line 8")
	assert.Equal(t, []int{4}, result.ErrorLines)
	assert.Len(t, e.Locator().Patterns(), 1)
}

func TestContainsErrorIndicators(t *testing.T) {
	assert.True(t, ContainsErrorIndicators("Biến bị THIẾU khai báo"))
	assert.True(t, ContainsErrorIndicators("SyntaxError"))
	assert.False(t, ContainsErrorIndicators("All good"))
}
