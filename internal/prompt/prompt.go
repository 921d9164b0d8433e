// Package prompt builds the instruction text sent to the model for each task.
package prompt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Task selects which instruction template is used
type Task string

const (
	TaskReview       Task = "review"
	TaskExplain      Task = "explain"
	TaskSuggestNames Task = "suggest_names"
)

// ParseTask accepts the task names and a few CLI friendly aliases
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "review", "":
		return TaskReview, nil
	case "explain":
		return TaskExplain, nil
	case "suggest_names", "suggest-names", "suggest":
		return TaskSuggestNames, nil
	default:
		return "", fmt.Errorf("unknown task %q", s)
	}
}

// Locale selects the language the instructions are written in
type Locale string

const (
	LocaleEnglish    Locale = "en"
	LocaleVietnamese Locale = "vi"
)

var templateSources = map[Locale]map[Task]string{
	LocaleEnglish: {
		TaskReview:       reviewTemplateEN,
		TaskExplain:      explainTemplateEN,
		TaskSuggestNames: suggestNamesTemplateEN,
	},
	LocaleVietnamese: {
		TaskReview:       reviewTemplateVI,
		TaskExplain:      explainTemplateVI,
		TaskSuggestNames: suggestNamesTemplateVI,
	},
}

// Builder renders prompts. It is immutable after construction.
type Builder struct {
	locale    Locale
	templates map[Task]*template.Template
}

// NewBuilder parses the templates for locale
func NewBuilder(locale Locale) (*Builder, error) {
	sources, ok := templateSources[locale]
	if !ok {
		return nil, fmt.Errorf("unsupported prompt locale %q", locale)
	}

	templates := make(map[Task]*template.Template, len(sources))
	for task, src := range sources {
		tmpl, err := template.New(string(task)).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", task, err)
		}
		templates[task] = tmpl
	}

	return &Builder{locale: locale, templates: templates}, nil
}

// Locale returns the builder's locale
func (b *Builder) Locale() Locale {
	return b.locale
}

type templateData struct {
	Language     string
	Fence        string
	Code         string
	NumberedCode string
}

// Build renders the prompt for task
func (b *Builder) Build(task Task, language, code string) (string, error) {
	tmpl, ok := b.templates[task]
	if !ok {
		return "", fmt.Errorf("no template for task %q", task)
	}

	data := templateData{
		Language: language,
		Fence:    strings.ToLower(strings.TrimSpace(language)),
		Code:     code,
	}
	if task == TaskReview {
		data.NumberedCode = NumberLines(code)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", task, err)
	}
	return buf.String(), nil
}

// NumberLines prefixes every line with "<n>: ", numbering 1..N. A trailing
// newline does not start an extra line and empty code yields "".
func NumberLines(code string) string {
	if code == "" {
		return ""
	}

	lines := strings.Split(code, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(": ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
