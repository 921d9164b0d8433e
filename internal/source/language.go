// Package source loads code to review from files or git revisions and
// detects its language.
package source

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// enryNames maps go-enry language names onto the names used by the
// analyzer command table and the prompts
var enryNames = map[string]string{
	"C++":   "cpp",
	"C#":    "csharp",
	"Shell": "bash",
}

// DetectLanguage guesses the language of content named filename. It returns
// an empty string when the language cannot be told.
func DetectLanguage(filename string, content []byte) string {
	base := filepath.Base(filename)

	language := enry.GetLanguage(base, content)
	if !trusted(base, language) {
		language, _ = enry.GetLanguageByExtension(base)
	}
	if !trusted(base, language) {
		return ""
	}

	return CanonicalName(language)
}

// trusted keeps programming languages, and other non-prose languages only
// when the extension names a single candidate. Plain text otherwise ends up
// as whatever data format shares its extension.
func trusted(base, language string) bool {
	if language == "" {
		return false
	}
	switch enry.GetLanguageType(language) {
	case enry.Programming:
		return true
	case enry.Prose:
		return false
	}
	return len(enry.GetLanguagesByExtension(base, nil, nil)) == 1
}

// CanonicalName turns a go-enry language name into the lowercase form used
// everywhere else
func CanonicalName(enryName string) string {
	if name, ok := enryNames[enryName]; ok {
		return name
	}
	return strings.ToLower(strings.ReplaceAll(enryName, " ", "-"))
}

// IsReviewable reports whether a file looks like source code worth sending
// to the model
func IsReviewable(filename string, content []byte) bool {
	if enry.IsBinary(content) {
		return false
	}
	base := filepath.Base(filename)
	if enry.IsVendor(base) || enry.IsGenerated(base, content) {
		return false
	}
	return !enry.IsDocumentation(base)
}
