package source

import (
	"fmt"
	"io"
	"os"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

// maxSnippetBytes bounds what is sent to the model in a single prompt
const maxSnippetBytes = 512 * 1024

// Snippet is code loaded for processing
type Snippet struct {
	Path     string
	Revision string // commit hash when loaded from git, empty otherwise
	Language string // detected language, empty when unknown
	Code     string
}

// Loader reads snippets from disk, git or a reader
type Loader struct {
	logger *loggy.Logger
}

// NewLoader creates a Loader
func NewLoader(logger *loggy.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads path from the working tree, or from the commit rev resolves to
// when rev is not empty
func (l *Loader) Load(path, rev string) (*Snippet, error) {
	var data []byte
	var commit string
	var err error

	if rev != "" {
		data, commit, err = readAtRevision(path, rev)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	snippet, err := l.build(path, data)
	if err != nil {
		return nil, err
	}
	snippet.Revision = commit

	l.logger.Debug("Loaded snippet",
		"path", path,
		"revision", commit,
		"language", snippet.Language,
		"bytes", len(data))
	return snippet, nil
}

// Read reads a snippet from r. name is only used for language detection and
// may be empty.
func (l *Loader) Read(r io.Reader, name string) (*Snippet, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSnippetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return l.build(name, data)
}

func (l *Loader) build(path string, data []byte) (*Snippet, error) {
	if len(data) > maxSnippetBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", displayName(path), maxSnippetBytes)
	}
	if path != "" && !IsReviewable(path, data) {
		return nil, fmt.Errorf("%s does not look like reviewable source code", displayName(path))
	}

	snippet := &Snippet{Path: path, Code: string(data)}
	if path != "" {
		snippet.Language = DetectLanguage(path, data)
	}
	return snippet, nil
}

func displayName(path string) string {
	if path == "" {
		return "input"
	}
	return path
}
