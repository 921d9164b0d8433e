package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		content  string
		want     string
	}{
		{"main.go", "package main\n\nfunc main() {}\n", "go"},
		{"app.py", "def main():\n    print('hi')\n", "python"},
		{"Main.java", "public class Main {}\n", "java"},
		{"vector.cpp", "#include <vector>\nint main() { return 0; }\n", "cpp"},
		{"notes.txt", "just words", ""},
		{"todo.txt", "! buy milk\n||example.com^\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.filename, []byte(tt.content)))
		})
	}
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "cpp", CanonicalName("C++"))
	assert.Equal(t, "python", CanonicalName("Python"))
	assert.Equal(t, "emacs-lisp", CanonicalName("Emacs Lisp"))
}

func TestIsReviewable(t *testing.T) {
	assert.True(t, IsReviewable("main.go", []byte("package main\n")))
	assert.False(t, IsReviewable("image.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x00, 0x01}))
	assert.False(t, IsReviewable("README.md", []byte("# Title\n")))
}

func TestLoaderLoadPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just words"), 0644))

	snippet, err := NewLoader(loggy.NewNoopLogger()).Load(path, "")
	require.NoError(t, err)
	assert.Empty(t, snippet.Language)
}

func TestLoaderLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.py")
	require.NoError(t, os.WriteFile(path, []byte("def add(a, b):\n    return a + b\n"), 0644))

	snippet, err := NewLoader(loggy.NewNoopLogger()).Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "python", snippet.Language)
	assert.Equal(t, "def add(a, b):\n    return a + b\n", snippet.Code)
	assert.Empty(t, snippet.Revision)

	_, err = NewLoader(loggy.NewNoopLogger()).Load(filepath.Join(dir, "missing.py"), "")
	assert.Error(t, err)
}

func TestLoaderRead(t *testing.T) {
	loader := NewLoader(loggy.NewNoopLogger())

	snippet, err := loader.Read(strings.NewReader("x = 1\n"), "")
	require.NoError(t, err)
	assert.Empty(t, snippet.Language)
	assert.Equal(t, "x = 1\n", snippet.Code)

	_, err = loader.Read(strings.NewReader(strings.Repeat("a", maxSnippetBytes+1)), "")
	assert.ErrorContains(t, err, "larger than")
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(name)
	require.NoError(t, err)
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestLoaderLoadAtRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "calc.py", "def add(a, b):\n    return a - b\n", "first")
	commitFile(t, repo, dir, "calc.py", "def add(a, b):\n    return a + b\n", "fix")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.py"), []byte("uncommitted\n"), 0644))

	loader := NewLoader(loggy.NewNoopLogger())
	path := filepath.Join(dir, "calc.py")

	previous, err := loader.Load(path, "HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b):\n    return a - b\n", previous.Code)
	assert.Len(t, previous.Revision, 40)
	assert.Equal(t, "python", previous.Language)

	head, err := loader.Load(path, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b):\n    return a + b\n", head.Code)

	_, err = loader.Load(path, "no-such-branch")
	assert.ErrorContains(t, err, "resolving revision")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.py"), []byte("x = 1\n"), 0644))
	_, err = loader.Load(filepath.Join(dir, "new.py"), "HEAD")
	assert.ErrorContains(t, err, "does not exist at HEAD")
}

func TestLoadAtRevisionOutsideRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	_, err := NewLoader(loggy.NewNoopLogger()).Load(path, "HEAD")
	assert.ErrorIs(t, err, ErrNotInRepository)
}
