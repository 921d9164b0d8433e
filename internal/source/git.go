package source

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotInRepository is returned when a revision is requested for a file
// outside any git repository
var ErrNotInRepository = errors.New("file is not inside a git repository")

// readAtRevision returns the contents of path as committed at rev. rev is
// anything git rev-parse understands for a commit, such as "HEAD~2" or a
// branch name.
func readAtRevision(path, rev string) ([]byte, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("getting absolute path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(absPath), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, "", ErrNotInRepository
		}
		return nil, "", fmt.Errorf("opening git repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("getting worktree: %w", err)
	}

	root, err := filepath.EvalSymlinks(worktree.Filesystem.Root())
	if err != nil {
		return nil, "", fmt.Errorf("resolving repository root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolving file path: %w", err)
	}
	relPath, err := filepath.Rel(root, resolved)
	if err != nil {
		return nil, "", fmt.Errorf("making path relative to repository: %w", err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, "", fmt.Errorf("resolving revision %q: %w", rev, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, "", fmt.Errorf("getting commit object: %w", err)
	}

	file, err := commit.File(filepath.ToSlash(relPath))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, "", fmt.Errorf("%s does not exist at %s", relPath, rev)
		}
		return nil, "", fmt.Errorf("getting file from commit: %w", err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, "", fmt.Errorf("reading file contents: %w", err)
	}

	return []byte(contents), commit.Hash.String(), nil
}
