// Package gitops keeps generated secrets out of version control. it locates
// the enclosing repository and maintains .gitignore entries for auth storage,
// env files and session logs.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ErrNoRepository indicates the directory is not inside a git repository.
// callers treat this as non-fatal and skip gitignore maintenance.
var ErrNoRepository = errors.New("not a git repository")

// Root returns the worktree root of the repository containing dir.
func Root(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoRepository
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// IsIgnored reports whether the path (relative to root) matches the
// repository's gitignore rules.
func IsIgnored(root, rel string) (bool, error) {
	fs := osfs.New(root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return false, fmt.Errorf("read gitignore patterns: %w", err)
	}
	if len(patterns) == 0 {
		return false, nil
	}

	info, err := os.Stat(filepath.Join(root, rel))
	isDir := err == nil && info.IsDir()

	matcher := gitignore.NewMatcher(patterns)
	return matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir), nil
}

// EnsureIgnored appends the given patterns to the repository's .gitignore,
// creating the file if needed. patterns already covered by existing rules are
// skipped. returns the patterns actually added.
func EnsureIgnored(root string, patterns []string) ([]string, error) {
	path := filepath.Join(root, ".gitignore")

	existing := make(map[string]struct{})
	data, err := os.ReadFile(path) //nolint:gosec // path derived from repo root
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}
	for line := range strings.SplitSeq(string(data), "\n") {
		existing[strings.TrimSpace(line)] = struct{}{}
	}

	var missing []string
	for _, p := range patterns {
		if _, ok := existing[p]; ok {
			continue
		}
		// a pattern may be covered by a broader existing rule
		probe := strings.TrimSuffix(p, "/")
		if ignored, err := IsIgnored(root, probe); err == nil && ignored {
			continue
		}
		missing = append(missing, p)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // repo-root file
	if err != nil {
		return nil, fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close() //nolint:errcheck // error checked on explicit close below

	var b strings.Builder
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	for _, p := range missing {
		b.WriteString(p)
		b.WriteString("\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return nil, fmt.Errorf("append to .gitignore: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close .gitignore: %w", err)
	}
	return missing, nil
}
