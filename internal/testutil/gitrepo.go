// Package testutil provides shared helpers for tests that exercise real git
// repositories.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// GitRepo is a throwaway git repository rooted in a test temp directory.
// Author and committer identity are pinned so blame output is stable.
type GitRepo struct {
	Root string

	t      *testing.T
	author string
	email  string
}

// NewGitRepo initializes an empty repository, skipping the test when git is
// not installed.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	r := &GitRepo{
		Root:   t.TempDir(),
		t:      t,
		author: "Alice",
		email:  "alice@example.com",
	}
	r.Git("init")
	return r
}

// SetAuthor changes the identity used for subsequent commits.
func (r *GitRepo) SetAuthor(name, email string) {
	r.author = name
	r.email = email
}

// Git runs a git command in the repository, failing the test on error.
func (r *GitRepo) Git(args ...string) {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+r.author,
		"GIT_AUTHOR_EMAIL="+r.email,
		"GIT_COMMITTER_NAME="+r.author,
		"GIT_COMMITTER_EMAIL="+r.email,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

// WriteFile writes a file relative to the repository root.
func (r *GitRepo) WriteFile(name, content string) {
	r.t.Helper()

	path := filepath.Join(r.Root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.t.Fatal(err)
	}
}

// Commit stages everything and commits it.
func (r *GitRepo) Commit(message string) {
	r.t.Helper()

	r.Git("add", "-A")
	r.Git("commit", "-m", message)
}
