// Package repostate answers questions about the state of the git repository
// that annotation passes depend on: whether a path is inside a repository,
// which commit HEAD points at, and whether a file has unsaved-to-history edits.
package repostate

import (
	"os/exec"
	"strings"

	"lens/internal/errors"
)

// IsGitRepository checks if the given path is a git repository
func IsGitRepository(repoRoot string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = repoRoot
	err := cmd.Run()
	return err == nil
}

// GetRepoRoot finds the git repository root from the given directory
func GetRepoRoot(startPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = startPath

	output, err := cmd.Output()
	if err != nil {
		return "", errors.New(errors.NotARepository, "Not a git repository", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// HeadCommit returns the commit hash HEAD points at. Snapshot cache entries
// are keyed by this value, so a new commit invalidates them naturally.
func HeadCommit(repoRoot string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = repoRoot

	output, err := cmd.Output()
	if err != nil {
		return "", errors.New(errors.InternalError, "Failed to get HEAD commit", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// IsFileDirty reports whether the given file has staged or unstaged
// modifications relative to HEAD. Untracked files count as dirty: their
// content has no history at all.
func IsFileDirty(repoRoot, path string) (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain", "--", path)
	cmd.Dir = repoRoot

	output, err := cmd.Output()
	if err != nil {
		return false, errors.New(errors.InternalError, "Failed to get file status", err)
	}

	return strings.TrimSpace(string(output)) != "", nil
}
