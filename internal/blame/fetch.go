package blame

import (
	"context"
	"os/exec"
	"time"

	"lens/internal/errors"
	"lens/internal/logging"
)

// DefaultTimeout bounds a single git invocation (5000ms)
const DefaultTimeout = 5000 * time.Millisecond

// Fetcher runs git against a repository to produce blame maps and
// historical file content.
type Fetcher struct {
	repoRoot         string
	timeout          time.Duration
	ignoreWhitespace bool
	logger           *logging.Logger
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// TimeoutMs bounds each git invocation; 0 means DefaultTimeout
	TimeoutMs int
	// IgnoreWhitespace passes -w to git blame
	IgnoreWhitespace bool
}

// NewFetcher creates a Fetcher for the given repository root.
func NewFetcher(repoRoot string, opts FetcherOptions, logger *logging.Logger) *Fetcher {
	timeout := DefaultTimeout
	if opts.TimeoutMs > 0 {
		timeout = time.Duration(opts.TimeoutMs) * time.Millisecond
	}

	return &Fetcher{
		repoRoot:         repoRoot,
		timeout:          timeout,
		ignoreWhitespace: opts.IgnoreWhitespace,
		logger:           logger.WithComponent("blame"),
	}
}

// Blame runs `git blame --porcelain` for a file and parses the result.
// Failure is expected for untracked and binary files; callers treat an error
// as "no annotations", not as a hard failure.
func (f *Fetcher) Blame(ctx context.Context, path string) (*Map, error) {
	args := []string{"blame", "--porcelain"}
	if f.ignoreWhitespace {
		args = append(args, "-w")
	}
	args = append(args, "--", path)

	output, err := f.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	m, err := ParsePorcelain(output)
	if err != nil {
		return nil, errors.New(errors.BlameUnavailable, "Failed to parse blame output", err)
	}
	m.Path = path

	f.logger.Debug("Blame map fetched", map[string]interface{}{
		"path":    path,
		"lines":   m.LineCount(),
		"commits": len(m.Commits),
	})

	return m, nil
}

// Show returns a file's content at a specific revision via `git show`.
// Revision content is immutable, so failures are not retried.
func (f *Fetcher) Show(ctx context.Context, revision, path string) ([]byte, error) {
	output, err := f.run(ctx, "show", revision+":"+path)
	if err != nil {
		return nil, errors.New(errors.RevisionFetchFailed, "Failed to fetch file content at revision", err).
			WithDetails(map[string]string{
				"revision": revision,
				"file":     path,
			})
	}
	return output, nil
}

// run executes a git command with the configured timeout.
func (f *Fetcher) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = f.repoRoot

	f.logger.Debug("Executing git command", map[string]interface{}{
		"args":    args,
		"timeout": f.timeout.String(),
	})

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.Timeout, "Git command timed out", err)
		}

		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, errors.New(errors.BlameUnavailable, "Git command failed", err).
				WithDetails(map[string]interface{}{
					"args":   args,
					"stderr": string(exitErr.Stderr),
				})
		}

		return nil, errors.New(errors.InternalError, "Failed to execute git command", err)
	}

	return output, nil
}
