package blame

import (
	"context"
	"strings"
	"testing"

	"lens/internal/logging"
	"lens/internal/testutil"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

// initBlameRepo creates a repo with two commits touching the same file.
func initBlameRepo(t *testing.T) *testutil.GitRepo {
	t.Helper()

	repo := testutil.NewGitRepo(t)
	repo.WriteFile("main.go", "package main\n\nfunc main() {}\n")
	repo.Commit("initial")

	repo.WriteFile("main.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	repo.Commit("add body")

	return repo
}

func TestFetcherBlame(t *testing.T) {
	repo := initBlameRepo(t)
	f := NewFetcher(repo.Root, FetcherOptions{}, testLogger())

	m, err := f.Blame(context.Background(), "main.go")
	if err != nil {
		t.Fatalf("Blame failed: %v", err)
	}

	if m.LineCount() != 5 {
		t.Errorf("Expected 5 attributed lines, got %d", m.LineCount())
	}
	if len(m.Commits) != 2 {
		t.Errorf("Expected 2 commits, got %d", len(m.Commits))
	}

	commit, ok := m.CommitForLine(0)
	if !ok {
		t.Fatal("Expected commit for line 0")
	}
	if commit.Author != "Alice" {
		t.Errorf("Expected author Alice, got %q", commit.Author)
	}
	if commit.AuthoredAt.IsZero() {
		t.Error("Expected authored timestamp to be set")
	}
}

func TestFetcherBlameUntrackedFile(t *testing.T) {
	repo := initBlameRepo(t)
	repo.WriteFile("untracked.go", "package main\n")

	f := NewFetcher(repo.Root, FetcherOptions{}, testLogger())
	if _, err := f.Blame(context.Background(), "untracked.go"); err == nil {
		t.Error("Expected error for untracked file")
	}
}

func TestFetcherShow(t *testing.T) {
	repo := initBlameRepo(t)
	f := NewFetcher(repo.Root, FetcherOptions{}, testLogger())

	content, err := f.Show(context.Background(), "HEAD~1", "main.go")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if string(content) != "package main\n\nfunc main() {}\n" {
		t.Errorf("Expected first revision content, got %q", content)
	}
}

func TestFetcherShowBadRevision(t *testing.T) {
	repo := initBlameRepo(t)
	f := NewFetcher(repo.Root, FetcherOptions{}, testLogger())

	_, err := f.Show(context.Background(), "deadbeef", "main.go")
	if err == nil {
		t.Fatal("Expected error for unknown revision")
	}
	if !strings.Contains(err.Error(), "REVISION_FETCH_FAILED") {
		t.Errorf("Expected REVISION_FETCH_FAILED code, got %v", err)
	}
}
