package repostate

import (
	"os"
	"path/filepath"
	"testing"

	"lens/internal/testutil"
)

// initTestRepo creates a throwaway git repository with one committed file.
func initTestRepo(t *testing.T) *testutil.GitRepo {
	t.Helper()

	repo := testutil.NewGitRepo(t)
	repo.WriteFile("main.go", "package main\n")
	repo.Commit("initial")
	return repo
}

func TestIsGitRepository(t *testing.T) {
	repo := initTestRepo(t)

	if !IsGitRepository(repo.Root) {
		t.Error("Expected initialized repo to be detected")
	}
	if IsGitRepository(t.TempDir()) {
		t.Error("Expected plain directory to not be a repository")
	}
}

func TestHeadCommit(t *testing.T) {
	repo := initTestRepo(t)

	head, err := HeadCommit(repo.Root)
	if err != nil {
		t.Fatalf("HeadCommit failed: %v", err)
	}
	if len(head) != 40 {
		t.Errorf("Expected 40-char commit hash, got %q", head)
	}
}

func TestIsFileDirty(t *testing.T) {
	repo := initTestRepo(t)

	dirty, err := IsFileDirty(repo.Root, "main.go")
	if err != nil {
		t.Fatalf("IsFileDirty failed: %v", err)
	}
	if dirty {
		t.Error("Expected committed file to be clean")
	}

	repo.WriteFile("main.go", "package main\n\nfunc main() {}\n")

	dirty, err = IsFileDirty(repo.Root, "main.go")
	if err != nil {
		t.Fatalf("IsFileDirty failed: %v", err)
	}
	if !dirty {
		t.Error("Expected modified file to be dirty")
	}
}

func TestGetRepoRoot(t *testing.T) {
	repo := initTestRepo(t)
	sub := filepath.Join(repo.Root, "pkg")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := GetRepoRoot(sub)
	if err != nil {
		t.Fatalf("GetRepoRoot failed: %v", err)
	}
	// Resolve symlinks before comparing; macOS tempdirs live under /var -> /private/var.
	wantRoot, _ := filepath.EvalSymlinks(repo.Root)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("Expected root %q, got %q", wantRoot, gotRoot)
	}
}
