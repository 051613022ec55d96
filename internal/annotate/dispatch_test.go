package annotate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"lens/internal/blame"
	"lens/internal/symbols"
)

func TestResolveRecentChangeTitle(t *testing.T) {
	// One author, last touched 30 hours ago: the canonical whole-file case.
	doc := testDoc("main.go", 10, false)
	policy := Policy{
		Locations:    []Location{LocationFile},
		RecentChange: KindPolicy{Enabled: true, Command: CommandCommitSummary},
		Authors:      KindPolicy{Enabled: true, Command: CommandRangeHistory},
	}

	placements, err := Resolve(context.Background(), doc, nil, singleAuthorMap("main.go", 10), policy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(placements) != 2 {
		t.Fatalf("Expected 2 placements, got %d", len(placements))
	}

	res := placements[0].Resolve(baseTime)
	if res.Title != "Alice, yesterday" {
		t.Errorf("Expected %q, got %q", "Alice, yesterday", res.Title)
	}
	if res.Action.Command != CommandCommitSummary || res.Action.CommitID != "a1" {
		t.Errorf("Unexpected action: %+v", res.Action)
	}

	authors := placements[1].Resolve(baseTime)
	if authors.Title != "1 author (Alice)" {
		t.Errorf("Expected %q, got %q", "1 author (Alice)", authors.Title)
	}
}

func TestResolveConcurrent(t *testing.T) {
	// Descriptors held across HTTP requests are resolved from handler
	// goroutines; concurrent resolution must agree and fill the memoized
	// aggregate exactly once.
	doc := testDoc("main.go", 10, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 3, EndLine: 8}}

	placements, err := Resolve(context.Background(), doc, syms, singleAuthorMap("main.go", 10), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(placements) == 0 {
		t.Fatal("Expected placements")
	}

	p := placements[0]
	results := make([]Resolution, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Resolve(baseTime)
		}(i)
	}
	wg.Wait()

	for i, r := range results[1:] {
		if r != results[0] {
			t.Errorf("Resolution %d diverged: %+v vs %+v", i+1, r, results[0])
		}
	}
}

func TestResolveAuthorsTitleMulti(t *testing.T) {
	a := makeCommit("a1", "Alice", "alice@example.com", baseTime.Add(-50*time.Hour))
	b := makeCommit("b2", "Bob", "bob@example.com", baseTime.Add(-10*time.Hour))
	c := makeCommit("c3", "Carol", "carol@example.com", baseTime.Add(-5*time.Hour))
	bm := makeMap("main.go", []*blame.Commit{a, b, c, a})

	doc := testDoc("main.go", 4, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 1, EndLine: 4}}

	placements, err := Resolve(context.Background(), doc, syms, bm, DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res := placements[1].Resolve(baseTime)
	if res.Kind != KindAuthors {
		t.Fatalf("Expected authors placement, got %v", res.Kind)
	}
	if res.Title != "3 authors (Alice and others)" {
		t.Errorf("Expected %q, got %q", "3 authors (Alice and others)", res.Title)
	}
}

func TestResolveDirtyTitles(t *testing.T) {
	tests := []struct {
		name    string
		recent  bool
		authors bool
		want    string
	}{
		{"both", true, true, "Unsaved changes (cannot determine recent change or authors)"},
		{"recent only", true, false, "Unsaved changes (cannot determine recent change)"},
		{"authors only", false, true, "Unsaved changes (cannot determine authors)"},
	}

	doc := testDoc("main.go", 10, true)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 3, EndLine: 8}}
	bm := singleAuthorMap("main.go", 10)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			policy.RecentChange.Enabled = tt.recent
			policy.Authors.Enabled = tt.authors

			placements, err := Resolve(context.Background(), doc, syms, bm, policy)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if len(placements) != 1 {
				t.Fatalf("Expected one degraded placement, got %d", len(placements))
			}

			res := placements[0].Resolve(baseTime)
			if res.Title != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, res.Title)
			}
			if res.Action.Command != CommandNone {
				t.Errorf("Expected no action for a dirty placement, got %q", res.Action.Command)
			}
		})
	}
}

func TestResolveUncommittedSuppressesSummary(t *testing.T) {
	unc := makeCommit(blame.UncommittedID, "You", "", baseTime.Add(-time.Minute))
	bm := makeMap("main.go", []*blame.Commit{unc, unc, unc, unc})

	doc := testDoc("main.go", 4, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 1, EndLine: 4}}

	policy := DefaultPolicy()
	policy.RecentChange.Command = CommandCommitSummary

	placements, err := Resolve(context.Background(), doc, syms, bm, policy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res := placements[0].Resolve(baseTime)
	if res.Action.Command != CommandNone {
		t.Errorf("Expected commit summary suppressed for uncommitted lines, got %q", res.Action.Command)
	}
	if !strings.HasPrefix(res.Title, "You, ") {
		t.Errorf("Unexpected title for uncommitted range: %q", res.Title)
	}
}

func TestResolveHistoryActionUsesOriginalLines(t *testing.T) {
	a := makeCommit("a1", "Alice", "alice@example.com", baseTime.Add(-3*time.Hour))
	a.PreviousPath = "old/name.go"
	bm := &blame.Map{
		Path:     "main.go",
		Revision: "HEAD",
		Commits:  map[string]*blame.Commit{"a1": a},
	}
	// Lines moved down by 2 since the blamed commit.
	for i := 0; i < 6; i++ {
		bm.Lines = append(bm.Lines, blame.Line{Index: i, OriginalIndex: i + 2, CommitID: "a1"})
	}

	doc := testDoc("main.go", 6, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 2, EndLine: 5}}

	policy := DefaultPolicy()
	policy.RecentChange.Command = CommandRangeHistory

	placements, err := Resolve(context.Background(), doc, syms, bm, policy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res := placements[0].Resolve(baseTime)
	if res.Action.Command != CommandRangeHistory {
		t.Fatalf("Unexpected action: %+v", res.Action)
	}
	// 0-based current range 1-4 maps to 1-based original lines 4-7.
	if res.Action.StartLine != 4 || res.Action.EndLine != 7 {
		t.Errorf("Expected original lines 4-7, got %d-%d", res.Action.StartLine, res.Action.EndLine)
	}
	if res.Action.Path != "old/name.go" {
		t.Errorf("Expected pre-rename path, got %q", res.Action.Path)
	}
}

func TestResolveDebugSuffix(t *testing.T) {
	doc := testDoc("main.go", 10, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 3, EndLine: 8}}

	policy := DefaultPolicy()
	policy.Debug = true

	placements, err := Resolve(context.Background(), doc, syms, singleAuthorMap("main.go", 10), policy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res := placements[0].Resolve(baseTime)
	if !strings.Contains(res.Title, "[function(") {
		t.Errorf("Expected symbol kind in debug suffix, got %q", res.Title)
	}
	if !strings.Contains(res.Title, "lines 3-8") {
		t.Errorf("Expected 1-based line range in debug suffix, got %q", res.Title)
	}
	if !strings.Contains(res.Title, "a1") {
		t.Errorf("Expected commit id in debug suffix, got %q", res.Title)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	doc := testDoc("main.go", 10, false)
	syms := []symbols.Symbol{{Name: "run", Kind: symbols.KindFunction, Line: 3, EndLine: 8}}

	placements, err := Resolve(context.Background(), doc, syms, singleAuthorMap("main.go", 10), DefaultPolicy())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	first := placements[0].Resolve(baseTime)
	second := placements[0].Resolve(baseTime)
	if first != second {
		t.Errorf("Expected identical resolutions, got %+v then %+v", first, second)
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{90 * time.Second, "a minute ago"},
		{10 * time.Minute, "10 minutes ago"},
		{90 * time.Minute, "an hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{30 * time.Hour, "yesterday"},
		{3 * 24 * time.Hour, "3 days ago"},
		{8 * 24 * time.Hour, "a week ago"},
		{21 * 24 * time.Hour, "3 weeks ago"},
		{45 * 24 * time.Hour, "a month ago"},
		{200 * 24 * time.Hour, "6 months ago"},
		{400 * 24 * time.Hour, "a year ago"},
		{900 * 24 * time.Hour, "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := relativeTime(baseTime.Add(-tt.age), baseTime)
			if got != tt.want {
				t.Errorf("relativeTime(-%v) = %q, want %q", tt.age, got, tt.want)
			}
		})
	}
}
