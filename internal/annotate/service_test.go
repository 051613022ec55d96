package annotate

import (
	"context"
	"testing"
	"time"

	"lens/internal/blame"
	"lens/internal/errors"
	"lens/internal/logging"
	"lens/internal/symbols"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

type fakeBlameSource struct {
	m     *blame.Map
	err   error
	calls int
}

func (f *fakeBlameSource) Blame(ctx context.Context, path string) (*blame.Map, error) {
	f.calls++
	return f.m, f.err
}

type fakeSymbolSource struct {
	syms  []symbols.Symbol
	err   error
	calls int
}

func (f *fakeSymbolSource) SymbolsForFile(ctx context.Context, path string) ([]symbols.Symbol, error) {
	f.calls++
	return f.syms, f.err
}

func TestServicePlacements(t *testing.T) {
	blameSrc := &fakeBlameSource{m: singleAuthorMap("main.go", 10)}
	symbolSrc := &fakeSymbolSource{syms: []symbols.Symbol{
		{Name: "run", Kind: symbols.KindFunction, Line: 3, EndLine: 8},
	}}

	svc := NewService(blameSrc, symbolSrc, DefaultPolicy(), testLogger())

	placements, err := svc.Placements(context.Background(), testDoc("main.go", 10, false))
	if err != nil {
		t.Fatalf("Placements failed: %v", err)
	}
	if len(placements) != 2 {
		t.Fatalf("Expected 2 placements, got %d", len(placements))
	}
	if blameSrc.calls != 1 || symbolSrc.calls != 1 {
		t.Errorf("Expected one call to each source, got blame=%d symbols=%d", blameSrc.calls, symbolSrc.calls)
	}

	resolutions := svc.ResolveAll(placements, baseTime)
	if len(resolutions) != 2 {
		t.Fatalf("Expected 2 resolutions, got %d", len(resolutions))
	}
	if resolutions[0].Title == "" {
		t.Error("Expected a resolved title")
	}
}

func TestServiceSkipsSymbolFetchForFileOnlyPolicy(t *testing.T) {
	blameSrc := &fakeBlameSource{m: singleAuthorMap("main.go", 10)}
	symbolSrc := &fakeSymbolSource{}

	policy := Policy{
		Locations:    []Location{LocationFile},
		RecentChange: KindPolicy{Enabled: true},
	}
	svc := NewService(blameSrc, symbolSrc, policy, testLogger())

	placements, err := svc.Placements(context.Background(), testDoc("main.go", 10, false))
	if err != nil {
		t.Fatalf("Placements failed: %v", err)
	}
	if symbolSrc.calls != 0 {
		t.Errorf("Expected symbol fetch skipped, got %d calls", symbolSrc.calls)
	}
	if len(placements) != 1 || !placements[0].WholeFile {
		t.Errorf("Expected one whole-file placement, got %+v", placements)
	}
}

func TestServiceDegradesOnSymbolError(t *testing.T) {
	blameSrc := &fakeBlameSource{m: singleAuthorMap("main.go", 10)}
	symbolSrc := &fakeSymbolSource{err: errors.New(errors.SymbolsUnavailable, "no parser for language", nil)}

	policy := DefaultPolicy()
	policy.Locations = append(policy.Locations, LocationFile)
	svc := NewService(blameSrc, symbolSrc, policy, testLogger())

	placements, err := svc.Placements(context.Background(), testDoc("main.go", 10, false))
	if err != nil {
		t.Fatalf("Expected degraded pass, got error: %v", err)
	}
	// No symbols, but the whole-file placement still lands.
	if len(placements) != 2 {
		t.Fatalf("Expected whole-file pair, got %d", len(placements))
	}
	if !placements[0].WholeFile {
		t.Errorf("Expected whole-file placement, got %+v", placements[0])
	}
}

func TestServiceDegradesOnBlameError(t *testing.T) {
	// Untracked and binary files blame to an error; that is "no
	// annotations", not a failed pass.
	blameSrc := &fakeBlameSource{err: errors.New(errors.BlameUnavailable, "no such path in HEAD", nil)}
	svc := NewService(blameSrc, &fakeSymbolSource{}, DefaultPolicy(), testLogger())

	placements, err := svc.Placements(context.Background(), testDoc("main.go", 10, false))
	if err != nil {
		t.Fatalf("Expected degraded pass, got error: %v", err)
	}
	if len(placements) != 0 {
		t.Errorf("Expected no placements, got %d", len(placements))
	}
}

func TestServiceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blameSrc := &fakeBlameSource{m: singleAuthorMap("main.go", 10)}
	svc := NewService(blameSrc, &fakeSymbolSource{}, DefaultPolicy(), testLogger())

	placements, err := svc.Placements(ctx, testDoc("main.go", 10, false))
	if err == nil {
		t.Fatal("Expected context error")
	}
	if placements != nil {
		t.Errorf("Expected no placements on cancellation, got %d", len(placements))
	}
}

func TestServiceSubscribe(t *testing.T) {
	svc := NewService(&fakeBlameSource{}, nil, DefaultPolicy(), testLogger())

	ch, cancel := svc.Subscribe()
	defer cancel()

	svc.NotifyChanged("main.go")

	select {
	case path := <-ch:
		if path != "main.go" {
			t.Errorf("Expected main.go notification, got %q", path)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for change notification")
	}
}

func TestServiceSubscribeCancel(t *testing.T) {
	svc := NewService(&fakeBlameSource{}, nil, DefaultPolicy(), testLogger())

	ch, cancel := svc.Subscribe()
	cancel()

	// Notifications after cancel are dropped, and the channel is closed.
	svc.NotifyChanged("main.go")
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}
}
