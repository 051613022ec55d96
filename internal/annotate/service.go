package annotate

import (
	"context"
	"sync"
	"time"

	"lens/internal/blame"
	"lens/internal/logging"
	"lens/internal/symbols"
)

// BlameSource produces blame maps for repository files.
type BlameSource interface {
	Blame(ctx context.Context, path string) (*blame.Map, error)
}

// SymbolSource lists the declaration symbols of a file in document order.
type SymbolSource interface {
	SymbolsForFile(ctx context.Context, path string) ([]symbols.Symbol, error)
}

// Service runs resolution passes for documents and fans out change
// notifications to subscribers.
type Service struct {
	blame   BlameSource
	symbols SymbolSource
	policy  Policy
	logger  *logging.Logger

	mu      sync.Mutex
	subs    map[int]chan string
	nextSub int
}

// NewService wires a resolution service over the given sources.
func NewService(blameSrc BlameSource, symbolSrc SymbolSource, policy Policy, logger *logging.Logger) *Service {
	return &Service{
		blame:   blameSrc,
		symbols: symbolSrc,
		policy:  policy,
		logger:  logger.WithComponent("annotate"),
		subs:    make(map[int]chan string),
	}
}

// Policy returns the service's placement policy.
func (s *Service) Policy() Policy {
	return s.policy
}

// BlameMap returns the raw blame map for a file, bypassing placement
// resolution.
func (s *Service) BlameMap(ctx context.Context, path string) (*blame.Map, error) {
	return s.blame.Blame(ctx, path)
}

// Placements runs one full resolution pass for a document. Blame and
// symbols are fetched concurrently; the symbol fetch is skipped outright
// when the policy only asks for the whole-document view. Source failures
// degrade the pass instead of failing it: a blame failure means no
// annotations (the normal state for untracked and binary files), and a
// symbol failure leaves whatever the policy can place without symbols.
func (s *Service) Placements(ctx context.Context, doc Document) ([]*Placement, error) {
	var (
		wg      sync.WaitGroup
		bm      *blame.Map
		bmErr   error
		syms    []symbols.Symbol
		symsErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		bm, bmErr = s.blame.Blame(ctx, doc.Path)
	}()

	if s.policy.NeedsSymbols() && s.symbols != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syms, symsErr = s.symbols.SymbolsForFile(ctx, doc.Path)
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bmErr != nil {
		s.logger.Warn("Blame unavailable, returning no placements", map[string]interface{}{
			"file":  doc.Path,
			"error": bmErr.Error(),
		})
		return nil, nil
	}
	if symsErr != nil {
		s.logger.Warn("Symbol listing failed, continuing without symbols", map[string]interface{}{
			"file":  doc.Path,
			"error": symsErr.Error(),
		})
		syms = nil
	}

	placements, err := Resolve(ctx, doc, syms, bm, s.policy)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Resolved placements", map[string]interface{}{
		"file":    doc.Path,
		"symbols": len(syms),
		"count":   len(placements),
		"dirty":   doc.Dirty,
	})
	return placements, nil
}

// ResolveAll forces every placement's title and action at once, for hosts
// that do not resolve lazily.
func (s *Service) ResolveAll(placements []*Placement, now time.Time) []Resolution {
	out := make([]Resolution, len(placements))
	for i, p := range placements {
		out[i] = p.Resolve(now)
	}
	return out
}

// Subscribe registers a change listener. The returned cancel function must
// be called to release the subscription. Slow listeners miss notifications
// instead of blocking the notifier.
func (s *Service) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 16)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// NotifyChanged tells subscribers that a file's history-relevant state
// changed and any cached placements for it are stale.
func (s *Service) NotifyChanged(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- path:
		default:
		}
	}
}
