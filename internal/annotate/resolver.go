package annotate

import (
	"context"

	"lens/internal/blame"
	"lens/internal/symbols"
)

// Placement is a computed decision to show one annotation at one anchor
// point. It is inert until resolved: the range aggregate behind it is not
// computed until the host asks for the placement's title and action, and is
// memoized on the descriptor thereafter.
type Placement struct {
	Kind       Kind         `json:"kind"`
	SymbolKind symbols.Kind `json:"symbolKind"`
	SymbolName string       `json:"symbolName,omitempty"`

	// AnchorLine is the 0-based line the annotation renders on; the column
	// span sits past the line's last character
	AnchorLine      int `json:"anchorLine"`
	AnchorStartChar int `json:"anchorStartChar"`
	AnchorEndChar   int `json:"anchorEndChar"`

	// BlameStart and BlameEnd bound the aggregated range, 0-based inclusive
	BlameStart int `json:"blameStart"`
	BlameEnd   int `json:"blameEnd"`

	// WholeFile marks ranges widened to cover the entire document
	WholeFile bool `json:"wholeFile"`
	// Dirty carries the document's unsaved-edits state into resolution
	Dirty bool `json:"dirty"`

	path           string
	command        ActionCommand
	debug          bool
	recentEnabled  bool
	authorsEnabled bool

	blame *blame.Map
	cell  *aggregateCell
}

// Aggregate returns the placement's range aggregate, computing it on first
// call. Repeat calls return the memoized value.
func (p *Placement) Aggregate() RangeAggregate {
	return p.cell.get(p.blame, p.BlameStart, p.BlameEnd)
}

// Resolve walks the symbol list once, in document order, and produces the
// deduplicated placement descriptors for a document. An empty or absent
// blame map short-circuits to no placements: there is nothing meaningful to
// annotate. A cancelled context produces no descriptors and no side effects.
func Resolve(ctx context.Context, doc Document, syms []symbols.Symbol, bm *blame.Map, policy Policy) ([]*Placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bm.IsEmpty() {
		return nil, nil
	}

	var placements []*Placement
	lastAnchor := -1
	lineZeroTaken := false

	for _, sym := range syms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !symbolEligible(sym.Kind, policy) {
			continue
		}

		anchorLine := sym.Line - 1
		if anchorLine < 0 || anchorLine >= doc.LineCount {
			continue
		}
		// At most one descriptor pair per line, in document order.
		if anchorLine == lastAnchor {
			continue
		}

		start, end := anchorLine, sym.EndLine-1
		whole := false
		// File and package annotations summarize whole-file history, not
		// just the declaration line.
		if sym.Kind == symbols.KindFile || sym.Kind == symbols.KindPackage {
			start, end = 0, doc.LineCount-1
			whole = true
		}
		if end >= doc.LineCount {
			end = doc.LineCount - 1
		}
		if end < start {
			end = start
		}

		pair := emitPair(doc, policy, bm, sym.Kind, sym.Name, anchorLine, start, end, whole)
		if len(pair) == 0 {
			continue
		}
		placements = append(placements, pair...)
		lastAnchor = anchorLine
		if anchorLine == 0 {
			lineZeroTaken = true
		}
	}

	// Synthesize the whole-document placement when requested and line 0 is
	// still free.
	if policy.wantsWholeFile() && !lineZeroTaken && doc.LineCount > 0 {
		pair := emitPair(doc, policy, bm, symbols.KindFile, "", 0, 0, doc.LineCount-1, true)
		placements = append(placements, pair...)
	}

	return placements, nil
}

// symbolEligible classifies a symbol kind against the policy locations, with
// the custom allowlist as a fallback test for any kind not otherwise
// matched.
func symbolEligible(kind symbols.Kind, policy Policy) bool {
	if kind.IsContainer() && policy.hasLocation(LocationContainers) {
		return true
	}
	if kind.IsBlock() && policy.hasLocation(LocationBlocks) {
		return true
	}
	return policy.allowsCustomKind(string(kind))
}

// emitPair produces the recent-change and authors descriptors for one
// anchor, sharing a single lazy aggregate cell. When both kinds land on the
// same line they take adjacent, non-overlapping column offsets.
func emitPair(doc Document, policy Policy, bm *blame.Map, kind symbols.Kind, name string, anchorLine, start, end int, whole bool) []*Placement {
	cell := &aggregateCell{}
	base := Placement{
		SymbolKind:     kind,
		SymbolName:     name,
		AnchorLine:     anchorLine,
		BlameStart:     start,
		BlameEnd:       end,
		WholeFile:      whole,
		Dirty:          doc.Dirty,
		path:           doc.Path,
		debug:          policy.Debug,
		recentEnabled:  policy.RecentChange.Enabled,
		authorsEnabled: policy.Authors.Enabled,
		blame:          bm,
		cell:           cell,
	}

	var out []*Placement
	col := doc.lineLength(anchorLine)

	// A dirty document keeps a single degraded descriptor per anchor. Its
	// title reports the staleness and it carries no action.
	if doc.Dirty {
		if !policy.RecentChange.Enabled && !policy.Authors.Enabled {
			return nil
		}
		p := base
		p.Kind = KindRecentChange
		if !policy.RecentChange.Enabled {
			p.Kind = KindAuthors
		}
		p.AnchorStartChar = col
		p.AnchorEndChar = col + 1
		return []*Placement{&p}
	}

	if policy.RecentChange.Enabled {
		p := base
		p.Kind = KindRecentChange
		p.command = policy.RecentChange.Command
		p.AnchorStartChar = col
		p.AnchorEndChar = col + 1
		out = append(out, &p)
		col++
	}

	if policy.Authors.Enabled && authorsEligible(doc, policy, kind, start, end) {
		p := base
		p.Kind = KindAuthors
		p.command = policy.Authors.Command
		p.AnchorStartChar = col
		p.AnchorEndChar = col + 1
		out = append(out, &p)
	}

	return out
}

// authorsEligible applies the single-line gate: authors annotations need a
// multi-line range, unless the language's symbol provider is known to
// collapse every non-file range to one line.
func authorsEligible(doc Document, policy Policy, kind symbols.Kind, start, end int) bool {
	if end > start {
		return true
	}
	return kind != symbols.KindFile && policy.collapsedRanges(doc.LanguageID)
}
