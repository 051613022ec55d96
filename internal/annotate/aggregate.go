package annotate

import (
	"sync"

	"lens/internal/blame"
)

// Author is one distinct author identity within a range.
type Author struct {
	// Name is the display name from the commit record
	Name string
	// Key is the normalized identity ("name <email>" or bare name)
	Key string
}

// RangeAggregate summarizes blame over a line range: the most recently
// authored commit intersecting it, and the distinct authors in first-seen
// order.
type RangeAggregate struct {
	MostRecentCommit *blame.Commit
	Authors          []Author
}

// MultiAuthor reports whether more than one identity touched the range.
func (a RangeAggregate) MultiAuthor() bool {
	return len(a.Authors) > 1
}

// aggregateCell memoizes one range's aggregate. The cell is filled at most
// once, on first resolution, never at resolver-pass time. Descriptors held
// across HTTP requests may be resolved from concurrent handler goroutines,
// so the fill is guarded.
type aggregateCell struct {
	once sync.Once
	agg  RangeAggregate
}

// get computes the aggregate on first call and returns the memoized value
// thereafter.
func (c *aggregateCell) get(m *blame.Map, start, end int) RangeAggregate {
	c.once.Do(func() {
		c.agg = computeAggregate(m, start, end)
	})
	return c.agg
}

// computeAggregate scans the blame lines within [start, end] (0-based,
// inclusive). The most recent commit is tracked with an at-least comparison,
// so on exact timestamp ties the later line in ascending scan order wins.
// Author identities accumulate in first-seen order.
func computeAggregate(m *blame.Map, start, end int) RangeAggregate {
	var agg RangeAggregate
	seen := make(map[string]bool)

	for i := start; i <= end; i++ {
		commit, ok := m.CommitForLine(i)
		if !ok {
			continue
		}

		if agg.MostRecentCommit == nil || !commit.AuthoredAt.Before(agg.MostRecentCommit.AuthoredAt) {
			agg.MostRecentCommit = commit
		}

		key := commit.AuthorKey()
		if !seen[key] {
			seen[key] = true
			agg.Authors = append(agg.Authors, Author{Name: commit.Author, Key: key})
		}
	}

	return agg
}
