// Package blame produces and models per-line authorship attribution for a
// file's current content. A Map is built once per file-content fetch and
// never mutated in place; document changes replace it wholesale.
package blame

import (
	"strings"
	"time"
)

// UncommittedID is the commit id git assigns to lines that are not yet
// committed (working tree or index only).
const UncommittedID = "0000000000000000000000000000000000000000"

// Line is a single physical line's attribution.
type Line struct {
	// Index is the 0-based line number in the current revision
	Index int `json:"index"`
	// OriginalIndex is the 0-based line number in the commit that last
	// touched the line, which differs from Index when later commits moved it
	OriginalIndex int `json:"originalIndex"`
	// CommitID references a Commit in the owning Map
	CommitID string `json:"commitId"`
}

// Commit is a deduplicated commit record referenced by one or more Lines.
type Commit struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail"`
	AuthoredAt  time.Time `json:"authoredAt"`
	Summary     string    `json:"summary,omitempty"`
	// PreviousPath is the file's path before a rename recorded by this
	// commit, empty when the file was not renamed
	PreviousPath string `json:"previousPath,omitempty"`
	// Uncommitted marks the synthetic all-zero commit for unsaved lines
	Uncommitted bool `json:"uncommitted,omitempty"`
}

// AuthorKey returns the normalized identity key for the commit's author:
// "name <email>" when an email is present, the bare name otherwise.
// Comparison is case-sensitive; two spellings are two identities.
func (c *Commit) AuthorKey() string {
	if c.AuthorEmail != "" {
		return c.Author + " <" + c.AuthorEmail + ">"
	}
	return c.Author
}

// Map is one file revision's complete blame snapshot: an ordered sequence of
// line attributions plus the commits they reference. Read-only after
// construction.
type Map struct {
	Path     string             `json:"path"`
	Revision string             `json:"revision"`
	Lines    []Line             `json:"lines"`
	Commits  map[string]*Commit `json:"commits"`
}

// LineCount returns the number of attributed lines.
func (m *Map) LineCount() int {
	if m == nil {
		return 0
	}
	return len(m.Lines)
}

// IsEmpty reports whether the map carries no attribution at all.
func (m *Map) IsEmpty() bool {
	return m.LineCount() == 0
}

// Line returns the attribution for the given 0-based line index.
func (m *Map) Line(index int) (Line, bool) {
	if m == nil || index < 0 || index >= len(m.Lines) {
		return Line{}, false
	}
	return m.Lines[index], true
}

// Commit returns the commit record for the given id.
func (m *Map) Commit(id string) (*Commit, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.Commits[id]
	return c, ok
}

// CommitForLine returns the commit that last touched the given 0-based line.
func (m *Map) CommitForLine(index int) (*Commit, bool) {
	line, ok := m.Line(index)
	if !ok {
		return nil, false
	}
	return m.Commit(line.CommitID)
}

// isUncommittedID reports whether id is the all-zero uncommitted marker.
func isUncommittedID(id string) bool {
	return id == UncommittedID || strings.Trim(id, "0") == ""
}
