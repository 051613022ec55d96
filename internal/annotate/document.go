package annotate

import (
	"strings"

	"lens/internal/symbols"
)

// Document describes the file a resolution pass runs against. Line data
// reflects the content the blame map was computed for.
type Document struct {
	Path       string
	LanguageID string
	// Dirty marks unsaved edits; blame data is known stale for dirty
	// documents
	Dirty bool
	// LineCount is the number of lines in the current content
	LineCount int
	// LineLengths holds the character length of each line, for line-end
	// anchor columns; may be nil when content is unavailable
	LineLengths []int
}

// NewDocument builds a Document from file content.
func NewDocument(path string, content []byte, dirty bool) Document {
	lines := strings.Split(string(content), "\n")
	// A trailing newline produces a phantom empty last element.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	lengths := make([]int, len(lines))
	for i, l := range lines {
		lengths[i] = len(strings.TrimRight(l, "\r"))
	}

	return Document{
		Path:        path,
		LanguageID:  symbols.LanguageIDForPath(path),
		Dirty:       dirty,
		LineCount:   len(lines),
		LineLengths: lengths,
	}
}

// lineLength returns the character length of a 0-based line, or 0 when
// content is unavailable.
func (d Document) lineLength(index int) int {
	if index < 0 || index >= len(d.LineLengths) {
		return 0
	}
	return d.LineLengths[index]
}
