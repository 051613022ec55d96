package blame

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"time"
)

// ParsePorcelain parses `git blame --porcelain` output into a Map.
//
// Porcelain output emits a header line per source line:
//
//	<40-hex sha> <original line> <final line> [<group size>]
//
// followed by commit metadata (only on the sha's first appearance) and the
// tab-prefixed line content. Commits are deduplicated by sha; every Line in
// the result references an entry in the commit table.
func ParsePorcelain(output []byte) (*Map, error) {
	m := &Map{
		Commits: make(map[string]*Commit),
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var current *Commit

	for scanner.Scan() {
		line := scanner.Text()

		// Tab-prefixed lines are source content, not metadata.
		if strings.HasPrefix(line, "\t") {
			continue
		}

		if sha, origLine, finalLine, ok := parseHeader(line); ok {
			commit, exists := m.Commits[sha]
			if !exists {
				commit = &Commit{
					ID:          sha,
					Uncommitted: isUncommittedID(sha),
				}
				m.Commits[sha] = commit
			}
			current = commit

			// Lines are stored at their final-line slot so positional
			// lookups and Line.Index agree even when a group starts past
			// line 1.
			idx := finalLine - 1
			if idx < 0 {
				continue
			}
			for len(m.Lines) <= idx {
				m.Lines = append(m.Lines, Line{Index: len(m.Lines)})
			}
			m.Lines[idx] = Line{
				Index:         idx,
				OriginalIndex: origLine - 1,
				CommitID:      sha,
			}
			continue
		}

		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "author "):
			current.Author = strings.TrimPrefix(line, "author ")
		case strings.HasPrefix(line, "author-mail "):
			mail := strings.TrimPrefix(line, "author-mail ")
			current.AuthorEmail = strings.Trim(mail, "<>")
		case strings.HasPrefix(line, "author-time "):
			if ts, err := strconv.ParseInt(strings.TrimPrefix(line, "author-time "), 10, 64); err == nil {
				current.AuthoredAt = time.Unix(ts, 0).UTC()
			}
		case strings.HasPrefix(line, "summary "):
			current.Summary = strings.TrimPrefix(line, "summary ")
		case strings.HasPrefix(line, "previous "):
			// "previous <sha> <filename>" records a rename/move
			rest := strings.TrimPrefix(line, "previous ")
			if idx := strings.IndexByte(rest, ' '); idx > 0 {
				current.PreviousPath = rest[idx+1:]
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// parseHeader parses a porcelain group header. Returns ok=false for
// metadata lines.
func parseHeader(line string) (sha string, origLine, finalLine int, ok bool) {
	if len(line) < 40 || !isHexString(line[:40]) {
		return "", 0, 0, false
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", 0, 0, false
	}

	orig, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, 0, false
	}
	final, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", 0, 0, false
	}

	return fields[0], orig, final, true
}

// isHexString checks that s consists only of hex digits.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
