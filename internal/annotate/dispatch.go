package annotate

import (
	"fmt"
	"time"

	"lens/internal/blame"
)

// Action is the editor command attached to a resolved annotation, with the
// arguments the host needs to execute it.
type Action struct {
	Command  ActionCommand `json:"command"`
	Path     string        `json:"path,omitempty"`
	CommitID string        `json:"commitId,omitempty"`
	// StartLine and EndLine are 1-based lines in the blamed commit's version
	// of the file, for history and diff commands
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

// Resolution is a placement resolved to its display form.
type Resolution struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	Action Action `json:"action"`
}

// Resolve computes the placement's title and action, forcing the lazy range
// aggregate on first call. The aggregate is shared with the placement's
// sibling on the same anchor, so the second resolution pays nothing.
func (p *Placement) Resolve(now time.Time) Resolution {
	if p.Dirty {
		return Resolution{
			Kind:   p.Kind,
			Title:  dirtyTitle(p.recentEnabled, p.authorsEnabled),
			Action: Action{Command: CommandNone},
		}
	}

	agg := p.Aggregate()
	if agg.MostRecentCommit == nil {
		return Resolution{Kind: p.Kind, Title: "Unknown", Action: Action{Command: CommandNone}}
	}

	var title string
	switch p.Kind {
	case KindAuthors:
		title = authorsTitle(agg)
	default:
		title = recentChangeTitle(agg.MostRecentCommit, now)
	}
	if p.debug {
		title += p.debugSuffix(agg.MostRecentCommit)
	}

	return Resolution{
		Kind:   p.Kind,
		Title:  title,
		Action: p.action(agg.MostRecentCommit),
	}
}

// dirtyTitle names what unsaved edits made indeterminate, matching the set
// of enabled annotation kinds.
func dirtyTitle(recent, authors bool) string {
	switch {
	case recent && authors:
		return "Unsaved changes (cannot determine recent change or authors)"
	case recent:
		return "Unsaved changes (cannot determine recent change)"
	default:
		return "Unsaved changes (cannot determine authors)"
	}
}

func recentChangeTitle(commit *blame.Commit, now time.Time) string {
	return fmt.Sprintf("%s, %s", commit.Author, relativeTime(commit.AuthoredAt, now))
}

func authorsTitle(agg RangeAggregate) string {
	if !agg.MultiAuthor() {
		return fmt.Sprintf("1 author (%s)", agg.Authors[0].Name)
	}
	return fmt.Sprintf("%d authors (%s and others)", len(agg.Authors), agg.Authors[0].Name)
}

// action binds the placement's configured command to the resolved commit.
// Commands that open a commit summary are meaningless for uncommitted lines
// and degrade to no action.
func (p *Placement) action(commit *blame.Commit) Action {
	cmd := p.command
	if commit.Uncommitted && (cmd == CommandCommitSummary || cmd == CommandCommitFileSummary) {
		cmd = CommandNone
	}

	act := Action{Command: cmd, Path: p.path, CommitID: commit.ID}

	switch cmd {
	case CommandRangeHistory, CommandFileHistory, CommandDiffPrevious:
		// History walks from the blamed commit, which may have moved the
		// lines or the file since.
		act.StartLine, act.EndLine = p.originalRange()
		if commit.PreviousPath != "" {
			act.Path = commit.PreviousPath
		}
	}

	return act
}

// originalRange maps the placement's blame range to 1-based line numbers in
// the attributed commit's version of the file.
func (p *Placement) originalRange() (int, int) {
	start, end := p.BlameStart+1, p.BlameEnd+1
	if l, ok := p.blame.Line(p.BlameStart); ok {
		start = l.OriginalIndex + 1
	}
	if l, ok := p.blame.Line(p.BlameEnd); ok {
		end = l.OriginalIndex + 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// debugSuffix exposes the placement internals in the title, for diagnosing
// anchor and range decisions in a live editor.
func (p *Placement) debugSuffix(commit *blame.Commit) string {
	return fmt.Sprintf(" [%s(%d-%d), lines %d-%d, %s]",
		p.SymbolKind, p.AnchorStartChar, p.AnchorEndChar,
		p.BlameStart+1, p.BlameEnd+1, shortCommitID(commit))
}

func shortCommitID(commit *blame.Commit) string {
	if commit.Uncommitted {
		return "uncommitted"
	}
	if len(commit.ID) > 8 {
		return commit.ID[:8]
	}
	return commit.ID
}

// relativeTime renders a coarse human age for a commit timestamp.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "a minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "an hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "yesterday"
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d < 14*24*time.Hour:
		return "a week ago"
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d weeks ago", int(d.Hours()/(24*7)))
	case d < 60*24*time.Hour:
		return "a month ago"
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%d months ago", int(d.Hours()/(24*30)))
	case d < 2*365*24*time.Hour:
		return "a year ago"
	default:
		return fmt.Sprintf("%d years ago", int(d.Hours()/(24*365)))
	}
}
