// Package annotate implements the annotation engine: deciding which symbol
// ranges carry an authorship annotation (placement resolution), lazily
// summarizing blame over a line range (aggregation), and turning a resolved
// placement into a display title and an editor action (dispatch).
package annotate

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the two annotation variants.
type Kind int

const (
	// KindRecentChange annotates a range with its most recent commit
	KindRecentChange Kind = iota
	// KindAuthors annotates a range with its distinct author set
	KindAuthors
)

// String returns the kind's stable name.
func (k Kind) String() string {
	switch k {
	case KindRecentChange:
		return "recentChange"
	case KindAuthors:
		return "authors"
	}
	return "unknown"
}

// Location is a placement policy location.
type Location string

const (
	// LocationFile places a single whole-document annotation
	LocationFile Location = "file"
	// LocationContainers places annotations on container symbols
	LocationContainers Location = "containers"
	// LocationBlocks places annotations on callable/block symbols
	LocationBlocks Location = "blocks"
	// LocationCustom places annotations on the customKinds allowlist
	LocationCustom Location = "custom"
)

// ActionCommand selects the editor action attached to a resolved annotation.
type ActionCommand string

const (
	CommandNone                ActionCommand = ""
	CommandAnnotate            ActionCommand = "annotate"
	CommandRangeHistory        ActionCommand = "rangeHistory"
	CommandFileHistory         ActionCommand = "fileHistory"
	CommandDiffPrevious        ActionCommand = "diffPrevious"
	CommandCommitSummary       ActionCommand = "commitSummary"
	CommandCommitFileSummary   ActionCommand = "commitFileSummary"
	CommandFileHistoryPicker   ActionCommand = "fileHistoryPicker"
	CommandBranchHistoryPicker ActionCommand = "branchHistoryPicker"
)

// KindPolicy holds per-annotation-kind settings.
type KindPolicy struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Command ActionCommand `yaml:"command" json:"command"`
}

// Policy is the placement policy for one resolution pass. It is passed
// explicitly into the resolver and never read ambiently.
type Policy struct {
	Locations    []Location `yaml:"locations" json:"locations"`
	CustomKinds  []string   `yaml:"customKinds" json:"customKinds"`
	RecentChange KindPolicy `yaml:"recentChange" json:"recentChange"`
	Authors      KindPolicy `yaml:"authors" json:"authors"`
	Debug        bool       `yaml:"debug" json:"debug"`

	// CollapsedRangeLanguages lists language ids whose symbol provider
	// reports single-line ranges for everything but the file symbol.
	CollapsedRangeLanguages map[string]bool `yaml:"collapsedRangeLanguages,omitempty" json:"collapsedRangeLanguages,omitempty"`
}

// DefaultPolicy returns a policy annotating containers and blocks with both
// annotation kinds.
func DefaultPolicy() Policy {
	return Policy{
		Locations:    []Location{LocationContainers, LocationBlocks},
		RecentChange: KindPolicy{Enabled: true, Command: CommandCommitSummary},
		Authors:      KindPolicy{Enabled: true, Command: CommandRangeHistory},
	}
}

// LoadPolicyFile reads a policy document from a YAML file.
func LoadPolicyFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// hasLocation reports whether the policy includes a location.
func (p Policy) hasLocation(loc Location) bool {
	for _, l := range p.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// allowsCustomKind tests the custom allowlist, case-insensitively.
func (p Policy) allowsCustomKind(kindName string) bool {
	if !p.hasLocation(LocationCustom) {
		return false
	}
	for _, k := range p.CustomKinds {
		if strings.EqualFold(k, kindName) {
			return true
		}
	}
	return false
}

// wantsWholeFile reports whether a whole-document placement is requested,
// either via the file location or a custom allowlist entry meaning "file".
func (p Policy) wantsWholeFile() bool {
	return p.hasLocation(LocationFile) || p.allowsCustomKind("file")
}

// NeedsSymbols reports whether the pass requires a symbol list at all. When
// only the whole-document view is requested the symbol fetch is skipped
// entirely, not merely ignored.
func (p Policy) NeedsSymbols() bool {
	if p.hasLocation(LocationContainers) || p.hasLocation(LocationBlocks) {
		return true
	}
	if p.hasLocation(LocationCustom) {
		for _, k := range p.CustomKinds {
			if !strings.EqualFold(k, "file") {
				return true
			}
		}
	}
	return false
}

// collapsedRanges reports whether the language's symbol ranges are known to
// be collapsed to a single line.
func (p Policy) collapsedRanges(languageID string) bool {
	return p.CollapsedRangeLanguages[languageID]
}
