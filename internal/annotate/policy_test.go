package annotate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicyFile(t *testing.T) {
	doc := `locations: [containers, custom]
customKinds: [function]
recentChange:
  enabled: true
  command: commitSummary
authors:
  enabled: false
debug: true
`
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("LoadPolicyFile failed: %v", err)
	}

	if !p.hasLocation(LocationContainers) || !p.hasLocation(LocationCustom) {
		t.Errorf("Expected containers and custom locations, got %v", p.Locations)
	}
	if !p.allowsCustomKind("Function") {
		t.Error("Expected customKinds match to be case-insensitive")
	}
	if !p.RecentChange.Enabled || p.RecentChange.Command != CommandCommitSummary {
		t.Errorf("Unexpected recentChange policy: %+v", p.RecentChange)
	}
	if p.Authors.Enabled {
		t.Error("Expected authors to be disabled")
	}
	if !p.Debug {
		t.Error("Expected debug to be set")
	}
}

func TestLoadPolicyFileMissing(t *testing.T) {
	if _, err := LoadPolicyFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing policy file")
	}
}

func TestPolicyNeedsSymbols(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   bool
	}{
		{"default", DefaultPolicy(), true},
		{"file only", Policy{Locations: []Location{LocationFile}}, false},
		{"custom file alias", Policy{Locations: []Location{LocationCustom}, CustomKinds: []string{"file"}}, false},
		{"custom kinds", Policy{Locations: []Location{LocationCustom}, CustomKinds: []string{"function"}}, true},
		{"empty", Policy{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.NeedsSymbols(); got != tt.want {
				t.Errorf("NeedsSymbols() = %v, want %v", got, tt.want)
			}
		})
	}
}
