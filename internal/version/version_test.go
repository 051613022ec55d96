package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if info == "" {
		t.Error("Expected non-empty version info")
	}
	if !strings.HasPrefix(info, Version) {
		t.Errorf("Expected info to start with %q, got %q", Version, info)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) {
		t.Errorf("Expected full info to contain version %q, got %q", Version, full)
	}
	if !strings.Contains(full, "Commit:") {
		t.Error("Expected full info to contain commit line")
	}
}
