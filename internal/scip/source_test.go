package scip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"lens/internal/logging"
	"lens/internal/symbols"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

// writeTestIndex builds a minimal SCIP index with one document and two
// definition occurrences.
func writeTestIndex(t *testing.T) string {
	t.Helper()

	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			ToolInfo: &scippb.ToolInfo{Name: "test-indexer", Version: "0.0.1"},
		},
		Documents: []*scippb.Document{
			{
				RelativePath: "pkg/server.go",
				Symbols: []*scippb.SymbolInformation{
					{Symbol: "sym/Server#", Kind: scippb.SymbolInformation_Struct, DisplayName: "Server"},
					{Symbol: "sym/Server#Start().", Kind: scippb.SymbolInformation_Method, DisplayName: "Start"},
					{Symbol: "sym/localVar.", Kind: scippb.SymbolInformation_Variable, DisplayName: "localVar"},
				},
				Occurrences: []*scippb.Occurrence{
					{
						Symbol:         "sym/Server#Start().",
						SymbolRoles:    int32(scippb.SymbolRole_Definition),
						Range:          []int32{10, 0, 10, 5},
						EnclosingRange: []int32{10, 0, 14, 1},
					},
					{
						Symbol:      "sym/Server#",
						SymbolRoles: int32(scippb.SymbolRole_Definition),
						Range:       []int32{4, 5, 10},
					},
					{
						// Reference occurrence, must be ignored.
						Symbol:      "sym/Server#",
						SymbolRoles: 0,
						Range:       []int32{20, 0, 6},
					},
				},
			},
		},
	}

	data, err := proto.Marshal(index)
	if err != nil {
		t.Fatalf("Failed to marshal test index: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.scip")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSymbolsForFile(t *testing.T) {
	src := NewSource(writeTestIndex(t), testLogger())

	syms, err := src.SymbolsForFile(context.Background(), "pkg/server.go")
	if err != nil {
		t.Fatalf("SymbolsForFile failed: %v", err)
	}

	if len(syms) != 2 {
		t.Fatalf("Expected 2 definition symbols, got %d: %+v", len(syms), syms)
	}

	// Sorted by start line: Server (line 5) before Start (line 11).
	if syms[0].Name != "Server" || syms[0].Kind != symbols.KindStruct {
		t.Errorf("Expected Server struct first, got %+v", syms[0])
	}
	if syms[0].Line != 5 || syms[0].EndLine != 5 {
		t.Errorf("Expected single-line range 5-5 for Server, got %d-%d", syms[0].Line, syms[0].EndLine)
	}

	if syms[1].Name != "Start" || syms[1].Kind != symbols.KindMethod {
		t.Errorf("Expected Start method second, got %+v", syms[1])
	}
	// Enclosing range wins over the name range.
	if syms[1].Line != 11 || syms[1].EndLine != 15 {
		t.Errorf("Expected enclosing range 11-15 for Start, got %d-%d", syms[1].Line, syms[1].EndLine)
	}
}

func TestSymbolsForFileNotInIndex(t *testing.T) {
	src := NewSource(writeTestIndex(t), testLogger())

	syms, err := src.SymbolsForFile(context.Background(), "missing.go")
	if err != nil {
		t.Fatalf("SymbolsForFile failed: %v", err)
	}
	if len(syms) != 0 {
		t.Errorf("Expected no symbols for unindexed file, got %+v", syms)
	}
}

func TestMissingIndex(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "nope.scip"), testLogger())

	if _, err := src.SymbolsForFile(context.Background(), "pkg/server.go"); err == nil {
		t.Error("Expected error for missing index file")
	}
}
