// Package scip provides symbol ranges from a SCIP index, as an alternative
// to tree-sitter parsing for languages without a bundled grammar.
package scip

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"lens/internal/errors"
	"lens/internal/logging"
	"lens/internal/symbols"
)

// Source serves symbol ranges from a SCIP index file. The index is loaded
// lazily on first use and kept in memory.
type Source struct {
	indexPath string
	logger    *logging.Logger

	mu     sync.Mutex
	loaded bool
	docs   map[string]*scippb.Document
}

// NewSource creates a SCIP symbol source for the given index path.
func NewSource(indexPath string, logger *logging.Logger) *Source {
	return &Source{
		indexPath: indexPath,
		logger:    logger.WithComponent("scip"),
	}
}

// SymbolsForFile returns the definition symbol ranges recorded for a file,
// in document order. A file absent from the index yields an empty list.
func (s *Source) SymbolsForFile(ctx context.Context, relPath string) ([]symbols.Symbol, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, ok := s.docs[relPath]
	if !ok {
		return nil, nil
	}

	infoBySymbol := make(map[string]*scippb.SymbolInformation, len(doc.Symbols))
	for _, info := range doc.Symbols {
		infoBySymbol[info.Symbol] = info
	}

	var result []symbols.Symbol
	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
			continue
		}

		info := infoBySymbol[occ.Symbol]
		kind, ok := mapKind(info)
		if !ok {
			continue
		}

		startLine, endLine, ok := occurrenceLines(occ)
		if !ok {
			continue
		}

		result = append(result, symbols.Symbol{
			Name:    displayName(occ.Symbol, info),
			Kind:    kind,
			Line:    startLine + 1,
			EndLine: endLine + 1,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Line < result[j].Line
	})

	return result, nil
}

// load reads and parses the index once.
func (s *Source) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		return errors.New(errors.SymbolsUnavailable,
			fmt.Sprintf("SCIP index not found at %s", s.indexPath), err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return errors.New(errors.SymbolsUnavailable,
			fmt.Sprintf("Failed to parse SCIP index at %s", s.indexPath), err)
	}

	s.docs = make(map[string]*scippb.Document, len(index.Documents))
	for _, doc := range index.Documents {
		s.docs[doc.RelativePath] = doc
	}
	s.loaded = true

	s.logger.Info("SCIP index loaded", map[string]interface{}{
		"path":      s.indexPath,
		"documents": len(s.docs),
	})

	return nil
}

// occurrenceLines extracts 0-based start/end lines from an occurrence,
// preferring the enclosing range (full body) over the name range.
func occurrenceLines(occ *scippb.Occurrence) (int, int, bool) {
	r := occ.EnclosingRange
	if len(r) == 0 {
		r = occ.Range
	}

	// SCIP ranges are [startLine, startChar, endLine, endChar], with the
	// three-element form meaning a single line.
	switch len(r) {
	case 3:
		return int(r[0]), int(r[0]), true
	case 4:
		return int(r[0]), int(r[2]), true
	}
	return 0, 0, false
}

// mapKind translates a SCIP symbol kind into the placement taxonomy.
func mapKind(info *scippb.SymbolInformation) (symbols.Kind, bool) {
	if info == nil {
		return "", false
	}

	switch info.Kind {
	case scippb.SymbolInformation_Class, scippb.SymbolInformation_Object:
		return symbols.KindClass, true
	case scippb.SymbolInformation_Interface, scippb.SymbolInformation_Trait:
		return symbols.KindInterface, true
	case scippb.SymbolInformation_Struct:
		return symbols.KindStruct, true
	case scippb.SymbolInformation_Enum:
		return symbols.KindEnum, true
	case scippb.SymbolInformation_Namespace:
		return symbols.KindNamespace, true
	case scippb.SymbolInformation_Package:
		return symbols.KindPackage, true
	case scippb.SymbolInformation_Module:
		return symbols.KindModule, true
	case scippb.SymbolInformation_Function:
		return symbols.KindFunction, true
	case scippb.SymbolInformation_Method:
		return symbols.KindMethod, true
	case scippb.SymbolInformation_Constructor:
		return symbols.KindConstructor, true
	case scippb.SymbolInformation_Property, scippb.SymbolInformation_Field:
		return symbols.KindProperty, true
	}
	return "", false
}

// displayName prefers the human-readable name over the raw symbol string.
func displayName(symbol string, info *scippb.SymbolInformation) string {
	if info != nil && info.DisplayName != "" {
		return info.DisplayName
	}
	return symbol
}
