//go:build !cgo

// This stub is used when CGO is not available; symbol extraction degrades to
// an empty list and whole-file annotations still work.

package symbols

import (
	"context"
)

// Extractor extracts symbol ranges from source files using tree-sitter.
// This is a stub implementation when CGO is not available.
type Extractor struct{}

// NewExtractor creates a new symbol extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile extracts all symbol ranges from a single file.
// Returns empty when CGO is not available.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	return nil, nil
}

// ExtractSource extracts symbol ranges from source bytes.
// Returns empty when CGO is not available.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, lang Language) ([]Symbol, error) {
	return nil, nil
}

// IsAvailable returns whether symbol extraction is available.
func IsAvailable() bool {
	return false
}
