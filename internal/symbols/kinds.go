// Package symbols provides symbol-range extraction for annotation placement.
// Ranges come from tree-sitter parsing (this package) or from a SCIP index
// (internal/scip); both produce the same Symbol shape.
package symbols

import (
	"path/filepath"
	"strings"
)

// Kind classifies a symbol range for placement decisions.
type Kind string

const (
	KindFile        Kind = "file"
	KindPackage     Kind = "package"
	KindModule      Kind = "module"
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindConstructor Kind = "constructor"
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindProperty    Kind = "property"
)

// IsContainer reports whether the kind is a container-style symbol
// (file, package, class-like).
func (k Kind) IsContainer() bool {
	switch k {
	case KindFile, KindPackage, KindClass, KindInterface, KindModule, KindNamespace, KindStruct:
		return true
	}
	return false
}

// IsBlock reports whether the kind is a callable/block-style symbol.
func (k Kind) IsBlock() bool {
	switch k {
	case KindConstructor, KindEnum, KindFunction, KindMethod, KindProperty:
		return true
	}
	return false
}

// Symbol represents an extracted symbol range.
type Symbol struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Container string `json:"container,omitempty"` // Parent class/struct name for methods
	Line      int    `json:"line"`                // Start line (1-indexed)
	EndLine   int    `json:"endLine"`             // End line (1-indexed)
}

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// LanguageFromExtension maps a file extension (with dot, lowercase) to a
// supported language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".go":
		return LangGo, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".py":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	default:
		return "", false
	}
}

// LanguageIDForPath returns the language identifier used for policy lookups
// (quirk registry keys). Unsupported extensions return the bare extension so
// registry entries can still match them.
func LanguageIDForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := LanguageFromExtension(ext); ok {
		return string(lang)
	}
	switch ext {
	case ".cs":
		return "csharp"
	case ".fs", ".fsi", ".fsx":
		return "fsharp"
	}
	return strings.TrimPrefix(ext, ".")
}
