//go:build cgo

package symbols

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor extracts symbol ranges from source files using tree-sitter.
type Extractor struct {
	parser *Parser
}

// NewExtractor creates a new symbol extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		parser: NewParser(),
	}
}

// ExtractFile extracts all symbol ranges from a single file, in document
// order. Unsupported languages return an empty list, not an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := LanguageFromExtension(ext)
	if !ok {
		return nil, nil
	}

	return e.ExtractSource(ctx, source, lang)
}

// ExtractSource extracts symbol ranges from source bytes, in document order.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, lang Language) ([]Symbol, error) {
	root, err := e.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	var symbols []Symbol

	// Pre-order walk keeps document order; the enclosing container name is
	// threaded down so methods know their parent.
	var walk func(node *sitter.Node, container string)
	walk = func(node *sitter.Node, container string) {
		if node == nil || ctx.Err() != nil {
			return
		}

		next := container
		if sym, ok := classify(node, source, lang, container); ok {
			symbols = append(symbols, sym)
			if sym.Kind.IsContainer() && sym.Kind != KindPackage {
				next = sym.Name
			}
		}

		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)), next)
		}
	}

	walk(root, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}

// classify maps an AST node to a placement symbol, if it represents one.
func classify(node *sitter.Node, source []byte, lang Language, container string) (Symbol, bool) {
	kind, ok := nodeKind(node, source, lang, container)
	if !ok {
		return Symbol{}, false
	}

	name := nodeName(node, source, lang)
	if name == "" {
		return Symbol{}, false
	}

	if kind == KindMethod && isConstructorName(name, lang) {
		kind = KindConstructor
	}

	return Symbol{
		Name:      name,
		Kind:      kind,
		Container: container,
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}, true
}

// nodeKind determines the placement kind for a node type in a language.
func nodeKind(node *sitter.Node, source []byte, lang Language, container string) (Kind, bool) {
	switch lang {
	case LangGo:
		switch node.Type() {
		case "package_clause":
			return KindPackage, true
		case "function_declaration":
			return KindFunction, true
		case "method_declaration":
			return KindMethod, true
		case "type_spec":
			return goTypeSpecKind(node)
		}

	case LangJavaScript, LangTypeScript, LangTSX:
		switch node.Type() {
		case "class_declaration":
			return KindClass, true
		case "interface_declaration":
			return KindInterface, true
		case "enum_declaration":
			return KindEnum, true
		case "internal_module":
			return KindNamespace, true
		case "function_declaration", "generator_function_declaration":
			return KindFunction, true
		case "method_definition":
			return KindMethod, true
		}

	case LangPython:
		switch node.Type() {
		case "class_definition":
			return KindClass, true
		case "function_definition":
			if container != "" {
				return KindMethod, true
			}
			return KindFunction, true
		}

	case LangRust:
		switch node.Type() {
		case "mod_item":
			return KindModule, true
		case "struct_item":
			return KindStruct, true
		case "enum_item":
			return KindEnum, true
		case "trait_item":
			return KindInterface, true
		case "impl_item":
			return KindClass, true
		case "function_item":
			if container != "" {
				return KindMethod, true
			}
			return KindFunction, true
		}

	case LangJava:
		switch node.Type() {
		case "package_declaration":
			return KindPackage, true
		case "class_declaration":
			return KindClass, true
		case "interface_declaration":
			return KindInterface, true
		case "enum_declaration":
			return KindEnum, true
		case "constructor_declaration":
			return KindConstructor, true
		case "method_declaration":
			return KindMethod, true
		}

	case LangKotlin:
		switch node.Type() {
		case "class_declaration":
			return KindClass, true
		case "object_declaration":
			return KindClass, true
		case "function_declaration":
			if container != "" {
				return KindMethod, true
			}
			return KindFunction, true
		}
	}

	return "", false
}

// goTypeSpecKind distinguishes struct and interface type declarations.
// Other named types (aliases, basic types) are not placement targets.
func goTypeSpecKind(node *sitter.Node) (Kind, bool) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return "", false
	}
	switch typeNode.Type() {
	case "struct_type":
		return KindStruct, true
	case "interface_type":
		return KindInterface, true
	}
	return "", false
}

// nodeName extracts the declared name from a node.
func nodeName(node *sitter.Node, source []byte, lang Language) string {
	if node.Type() == "package_clause" || node.Type() == "package_declaration" {
		// Name is the full "package x" text minus the keyword.
		text := string(source[node.StartByte():node.EndByte()])
		text = strings.TrimSuffix(strings.TrimSpace(text), ";")
		fields := strings.Fields(text)
		if len(fields) >= 2 {
			return fields[len(fields)-1]
		}
		return ""
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return string(source[nameNode.StartByte():nameNode.EndByte()])
	}

	// Rust impl blocks carry the implemented type, not a name field.
	if node.Type() == "impl_item" {
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			if child != nil && child.Type() == "type_identifier" {
				return string(source[child.StartByte():child.EndByte()])
			}
		}
	}

	// Kotlin uses simple_identifier children without a name field.
	if lang == LangKotlin {
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			if child != nil && (child.Type() == "simple_identifier" || child.Type() == "type_identifier") {
				return string(source[child.StartByte():child.EndByte()])
			}
		}
	}

	return ""
}

// isConstructorName reports whether a method name is a constructor by
// convention in the given language.
func isConstructorName(name string, lang Language) bool {
	switch lang {
	case LangJavaScript, LangTypeScript, LangTSX:
		return name == "constructor"
	case LangPython:
		return name == "__init__"
	}
	return false
}

// IsAvailable returns whether symbol extraction is available.
func IsAvailable() bool {
	return true
}
