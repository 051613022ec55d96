package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// LanguageQuirks describes known symbol-provider defects for a language.
type LanguageQuirks struct {
	// CollapsedSymbolRanges marks languages whose symbol provider reports
	// single-line ranges for every symbol kind except the file itself.
	// Resolvers treat container and callable symbols for these languages
	// as multi-line regardless of the reported range.
	CollapsedSymbolRanges bool `toml:"collapsedSymbolRanges"`
}

// languageRegistry is the on-disk shape of languages.toml
type languageRegistry struct {
	Languages map[string]LanguageQuirks `toml:"languages"`
}

// DefaultLanguageQuirks returns the built-in quirk registry. The list is
// known-incomplete; languages.toml extends or overrides it.
func DefaultLanguageQuirks() map[string]LanguageQuirks {
	return map[string]LanguageQuirks{
		"csharp": {CollapsedSymbolRanges: true},
	}
}

// LoadLanguageQuirks loads the quirk registry from a languages.toml file,
// merged over the built-in defaults. A missing path returns the defaults.
func LoadLanguageQuirks(path string) (map[string]LanguageQuirks, error) {
	quirks := DefaultLanguageQuirks()
	if path == "" {
		return quirks, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return quirks, nil
		}
		return nil, err
	}

	var reg languageRegistry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	for lang, q := range reg.Languages {
		quirks[lang] = q
	}

	return quirks, nil
}
