package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete Lens configuration (v1 schema)
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Annotations AnnotationsConfig `json:"annotations" mapstructure:"annotations"`
	Blame       BlameConfig       `json:"blame" mapstructure:"blame"`
	Symbols     SymbolsConfig     `json:"symbols" mapstructure:"symbols"`
	Cache       CacheConfig       `json:"cache" mapstructure:"cache"`
	Watcher     WatcherConfig     `json:"watcher" mapstructure:"watcher"`
	Server      ServerConfig      `json:"server" mapstructure:"server"`
	Languages   LanguagesConfig   `json:"languages" mapstructure:"languages"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// AnnotationsConfig contains the default placement policy
type AnnotationsConfig struct {
	Locations    []string             `json:"locations" mapstructure:"locations"`
	CustomKinds  []string             `json:"customKinds" mapstructure:"customKinds"`
	RecentChange AnnotationKindConfig `json:"recentChange" mapstructure:"recentChange"`
	Authors      AnnotationKindConfig `json:"authors" mapstructure:"authors"`
	Debug        bool                 `json:"debug" mapstructure:"debug"`
}

// AnnotationKindConfig contains per-annotation-kind settings
type AnnotationKindConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Command string `json:"command" mapstructure:"command"`
}

// BlameConfig contains git blame invocation settings
type BlameConfig struct {
	TimeoutMs        int  `json:"timeoutMs" mapstructure:"timeoutMs"`
	IgnoreWhitespace bool `json:"ignoreWhitespace" mapstructure:"ignoreWhitespace"`
}

// SymbolsConfig contains symbol provider settings
type SymbolsConfig struct {
	// Provider selects the symbol source: "treesitter" or "scip"
	Provider      string `json:"provider" mapstructure:"provider"`
	ScipIndexPath string `json:"scipIndexPath" mapstructure:"scipIndexPath"`
}

// CacheConfig contains blame snapshot cache settings
type CacheConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	TtlSeconds int  `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// WatcherConfig contains file watcher settings
type WatcherConfig struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs     int  `json:"debounceMs" mapstructure:"debounceMs"`
	PollIntervalMs int  `json:"pollIntervalMs" mapstructure:"pollIntervalMs"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr        string `json:"addr" mapstructure:"addr"`
	TokenHash   string `json:"tokenHash" mapstructure:"tokenHash"`
	TokenPrefix string `json:"tokenPrefix" mapstructure:"tokenPrefix"`
}

// LanguagesConfig contains the language quirk registry location
type LanguagesConfig struct {
	RegistryPath string `json:"registryPath" mapstructure:"registryPath"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Annotations: AnnotationsConfig{
			Locations:   []string{"containers", "blocks"},
			CustomKinds: []string{},
			RecentChange: AnnotationKindConfig{
				Enabled: true,
				Command: "commitSummary",
			},
			Authors: AnnotationKindConfig{
				Enabled: true,
				Command: "rangeHistory",
			},
			Debug: false,
		},
		Blame: BlameConfig{
			TimeoutMs:        5000,
			IgnoreWhitespace: false,
		},
		Symbols: SymbolsConfig{
			Provider:      "treesitter",
			ScipIndexPath: ".scip/index.scip",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TtlSeconds: 3600,
		},
		Watcher: WatcherConfig{
			Enabled:        true,
			DebounceMs:     500,
			PollIntervalMs: 2000,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7642",
		},
		Languages: LanguagesConfig{
			RegistryPath: "",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .lens/config.json
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 1)
	v.SetDefault("repoRoot", ".")

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".lens"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .lens/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".lens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}

	for _, loc := range c.Annotations.Locations {
		switch loc {
		case "file", "containers", "blocks", "custom":
		default:
			return &ConfigError{Field: "annotations.locations", Message: "unknown location: " + loc}
		}
	}

	switch c.Symbols.Provider {
	case "", "treesitter", "scip":
	default:
		return &ConfigError{Field: "symbols.provider", Message: "unknown provider: " + c.Symbols.Provider}
	}

	if c.Blame.TimeoutMs < 0 {
		return &ConfigError{Field: "blame.timeoutMs", Message: "timeout must not be negative"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
