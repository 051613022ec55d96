package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lens/internal/annotate"
	"lens/internal/blame"
	"lens/internal/config"
	"lens/internal/logging"
	"lens/internal/repostate"
	"lens/internal/scip"
	"lens/internal/storage"
	"lens/internal/symbols"
)

// newLogger builds a logger from the configured format and level.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	level := logging.LogLevel(cfg.Logging.Level)
	if level == "" {
		level = logging.InfoLevel
	}
	return logging.NewLogger(logging.Config{Format: format, Level: level})
}

// mustGetRepoRoot resolves the repository root from --repo or the working
// directory, exiting on failure.
func mustGetRepoRoot() string {
	start := repoFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		start = cwd
	}

	root, err := repostate.GetRepoRoot(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// mustLoadConfig loads and validates the repository configuration.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// relPath converts a user-supplied file argument to a repo-relative path
// with forward slashes.
func relPath(repoRoot, arg string) string {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return arg
	}
	return filepath.ToSlash(rel)
}

// mustResolvePolicy builds the effective placement policy: a --policy YAML
// document when given, the annotations config otherwise. The language quirk
// registry applies either way unless the document sets its own overrides.
func mustResolvePolicy(repoRoot string, cfg *config.Config, policyFile string) annotate.Policy {
	if policyFile == "" {
		return policyFromConfig(repoRoot, cfg)
	}

	p, err := annotate.LoadPolicyFile(policyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading policy: %v\n", err)
		os.Exit(1)
	}
	if p.CollapsedRangeLanguages == nil {
		p.CollapsedRangeLanguages = collapsedLanguages(repoRoot, cfg)
	}
	return p
}

// policyFromConfig builds the placement policy from the annotations config
// and the language quirk registry.
func policyFromConfig(repoRoot string, cfg *config.Config) annotate.Policy {
	p := annotate.Policy{
		CustomKinds: cfg.Annotations.CustomKinds,
		Debug:       cfg.Annotations.Debug,
		RecentChange: annotate.KindPolicy{
			Enabled: cfg.Annotations.RecentChange.Enabled,
			Command: annotate.ActionCommand(cfg.Annotations.RecentChange.Command),
		},
		Authors: annotate.KindPolicy{
			Enabled: cfg.Annotations.Authors.Enabled,
			Command: annotate.ActionCommand(cfg.Annotations.Authors.Command),
		},
	}
	for _, loc := range cfg.Annotations.Locations {
		p.Locations = append(p.Locations, annotate.Location(loc))
	}
	p.CollapsedRangeLanguages = collapsedLanguages(repoRoot, cfg)
	return p
}

// collapsedLanguages flattens the quirk registry into the set of language ids
// with collapsed symbol ranges.
func collapsedLanguages(repoRoot string, cfg *config.Config) map[string]bool {
	quirks := config.DefaultLanguageQuirks()
	if cfg.Languages.RegistryPath != "" {
		path := cfg.Languages.RegistryPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(repoRoot, path)
		}
		if loaded, err := config.LoadLanguageQuirks(path); err == nil {
			quirks = loaded
		} else {
			fmt.Fprintf(os.Stderr, "Warning: could not load language registry: %v\n", err)
		}
	}

	out := make(map[string]bool)
	for lang, q := range quirks {
		if q.CollapsedSymbolRanges {
			out[lang] = true
		}
	}
	return out
}

// engine bundles the wired annotation service with its storage resources.
type engine struct {
	service *annotate.Service
	fetcher *blame.Fetcher
	cache   *storage.BlameCache
	cleanup func()
}

// buildEngine wires the blame fetcher, optional snapshot cache, and symbol
// source into an annotation service running the given policy.
func buildEngine(repoRoot string, cfg *config.Config, policy annotate.Policy, logger *logging.Logger) (*engine, error) {
	fetcher := blame.NewFetcher(repoRoot, blame.FetcherOptions{
		TimeoutMs:        cfg.Blame.TimeoutMs,
		IgnoreWhitespace: cfg.Blame.IgnoreWhitespace,
	}, logger)

	eng := &engine{fetcher: fetcher, cleanup: func() {}}

	var blameSrc annotate.BlameSource = fetcher
	if cfg.Cache.Enabled {
		db, err := storage.Open(filepath.Join(repoRoot, ".lens"), logger)
		if err != nil {
			return nil, err
		}
		cache, err := storage.NewBlameCache(db, time.Duration(cfg.Cache.TtlSeconds)*time.Second, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		head := func() (string, error) { return repostate.HeadCommit(repoRoot) }
		dirty := func(path string) (bool, error) { return repostate.IsFileDirty(repoRoot, path) }

		blameSrc = storage.NewCachedFetcher(fetcher, cache, head, dirty, logger)
		eng.cache = cache
		eng.cleanup = func() {
			cache.Close()
			_ = db.Close()
		}
	}

	symbolSrc := buildSymbolSource(repoRoot, cfg, logger)
	eng.service = annotate.NewService(blameSrc, symbolSrc, policy, logger)
	return eng, nil
}

// buildSymbolSource selects the configured symbol provider.
func buildSymbolSource(repoRoot string, cfg *config.Config, logger *logging.Logger) annotate.SymbolSource {
	if cfg.Symbols.Provider == "scip" {
		path := cfg.Symbols.ScipIndexPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(repoRoot, path)
		}
		return scip.NewSource(path, logger)
	}

	if !symbols.IsAvailable() {
		logger.Warn("Tree-sitter extraction unavailable in this build", nil)
	}
	return &fileSymbolSource{repoRoot: repoRoot, extractor: symbols.NewExtractor()}
}

// fileSymbolSource adapts the tree-sitter extractor to repo-relative paths.
type fileSymbolSource struct {
	repoRoot  string
	extractor *symbols.Extractor
}

func (s *fileSymbolSource) SymbolsForFile(ctx context.Context, path string) ([]symbols.Symbol, error) {
	return s.extractor.ExtractFile(ctx, filepath.Join(s.repoRoot, path))
}
