package main

import (
	"github.com/spf13/cobra"

	"lens/internal/version"
)

var (
	// repoFlag overrides repository root discovery
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Lens - git authorship annotations for your editor",
	Long: `Lens computes per-symbol authorship annotations from git blame: where to
place them in a document, what each one says (most recent change, distinct
authors), and which editor action it triggers. It runs as a CLI for one-off
queries or as a local HTTP server for editor plugins.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("Lens version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: discovered from the working directory)")
}
