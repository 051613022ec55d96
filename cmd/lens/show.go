package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <revision> <file>",
	Short: "Print a file's content at a revision",
	Long: `Print the content of a file as it existed at the given revision.

Examples:
  lens show HEAD~3 internal/api/server.go
  lens show abc1234 main.go`,
	Args: cobra.ExactArgs(2),
	Run:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	revision := args[0]
	path := relPath(repoRoot, args[1])

	eng, err := buildEngine(repoRoot, cfg, policyFromConfig(repoRoot, cfg), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer eng.cleanup()

	content, err := eng.fetcher.Show(context.Background(), revision, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, _ = os.Stdout.Write(content)
}
