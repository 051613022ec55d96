package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var blameFormat string

var blameCmd = &cobra.Command{
	Use:   "blame <file>",
	Short: "Print the blame map for a file",
	Long: `Print per-line commit attribution for a file, as computed from
git blame --porcelain.

Examples:
  lens blame internal/api/server.go
  lens blame main.go --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runBlame,
}

func init() {
	blameCmd.Flags().StringVar(&blameFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(blameCmd)
}

func runBlame(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	path := relPath(repoRoot, args[0])

	eng, err := buildEngine(repoRoot, cfg, policyFromConfig(repoRoot, cfg), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer eng.cleanup()

	m, err := eng.service.BlameMap(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if blameFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for _, line := range m.Lines {
		commit, ok := m.Commit(line.CommitID)
		if !ok {
			continue
		}
		sha := commit.ID
		if len(sha) > 8 {
			sha = sha[:8]
		}
		if commit.Uncommitted {
			sha = "00000000"
		}
		fmt.Printf("%4d  %s  %-20s %s\n",
			line.Index+1, sha, commit.Author, commit.AuthoredAt.Format("2006-01-02"))
	}
}
