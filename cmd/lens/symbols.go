package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var symbolsFormat string

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List the declaration symbols of a file",
	Long: `List the symbols the configured provider extracts from a file, in
document order with their line ranges.

Examples:
  lens symbols internal/api/server.go
  lens symbols main.go --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	path := relPath(repoRoot, args[0])

	source := buildSymbolSource(repoRoot, cfg, logger)
	syms, err := source.SymbolsForFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if symbolsFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(syms); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(syms) == 0 {
		fmt.Println("No symbols.")
		return
	}
	for _, sym := range syms {
		name := sym.Name
		if sym.Container != "" {
			name = sym.Container + "." + name
		}
		fmt.Printf("%4d-%-4d %-12s %s\n", sym.Line, sym.EndLine, sym.Kind, name)
	}
}
