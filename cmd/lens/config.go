package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the repository configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run:   runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate .lens/config.json",
	Run:   runConfigValidate,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .lens/config.json",
	Run:   runInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding config: %v\n", err)
		os.Exit(1)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration is valid.")
}

func runInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()

	configPath := filepath.Join(repoRoot, ".lens", "config.json")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "Config already exists at %s\n", configPath)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = repoRoot
	if err := cfg.Save(repoRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", configPath)
}
