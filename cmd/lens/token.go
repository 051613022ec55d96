package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lens/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the API token for the annotation server",
	Long: `Generate or inspect the bearer token clients use against the local
HTTP server. Only a bcrypt hash is stored in the config; the raw token is
printed once at generation time.

Examples:
  lens token generate
  lens token status`,
}

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API token",
	Long: `Generate a new API token and store its hash in .lens/config.json,
replacing any previous token.

Examples:
  lens token generate`,
	Run: runTokenGenerate,
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is configured",
	Run:   runTokenStatus,
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)
	tokenCmd.AddCommand(tokenStatusCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenGenerate(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	token, prefix, err := auth.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing token: %v\n", err)
		os.Exit(1)
	}

	cfg.Server.TokenHash = hash
	cfg.Server.TokenPrefix = prefix
	if err := cfg.Save(repoRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("New API token generated. Store it now; it will not be shown again.")
	fmt.Println()
	fmt.Printf("  %s\n", token)
	fmt.Println()
	fmt.Printf("Display prefix: %s\n", prefix)
}

func runTokenStatus(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	if cfg.Server.TokenHash == "" {
		fmt.Println("No token configured; the server accepts unauthenticated requests.")
		return
	}
	fmt.Printf("Token configured (prefix %s%s).\n", auth.TokenPrefix, cfg.Server.TokenPrefix)
}
