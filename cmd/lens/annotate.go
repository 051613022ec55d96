package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lens/internal/annotate"
	"lens/internal/repostate"
)

var (
	annotateFormat string
	annotateDirty  bool
	annotatePolicy string
	annotateDebug  bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Compute and resolve annotations for a file",
	Long: `Run a full annotation pass for a file: decide where annotations go,
aggregate blame over each range, and print the resolved titles and actions.

Examples:
  lens annotate internal/api/server.go
  lens annotate main.go --format json
  lens annotate main.go --dirty
  lens annotate main.go --policy policy.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVar(&annotateFormat, "format", "human", "Output format (json, human)")
	annotateCmd.Flags().BoolVar(&annotateDirty, "dirty", false, "Treat the file as having unsaved edits")
	annotateCmd.Flags().StringVar(&annotatePolicy, "policy", "", "Placement policy YAML file (default: from config)")
	annotateCmd.Flags().BoolVar(&annotateDebug, "debug", false, "Append placement internals to each title")
	rootCmd.AddCommand(annotateCmd)
}

// annotationOutput is one placement plus its resolved display form.
type annotationOutput struct {
	Placement  *annotate.Placement `json:"placement"`
	Resolution annotate.Resolution `json:"resolution"`
}

func runAnnotate(cmd *cobra.Command, args []string) {
	start := time.Now()
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	path := relPath(repoRoot, args[0])

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	dirty := annotateDirty
	if !dirty {
		if d, err := repostate.IsFileDirty(repoRoot, path); err == nil {
			dirty = d
		}
	}

	policy := mustResolvePolicy(repoRoot, cfg, annotatePolicy)
	if annotateDebug {
		policy.Debug = true
	}
	eng, err := buildEngine(repoRoot, cfg, policy, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer eng.cleanup()

	doc := annotate.NewDocument(path, content, dirty)
	placements, err := eng.service.Placements(context.Background(), doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	outputs := make([]annotationOutput, len(placements))
	for i, p := range placements {
		outputs[i] = annotationOutput{Placement: p, Resolution: p.Resolve(now)}
	}

	if annotateFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
			os.Exit(1)
		}
	} else {
		if len(outputs) == 0 {
			fmt.Println("No annotations.")
		}
		for _, out := range outputs {
			p := out.Placement
			fmt.Printf("line %d  %-12s %s\n", p.AnchorLine+1, p.Kind, out.Resolution.Title)
			if out.Resolution.Action.Command != annotate.CommandNone {
				fmt.Printf("          action: %s\n", out.Resolution.Action.Command)
			}
		}
	}

	logger.Debug("Annotation pass completed", map[string]interface{}{
		"file":       path,
		"count":      len(placements),
		"durationMs": time.Since(start).Milliseconds(),
	})
}
