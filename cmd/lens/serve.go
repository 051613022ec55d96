package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lens/internal/api"
	"lens/internal/watcher"
)

var (
	serveAddr   string
	servePolicy string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local annotation HTTP server",
	Long: `Start the HTTP server editor plugins talk to. The server computes
placements on request, resolves them lazily, and watches the repository so
clients learn when their annotations are stale.

Examples:
  lens serve
  lens serve --addr 127.0.0.1:9000`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config)")
	serveCmd.Flags().StringVar(&servePolicy, "policy", "", "Placement policy YAML file (default: from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	policy := mustResolvePolicy(repoRoot, cfg, servePolicy)
	eng, err := buildEngine(repoRoot, cfg, policy, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer eng.cleanup()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server := api.NewServer(addr, repoRoot, cfg.Server.TokenHash, eng.service, logger)

	// Repository changes fan out to subscribed clients. The snapshot cache
	// is keyed by HEAD, so a new commit misses naturally; expired entries
	// are pruned on the same signal.
	w := watcher.New(repoRoot, watcher.Config{
		Enabled:        cfg.Watcher.Enabled,
		DebounceMs:     cfg.Watcher.DebounceMs,
		PollIntervalMs: cfg.Watcher.PollIntervalMs,
	}, logger, func(events []watcher.Event) {
		if eng.cache != nil {
			if n, err := eng.cache.PruneExpired(context.Background()); err == nil && n > 0 {
				logger.Debug("Pruned expired snapshots", map[string]interface{}{"count": n})
			}
		}
		eng.service.NotifyChanged(".")
	})
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			w.Stop()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
}
