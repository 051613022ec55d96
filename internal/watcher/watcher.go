// Package watcher detects history-relevant git state changes by polling the
// repository's .git directory. Polling is used instead of fsnotify for
// cross-platform behavior; the interesting signals (new commit, branch
// switch, staging) all surface as HEAD or index changes.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lens/internal/logging"
)

// EventType classifies a detected repository change.
type EventType int

const (
	// EventHeadChanged fires on a new commit or branch switch
	EventHeadChanged EventType = iota
	// EventIndexChanged fires when the staging area changes
	EventIndexChanged
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventHeadChanged:
		return "head-changed"
	case EventIndexChanged:
		return "index-changed"
	default:
		return "unknown"
	}
}

// Event is one detected repository change.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// Handler is called with the debounced batch of detected changes.
type Handler func(events []Event)

// Config contains watcher configuration
type Config struct {
	Enabled        bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs     int  `json:"debounceMs" mapstructure:"debounce_ms"`
	PollIntervalMs int  `json:"pollIntervalMs" mapstructure:"poll_interval_ms"`
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		DebounceMs:     500,
		PollIntervalMs: 2000,
	}
}

// Watcher polls one repository for git state changes.
type Watcher struct {
	config  Config
	logger  *logging.Logger
	handler Handler

	repoRoot  string
	gitDir    string
	debouncer *Debouncer

	lastHead  string
	lastIndex time.Time

	mu      sync.Mutex
	pending []Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for the repository at repoRoot.
func New(repoRoot string, config Config, logger *logging.Logger, handler Handler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config:    config,
		logger:    logger.WithComponent("watcher"),
		handler:   handler,
		repoRoot:  repoRoot,
		gitDir:    filepath.Join(repoRoot, ".git"),
		debouncer: NewDebouncer(time.Duration(config.DebounceMs) * time.Millisecond),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins polling. A disabled watcher starts as a no-op.
func (w *Watcher) Start() error {
	if !w.config.Enabled {
		w.logger.Info("File watcher is disabled", nil)
		return nil
	}
	if _, err := os.Stat(w.gitDir); err != nil {
		w.logger.Warn("No .git directory to watch", map[string]interface{}{
			"repoRoot": w.repoRoot,
		})
		return nil
	}

	w.lastHead = w.readHead()
	w.lastIndex = w.indexModTime()

	w.logger.Info("Starting repository watcher", map[string]interface{}{
		"repoRoot":   w.repoRoot,
		"debounceMs": w.config.DebounceMs,
	})

	w.wg.Add(1)
	go w.poll()
	return nil
}

// Stop stops polling and flushes nothing: pending debounced events are
// dropped on shutdown.
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
	w.debouncer.Cancel()
	w.logger.Info("Repository watcher stopped", nil)
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	interval := time.Duration(w.config.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.ctx.Done():
			return
		}
	}
}

// check compares HEAD and index state against the last poll and queues
// events for any difference.
func (w *Watcher) check() {
	var events []Event

	currentHead := w.readHead()
	if currentHead != "" && currentHead != w.lastHead {
		events = append(events, Event{
			Type:      EventHeadChanged,
			Path:      filepath.Join(w.gitDir, "HEAD"),
			Timestamp: time.Now(),
		})
		w.lastHead = currentHead
	}

	currentIndex := w.indexModTime()
	if !currentIndex.IsZero() && currentIndex.After(w.lastIndex) {
		events = append(events, Event{
			Type:      EventIndexChanged,
			Path:      filepath.Join(w.gitDir, "index"),
			Timestamp: time.Now(),
		})
		w.lastIndex = currentIndex
	}

	if len(events) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = append(w.pending, events...)
	w.mu.Unlock()

	w.debouncer.Trigger(w.flush)
}

// flush hands the accumulated batch to the handler.
func (w *Watcher) flush() {
	w.mu.Lock()
	events := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(events) == 0 {
		return
	}

	w.logger.Debug("Git changes detected", map[string]interface{}{
		"repoRoot":   w.repoRoot,
		"eventCount": len(events),
	})
	if w.handler != nil {
		w.handler(events)
	}
}

// readHead reads the current HEAD reference
func (w *Watcher) readHead() string {
	data, err := os.ReadFile(filepath.Join(w.gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// indexModTime returns the modification time of the git index
func (w *Watcher) indexModTime() time.Time {
	info, err := os.Stat(filepath.Join(w.gitDir, "index"))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
