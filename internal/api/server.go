// Package api exposes the annotation engine over a local HTTP interface so
// editor plugins can request placements and resolve them lazily.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"lens/internal/annotate"
	"lens/internal/logging"
)

// Server represents the HTTP API server
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	logger   *logging.Logger
	service  *annotate.Service
	repoRoot string

	mu     sync.Mutex
	passes map[string]*annotationPass
	order  []string
}

// maxPasses bounds how many unresolved passes are retained; editors resolve
// or discard placements quickly, so old passes are evictable.
const maxPasses = 64

// annotationPass holds the placements of one resolution pass, keyed by
// placement id, until the client resolves or abandons them.
type annotationPass struct {
	placements map[string]*annotate.Placement
	created    time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(addr, repoRoot, tokenHash string, service *annotate.Service, logger *logging.Logger) *Server {
	s := &Server{
		addr:     addr,
		logger:   logger.WithComponent("api"),
		service:  service,
		repoRoot: repoRoot,
		router:   http.NewServeMux(),
		passes:   make(map[string]*annotationPass),
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router, tokenHash)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler, tokenHash string) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = AuthMiddleware(tokenHash, s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

// storePass retains a pass's placements for later resolution, evicting the
// oldest pass past the retention cap.
func (s *Server) storePass(id string, placements map[string]*annotate.Placement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.passes[id] = &annotationPass{placements: placements, created: time.Now()}
	s.order = append(s.order, id)

	for len(s.order) > maxPasses {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.passes, oldest)
	}
}

// lookupPlacement finds a stored placement by pass and placement id.
func (s *Server) lookupPlacement(passID, placementID string) (*annotate.Placement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, ok := s.passes[passID]
	if !ok {
		return nil, false
	}
	p, ok := pass.placements[placementID]
	return p, ok
}

// dropPass discards a pass and its placements.
func (s *Server) dropPass(passID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.passes, passID)
	for i, id := range s.order {
		if id == passID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
