package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lens/internal/annotate"
	"lens/internal/errors"
	"lens/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)

	s.router.HandleFunc("/annotations/list", s.handleListAnnotations)
	s.router.HandleFunc("/annotations/resolve", s.handleResolveAnnotation)
	s.router.HandleFunc("/annotations/discard", s.handleDiscardPass)

	s.router.HandleFunc("/blame", s.handleBlame)
	s.router.HandleFunc("/events", s.handleEvents)

	s.router.HandleFunc("/", s.handleRoot)
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"name":    "Lens HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"POST /annotations/list - Resolve placements for a document",
			"POST /annotations/resolve - Resolve one placement to title and action",
			"POST /annotations/discard - Discard a pass and its placements",
			"GET /blame?path=... - Raw blame map for a file",
			"GET /events - Long-poll for repository change notifications",
		},
	}
	WriteJSON(w, response, http.StatusOK)
}

// handleHealth reports liveness. Open even when auth is enabled.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"status":  "ok",
		"version": version.Version,
	}, http.StatusOK)
}

// listRequest describes one document to annotate. When content is omitted
// the file is read from the repository working tree.
type listRequest struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Dirty   bool   `json:"dirty"`
}

// placementPayload is one placement plus the id used to resolve it later.
type placementPayload struct {
	ID string `json:"id"`
	*annotate.Placement
}

type listResponse struct {
	PassID     string             `json:"passId"`
	Placements []placementPayload `json:"placements"`
}

func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}
	if req.Path == "" {
		BadRequest(w, "Missing path")
		return
	}
	if !s.safePath(req.Path) {
		BadRequest(w, "Path escapes the repository")
		return
	}

	content := []byte(req.Content)
	if req.Content == "" {
		data, err := os.ReadFile(filepath.Join(s.repoRoot, req.Path))
		if err != nil {
			NotFound(w, "File not found: "+req.Path)
			return
		}
		content = data
	}

	doc := annotate.NewDocument(req.Path, content, req.Dirty)
	placements, err := s.service.Placements(r.Context(), doc)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := listResponse{PassID: uuid.New().String()}
	stored := make(map[string]*annotate.Placement, len(placements))
	for _, p := range placements {
		id := uuid.New().String()
		stored[id] = p
		resp.Placements = append(resp.Placements, placementPayload{ID: id, Placement: p})
	}
	s.storePass(resp.PassID, stored)

	WriteJSON(w, resp, http.StatusOK)
}

type resolveRequest struct {
	PassID      string `json:"passId"`
	PlacementID string `json:"placementId"`
}

func (s *Server) handleResolveAnnotation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	p, ok := s.lookupPlacement(req.PassID, req.PlacementID)
	if !ok {
		NotFound(w, "Unknown pass or placement id")
		return
	}

	WriteJSON(w, p.Resolve(time.Now()), http.StatusOK)
}

type discardRequest struct {
	PassID string `json:"passId"`
}

func (s *Server) handleDiscardPass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req discardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	s.dropPass(req.PassID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBlame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		BadRequest(w, "Missing path parameter")
		return
	}
	if !s.safePath(path) {
		BadRequest(w, "Path escapes the repository")
		return
	}

	m, err := s.service.BlameMap(r.Context(), path)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, m, http.StatusOK)
}

// handleEvents long-polls for the next repository change notification. The
// response is 204 when nothing changed within the poll window.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ch, cancel := s.service.Subscribe()
	defer cancel()

	timer := time.NewTimer(25 * time.Second)
	defer timer.Stop()

	select {
	case path := <-ch:
		changes := []string{path}
		// Drain anything else already queued.
		for {
			select {
			case p := <-ch:
				changes = append(changes, p)
				continue
			default:
			}
			break
		}
		WriteJSON(w, map[string]interface{}{"changes": changes}, http.StatusOK)
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}

// safePath rejects absolute paths and traversal outside the repository.
func (s *Server) safePath(path string) bool {
	if filepath.IsAbs(path) {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	if lensErr, ok := err.(*errors.LensError); ok {
		WriteLensError(w, lensErr)
		return
	}
	InternalError(w, err.Error())
}
