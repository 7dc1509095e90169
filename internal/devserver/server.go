// Package devserver is an in-memory development backend for the spaces API.
// It issues space ids, enforces the credential and active-space checks, and
// answers with the same status codes the hosted backend uses.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/spaces"
)

// Space is an active space held by the server.
type Space struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Server holds the active spaces. It is safe for concurrent use.
type Server struct {
	cfg   config.DevServerConfig
	newID func() string
	now   func() time.Time

	mu     sync.Mutex
	active map[string]Space
}

// NewServer returns a server with no active spaces.
func NewServer(cfg config.DevServerConfig) *Server {
	return &Server{
		cfg:    cfg,
		newID:  uuid.NewString,
		now:    time.Now,
		active: make(map[string]Space),
	}
}

// Router returns the HTTP routes served by s.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(spaces.CreatePath, s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc(spaces.CreatePath, s.handleList).Methods(http.MethodGet)
	r.HandleFunc(spaces.CreatePath+"/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc(spaces.CreatePath+"/{id}", s.handleDelete).Methods(http.MethodDelete)
	return r
}

// Active returns the active spaces ordered by creation time.
func (s *Server) Active() []Space {
	s.mu.Lock()
	out := make([]Space, 0, len(s.active))
	for _, sp := range s.active {
		out = append(out, sp)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ListenAndServe serves the router on addr until ctx is cancelled, then
// shuts down gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devserver: listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devserver: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("devserver: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "active": s.count()})
}

func (s *Server) handleCreate(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.TokenID == "" || s.cfg.TokenSecret == "" {
		http.Error(w, "missing API credentials", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	if len(s.active) >= s.cfg.MaxActive {
		s.mu.Unlock()
		http.Error(w, "active space limit reached", spaces.StatusCapacityLimit)
		return
	}
	sp := Space{ID: s.newID(), CreatedAt: s.now()}
	s.active[sp.ID] = sp
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Active())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	sp, ok := s.active[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "space not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.active[id]
	delete(s.active, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "space not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
