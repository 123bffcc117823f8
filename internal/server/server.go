// Package server exposes the depot over HTTP for hosts that would rather
// talk JSON than link Go. Scan results live in named sessions so callers
// can address plugins by index across requests.
package server

import (
	"net/http"
	"sync"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/depot"
)

type Server struct {
	Depot    *depot.Depot
	Username string
	Password string

	mu       sync.Mutex
	sessions map[string]*depot.PluginList
}

func New(d *depot.Depot, user, pass string) *Server {
	return &Server{
		Depot:    d,
		Username: user,
		Password: pass,
		sessions: make(map[string]*depot.PluginList),
	}
}

// Handler builds the route table. Factored out of Start so tests can mount
// it on a httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/scans", s.basicAuth(s.handleCreateScan))
	mux.HandleFunc("DELETE /api/scans/{id}", s.basicAuth(s.handleReleaseScan))
	mux.HandleFunc("GET /api/scans/{id}/plugins", s.basicAuth(s.handleListPlugins))
	mux.HandleFunc("GET /api/scans/{id}/plugins/{index}", s.basicAuth(s.handleGetPlugin))
	mux.HandleFunc("GET /api/scans/{id}/plugins/{index}/files", s.basicAuth(s.handleListFiles))
	mux.HandleFunc("POST /api/scans/{id}/plugins/{index}/backup", s.basicAuth(s.handleBackup))
	mux.HandleFunc("POST /api/scans/{id}/plugins/{index}/export", s.basicAuth(s.handleExport))
	mux.HandleFunc("POST /api/scans/{id}/plugins/{index}/uninstall", s.basicAuth(s.handleUninstall))

	mux.HandleFunc("GET /api/orphans", s.basicAuth(s.handleOrphans))

	mux.HandleFunc("POST /api/icons", s.basicAuth(s.handleCacheIcon))
	mux.HandleFunc("GET /api/icons", s.basicAuth(s.handleIconPath))
	mux.HandleFunc("DELETE /api/icons", s.basicAuth(s.handleClearIcons))

	mux.HandleFunc("GET /{$}", s.basicAuth(s.handleIndex))
	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) putSession(id string, list *depot.PluginList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = list
}

func (s *Server) getSession(id string) (*depot.PluginList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.sessions[id]
	return list, ok
}

// dropSession removes a session if present. Releasing an id that does not
// exist is a no-op.
func (s *Server) dropSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
