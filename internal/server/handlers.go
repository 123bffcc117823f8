package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/plugindepot/plugindepot/pkg/depot"
)

type ScanResponse struct {
	ScanID     string `json:"scan_id"`
	Count      int    `json:"count"`
	Incomplete bool   `json:"incomplete"`
}

type PathResponse struct {
	Path string `json:"path"`
}

type BackupRequest struct {
	Dir string `json:"dir"`
}

type ExportRequest struct {
	Dir string `json:"dir"`
}

type UninstallRequest struct {
	DryRun bool `json:"dry_run"`
}

type UninstallResponse struct {
	Paths []string `json:"paths"`
}

type CacheIconRequest struct {
	URL  string `json:"url"`
	Data []byte `json:"data"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plugindepot",
		"docs":    "POST /api/scans, GET /api/scans/{id}/plugins, GET /api/orphans, POST /api/icons",
	})
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	list := s.Depot.Scan(r.Context())
	id := uuid.NewString()
	s.putSession(id, list)

	json.NewEncoder(w).Encode(ScanResponse{
		ScanID:     id,
		Count:      list.Count(),
		Incomplete: list.Incomplete(),
	})
}

func (s *Server) handleReleaseScan(w http.ResponseWriter, r *http.Request) {
	s.dropSession(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	list, ok := s.getSession(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown scan id")
		return
	}
	json.NewEncoder(w).Encode(list.Plugins())
}

func (s *Server) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	list, i, ok := s.sessionIndex(w, r)
	if !ok {
		return
	}
	p, err := list.At(i)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	list, i, ok := s.sessionIndex(w, r)
	if !ok {
		return
	}
	files, err := s.Depot.EnumerateFiles(r.Context(), list, i)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(files)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	list, i, ok := s.sessionIndex(w, r)
	if !ok {
		return
	}
	var req BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, err := s.Depot.Backup(r.Context(), list, i, req.Dir)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(PathResponse{Path: path})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	list, i, ok := s.sessionIndex(w, r)
	if !ok {
		return
	}
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, err := s.Depot.Export(r.Context(), list, i, req.Dir)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(PathResponse{Path: path})
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	list, i, ok := s.sessionIndex(w, r)
	if !ok {
		return
	}
	var req UninstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	paths, err := s.Depot.Uninstall(r.Context(), list, i, req.DryRun)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	json.NewEncoder(w).Encode(UninstallResponse{Paths: paths})
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := s.Depot.DetectOrphans(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	json.NewEncoder(w).Encode(orphans)
}

func (s *Server) handleCacheIcon(w http.ResponseWriter, r *http.Request) {
	var req CacheIconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, err := s.Depot.CacheIcon(req.URL, req.Data)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(PathResponse{Path: path})
}

func (s *Server) handleIconPath(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	path, err := s.Depot.CachedIconPath(url)
	if err != nil {
		writeDepotError(w, err)
		return
	}
	json.NewEncoder(w).Encode(PathResponse{Path: path})
}

func (s *Server) handleClearIcons(w http.ResponseWriter, r *http.Request) {
	if err := s.Depot.ClearIconCache(); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionIndex resolves the {id} and {index} path values, writing the
// error response itself when either is bad.
func (s *Server) sessionIndex(w http.ResponseWriter, r *http.Request) (*depot.PluginList, int, bool) {
	list, ok := s.getSession(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown scan id")
		return nil, 0, false
	}
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "plugin index must be an integer")
		return nil, 0, false
	}
	return list, i, true
}

func writeDepotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, depot.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, depot.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, err.Error())
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
