package main

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Server owns the state every handler needs. One instance per process.
type Server struct {
	cfg     Config
	store   CounterStore
	logger  *zap.Logger
	metrics *Metrics
	static  fs.FS
}

func newServer(cfg Config, store CounterStore, logger *zap.Logger, metrics *Metrics, static fs.FS) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		metrics: metrics,
		static:  static,
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}
	if r.URL.Path != "/" {
		http.FileServer(http.FS(s.static)).ServeHTTP(w, r)
		return
	}

	data, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		http.Error(w, "Failed to load index.html", http.StatusInternalServerError)
		return
	}

	devMode := "false"
	if s.cfg.DevMode {
		devMode = "true"
	}
	injection := `<script>window.__API_BASE__ = "/api"; window.__DEV_MODE__ = ` + devMode + `;</script>`
	html := bytes.Replace(data, []byte("<head>"), []byte("<head>\n"+injection), 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "OK", Message: "Server is running"})
}

func (s *Server) totalTreesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	total, err := s.store.Total(r.Context())
	if err != nil {
		s.metrics.observeStoreError("total")
		s.logger.Error("Error getting total trees", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	s.metrics.observeTotal(total)
	writeJSON(w, http.StatusOK, TotalTreesResponse{TotalTrees: total})
}

func (s *Server) addTreeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	total, err := s.store.Increment(r.Context())
	if err != nil {
		s.metrics.observeStoreError("increment")
		s.logger.Error("Error updating count", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	s.metrics.observeIncrement(total)
	s.logger.Info("Tree added", zap.Int64("total_trees", total))
	writeJSON(w, http.StatusOK, TotalTreesResponse{TotalTrees: total})
}

// withCORS answers preflight requests and stamps the allowed origin on every
// API response; browsers on other origins call the API directly.
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		if s.cfg.CORSOrigin != "*" {
			header.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
