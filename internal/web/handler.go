package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gadomski/atlas/internal/cam"
)

// Handler is the HTTP handler for the status site.
type Handler struct {
	provider     Provider
	cameras      []*cam.Camera
	activeCamera string
	imgURL       *url.URL
	mux          *http.ServeMux
}

// New creates a Handler reading heartbeats from provider and registers all
// routes. cameras and imgURL feed the index page; either may be empty.
func New(provider Provider, cameras []*cam.Camera, activeCamera string, imgURL *url.URL) http.Handler {
	h := &Handler{
		provider:     provider,
		cameras:      cameras,
		activeCamera: activeCamera,
		imgURL:       imgURL,
		mux:          http.NewServeMux(),
	}

	h.mux.HandleFunc("/", h.index)
	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/heartbeats", h.listHeartbeats)
	h.mux.HandleFunc("/api/v1/heartbeats/latest", h.latestHeartbeat)
	h.mux.Handle("/soc.csv", csvHandler{heartbeats: h.provider, columns: socColumns{}})
	h.mux.Handle("/temperature.csv", csvHandler{heartbeats: h.provider, columns: temperatureColumns{}})
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := HealthResponse{HeartbeatCount: len(h.provider.Snapshot())}
	if latest, ok := h.provider.Latest(); ok {
		resp.LastHeartbeat = latest.StartTime.UTC().Format(time.RFC3339)
	}
	jsonResp(w, http.StatusOK, resp)
}

// listHeartbeats returns GET /api/v1/heartbeats.
func (h *Handler) listHeartbeats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	heartbeats := h.provider.Snapshot()
	out := make([]HeartbeatResponse, 0, len(heartbeats))
	for _, heartbeat := range heartbeats {
		out = append(out, ToHeartbeatResponse(heartbeat))
	}
	jsonResp(w, http.StatusOK, out)
}

// latestHeartbeat returns GET /api/v1/heartbeats/latest.
func (h *Handler) latestHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	latest, ok := h.provider.Latest()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no heartbeats available")
		return
	}
	jsonResp(w, http.StatusOK, ToHeartbeatResponse(latest))
}

// index serves GET / — the human-facing status page.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data := h.indexData()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		slog.Error("web: render index", "err", err)
	}
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
