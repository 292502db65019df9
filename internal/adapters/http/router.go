// Package httpadapter exposes a small read-only API over the audit log:
// recent records, summary search, and the known category set. The
// pipeline itself is driven by the drop directory, not by HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/content-alchemist/internal/core/ports"
)

const defaultRecentLimit = 20

type Router struct {
	audit   ports.AuditLog
	metrics http.Handler
}

func NewRouter(audit ports.AuditLog, metricsHandler http.Handler) *Router {
	return &Router{audit: audit, metrics: metricsHandler}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/records", rt.recentRecords)
	mux.HandleFunc("/v1/records/search", rt.searchRecords)
	mux.HandleFunc("/v1/categories", rt.listCategories)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recentRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := rt.audit.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (rt *Router) searchRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}

	records, err := rt.audit.SearchSummary(r.Context(), query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (rt *Router) listCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	categories, err := rt.audit.Categories(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
