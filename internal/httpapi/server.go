package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ent0n29/shakti/internal/calllog"
	"github.com/ent0n29/shakti/internal/config"
	"github.com/ent0n29/shakti/internal/observability"
	"github.com/ent0n29/shakti/internal/retell"
)

// VendorClient is the subset of the Retell API the proxy forwards to.
type VendorClient interface {
	CreateWebCall(ctx context.Context, req retell.CreateWebCallRequest) (retell.Response, error)
	CreatePhoneCall(ctx context.Context, req retell.CreatePhoneCallRequest) (retell.Response, error)
	ListAgents(ctx context.Context) (retell.Response, error)
}

type Server struct {
	cfg     config.Config
	vendor  VendorClient
	calls   calllog.Store
	metrics *observability.Metrics
}

// New builds the API server. calls may be nil when the call log is disabled.
func New(cfg config.Config, vendor VendorClient, calls calllog.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		vendor:  vendor,
		calls:   calls,
		metrics: metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/retell-call", s.handleRetellCall)
	// Path used by supabase-style function clients.
	r.Post("/functions/v1/retell-call", s.handleRetellCall)
	r.Get("/v1/calls/recent", s.handleRecentCalls)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":                        "ready",
		"retell_api_key_configured":     s.cfg.RetellAPIKey != "",
		"retell_from_number_configured": s.cfg.RetellFromNumber != "",
		"call_log_enabled":              s.calls != nil,
	})
}

func (s *Server) handleRecentCalls(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		respondError(w, http.StatusNotFound, "call_log_disabled", "call log is not enabled")
		return
	}
	limit := s.cfg.CallLogRecentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxRecentCalls {
		limit = maxRecentCalls
	}

	records, err := s.calls.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "call_log_unavailable", err.Error())
		return
	}
	if records == nil {
		records = []calllog.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
	})
}

const maxRecentCalls = 500

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
