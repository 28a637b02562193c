package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/pkg/httpserver"
	"dispatch-svc/pkg/metrics"
	"dispatch-svc/services/dispatch-svc/internal/engine"
)

// Handler adapts a DispatchService to chi routes.
type Handler struct {
	svc         *DispatchService
	serviceName string
	version     string
	environment string
	metrics     *metrics.Metrics
}

// NewHandler builds a Handler around svc.
func NewHandler(svc *DispatchService, serviceName, version, environment string) *Handler {
	return &Handler{
		svc:         svc,
		serviceName: serviceName,
		version:     version,
		environment: environment,
		metrics:     metrics.Get(),
	}
}

// Routes mounts /optimize, /health, /ready, and /metrics on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/optimize", h.handleOptimize)
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	if h.metrics != nil {
		r.Get("/metrics", h.metrics.Handler().ServeHTTP)
	}
}

func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpserver.WriteJSONError(w, apperror.New(apperror.CodeMalformedRequest, "malformed request body: "+err.Error()))
		return
	}

	resp, err := h.svc.Solve(r.Context(), &req)
	if err != nil {
		httpserver.WriteJSONError(w, err)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, resp)
}

type healthBody struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !h.svc.IsHealthy() {
		status = "shutting_down"
		code = http.StatusServiceUnavailable
	}
	httpserver.WriteJSON(w, code, healthBody{
		Status:      status,
		Service:     h.serviceName,
		Version:     h.version,
		Environment: h.environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

type readyBody struct {
	Ready    bool  `json:"ready"`
	Requests Stats `json:"requests"`
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.GetStats()
	ready := h.svc.IsHealthy()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	httpserver.WriteJSON(w, code, readyBody{Ready: ready, Requests: stats})
}
