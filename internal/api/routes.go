package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/motion-control/mcc/internal/auth"
	"github.com/motion-control/mcc/internal/kinematics"
)

// RegisterRoutes registers all OpenAPI v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	// Health endpoint (no auth required)
	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	if s.authMiddleware == nil {
		mux.HandleFunc(apiV1+"/capabilities", s.handleCapabilities)
		mux.HandleFunc(apiV1+"/limits", s.handleLimits)
		mux.HandleFunc(apiV1+"/velocity/check", s.handleVelocityCheck)
		mux.HandleFunc(apiV1+"/telemetry", s.handleTelemetry)
		return
	}

	// Capabilities and velocity checks are read operations; limit
	// reconfiguration needs the control scope.
	mux.HandleFunc(apiV1+"/capabilities", s.authMiddleware.RequireAuth(s.authMiddleware.RequireScope(auth.ScopeRead)(s.handleCapabilities)))
	mux.HandleFunc(apiV1+"/limits", s.authMiddleware.RequireAuth(s.routeLimitsByScope))
	mux.HandleFunc(apiV1+"/velocity/check", s.authMiddleware.RequireAuth(s.authMiddleware.RequireScope(auth.ScopeRead)(s.handleVelocityCheck)))
	mux.HandleFunc(apiV1+"/telemetry", s.authMiddleware.RequireAuth(s.authMiddleware.RequireScope(auth.ScopeTelemetry)(s.handleTelemetry)))
}

// routeLimitsByScope gates GET behind read and POST behind control.
func (s *Server) routeLimitsByScope(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.authMiddleware.RequireScope(auth.ScopeRead)(s.handleLimits)(w, r)
	case http.MethodPost:
		s.authMiddleware.RequireScope(auth.ScopeControl)(s.handleLimits)(w, r)
	default:
		s.handleLimits(w, r)
	}
}

// handleCapabilities handles GET /capabilities
func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	capabilities := map[string]interface{}{
		"telemetry": []string{"sse"},
		"commands":  []string{"http-json"},
		"params":    kinematics.ParamNames(),
		"version":   "1.0.0",
	}

	WriteSuccess(w, capabilities)
}

// handleLimits handles GET/POST /limits
func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetLimits(w, r)
	case http.MethodPost:
		s.handleApplyLimits(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET and POST methods are allowed", nil)
	}
}

// handleGetLimits handles GET /limits
func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Service not available", nil)
		return
	}

	limits, revision := s.orchestrator.GetLimits(r.Context())
	WriteSuccess(w, map[string]interface{}{
		"limits":   limits,
		"revision": revision,
	})
}

// handleApplyLimits handles POST /limits
func (s *Server) handleApplyLimits(w http.ResponseWriter, r *http.Request) {
	// Parse request body (strict JSON)
	var values map[string]float64
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&values); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON body", nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Trailing data after JSON object", nil)
		return
	}
	if len(values) == 0 {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"At least one parameter must be provided", nil)
		return
	}

	if s.orchestrator == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Service not available", nil)
		return
	}

	limits, applied, err := s.orchestrator.ApplyLimits(r.Context(), values)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"limits":  limits,
		"applied": applied,
	})
}

// handleVelocityCheck handles POST /velocity/check
func (s *Server) handleVelocityCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}

	// Parse request body (strict JSON)
	var request struct {
		X     *float64 `json:"x"`
		Y     *float64 `json:"y"`
		Theta *float64 `json:"theta"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Trailing data after JSON object", nil)
		return
	}

	if request.X == nil || request.Y == nil || request.Theta == nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"x, y, and theta are all required", nil)
		return
	}

	if s.orchestrator == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Service not available", nil)
		return
	}

	verdict, err := s.orchestrator.CheckVelocity(r.Context(), *request.X, *request.Y, *request.Theta)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	WriteSuccess(w, verdict)
}

// handleTelemetry handles GET /telemetry (SSE)
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	if s.telemetryHub == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Telemetry service not available", nil)
		return
	}

	if err := s.telemetryHub.Subscribe(r.Context(), w, r); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL",
			"Failed to subscribe to telemetry stream", nil)
		return
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	subsystems := s.checkSubsystemHealth()

	overallStatus := "ok"
	if !subsystems["telemetry"] || !subsystems["orchestrator"] {
		overallStatus = "degraded"
	}

	health := map[string]interface{}{
		"status":     overallStatus,
		"uptimeSec":  uptime,
		"version":    "1.0.0",
		"subsystems": subsystems,
	}

	if overallStatus == "ok" {
		WriteSuccess(w, health)
	} else {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
	}
}

// checkSubsystemHealth checks the health of all subsystems.
func (s *Server) checkSubsystemHealth() map[string]bool {
	return map[string]bool{
		"telemetry":    s.telemetryHub != nil,
		"orchestrator": s.orchestrator != nil,
		// Auth is optional, so always considered healthy.
		"auth": true,
	}
}
