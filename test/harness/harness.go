// Package harness provides a unified test harness for API and audit tests.
// Goal: every API/audit test runs against the same fully-wired system with
// predictable data.
package harness

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/motion-control/mcc/internal/api"
	"github.com/motion-control/mcc/internal/audit"
	"github.com/motion-control/mcc/internal/auth"
	"github.com/motion-control/mcc/internal/command"
	"github.com/motion-control/mcc/internal/config"
	"github.com/motion-control/mcc/internal/kinematics"
	"github.com/motion-control/mcc/internal/telemetry"
)

// Options configures the test harness
type Options struct {
	InitialLimits map[string]float64
	WithAuth      bool
	TempDir       string
}

// DefaultOptions returns sensible defaults for testing
func DefaultOptions() Options {
	return Options{
		InitialLimits: map[string]float64{
			"max_vel_x":       0.5,
			"max_vel_theta":   1.0,
			"max_speed_xy":    0.5,
			"min_speed_xy":    0.1,
			"min_speed_theta": 0.2,
			"acc_lim_x":       2.5,
			"acc_lim_theta":   3.2,
		},
	}
}

// Server represents a test server with all components wired
type Server struct {
	URL          string
	Shutdown     func()
	Store        *kinematics.Store
	Orchestrator *command.Orchestrator
	TelemetryHub *telemetry.Hub
	AuditLogger  *audit.Logger
}

// NewServer creates a fully-wired test server
func NewServer(t *testing.T, opts Options) *Server {
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = t.TempDir()
	}

	timing := config.LoadMCTimingBaseline()

	store := kinematics.NewStore()
	store.Initialize(opts.InitialLimits)

	hub := telemetry.NewHub(timing, func() map[string]interface{} {
		limits, revision := store.View()
		return map[string]interface{}{
			"limits":   limits,
			"revision": revision,
		}
	})
	t.Cleanup(hub.Stop)

	auditLogger, err := audit.NewLogger(tempDir)
	if err != nil {
		t.Fatalf("Failed to create audit logger: %v", err)
	}
	t.Cleanup(func() { _ = auditLogger.Close() })

	orchestrator := command.NewOrchestrator(store, hub, auditLogger)

	var apiServer *api.Server
	if opts.WithAuth {
		apiServer = api.NewServerWithAuth(hub, orchestrator, auth.NewMiddleware(),
			30*time.Second, 30*time.Second, 120*time.Second)
	} else {
		apiServer = api.NewServer(hub, orchestrator,
			30*time.Second, 30*time.Second, 120*time.Second)
	}

	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := httptest.NewServer(mux)
	t.Cleanup(httpServer.Close)

	return &Server{
		URL:          httpServer.URL,
		Shutdown:     httpServer.Close,
		Store:        store,
		Orchestrator: orchestrator,
		TelemetryHub: hub,
		AuditLogger:  auditLogger,
	}
}
