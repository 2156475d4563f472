// Package api defines ports (interfaces) for API server dependencies.
package api

import (
	"context"
	"net/http"

	"github.com/motion-control/mcc/internal/command"
	"github.com/motion-control/mcc/internal/kinematics"
	"github.com/motion-control/mcc/internal/telemetry"
)

// OrchestratorPort defines the minimal interface the API needs from the
// orchestrator.
type OrchestratorPort interface {
	CheckVelocity(ctx context.Context, x, y, theta float64) (*command.Verdict, error)
	ApplyLimits(ctx context.Context, values map[string]float64) (kinematics.Limits, []string, error)
	GetLimits(ctx context.Context) (kinematics.Limits, uint64)
}

// TelemetryPort defines the minimal interface the API needs from the
// telemetry hub.
type TelemetryPort interface {
	Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Compile-time assertions for port conformance
var _ OrchestratorPort = (*command.Orchestrator)(nil)
var _ TelemetryPort = (*telemetry.Hub)(nil)
