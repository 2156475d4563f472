// Package command defines ports (interfaces) for orchestrator operations.
package command

import (
	"context"
	"errors"

	"github.com/motion-control/mcc/internal/kinematics"
)

// OrchestratorPort defines the minimal interface the API needs from the
// orchestrator.
type OrchestratorPort interface {
	CheckVelocity(ctx context.Context, x, y, theta float64) (*Verdict, error)
	ApplyLimits(ctx context.Context, values map[string]float64) (kinematics.Limits, []string, error)
	GetLimits(ctx context.Context) (kinematics.Limits, uint64)
}

// LimitStore is the slice of the store the orchestrator depends on.
type LimitStore interface {
	ApplyUpdate(values map[string]float64) []string
	View() (kinematics.Limits, uint64)
}

// Verdict is the outcome of a velocity admissibility check.
type Verdict struct {
	Valid    bool    `json:"valid"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Theta    float64 `json:"theta"`
	Revision uint64  `json:"revision"`
}

// ErrInvalidParameter indicates a required parameter is missing or
// structurally invalid.
var ErrInvalidParameter = errors.New("BAD_REQUEST")

// ErrInvalidRange indicates a parameter value outside its allowed range.
var ErrInvalidRange = errors.New("INVALID_RANGE")
