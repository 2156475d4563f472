package command

import (
	"context"
	"fmt"
	"math"

	"github.com/motion-control/mcc/internal/config"
	"github.com/motion-control/mcc/internal/kinematics"
	"github.com/motion-control/mcc/internal/telemetry"
)

// Orchestrator routes validated API intents to the limit store.
type Orchestrator struct {
	store       LimitStore
	publisher   EventPublisher
	auditLogger AuditLogger
}

// Compile-time assertion that kinematics.Store implements LimitStore
var _ LimitStore = (*kinematics.Store)(nil)

// Compile-time assertion that telemetry.Hub implements EventPublisher
var _ EventPublisher = (*telemetry.Hub)(nil)

// Compile-time assertion that Orchestrator implements OrchestratorPort
var _ OrchestratorPort = (*Orchestrator)(nil)

// EventPublisher publishes telemetry events.
type EventPublisher interface {
	Publish(event telemetry.Event) error
}

// AuditLogger interface for writing audit records.
type AuditLogger interface {
	LogAction(ctx context.Context, action string, params map[string]interface{}, outcome string, err error) string
}

// NewOrchestrator creates a new command orchestrator. publisher and
// auditLogger may be nil; the corresponding side effects are skipped.
func NewOrchestrator(store LimitStore, publisher EventPublisher, auditLogger AuditLogger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		publisher:   publisher,
		auditLogger: auditLogger,
	}
}

// CheckVelocity judges a commanded velocity against the current limits.
// The revision in the verdict identifies the limit set the judgment was
// made under.
func (o *Orchestrator) CheckVelocity(ctx context.Context, x, y, theta float64) (*Verdict, error) {
	for name, v := range map[string]float64{"x": x, "y": y, "theta": theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err := fmt.Errorf("%w: %s must be finite", ErrInvalidParameter, name)
			o.logAudit(ctx, "checkVelocity", velocityParams(x, y, theta), "REJECTED", err)
			return nil, err
		}
	}

	limits, revision := o.store.View()
	verdict := &Verdict{
		Valid:    kinematics.IsValidSpeed(limits, x, y, theta),
		X:        x,
		Y:        y,
		Theta:    theta,
		Revision: revision,
	}

	if verdict.Valid {
		o.logAudit(ctx, "checkVelocity", velocityParams(x, y, theta), "ACCEPTED", nil)
	} else {
		o.logAudit(ctx, "checkVelocity", velocityParams(x, y, theta), "REJECTED", nil)
		o.publishEvent("velocityRejected", map[string]interface{}{
			"x":        x,
			"y":        y,
			"theta":    theta,
			"revision": revision,
		})
	}

	return verdict, nil
}

// ApplyLimits validates and applies a named batch of limit changes, then
// returns the resulting limits and the names that were applied. Legacy
// parameter names are resolved before the batch reaches the store.
func (o *Orchestrator) ApplyLimits(ctx context.Context, values map[string]float64) (kinematics.Limits, []string, error) {
	auditParams := make(map[string]interface{}, len(values))
	for name, v := range values {
		auditParams[name] = v
	}

	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err := fmt.Errorf("%w: %s must be finite", ErrInvalidParameter, name)
			o.logAudit(ctx, "applyLimits", auditParams, "REJECTED", err)
			return kinematics.Limits{}, nil, err
		}
	}

	resolved, moved := config.ResolveLimitParams(values)
	if err := config.ValidateLimits(resolved); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidRange, err)
		o.logAudit(ctx, "applyLimits", auditParams, "REJECTED", wrapped)
		return kinematics.Limits{}, nil, wrapped
	}

	applied := o.store.ApplyUpdate(resolved)
	limits, revision := o.store.View()

	o.logAudit(ctx, "applyLimits", auditParams, "APPLIED", nil)
	if len(applied) > 0 {
		o.publishEvent("limitsChanged", map[string]interface{}{
			"params":   applied,
			"moved":    moved,
			"revision": revision,
		})
	}

	return limits, applied, nil
}

// GetLimits returns the current limits and their revision.
func (o *Orchestrator) GetLimits(ctx context.Context) (kinematics.Limits, uint64) {
	return o.store.View()
}

func (o *Orchestrator) logAudit(ctx context.Context, action string, params map[string]interface{}, outcome string, err error) {
	if o.auditLogger == nil {
		return
	}
	o.auditLogger.LogAction(ctx, action, params, outcome, err)
}

func (o *Orchestrator) publishEvent(eventType string, data map[string]interface{}) {
	if o.publisher == nil {
		return
	}
	_ = o.publisher.Publish(telemetry.Event{
		Type: eventType,
		Data: data,
	})
}

func velocityParams(x, y, theta float64) map[string]interface{} {
	return map[string]interface{}{
		"x":     x,
		"y":     y,
		"theta": theta,
	}
}
