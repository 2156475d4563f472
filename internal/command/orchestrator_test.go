package command

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/motion-control/mcc/internal/kinematics"
	"github.com/motion-control/mcc/internal/telemetry"
)

// mockPublisher captures published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (p *mockPublisher) Publish(event telemetry.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *mockPublisher) byType(eventType string) []telemetry.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []telemetry.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// mockAudit records audit calls.
type mockAudit struct {
	actions  []string
	outcomes []string
	errs     []error
}

func (a *mockAudit) LogAction(ctx context.Context, action string, params map[string]interface{}, outcome string, err error) string {
	a.actions = append(a.actions, action)
	a.outcomes = append(a.outcomes, outcome)
	a.errs = append(a.errs, err)
	return "corr-1"
}

func newTestOrchestrator(t *testing.T, initial map[string]float64) (*Orchestrator, *kinematics.Store, *mockPublisher, *mockAudit) {
	t.Helper()
	store := kinematics.NewStore()
	store.Initialize(initial)
	publisher := &mockPublisher{}
	auditor := &mockAudit{}
	return NewOrchestrator(store, publisher, auditor), store, publisher, auditor
}

func TestCheckVelocityAccepts(t *testing.T) {
	o, _, publisher, auditor := newTestOrchestrator(t, map[string]float64{
		"max_speed_xy": 1.0,
	})

	verdict, err := o.CheckVelocity(context.Background(), 0.5, 0.0, 0.2)
	if err != nil {
		t.Fatalf("CheckVelocity() failed: %v", err)
	}
	if !verdict.Valid {
		t.Error("verdict.Valid = false, want true")
	}
	if verdict.X != 0.5 || verdict.Theta != 0.2 {
		t.Errorf("verdict echo = (%v, %v, %v)", verdict.X, verdict.Y, verdict.Theta)
	}

	if got := publisher.byType("velocityRejected"); len(got) != 0 {
		t.Errorf("unexpected rejection events: %v", got)
	}
	if len(auditor.outcomes) != 1 || auditor.outcomes[0] != "ACCEPTED" {
		t.Errorf("audit outcomes = %v, want [ACCEPTED]", auditor.outcomes)
	}
}

func TestCheckVelocityRejectsAboveCeiling(t *testing.T) {
	o, store, publisher, auditor := newTestOrchestrator(t, map[string]float64{
		"max_speed_xy": 1.0,
	})

	verdict, err := o.CheckVelocity(context.Background(), 2.0, 0.0, 0.0)
	if err != nil {
		t.Fatalf("CheckVelocity() failed: %v", err)
	}
	if verdict.Valid {
		t.Error("verdict.Valid = true, want false")
	}
	if verdict.Revision != store.Revision() {
		t.Errorf("verdict.Revision = %d, want %d", verdict.Revision, store.Revision())
	}

	events := publisher.byType("velocityRejected")
	if len(events) != 1 {
		t.Fatalf("expected 1 rejection event, got %d", len(events))
	}
	if events[0].Data["x"] != 2.0 {
		t.Errorf("event x = %v, want 2.0", events[0].Data["x"])
	}
	if auditor.outcomes[0] != "REJECTED" {
		t.Errorf("audit outcome = %q, want REJECTED", auditor.outcomes[0])
	}
}

func TestCheckVelocityRejectsNonFinite(t *testing.T) {
	o, _, _, auditor := newTestOrchestrator(t, nil)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := o.CheckVelocity(context.Background(), v, 0, 0); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("CheckVelocity(%v) error = %v, want ErrInvalidParameter", v, err)
		}
	}
	for _, outcome := range auditor.outcomes {
		if outcome != "REJECTED" {
			t.Errorf("audit outcome = %q, want REJECTED", outcome)
		}
	}
}

func TestApplyLimitsUpdatesStore(t *testing.T) {
	o, store, publisher, auditor := newTestOrchestrator(t, nil)

	limits, applied, err := o.ApplyLimits(context.Background(), map[string]float64{
		"max_vel_x":    0.7,
		"max_speed_xy": 1.5,
	})
	if err != nil {
		t.Fatalf("ApplyLimits() failed: %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %v, want 2 names", applied)
	}
	if limits.MaxVelX != 0.7 {
		t.Errorf("MaxVelX = %v, want 0.7", limits.MaxVelX)
	}
	if limits.MaxSpeedXYSq != 2.25 {
		t.Errorf("MaxSpeedXYSq = %v, want 2.25", limits.MaxSpeedXYSq)
	}
	if got := store.Snapshot().MaxVelX; got != 0.7 {
		t.Errorf("store MaxVelX = %v, want 0.7", got)
	}

	events := publisher.byType("limitsChanged")
	if len(events) != 1 {
		t.Fatalf("expected 1 limitsChanged event, got %d", len(events))
	}
	if auditor.outcomes[0] != "APPLIED" {
		t.Errorf("audit outcome = %q, want APPLIED", auditor.outcomes[0])
	}
}

func TestApplyLimitsResolvesLegacyNames(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t, nil)

	limits, applied, err := o.ApplyLimits(context.Background(), map[string]float64{
		"max_rot_vel": 1.2,
	})
	if err != nil {
		t.Fatalf("ApplyLimits() failed: %v", err)
	}
	if len(applied) != 1 || applied[0] != "max_vel_theta" {
		t.Errorf("applied = %v, want [max_vel_theta]", applied)
	}
	if limits.MaxVelTheta != 1.2 {
		t.Errorf("MaxVelTheta = %v, want 1.2", limits.MaxVelTheta)
	}
}

func TestApplyLimitsRejectsNegativeAccel(t *testing.T) {
	o, store, publisher, _ := newTestOrchestrator(t, nil)
	before := store.Revision()

	_, _, err := o.ApplyLimits(context.Background(), map[string]float64{
		"acc_lim_x": -1.0,
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
	if store.Revision() != before {
		t.Error("rejected batch must not change the store")
	}
	if got := publisher.byType("limitsChanged"); len(got) != 0 {
		t.Errorf("unexpected limitsChanged events: %v", got)
	}
}

func TestApplyLimitsRejectsNonFinite(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t, nil)

	_, _, err := o.ApplyLimits(context.Background(), map[string]float64{
		"max_vel_x": math.Inf(1),
	})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestApplyLimitsIgnoresUnknownNames(t *testing.T) {
	o, _, publisher, _ := newTestOrchestrator(t, nil)

	_, applied, err := o.ApplyLimits(context.Background(), map[string]float64{
		"warp_factor": 9.0,
	})
	if err != nil {
		t.Fatalf("ApplyLimits() failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %v, want none", applied)
	}
	if got := publisher.byType("limitsChanged"); len(got) != 0 {
		t.Error("no-op batch must not publish limitsChanged")
	}
}

func TestGetLimits(t *testing.T) {
	o, store, _, _ := newTestOrchestrator(t, map[string]float64{
		"max_vel_x": 0.4,
	})

	limits, revision := o.GetLimits(context.Background())
	if limits.MaxVelX != 0.4 {
		t.Errorf("MaxVelX = %v, want 0.4", limits.MaxVelX)
	}
	if revision != store.Revision() {
		t.Errorf("revision = %d, want %d", revision, store.Revision())
	}
}

func TestOrchestratorWithNilSideEffects(t *testing.T) {
	store := kinematics.NewStore()
	store.Initialize(nil)
	o := NewOrchestrator(store, nil, nil)

	if _, err := o.CheckVelocity(context.Background(), 0.1, 0, 0); err != nil {
		t.Errorf("CheckVelocity() with nil publisher/audit failed: %v", err)
	}
	if _, _, err := o.ApplyLimits(context.Background(), map[string]float64{"max_vel_x": 1}); err != nil {
		t.Errorf("ApplyLimits() with nil publisher/audit failed: %v", err)
	}
}
