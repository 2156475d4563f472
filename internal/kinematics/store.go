package kinematics

import (
	"sync"
)

// axisDefaults drives the decel-from-accel defaulting rule at initialization.
var axisDefaults = []struct {
	accel string
	decel string
}{
	{ParamAccelX, ParamDecelX},
	{ParamAccelY, ParamDecelY},
	{ParamAccelTheta, ParamDecelTheta},
}

// Store is the single source of truth for kinematic limits.
//
// ApplyUpdate is serialized against concurrent Snapshot/IsValidSpeed access
// via the store mutex: a reader always observes either the state before an
// update or the state after it, never a bound paired with a stale squared
// cache. The control loop calls IsValidSpeed at high frequency; the
// reconfiguration gateway calls ApplyUpdate from its own goroutine.
type Store struct {
	mu       sync.RWMutex
	limits   Limits
	revision uint64
}

// NewStore creates a limit store with all-zero defaults. Call Initialize to
// populate it from a resolved configuration mapping.
func NewStore() *Store {
	return &Store{}
}

// Initialize establishes the initial limits from a canonical name→value
// mapping. Legacy name aliasing is the configuration source's concern and
// must already be resolved. For each axis, a deceleration limit that is not
// explicitly present defaults to the negation of that axis's acceleration
// limit (0.0 if the acceleration is absent too).
func (s *Store) Initialize(values map[string]float64) {
	resolved := make(map[string]float64, len(values)+len(axisDefaults))
	for name, v := range values {
		resolved[name] = v
	}
	for _, axis := range axisDefaults {
		if _, ok := resolved[axis.decel]; !ok {
			resolved[axis.decel] = -resolved[axis.accel]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(resolved)
}

// ApplyUpdate atomically applies a partial (or full) update batch. Names
// outside the recognized vocabulary are ignored, not rejected. The squared
// speed caches are recomputed when either combined-speed bound is among the
// updated names, inside the same critical section, so no snapshot can pair a
// new bound with a stale cache. The returned slice lists the names that were
// actually applied, in vocabulary order.
func (s *Store) ApplyUpdate(values map[string]float64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(values)
}

func (s *Store) applyLocked(values map[string]float64) []string {
	applied := make([]string, 0, len(values))
	for _, name := range ParamNames() {
		v, ok := values[name]
		if !ok {
			continue
		}
		setters[name](&s.limits, v)
		applied = append(applied, name)
	}
	if _, ok := values[ParamMinSpeedXY]; ok {
		s.limits.MinSpeedXYSq = s.limits.MinSpeedXY * s.limits.MinSpeedXY
	}
	if _, ok := values[ParamMaxSpeedXY]; ok {
		s.limits.MaxSpeedXYSq = s.limits.MaxSpeedXY * s.limits.MaxSpeedXY
	}
	if len(applied) > 0 {
		s.revision++
	}
	return applied
}

// Snapshot returns an internally-consistent copy of the current limits.
func (s *Store) Snapshot() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// View returns the current limits together with the store revision that
// produced them, under a single lock acquisition.
func (s *Store) View() (Limits, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits, s.revision
}

// Revision returns the number of committed updates. Two equal revisions imply
// identical limit values.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// IsValidSpeed evaluates the candidate velocity against the current limits.
func (s *Store) IsValidSpeed(x, y, theta float64) bool {
	return IsValidSpeed(s.Snapshot(), x, y, theta)
}
