package config

import (
	"fmt"

	"github.com/motion-control/mcc/internal/kinematics"
)

// ValidateTiming checks MC-TIMING constraints on the service configuration.
func ValidateTiming(cfg *TimingConfig) error {
	if cfg == nil {
		return fmt.Errorf("timing config is nil")
	}
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %v", cfg.HeartbeatInterval)
	}
	if cfg.HeartbeatJitter < 0 {
		return fmt.Errorf("heartbeat jitter must be non-negative, got %v", cfg.HeartbeatJitter)
	}
	if cfg.DebounceWindow < 0 {
		return fmt.Errorf("debounce window must be non-negative, got %v", cfg.DebounceWindow)
	}
	if cfg.EventBufferSize <= 0 {
		return fmt.Errorf("event buffer size must be positive, got %d", cfg.EventBufferSize)
	}
	if cfg.EventBufferRetention <= 0 {
		return fmt.Errorf("event buffer retention must be positive, got %v", cfg.EventBufferRetention)
	}
	if cfg.HTTPReadTimeout <= 0 || cfg.HTTPWriteTimeout <= 0 || cfg.HTTPIdleTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	return nil
}

// accelParams are the limit names that must not carry negative values.
var accelParams = []string{
	kinematics.ParamAccelX,
	kinematics.ParamAccelY,
	kinematics.ParamAccelTheta,
}

// ValidateLimits checks the explicitly-configured limit values. Missing
// values are never an error (the store defaults them), and negative speed
// bounds mean "unbounded" rather than a mistake; only accelerations carry a
// sign constraint.
func ValidateLimits(limits map[string]float64) error {
	for _, name := range accelParams {
		if v, ok := limits[name]; ok && v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	return nil
}
