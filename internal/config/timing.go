package config

import (
	"time"
)

// TimingConfig maps MC-TIMING v0.2 structure.
type TimingConfig struct {
	// MC-TIMING §3.1 Heartbeat cadence for the telemetry stream
	HeartbeatInterval time.Duration
	HeartbeatJitter   time.Duration

	// MC-TIMING §4.1 Reconfiguration gateway debounce window: change batches
	// arriving within the window collapse into one applyUpdate delivery
	DebounceWindow time.Duration

	// MC-TIMING §5.1 Telemetry event buffer
	EventBufferSize      int
	EventBufferRetention time.Duration

	// MC-TIMING §6.1 HTTP server timeouts
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadMCTimingBaseline returns MC-TIMING v0.2 baseline values.
func LoadMCTimingBaseline() *TimingConfig {
	return &TimingConfig{
		// MC-TIMING §3.1: heartbeat 15s, jitter ±2s
		HeartbeatInterval: 15 * time.Second,
		HeartbeatJitter:   2 * time.Second,

		// MC-TIMING §4.1: 200ms debounce on parameter-change batches
		DebounceWindow: 200 * time.Millisecond,

		// MC-TIMING §5.1: 50 events, 1 hour retention
		EventBufferSize:      50,
		EventBufferRetention: 1 * time.Hour,

		// MC-TIMING §6.1: read/write 30s, idle 120s
		HTTPReadTimeout:  30 * time.Second,
		HTTPWriteTimeout: 30 * time.Second,
		HTTPIdleTimeout:  120 * time.Second,
	}
}
