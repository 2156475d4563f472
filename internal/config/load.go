package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when MCC_CONFIG is unset.
	DefaultConfigPath = "mcc.yaml"

	// DefaultAddr is the API listen address when MCC_ADDR is unset.
	DefaultAddr = ":8000"

	// DefaultAuditDir holds the audit JSONL stream.
	DefaultAuditDir = "logs"
)

// Config is the fully-merged service configuration.
type Config struct {
	// Addr is the HTTP API listen address.
	Addr string

	// AuditDir is the directory for the audit log.
	AuditDir string

	// ConfigPath is the YAML file the limits were loaded from (and the file
	// the reconfiguration gateway watches). Empty when no file was present.
	ConfigPath string

	// Limits holds the explicitly-configured limit values by canonical name.
	// Names not present here fall back to the limit store's defaults.
	Limits map[string]float64

	// MovedParams lists deprecated limit names that were remapped during
	// resolution, for startup logging.
	MovedParams []string

	// Timing is the MC-TIMING service configuration.
	Timing *TimingConfig

	// Auth configures the optional JWT verifier. Zero value disables auth.
	Auth AuthConfig
}

// AuthConfig carries JWT verification settings from the environment.
type AuthConfig struct {
	Algorithm     string // "HS256" or "RS256"; empty disables auth
	SecretKey     string // HS256 shared secret
	PublicKeyFile string // RS256 PEM file path
}

// fileConfig is the on-disk YAML shape of the service section.
type fileConfig struct {
	Addr     string             `yaml:"addr"`
	AuditDir string             `yaml:"audit_dir"`
	Limits   map[string]float64 `yaml:"limits"`
}

// Load merges baseline defaults, the optional YAML config file, and MCC_*
// environment overrides into a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:     DefaultAddr,
		AuditDir: DefaultAuditDir,
		Limits:   map[string]float64{},
		Timing:   LoadMCTimingBaseline(),
	}

	path := os.Getenv("MCC_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		file, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg.ConfigPath = path
		if file.Addr != "" {
			cfg.Addr = file.Addr
		}
		if file.AuditDir != "" {
			cfg.AuditDir = file.AuditDir
		}
		cfg.Limits, cfg.MovedParams = ResolveLimitParams(file.Limits)
	}

	applyEnvOverrides(cfg)
	applyLimitEnvOverrides(cfg.Limits)

	if err := ValidateTiming(cfg.Timing); err != nil {
		return nil, fmt.Errorf("timing validation failed: %w", err)
	}
	if err := ValidateLimits(cfg.Limits); err != nil {
		return nil, fmt.Errorf("limit validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile parses the YAML service configuration.
func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &file, nil
}

// applyEnvOverrides applies MCC_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("MCC_ADDR"); val != "" {
		cfg.Addr = val
	}
	if val := os.Getenv("MCC_AUDIT_DIR"); val != "" {
		cfg.AuditDir = val
	}

	// Timing overrides
	if val := os.Getenv("MCC_TIMING_HEARTBEAT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.HeartbeatInterval = d
		}
	}
	if val := os.Getenv("MCC_TIMING_HEARTBEAT_JITTER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.HeartbeatJitter = d
		}
	}
	if val := os.Getenv("MCC_TIMING_DEBOUNCE_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.DebounceWindow = d
		}
	}
	if val := os.Getenv("MCC_TIMING_EVENT_BUFFER_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			cfg.Timing.EventBufferSize = size
		}
	}
	if val := os.Getenv("MCC_TIMING_EVENT_BUFFER_RETENTION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.EventBufferRetention = d
		}
	}
	if val := os.Getenv("MCC_TIMING_HTTP_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.HTTPReadTimeout = d
		}
	}
	if val := os.Getenv("MCC_TIMING_HTTP_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.HTTPWriteTimeout = d
		}
	}
	if val := os.Getenv("MCC_TIMING_HTTP_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timing.HTTPIdleTimeout = d
		}
	}

	// Auth configuration
	cfg.Auth.Algorithm = os.Getenv("MCC_AUTH_ALG")
	cfg.Auth.SecretKey = os.Getenv("MCC_AUTH_SECRET")
	cfg.Auth.PublicKeyFile = os.Getenv("MCC_AUTH_PUBLIC_KEY_FILE")
}
