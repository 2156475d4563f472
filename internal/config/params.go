package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/motion-control/mcc/internal/kinematics"
)

// deprecatedParams maps retired parameter names to their canonical
// replacements. Resolution is a one-time migration concern of the
// configuration source; when both names are present the canonical name wins
// and the deprecated value is dropped.
var deprecatedParams = map[string]string{
	"max_rot_vel":   kinematics.ParamMaxVelTheta,
	"min_trans_vel": kinematics.ParamMinSpeedXY,
	"max_trans_vel": kinematics.ParamMaxSpeedXY,
	"min_rot_vel":   kinematics.ParamMinSpeedTheta,
}

// ResolveLimitParams rewrites deprecated parameter names in raw to their
// canonical form. It returns the resolved mapping plus the list of deprecated
// names that were remapped (for the caller to log). Names outside both the
// canonical vocabulary and the deprecation table pass through untouched; the
// limit store ignores them downstream.
func ResolveLimitParams(raw map[string]float64) (map[string]float64, []string) {
	if raw == nil {
		return map[string]float64{}, nil
	}

	resolved := make(map[string]float64, len(raw))
	var moved []string

	for name, value := range raw {
		if canonical, ok := deprecatedParams[name]; ok {
			if _, present := raw[canonical]; present {
				// Canonical name wins; deprecated value discarded.
				continue
			}
			resolved[canonical] = value
			moved = append(moved, name)
			continue
		}
		resolved[name] = value
	}

	return resolved, moved
}

// limitsFile is the on-disk shape of the limits section.
type limitsFile struct {
	Limits map[string]float64 `yaml:"limits"`
}

// LoadLimitsFile reads the limits section of a YAML configuration file and
// resolves legacy names. The reconfiguration gateway re-reads the same file
// on change events.
func LoadLimitsFile(path string) (map[string]float64, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read limits file: %w", err)
	}

	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse limits file %s: %w", path, err)
	}

	resolved, moved := ResolveLimitParams(file.Limits)
	return resolved, moved, nil
}

// applyLimitEnvOverrides overlays MCC_LIMIT_* environment variables onto the
// resolved limits mapping. Only canonical names are accepted through the
// environment; values that fail to parse are skipped.
func applyLimitEnvOverrides(limits map[string]float64) {
	for _, name := range kinematics.ParamNames() {
		key := "MCC_LIMIT_" + strings.ToUpper(name)
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			limits[name] = f
		}
	}
}
