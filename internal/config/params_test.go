package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motion-control/mcc/internal/kinematics"
)

func TestResolveLimitParamsCanonicalPassthrough(t *testing.T) {
	resolved, moved := ResolveLimitParams(map[string]float64{
		kinematics.ParamMaxVelX:  0.5,
		kinematics.ParamAccelX:   2.5,
		"unrecognized_parameter": 1.0,
	})

	assert.Empty(t, moved)
	assert.Equal(t, 0.5, resolved[kinematics.ParamMaxVelX])
	assert.Equal(t, 2.5, resolved[kinematics.ParamAccelX])
	// Unknown names pass through; the store ignores them downstream.
	assert.Equal(t, 1.0, resolved["unrecognized_parameter"])
}

func TestResolveLimitParamsRemapsDeprecated(t *testing.T) {
	resolved, moved := ResolveLimitParams(map[string]float64{
		"max_rot_vel":   1.2,
		"min_trans_vel": 0.1,
		"max_trans_vel": 2.0,
		"min_rot_vel":   0.3,
	})

	assert.Len(t, moved, 4)
	assert.Equal(t, 1.2, resolved[kinematics.ParamMaxVelTheta])
	assert.Equal(t, 0.1, resolved[kinematics.ParamMinSpeedXY])
	assert.Equal(t, 2.0, resolved[kinematics.ParamMaxSpeedXY])
	assert.Equal(t, 0.3, resolved[kinematics.ParamMinSpeedTheta])

	for old := range map[string]struct{}{"max_rot_vel": {}, "min_trans_vel": {}, "max_trans_vel": {}, "min_rot_vel": {}} {
		_, ok := resolved[old]
		assert.False(t, ok, "deprecated name %s must not survive resolution", old)
	}
}

func TestResolveLimitParamsCanonicalWins(t *testing.T) {
	resolved, moved := ResolveLimitParams(map[string]float64{
		"max_rot_vel":               9.9,
		kinematics.ParamMaxVelTheta: 1.2,
	})

	assert.Empty(t, moved)
	assert.Equal(t, 1.2, resolved[kinematics.ParamMaxVelTheta])
}

func TestResolveLimitParamsNil(t *testing.T) {
	resolved, moved := ResolveLimitParams(nil)
	assert.NotNil(t, resolved)
	assert.Empty(t, resolved)
	assert.Empty(t, moved)
}

func TestLoadLimitsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	content := `
limits:
  max_vel_x: 0.5
  max_trans_vel: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	resolved, moved, err := LoadLimitsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"max_trans_vel"}, moved)
	assert.Equal(t, 0.5, resolved[kinematics.ParamMaxVelX])
	assert.Equal(t, 2.0, resolved[kinematics.ParamMaxSpeedXY])
}

func TestLoadLimitsFileMissing(t *testing.T) {
	_, _, err := LoadLimitsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateTiming(t *testing.T) {
	cfg := LoadMCTimingBaseline()
	assert.NoError(t, ValidateTiming(cfg))

	cfg.EventBufferSize = 0
	assert.Error(t, ValidateTiming(cfg))

	assert.Error(t, ValidateTiming(nil))
}
