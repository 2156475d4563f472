package kinematics

// Canonical parameter names recognized by the limit store. These form the
// full update vocabulary; any other name in an update batch is ignored.
const (
	ParamMinVelX       = "min_vel_x"
	ParamMinVelY       = "min_vel_y"
	ParamMaxVelX       = "max_vel_x"
	ParamMaxVelY       = "max_vel_y"
	ParamMaxVelTheta   = "max_vel_theta"
	ParamMinSpeedXY    = "min_speed_xy"
	ParamMaxSpeedXY    = "max_speed_xy"
	ParamMinSpeedTheta = "min_speed_theta"
	ParamAccelX        = "acc_lim_x"
	ParamAccelY        = "acc_lim_y"
	ParamAccelTheta    = "acc_lim_theta"
	ParamDecelX        = "decel_lim_x"
	ParamDecelY        = "decel_lim_y"
	ParamDecelTheta    = "decel_lim_theta"
)

// Limits holds one self-consistent set of kinematic bounds.
//
// Velocity and acceleration limits default to 0.0. For the combined-speed
// and rotational-speed bounds a negative value means "unbounded" and disables
// the corresponding check. MinSpeedXYSq and MaxSpeedXYSq are derived caches;
// the store recomputes them whenever the bounds they mirror change, so a
// snapshot never carries a stale square.
type Limits struct {
	MinVelX     float64 `json:"minVelX"`
	MinVelY     float64 `json:"minVelY"`
	MaxVelX     float64 `json:"maxVelX"`
	MaxVelY     float64 `json:"maxVelY"`
	MaxVelTheta float64 `json:"maxVelTheta"`

	MinSpeedXY    float64 `json:"minSpeedXY"`
	MaxSpeedXY    float64 `json:"maxSpeedXY"`
	MinSpeedTheta float64 `json:"minSpeedTheta"`

	AccelX     float64 `json:"accLimX"`
	AccelY     float64 `json:"accLimY"`
	AccelTheta float64 `json:"accLimTheta"`
	DecelX     float64 `json:"decelLimX"`
	DecelY     float64 `json:"decelLimY"`
	DecelTheta float64 `json:"decelLimTheta"`

	// Derived squared-speed caches, kept in lockstep with MinSpeedXY and
	// MaxSpeedXY by the store.
	MinSpeedXYSq float64 `json:"-"`
	MaxSpeedXYSq float64 `json:"-"`
}

// setters maps each canonical parameter name to its field assignment. The
// table replaces per-field conditional code in the update path and preserves
// the "unrecognized name ignored" forward-compatibility policy.
var setters = map[string]func(*Limits, float64){
	ParamMinVelX:       func(l *Limits, v float64) { l.MinVelX = v },
	ParamMinVelY:       func(l *Limits, v float64) { l.MinVelY = v },
	ParamMaxVelX:       func(l *Limits, v float64) { l.MaxVelX = v },
	ParamMaxVelY:       func(l *Limits, v float64) { l.MaxVelY = v },
	ParamMaxVelTheta:   func(l *Limits, v float64) { l.MaxVelTheta = v },
	ParamMinSpeedXY:    func(l *Limits, v float64) { l.MinSpeedXY = v },
	ParamMaxSpeedXY:    func(l *Limits, v float64) { l.MaxSpeedXY = v },
	ParamMinSpeedTheta: func(l *Limits, v float64) { l.MinSpeedTheta = v },
	ParamAccelX:        func(l *Limits, v float64) { l.AccelX = v },
	ParamAccelY:        func(l *Limits, v float64) { l.AccelY = v },
	ParamAccelTheta:    func(l *Limits, v float64) { l.AccelTheta = v },
	ParamDecelX:        func(l *Limits, v float64) { l.DecelX = v },
	ParamDecelY:        func(l *Limits, v float64) { l.DecelY = v },
	ParamDecelTheta:    func(l *Limits, v float64) { l.DecelTheta = v },
}

// ParamNames returns the full update vocabulary in declaration order.
func ParamNames() []string {
	return []string{
		ParamMinVelX, ParamMinVelY, ParamMaxVelX, ParamMaxVelY, ParamMaxVelTheta,
		ParamMinSpeedXY, ParamMaxSpeedXY, ParamMinSpeedTheta,
		ParamAccelX, ParamAccelY, ParamAccelTheta,
		ParamDecelX, ParamDecelY, ParamDecelTheta,
	}
}

// IsParamName reports whether name belongs to the recognized update vocabulary.
func IsParamName(name string) bool {
	_, ok := setters[name]
	return ok
}
